package entropy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKeepsExplicitSeed(t *testing.T) {
	assert.Equal(t, int64(42), Resolve(42))
	assert.Equal(t, int64(-7), NewSource("key").Resolve(context.Background(), -7))
}

func TestResolveZeroDrawsFreshSeed(t *testing.T) {
	for range 20 {
		assert.Positive(t, Resolve(0))
	}
	assert.NotEqual(t, Seed(), Seed())
}

func TestSourceWithoutKeyUsesCryptoRand(t *testing.T) {
	s := NewSource("")
	assert.False(t, s.Enabled())
	assert.Positive(t, s.Seed(context.Background()))
}

func TestSourceFetchesFromRandomOrg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "generateIntegers", req.Method)
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":{"random":{"data":[1,5]}},"id":1}`))
	}))
	defer srv.Close()

	s := NewSource("key")
	s.endpoint = srv.URL
	assert.Equal(t, int64(1<<31|5), s.Seed(context.Background()))
}

func TestSourceFallsBackOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"message":"bad key"},"id":1}`))
	}))
	defer srv.Close()

	s := NewSource("key")
	s.endpoint = srv.URL
	assert.Positive(t, s.Seed(context.Background()))
}
