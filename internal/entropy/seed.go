// Package entropy resolves generation seeds. An explicit seed is used as is;
// a zero seed is drawn from random.org when an API key is configured, falling
// back to crypto/rand when the API is unavailable.
package entropy

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const randomOrgEndpoint = "https://api.random.org/json-rpc/4/invoke"

// Source draws fresh seeds.
type Source struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewSource creates a seed source. With an empty apiKey every seed comes from crypto/rand.
func NewSource(apiKey string) *Source {
	return &Source{
		apiKey:   apiKey,
		endpoint: randomOrgEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled returns true if the source has a random.org API key.
func (s *Source) Enabled() bool {
	return s != nil && s.apiKey != ""
}

// Resolve returns seed unchanged when it is non-zero, otherwise a fresh seed.
func (s *Source) Resolve(ctx context.Context, seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return s.Seed(ctx)
}

// Seed returns a fresh non-zero seed.
func (s *Source) Seed(ctx context.Context) int64 {
	if s.Enabled() {
		seed, err := s.fetch(ctx)
		if err == nil && seed != 0 {
			slog.Debug("seed drawn from random.org", "seed", seed)
			return seed
		}
		slog.Debug("random.org unavailable, using crypto/rand", "error", err)
	}
	return cryptoSeed()
}

// Seed returns a fresh non-zero seed from crypto/rand.
func Seed() int64 {
	return cryptoSeed()
}

// Resolve is Source.Resolve without a random.org key.
func Resolve(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return Seed()
}

// fetch asks random.org for two 31-bit integers and joins them into one seed.
func (s *Source) fetch(ctx context.Context) (int64, error) {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateIntegers",
		"params": map[string]any{
			"apiKey": s.apiKey,
			"n":      2,
			"min":    0,
			"max":    1<<31 - 1,
		},
		"id": 1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("marshal random.org request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build random.org request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("fetch random.org: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read random.org response: %w", err)
	}

	var result struct {
		Result struct {
			Random struct {
				Data []int64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return 0, fmt.Errorf("parse random.org response: %w", err)
	}
	if result.Error != nil {
		return 0, fmt.Errorf("random.org: %s", result.Error.Message)
	}
	data := result.Result.Random.Data
	if len(data) != 2 {
		return 0, fmt.Errorf("random.org: want 2 integers, got %d", len(data))
	}
	return data[0]<<31 | data[1], nil
}

// cryptoSeed returns a non-zero positive seed from crypto/rand.
func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Should never happen; fall back to the clock.
		return time.Now().UnixNano() | 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		return 1
	}
	return seed
}
