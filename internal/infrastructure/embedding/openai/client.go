package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/leakwatch/assistant/internal/core/domain"
	"github.com/leakwatch/assistant/internal/infrastructure/resilience"
)

// maxEmbedChars caps the text sent per input. Truncation is deterministic
// so the cache key for a long text is stable across calls.
const maxEmbedChars = 8000

const cacheKeyChars = 100

// Client implements the embedding boundary against an OpenAI-compatible
// /v1/embeddings endpoint, with an optional LRU in front of it.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	exec       *resilience.Executor
	cache      *Cache
}

func New(baseURL, apiKey, model string, exec *resilience.Executor, cache *Cache) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		exec:       exec,
		cache:      cache,
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	prepared := prepare(text)
	if prepared == "" {
		return nil, domain.WrapError(domain.ErrEmptyInput, "embed", fmt.Errorf("blank text"))
	}

	key := cacheKey(prepared)
	if c.cache != nil {
		if vector, ok := c.cache.Get(key); ok {
			return vector, nil
		}
	}

	vectors, err := c.request(ctx, []string{prepared})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, domain.WrapError(domain.ErrEmbeddingProvider, "embed", fmt.Errorf("expected 1 vector, got %d", len(vectors)))
	}
	if c.cache != nil {
		c.cache.Put(key, vectors[0])
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input, in input order. Cached inputs
// are served locally; only the misses travel to the provider.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	missing := make([]string, 0, len(texts))
	missingIdx := make([]int, 0, len(texts))

	for i, text := range texts {
		prepared := prepare(text)
		if prepared == "" {
			return nil, domain.WrapError(domain.ErrEmptyInput, "embed batch", fmt.Errorf("blank text at index %d", i))
		}
		if c.cache != nil {
			if vector, ok := c.cache.Get(cacheKey(prepared)); ok {
				out[i] = vector
				continue
			}
		}
		missing = append(missing, prepared)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		vectors, err := c.request(ctx, missing)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(missing) {
			return nil, domain.WrapError(domain.ErrEmbeddingProvider, "embed batch", fmt.Errorf("expected %d vectors, got %d", len(missing), len(vectors)))
		}
		for j, vector := range vectors {
			out[missingIdx[j]] = vector
			if c.cache != nil {
				c.cache.Put(cacheKey(missing[j]), vector)
			}
		}
	}
	return out, nil
}

func (c *Client) request(ctx context.Context, inputs []string) ([][]float32, error) {
	payload := embedRequest{Model: c.model, Input: inputs}

	var response embedResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/embeddings", payload, &response)
	}

	var err error
	if c.exec != nil {
		err = c.exec.Execute(ctx, "embed", call, classifyEmbedError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbeddingProvider, "embed", err)
	}

	// Providers may reorder data; index restores input order.
	sort.Slice(response.Data, func(i, j int) bool {
		return response.Data[i].Index < response.Data[j].Index
	})
	vectors := make([][]float32, 0, len(response.Data))
	for _, item := range response.Data {
		vectors = append(vectors, item.Embedding)
	}
	return vectors, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("embeddings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode embeddings response: %w", err)
	}
	return nil
}

func prepare(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= maxEmbedChars {
		return trimmed
	}
	cut := trimmed[:maxEmbedChars]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func cacheKey(prepared string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(prepared), " "))
	if len(normalized) <= cacheKeyChars {
		return normalized
	}
	return normalized[:cacheKeyChars]
}
