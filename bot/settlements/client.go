// Package settlements looks up Ukrainian settlement names through the
// Nova Poshta address API. Lookups are best effort: any failure yields an
// empty result so the dialogue can fall back to manual input.
package settlements

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/agrohub/transportbot/core/logger"
)

const defaultBaseURL = "https://api.novaposhta.ua/v2.0/json/"

// Config describes the API access parameters.
type Config struct {
	APIKey         string `yaml:"api_key" envconfig:"NOVAPOSHTA_API_KEY"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Limit          int    `yaml:"limit"`
}

// Settlement is a single search hit. Display carries the region context shown
// on the keyboard, Value is what gets stored in the form.
type Settlement struct {
	Display string
	Value   string
}

// Client calls the searchSettlements endpoint.
type Client struct {
	apiKey  string
	baseURL string
	limit   int
	http    *http.Client
}

// NewClient builds a client with config defaults applied.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	limit := cfg.Limit
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		limit:   limit,
		http:    &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type searchRequest struct {
	APIKey           string          `json:"apiKey"`
	ModelName        string          `json:"modelName"`
	CalledMethod     string          `json:"calledMethod"`
	MethodProperties searchRequestMP `json:"methodProperties"`
}

type searchRequestMP struct {
	CityName string `json:"CityName"`
	Limit    string `json:"Limit"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		Addresses []struct {
			Present string `json:"Present"`
			Area    string `json:"Area"`
			Region  string `json:"Region"`
		} `json:"Addresses"`
	} `json:"data"`
}

// Search returns up to the configured limit of settlements matching the
// query. Missing key, transport errors, non-2xx responses and unparseable
// bodies all log a warning and return nil.
func (c *Client) Search(ctx context.Context, query string) []Settlement {
	if !c.Enabled() {
		logger.SEARCH.LogAttrs(ctx, slog.LevelWarn, "search.disabled",
			slog.String("cause", "api_key_missing"),
		)
		return nil
	}

	start := time.Now()
	body, err := json.Marshal(searchRequest{
		APIKey:       c.apiKey,
		ModelName:    "Address",
		CalledMethod: "searchSettlements",
		MethodProperties: searchRequestMP{
			CityName: query,
			Limit:    "10",
		},
	})
	if err != nil {
		logger.SEARCH.LogAttrs(ctx, slog.LevelError, "search.encode_failed",
			slog.String("err", err.Error()),
		)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		logger.SEARCH.LogAttrs(ctx, slog.LevelError, "search.request_failed",
			slog.String("err", err.Error()),
		)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.SEARCH.LogAttrs(ctx, slog.LevelWarn, "search.transport_failed",
			slog.String("query", query),
			slog.String("err", err.Error()),
		)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.SEARCH.LogAttrs(ctx, slog.LevelWarn, "search.http_error",
			slog.String("query", query),
			slog.Int("http_code", resp.StatusCode),
		)
		return nil
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logger.SEARCH.LogAttrs(ctx, slog.LevelWarn, "search.decode_failed",
			slog.String("query", query),
			slog.String("err", err.Error()),
		)
		return nil
	}
	if !parsed.Success || len(parsed.Data) == 0 {
		return nil
	}

	addresses := parsed.Data[0].Addresses
	results := make([]Settlement, 0, len(addresses))
	for _, addr := range addresses {
		display := addr.Present
		switch {
		case addr.Area != "" && addr.Region != "":
			display = addr.Present + " (" + addr.Area + ", " + addr.Region + ")"
		case addr.Region != "":
			display = addr.Present + " (" + addr.Region + ")"
		}
		results = append(results, Settlement{Display: display, Value: addr.Present})
		if len(results) == c.limit {
			break
		}
	}

	logger.SEARCH.LogAttrs(ctx, slog.LevelDebug, "search.done",
		slog.String("query", query),
		slog.Int("results", len(results)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return results
}
