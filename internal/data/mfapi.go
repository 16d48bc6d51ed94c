package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/logger"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// DefaultMFAPIBaseURL serves Indian mutual fund NAV histories.
const DefaultMFAPIBaseURL = "https://api.mfapi.in"

// MFAPIClient fetches mutual fund NAV histories.
type MFAPIClient struct {
	BaseURL string
	Client  *http.Client
	Cache   *ResponseCache
}

// NewMFAPIClient creates a client. If baseURL is empty, DefaultMFAPIBaseURL
// is used. The shared cache is attached when enabled.
func NewMFAPIClient(baseURL string) *MFAPIClient {
	if baseURL == "" {
		baseURL = DefaultMFAPIBaseURL
	}
	return &MFAPIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		Cache: GetCache(),
	}
}

// SchemeMeta describes a scheme as MFAPI reports it.
type SchemeMeta struct {
	FundHouse      string `json:"fund_house"`
	SchemeType     string `json:"scheme_type"`
	SchemeCategory string `json:"scheme_category"`
	SchemeCode     int    `json:"scheme_code"`
	SchemeName     string `json:"scheme_name"`
}

// NAVPoint is one NAV entry; both fields are strings on the wire
// (date as dd-mm-yyyy).
type NAVPoint struct {
	Date string `json:"date"`
	NAV  string `json:"nav"`
}

// SchemeResponse is the body of GET /mf/{code}.
type SchemeResponse struct {
	Meta   SchemeMeta `json:"meta"`
	Data   []NAVPoint `json:"data"`
	Status string     `json:"status"`
}

// SchemeSummary is one entry of GET /mf.
type SchemeSummary struct {
	SchemeCode int    `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
}

// SourceError is a non-success answer from a price source.
type SourceError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *SourceError) Error() string {
	return e.Message
}

// FetchScheme fetches the full NAV history of a scheme.
func (c *MFAPIClient) FetchScheme(ctx context.Context, code string) (*SchemeResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("scheme code is required")
	}

	cacheKey := GenerateCacheKey(c.BaseURL, code)
	if cached, found := c.Cache.Get(cacheKey); found {
		logger.Debug(ctx, "mfapi cache hit", "code", code, "points", len(cached.Data))
		return cached, nil
	}

	var result SchemeResponse
	if err := c.get(ctx, "/mf/"+url.PathEscape(code), &result); err != nil {
		return nil, fmt.Errorf("scheme %s: %w", code, err)
	}
	if strings.EqualFold(result.Status, "FAIL") || len(result.Data) == 0 {
		return nil, &SourceError{
			StatusCode: http.StatusNotFound,
			Code:       "SCHEME_NOT_FOUND",
			Message:    fmt.Sprintf("scheme %s has no NAV history", code),
		}
	}

	logger.Info(ctx, "mfapi scheme fetched", "code", code, "points", len(result.Data))
	c.Cache.Set(cacheKey, &result)
	return &result, nil
}

// Instrument fetches a scheme and converts it to an instrument named after
// the scheme.
func (c *MFAPIClient) Instrument(ctx context.Context, code string) (model.Instrument, error) {
	resp, err := c.FetchScheme(ctx, code)
	if err != nil {
		return model.Instrument{}, err
	}
	return resp.Instrument()
}

// ListSchemes fetches every scheme code and name MFAPI knows.
func (c *MFAPIClient) ListSchemes(ctx context.Context) ([]SchemeSummary, error) {
	var out []SchemeSummary
	if err := c.get(ctx, "/mf", &out); err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}
	return out, nil
}

// Instrument converts the NAV entries to price points, skipping entries
// whose NAV is blank.
func (r *SchemeResponse) Instrument() (model.Instrument, error) {
	name := r.Meta.SchemeName
	if name == "" {
		name = fmt.Sprint(r.Meta.SchemeCode)
	}
	pts := make([]model.PricePoint, 0, len(r.Data))
	for i, p := range r.Data {
		if strings.TrimSpace(p.NAV) == "" {
			continue
		}
		d, err := ParseDate(p.Date)
		if err != nil {
			return model.Instrument{}, fmt.Errorf("%s entry %d: %w", name, i, err)
		}
		nav, err := ParsePrice(p.NAV)
		if err != nil {
			return model.Instrument{}, fmt.Errorf("%s entry %d: %w", name, i, err)
		}
		pts = append(pts, model.PricePoint{Date: d, Price: nav})
	}
	return model.Instrument{Name: name, Prices: pts}, nil
}

func (c *MFAPIClient) get(ctx context.Context, path string, out any) error {
	u := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		logger.Warn(ctx, "mfapi request failed", "path", path, "error", err.Error(), "duration", duration)
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug(ctx, "mfapi response", "path", path, "status", resp.StatusCode, "duration", duration)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return &SourceError{
			StatusCode: resp.StatusCode,
			Code:       "SCHEME_NOT_FOUND",
			Message:    fmt.Sprintf("%s not found", path),
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		logger.Warn(ctx, "mfapi rate limited", "path", path, "retry_after", retryAfter)
		return &SourceError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return &SourceError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
