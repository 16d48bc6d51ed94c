package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Scheme is one known instrument a portfolio can reference by code.
type Scheme struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Source   string `json:"source,omitempty"`
	Category string `json:"category,omitempty"`
}

// Catalog is the list of known schemes, refreshed by update-instruments.
type Catalog struct {
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
	Schemes   []Scheme  `json:"schemes"`
}

// LoadCatalog loads the catalog from a JSON file.
func LoadCatalog(filePath string) (*Catalog, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	return &cat, nil
}

// SaveCatalog writes the catalog as indented JSON, creating the directory.
func SaveCatalog(filePath string, cat *Catalog) error {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

// DefaultCatalogPath returns INSTRUMENTS_FILE, or ./data/instruments.json.
func DefaultCatalogPath() string {
	if p := os.Getenv("INSTRUMENTS_FILE"); p != "" {
		return p
	}
	return "./data/instruments.json"
}

// Search returns schemes whose code equals query or whose name contains it,
// case-insensitively, at most limit of them (all when limit <= 0).
func (c *Catalog) Search(query string, limit int) []Scheme {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Scheme
	for _, s := range c.Schemes {
		if query != "" && s.Code != query && !strings.Contains(strings.ToLower(s.Name), query) {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// CatalogFromSummaries builds a catalog from an MFAPI scheme listing.
func CatalogFromSummaries(list []SchemeSummary, now time.Time) *Catalog {
	cat := &Catalog{Source: "mfapi", UpdatedAt: now.UTC(), Schemes: make([]Scheme, 0, len(list))}
	for _, s := range list {
		cat.Schemes = append(cat.Schemes, Scheme{
			Code:   fmt.Sprint(s.SchemeCode),
			Name:   strings.TrimSpace(s.SchemeName),
			Source: "mfapi",
		})
	}
	return cat
}
