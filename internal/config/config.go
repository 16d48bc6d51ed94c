package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"

	"gopkg.in/yaml.v3"
)

// Price sources an instrument can be resolved from.
const (
	SourceCSV       = "csv"
	SourceJSON      = "json"
	SourceMFAPI     = "mfapi"
	SourceFixed     = "fixed"
	SourceInflation = "inflation"
)

// Config is the on-disk configuration shape (YAML, TOML or JSON, by extension).
type Config struct {
	// Optional: load simulation settings (and portfolios) from a preset file.
	// Explicit fields in Simulation override the preset's.
	PresetFile string            `yaml:"preset_file,omitempty" toml:"preset_file" json:"preset_file,omitempty"`
	Name       string            `yaml:"name,omitempty" toml:"name" json:"name,omitempty"`
	Simulation SimulationConfig  `yaml:"simulation" toml:"simulation" json:"simulation"`
	Portfolios []PortfolioConfig `yaml:"portfolios" toml:"portfolios" json:"portfolios"`
	Data       DataConfig        `yaml:"data,omitempty" toml:"data" json:"data,omitempty"`
}

// SimulationConfig holds the investor behaviour shared by every portfolio.
type SimulationConfig struct {
	Mode               string  `yaml:"mode,omitempty" toml:"mode" json:"mode,omitempty"`
	WindowYears        int     `yaml:"window_years" toml:"window_years" json:"window_years"`
	ContributionAmount float64 `yaml:"contribution_amount" toml:"contribution_amount" json:"contribution_amount"`

	RebalanceEnabled   bool    `yaml:"rebalance_enabled,omitempty" toml:"rebalance_enabled" json:"rebalance_enabled,omitempty"`
	RebalanceThreshold float64 `yaml:"rebalance_threshold,omitempty" toml:"rebalance_threshold" json:"rebalance_threshold,omitempty"`

	StepUpEnabled bool    `yaml:"step_up_enabled,omitempty" toml:"step_up_enabled" json:"step_up_enabled,omitempty"`
	StepUpPercent float64 `yaml:"step_up_percent,omitempty" toml:"step_up_percent" json:"step_up_percent,omitempty"`

	TransitionEnabled bool `yaml:"transition_enabled,omitempty" toml:"transition_enabled" json:"transition_enabled,omitempty"`
	TransitionYears   int  `yaml:"transition_years,omitempty" toml:"transition_years" json:"transition_years,omitempty"`
}

// PortfolioConfig is one named allocation over instruments.
type PortfolioConfig struct {
	Name        string             `yaml:"name" toml:"name" json:"name"`
	Instruments []InstrumentConfig `yaml:"instruments" toml:"instruments" json:"instruments"`
}

// InstrumentConfig locates an instrument's price history and its weight.
type InstrumentConfig struct {
	Name   string `yaml:"name,omitempty" toml:"name" json:"name,omitempty"`
	Source string `yaml:"source,omitempty" toml:"source" json:"source,omitempty"`

	// mfapi: scheme code. csv/json: file path, relative to the config file.
	Code string `yaml:"code,omitempty" toml:"code" json:"code,omitempty"`
	File string `yaml:"file,omitempty" toml:"file" json:"file,omitempty"`

	// fixed / inflation synthetic series, dates as YYYY-MM-DD.
	Start        string             `yaml:"start,omitempty" toml:"start" json:"start,omitempty"`
	End          string             `yaml:"end,omitempty" toml:"end" json:"end,omitempty"`
	AnnualReturn float64            `yaml:"annual_return,omitempty" toml:"annual_return" json:"annual_return,omitempty"`
	YearlyRates  map[string]float64 `yaml:"yearly_rates,omitempty" toml:"yearly_rates" json:"yearly_rates,omitempty"`

	Allocation    float64 `yaml:"allocation" toml:"allocation" json:"allocation"`
	EndAllocation float64 `yaml:"end_allocation,omitempty" toml:"end_allocation" json:"end_allocation,omitempty"`
}

// DataConfig tunes the price sources.
type DataConfig struct {
	MFAPIBaseURL string `yaml:"mfapi_base_url,omitempty" toml:"mfapi_base_url" json:"mfapi_base_url,omitempty"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	dir := filepath.Dir(path)

	// If preset_file is set, load it and merge in any explicit overrides.
	if c.PresetFile != "" {
		preset, err := LoadUnchecked(resolvePath(dir, c.PresetFile))
		if err != nil {
			return nil, fmt.Errorf("preset_file: %w", err)
		}
		c.Simulation = MergeSimulation(preset.Simulation, c.Simulation)
		if len(c.Portfolios) == 0 {
			c.Portfolios = preset.Portfolios
		}
		if c.Data.MFAPIBaseURL == "" {
			c.Data.MFAPIBaseURL = preset.Data.MFAPIBaseURL
		}
	}

	// Files are relative to the config that names them.
	for i := range c.Portfolios {
		for j := range c.Portfolios[i].Instruments {
			inst := &c.Portfolios[i].Instruments[j]
			if inst.File != "" {
				inst.File = resolvePath(dir, inst.File)
			}
		}
	}
	return c, nil
}

// Parse decodes raw in the given format: "yaml", "toml" or "json".
func Parse(raw []byte, format string) (*Config, error) {
	var c Config
	var err error
	switch format {
	case "toml":
		_, err = toml.Decode(string(raw), &c)
	case "json":
		err = json.Unmarshal(raw, &c)
	default:
		err = yaml.Unmarshal(raw, &c)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

// Prefer interpreting relative paths as relative to the config file directory,
// but fall back to the provided path (relative to cwd) if that doesn't exist.
func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

// ApplyDefaults fills fields a concise config may leave out.
func (c *Config) ApplyDefaults() {
	if c.Simulation.Mode == "" {
		c.Simulation.Mode = string(model.ModeSIP)
	}
	for i := range c.Portfolios {
		p := &c.Portfolios[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("portfolio-%d", i+1)
		}
		for j := range p.Instruments {
			inst := &p.Instruments[j]
			if inst.Source == "" {
				inst.Source = inferSource(*inst)
			}
			if inst.Name == "" {
				inst.Name = inst.defaultName()
			}
		}
	}
}

func inferSource(inst InstrumentConfig) string {
	switch {
	case inst.Code != "":
		return SourceMFAPI
	case strings.EqualFold(filepath.Ext(inst.File), ".json"):
		return SourceJSON
	case inst.File != "":
		return SourceCSV
	case len(inst.YearlyRates) > 0:
		return SourceInflation
	default:
		return SourceFixed
	}
}

func (inst InstrumentConfig) defaultName() string {
	switch {
	case inst.Code != "":
		return inst.Code
	case inst.File != "":
		return strings.TrimSuffix(filepath.Base(inst.File), filepath.Ext(inst.File))
	case inst.Source == SourceFixed:
		return fmt.Sprintf("fixed-%g%%", inst.AnnualReturn)
	default:
		return inst.Source
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.Portfolios) == 0 {
		return errors.New("at least one portfolio is required")
	}
	seen := map[string]bool{}
	for i, p := range c.Portfolios {
		if p.Name == "" {
			return fmt.Errorf("portfolios[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate portfolio name %q", p.Name)
		}
		seen[p.Name] = true
		if len(p.Instruments) == 0 {
			return fmt.Errorf("portfolio %q: at least one instrument is required", p.Name)
		}
		for j, inst := range p.Instruments {
			if err := inst.validate(); err != nil {
				return fmt.Errorf("portfolio %q instruments[%d]: %w", p.Name, j, err)
			}
		}
		if err := c.ToModel(p).Validate(); err != nil {
			return fmt.Errorf("portfolio %q config invalid: %w", p.Name, err)
		}
	}
	return nil
}

func (inst InstrumentConfig) validate() error {
	switch inst.Source {
	case SourceCSV, SourceJSON:
		if inst.File == "" {
			return fmt.Errorf("source %s requires file", inst.Source)
		}
	case SourceMFAPI:
		if inst.Code == "" {
			return errors.New("source mfapi requires code")
		}
	case SourceFixed, SourceInflation:
		if inst.Start == "" || inst.End == "" {
			return fmt.Errorf("source %s requires start and end", inst.Source)
		}
		if _, err := inst.Rates(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown source %q", inst.Source)
	}
	return nil
}

// Rates parses YearlyRates keys as calendar years.
func (inst InstrumentConfig) Rates() (map[int]float64, error) {
	out := make(map[int]float64, len(inst.YearlyRates))
	for k, v := range inst.YearlyRates {
		y, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("yearly_rates: bad year %q", k)
		}
		out[y] = v
	}
	return out, nil
}

// ToModel builds the engine configuration of one portfolio.
func (c *Config) ToModel(p PortfolioConfig) model.SimulationConfig {
	s := c.Simulation
	out := model.SimulationConfig{
		Mode:                      model.Mode(s.Mode),
		WindowYears:               s.WindowYears,
		RebalanceEnabled:          s.RebalanceEnabled,
		RebalanceThresholdPercent: s.RebalanceThreshold,
		StepUpEnabled:             s.StepUpEnabled,
		StepUpAnnualPercent:       s.StepUpPercent,
		ContributionAmount:        s.ContributionAmount,
		TransitionEnabled:         s.TransitionEnabled,
		TransitionYears:           s.TransitionYears,
	}
	for _, inst := range p.Instruments {
		out.StartAllocationPercent = append(out.StartAllocationPercent, inst.Allocation)
		if s.TransitionEnabled {
			out.EndAllocationPercent = append(out.EndAllocationPercent, inst.EndAllocation)
		}
	}
	return out
}

// Portfolio returns the portfolio called name.
func (c *Config) Portfolio(name string) (PortfolioConfig, bool) {
	for _, p := range c.Portfolios {
		if p.Name == name {
			return p, true
		}
	}
	return PortfolioConfig{}, false
}

// MergeSimulation overlays non-zero fields from override onto base.
// This is used when loading a preset file and then applying overrides from the config or request.
func MergeSimulation(base, override SimulationConfig) SimulationConfig {
	out := base
	if override.Mode != "" {
		out.Mode = override.Mode
	}
	if override.WindowYears != 0 {
		out.WindowYears = override.WindowYears
	}
	if override.ContributionAmount != 0 {
		out.ContributionAmount = override.ContributionAmount
	}
	// Flags can only be switched on by an override.
	if override.RebalanceEnabled {
		out.RebalanceEnabled = true
	}
	if override.RebalanceThreshold != 0 {
		out.RebalanceThreshold = override.RebalanceThreshold
	}
	if override.StepUpEnabled {
		out.StepUpEnabled = true
	}
	if override.StepUpPercent != 0 {
		out.StepUpPercent = override.StepUpPercent
	}
	if override.TransitionEnabled {
		out.TransitionEnabled = true
	}
	if override.TransitionYears != 0 {
		out.TransitionYears = override.TransitionYears
	}
	return out
}

// Preset is a named configuration found in a preset directory.
type Preset struct {
	Name   string  `json:"name"`
	File   string  `json:"file"`
	Config *Config `json:"config"`
}

// ListPresets loads every .yaml, .yml, .toml and .json file in dir. Files
// that fail to parse are skipped and reported in the returned error list.
func ListPresets(dir string) ([]Preset, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{err}
	}
	var out []Preset
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".toml", ".json":
		default:
			continue
		}
		path := filepath.Join(dir, e.Name())
		c, err := LoadUnchecked(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		name := c.Name
		if name == "" {
			name = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		out = append(out, Preset{Name: name, File: e.Name(), Config: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, errs
}
