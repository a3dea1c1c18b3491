package config

import (
	"fmt"
	"strings"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetInput() (*InputData, error)
	GetAnalysis() (*AnalysisData, error)
	GetOutput() (*OutputData, error)
	GetServer() (*ServerData, error)

	IsReadOnly() bool
	Close() error
}

// Compatibility presets
const (
	CompatLegacy    = "legacy"
	CompatCorrected = "corrected"
)

// Day/night classifiers
const (
	ClassifierClock = "clock"
	ClassifierSolar = "solar"
)

// Output formats
const (
	FormatPNG  = "png"
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Input    InputData    `json:"input"`
	Analysis AnalysisData `json:"analysis"`
	Output   OutputData   `json:"output"`
	Server   *ServerData  `json:"server,omitempty"`
	Log      LogData      `json:"log"`
}

// InputData names the AERONET export to read
type InputData struct {
	File      string `json:"file"`
	Delimiter string `json:"delimiter,omitempty"`
}

// AnalysisData controls filtering, aggregation and fitting
type AnalysisData struct {
	Compatibility string    `json:"compatibility"`
	Classifier    string    `json:"classifier"`
	Timezone      string    `json:"timezone,omitempty"`
	UTCOffset     int       `json:"utc_offset,omitempty"`
	MonthStart    string    `json:"month_start,omitempty"`
	MonthEnd      string    `json:"month_end,omitempty"`
	Year          int       `json:"year,omitempty"`
	CurrentMonth  bool      `json:"current_month,omitempty"`
	Fit           bool      `json:"fit"`
	Gaussian      bool      `json:"gaussian,omitempty"`
	Site          *SiteData `json:"site,omitempty"`
}

// SiteData overrides the station coordinates found in the export
type SiteData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OutputData controls where and how plots and exports are written
type OutputData struct {
	Directory string   `json:"directory"`
	Formats   []string `json:"formats"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
}

// ServerData configures the local REST server
type ServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
	// DataDir, when set, lets clients reload any file below it. Otherwise
	// only the configured input file can be reloaded.
	DataDir string `json:"data_dir,omitempty"`
}

// LogData configures logging
type LogData struct {
	Debug      bool   `json:"debug,omitempty"`
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

// Defaults
const (
	DefaultDelimiter  = ","
	DefaultOutputDir  = "."
	DefaultWidth      = 1280
	DefaultHeight     = 720
	DefaultPort       = 8150
	DefaultListenAddr = "127.0.0.1"
	DefaultLogSizeMB  = 10
)

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *ConfigData {
	c := &ConfigData{Analysis: AnalysisData{Fit: true}}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields with their defaults
func (c *ConfigData) ApplyDefaults() {
	if c.Input.Delimiter == "" {
		c.Input.Delimiter = DefaultDelimiter
	}
	if c.Analysis.Compatibility == "" {
		c.Analysis.Compatibility = CompatLegacy
	}
	if c.Analysis.Classifier == "" {
		c.Analysis.Classifier = ClassifierClock
	}
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{FormatPNG}
	}
	if c.Output.Width == 0 {
		c.Output.Width = DefaultWidth
	}
	if c.Output.Height == 0 {
		c.Output.Height = DefaultHeight
	}
	if c.Server != nil {
		if c.Server.Port == 0 {
			c.Server.Port = DefaultPort
		}
		if c.Server.ListenAddr == "" {
			c.Server.ListenAddr = DefaultListenAddr
		}
	}
	if c.Log.File != "" && c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = DefaultLogSizeMB
	}
}

// Validate checks the enumerated settings
func (c *ConfigData) Validate() error {
	switch c.Analysis.Compatibility {
	case CompatLegacy, CompatCorrected:
	default:
		return fmt.Errorf("invalid compatibility %q: must be %q or %q", c.Analysis.Compatibility, CompatLegacy, CompatCorrected)
	}

	switch c.Analysis.Classifier {
	case ClassifierClock, ClassifierSolar:
	default:
		return fmt.Errorf("invalid classifier %q: must be %q or %q", c.Analysis.Classifier, ClassifierClock, ClassifierSolar)
	}

	if c.Analysis.UTCOffset < -23 || c.Analysis.UTCOffset > 23 {
		return fmt.Errorf("utc offset %d out of range [-23, 23]", c.Analysis.UTCOffset)
	}

	for _, f := range c.Output.Formats {
		switch strings.ToLower(f) {
		case FormatPNG, FormatCSV, FormatJSON, FormatXLSX:
		default:
			return fmt.Errorf("unknown output format %q", f)
		}
	}

	if c.Server != nil && (c.Server.Cert == "") != (c.Server.Key == "") {
		return fmt.Errorf("server cert and key must be set together")
	}
	return nil
}
