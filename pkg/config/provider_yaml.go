package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig ConfigYAML
	if err := yaml.UnmarshalStrict(cfgFile, &yamlConfig); err != nil {
		return nil, err
	}

	config := yamlConfig.toData()
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config, nil
}

// GetInput returns the input section
func (y *YAMLProvider) GetInput() (*InputData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Input, nil
}

// GetAnalysis returns the analysis section
func (y *YAMLProvider) GetAnalysis() (*AnalysisData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Analysis, nil
}

// GetOutput returns the output section
func (y *YAMLProvider) GetOutput() (*OutputData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Output, nil
}

// GetServer returns the server section, nil when not configured
func (y *YAMLProvider) GetServer() (*ServerData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return c.Server, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with the file's kebab-case keys
type ConfigYAML struct {
	Input    InputYAML    `yaml:"input"`
	Analysis AnalysisYAML `yaml:"analysis,omitempty"`
	Output   OutputYAML   `yaml:"output,omitempty"`
	Server   *ServerYAML  `yaml:"server,omitempty"`
	Log      LogYAML      `yaml:"log,omitempty"`
}

type InputYAML struct {
	File      string `yaml:"file"`
	Delimiter string `yaml:"delimiter,omitempty"`
}

type AnalysisYAML struct {
	Compatibility string    `yaml:"compatibility,omitempty"`
	Classifier    string    `yaml:"classifier,omitempty"`
	Timezone      string    `yaml:"timezone,omitempty"`
	UTCOffset     int       `yaml:"utc-offset,omitempty"`
	MonthStart    string    `yaml:"month-start,omitempty"`
	MonthEnd      string    `yaml:"month-end,omitempty"`
	Year          int       `yaml:"year,omitempty"`
	CurrentMonth  bool      `yaml:"current-month,omitempty"`
	Fit           *bool     `yaml:"fit,omitempty"`
	Gaussian      bool      `yaml:"gaussian,omitempty"`
	Site          *SiteYAML `yaml:"site,omitempty"`
}

type SiteYAML struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type OutputYAML struct {
	Directory string   `yaml:"directory,omitempty"`
	Formats   []string `yaml:"formats,omitempty"`
	Width     int      `yaml:"width,omitempty"`
	Height    int      `yaml:"height,omitempty"`
}

type ServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
	DataDir    string `yaml:"data-dir,omitempty"`
}

type LogYAML struct {
	Debug      bool   `yaml:"debug,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max-size-mb,omitempty"`
	MaxBackups int    `yaml:"max-backups,omitempty"`
	MaxAgeDays int    `yaml:"max-age-days,omitempty"`
}

func (c ConfigYAML) toData() *ConfigData {
	config := &ConfigData{
		Input: InputData{
			File:      c.Input.File,
			Delimiter: c.Input.Delimiter,
		},
		Analysis: AnalysisData{
			Compatibility: c.Analysis.Compatibility,
			Classifier:    c.Analysis.Classifier,
			Timezone:      c.Analysis.Timezone,
			UTCOffset:     c.Analysis.UTCOffset,
			MonthStart:    c.Analysis.MonthStart,
			MonthEnd:      c.Analysis.MonthEnd,
			Year:          c.Analysis.Year,
			CurrentMonth:  c.Analysis.CurrentMonth,
			Fit:           true,
			Gaussian:      c.Analysis.Gaussian,
		},
		Output: OutputData{
			Directory: c.Output.Directory,
			Formats:   c.Output.Formats,
			Width:     c.Output.Width,
			Height:    c.Output.Height,
		},
		Log: LogData{
			Debug:      c.Log.Debug,
			File:       c.Log.File,
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAgeDays: c.Log.MaxAgeDays,
		},
	}

	if c.Analysis.Fit != nil {
		config.Analysis.Fit = *c.Analysis.Fit
	}
	if c.Analysis.Site != nil {
		config.Analysis.Site = &SiteData{
			Latitude:  c.Analysis.Site.Latitude,
			Longitude: c.Analysis.Site.Longitude,
		}
	}
	if c.Server != nil {
		config.Server = &ServerData{
			Cert:       c.Server.Cert,
			Key:        c.Server.Key,
			Port:       c.Server.Port,
			ListenAddr: c.Server.ListenAddr,
			DataDir:    c.Server.DataDir,
		}
	}
	return config
}
