package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "~/.trusttrade.yaml"
)

var (
	// Default is the configuration used for any field missing from ~/.trusttrade.yaml
	Default = Config{
		APIBaseURL:       "http://localhost:5000/api",
		PageSize:         12,
		RequestTimeout:   15 * time.Second,
		SnackbarDuration: 4 * time.Second,
		CacheBust:        true,
		LogLevel:         "info",
		GlamourStyle:     "auto",
		Categories:       []string{"Vehicles", "Electronics", "Machinery", "Real Estate", "Furniture", "Other"},
		Conditions:       []string{"New", "Like New", "Good", "Fair", "Poor"},
	}
)

type Config struct {
	APIBaseURL       string        `yaml:"apiBaseURL" validate:"required,url"`
	Token            string        `yaml:"token,omitempty" validate:""`
	PageSize         int           `yaml:"pageSize" validate:"required,min=1,max=100"`
	RequestTimeout   time.Duration `yaml:"requestTimeout" validate:"required"`
	SnackbarDuration time.Duration `yaml:"snackbarDuration" validate:"required"`
	CacheBust        bool          `yaml:"cacheBust"`
	LogLevel         string        `yaml:"logLevel" validate:"required,oneof=debug info warn error"`
	LogFile          string        `yaml:"logFile,omitempty" validate:""`
	InterestsFile    string        `yaml:"interestsFile,omitempty" validate:""`
	GlamourStyle     string        `yaml:"glamourStyle" validate:"required,oneof=auto dark light notty ascii dracula pink tokyo-night"`
	Categories       []string      `yaml:"categories" validate:"unique"`
	Conditions       []string      `yaml:"conditions" validate:"unique"`
}

func NewFromReader(r io.Reader) (*Config, error) {
	c := Default

	bytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read Config: %w", err)
	}
	err = yaml.Unmarshal(bytes, &c)
	if err != nil {
		return nil, fmt.Errorf("unable to unmarshal Config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the configuration at path. A missing file is not an error; the
// defaults are returned instead.
func Load(path string) (*Config, error) {
	expandedPath, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expandedPath)
	if os.IsNotExist(err) {
		c := Default
		return &c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", expandedPath, err)
	}
	defer f.Close()

	cfg, err := NewFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("unable to load configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	validate := validator.New()
	err := validate.Struct(*c)
	if err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}
