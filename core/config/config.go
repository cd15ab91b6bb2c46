package config

import (
	_ "embed"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"

	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

type Configuration struct {
	// configurationDir is the directory the configuration was loaded from,
	// empty for the built-in defaults.
	configurationDir string

	Prompt        string `json:"prompt"`
	MaxLineLength int    `json:"max_line_length" validate:"gte=2,lte=65536"`
	MaxArgs       int    `json:"max_args" validate:"gte=2,lte=1024"`
	HistoryFile   string `json:"history_file"`
	Color         string `json:"color" validate:"oneof=always auto never"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// HistoryPath returns the path of the history file, relative paths are
// resolved against the configuration directory. It's empty if history is
// disabled.
func (c *Configuration) HistoryPath() string {
	switch {
	case c.HistoryFile == "":
		return ""
	case filepath.IsAbs(c.HistoryFile), c.configurationDir == "":
		return c.HistoryFile
	default:
		return filepath.Join(c.configurationDir, c.HistoryFile)
	}
}

// Default returns the built-in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
