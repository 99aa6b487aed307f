package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rgonek/fider-markdown/mdparser"
	"github.com/rgonek/fider-markdown/schemes"
	"gopkg.in/yaml.v3"
)

// RawHTMLMode controls how raw HTML embedded in markdown is rendered.
type RawHTMLMode string

const (
	// RawHTMLEscape renders raw HTML as visible, escaped text.
	RawHTMLEscape RawHTMLMode = "escape"
	// RawHTMLSanitize keeps raw HTML that passes a user-generated-content
	// allow-list and drops everything else.
	RawHTMLSanitize RawHTMLMode = "sanitize"
)

// Config holds renderer configuration.
type Config struct {
	LinkClass        string          `json:"linkClass,omitempty" yaml:"linkClass,omitempty"`
	LinkRel          string          `json:"linkRel,omitempty" yaml:"linkRel,omitempty"`
	LinkTarget       string          `json:"linkTarget,omitempty" yaml:"linkTarget,omitempty"`
	InlineImageClass string          `json:"inlineImageClass,omitempty" yaml:"inlineImageClass,omitempty"`
	ImageBasePath    string          `json:"imageBasePath,omitempty" yaml:"imageBasePath,omitempty"`
	RawHTML          RawHTMLMode     `json:"rawHTML,omitempty" yaml:"rawHTML,omitempty"`
	AllowedSchemes   string          `json:"allowedSchemes,omitempty" yaml:"allowedSchemes,omitempty"`
	Parser           mdparser.Config `json:"parser,omitempty" yaml:"parser,omitempty"`

	// Schemes supplies the scheme allow-list at render time. When nil,
	// AllowedSchemes is used as a static list.
	Schemes   schemes.Provider `json:"-" yaml:"-"`
	LinkHook  LinkHook         `json:"-" yaml:"-"`
	ImageHook ImageHook        `json:"-" yaml:"-"`
	Recorder  Recorder         `json:"-" yaml:"-"`
}

func (c Config) applyDefaults() Config {
	if c.LinkClass == "" {
		c.LinkClass = "text-link"
	}
	if c.LinkRel == "" {
		c.LinkRel = "noopener nofollow"
	}
	if c.LinkTarget == "" {
		c.LinkTarget = "_blank"
	}
	if c.InlineImageClass == "" {
		c.InlineImageClass = "fider-inline-image"
	}
	if c.ImageBasePath == "" {
		c.ImageBasePath = "/static/images/"
	}
	if !strings.HasSuffix(c.ImageBasePath, "/") {
		c.ImageBasePath += "/"
	}
	if c.RawHTML == "" {
		c.RawHTML = RawHTMLEscape
	}
	if c.Schemes == nil {
		c.Schemes = schemes.Static(c.AllowedSchemes)
	}

	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.RawHTML != RawHTMLEscape && c.RawHTML != RawHTMLSanitize {
		return fmt.Errorf("invalid rawHTML mode %q", c.RawHTML)
	}
	for name, value := range map[string]string{
		"linkClass":        c.LinkClass,
		"linkRel":          c.LinkRel,
		"linkTarget":       c.LinkTarget,
		"inlineImageClass": c.InlineImageClass,
		"imageBasePath":    c.ImageBasePath,
	} {
		if strings.ContainsAny(value, "\"<>&") {
			return fmt.Errorf("%s %q must not contain HTML special characters", name, value)
		}
	}
	if !strings.HasPrefix(c.ImageBasePath, "/") && !strings.HasPrefix(c.ImageBasePath, "https://") {
		return fmt.Errorf("imageBasePath %q must be an absolute path or https URL", c.ImageBasePath)
	}
	if _, err := schemes.Compile(c.AllowedSchemes); err != nil {
		return fmt.Errorf("invalid allowedSchemes: %w", err)
	}
	return c.Parser.Validate()
}

// LoadConfig reads a YAML renderer configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes a YAML renderer configuration. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func DecodeConfig(r io.Reader) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}
