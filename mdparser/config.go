package mdparser

import (
	"fmt"
	"strings"
)

// InternalImageScheme marks image destinations that reference attachments
// hosted by the application itself.
const InternalImageScheme = "fider-image:"

// Config configures markdown parsing.
type Config struct {
	// Linkify turns bare URLs into links. Defaults to true.
	Linkify *bool `json:"linkify,omitempty" yaml:"linkify,omitempty"`
	// ImageScheme overrides the internal attachment scheme prefix.
	ImageScheme string `json:"imageScheme,omitempty" yaml:"imageScheme,omitempty"`
}

func (c Config) applyDefaults() Config {
	if c.Linkify == nil {
		enabled := true
		c.Linkify = &enabled
	}
	if c.ImageScheme == "" {
		c.ImageScheme = InternalImageScheme
	}
	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.ImageScheme != "" && !strings.HasSuffix(c.ImageScheme, ":") {
		return fmt.Errorf("invalid imageScheme %q: must end with ':'", c.ImageScheme)
	}
	if strings.ContainsAny(c.ImageScheme, " \t\r\n/") {
		return fmt.Errorf("invalid imageScheme %q: must not contain whitespace or '/'", c.ImageScheme)
	}
	return nil
}
