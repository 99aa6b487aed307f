package renderer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rgonek/fider-markdown/mdparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.applyDefaults()

	assert.Equal(t, "text-link", cfg.LinkClass)
	assert.Equal(t, "noopener nofollow", cfg.LinkRel)
	assert.Equal(t, "_blank", cfg.LinkTarget)
	assert.Equal(t, "fider-inline-image", cfg.InlineImageClass)
	assert.Equal(t, "/static/images/", cfg.ImageBasePath)
	assert.Equal(t, RawHTMLEscape, cfg.RawHTML)
	require.NotNil(t, cfg.Schemes)
	assert.Equal(t, "", cfg.Schemes.Get())
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		err  string
	}{
		{name: "raw html mode", cfg: Config{RawHTML: "strip"}, err: "invalid rawHTML mode"},
		{name: "link class quote", cfg: Config{LinkClass: `a" onclick="x`}, err: "linkClass"},
		{name: "relative base path", cfg: Config{ImageBasePath: "static/images"}, err: "imageBasePath"},
		{name: "http base path", cfg: Config{ImageBasePath: "http://cdn.example/"}, err: "imageBasePath"},
		{name: "bad pattern", cfg: Config{AllowedSchemes: "^monero:\n("}, err: "invalid allowedSchemes"},
		{name: "image scheme", cfg: Config{Parser: mdparser.Config{ImageScheme: "attachment"}}, err: "imageScheme"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestConfigImageBasePath(t *testing.T) {
	r := newTestRenderer(t, Config{ImageBasePath: "https://cdn.example/img", InlineImageClass: "inline"})

	assert.Equal(t,
		`<p><img src="https://cdn.example/img/a.png" alt="" class="inline" data-bkey="a.png"></p>`,
		r.Full("![](fider-image:a.png)"),
	)
}

func TestConfigLinkAttributes(t *testing.T) {
	r := newTestRenderer(t, Config{LinkClass: "link", LinkRel: "nofollow", LinkTarget: "_self"})

	assert.Equal(t,
		`<p><a class="link" href="https://github.com" rel="nofollow" target="_self">GitHub</a></p>`,
		r.Full("[GitHub](https://github.com)"),
	)
}

func TestConfigAllowedSchemesWithoutProvider(t *testing.T) {
	r := newTestRenderer(t, Config{AllowedSchemes: "^monero:"})

	assert.Contains(t, r.Full("[m](monero:4abc)"), `href="monero:4abc"`)
}

func TestConfigCustomImageScheme(t *testing.T) {
	r := newTestRenderer(t, Config{Parser: mdparser.Config{ImageScheme: "attachment:"}})

	assert.Contains(t, r.Full("![](attachment:a.png)"), `data-bkey="a.png"`)
	assert.NotContains(t, r.Full("![](fider-image:a.png)"), "data-bkey")
}

func TestDecodeConfig(t *testing.T) {
	input := `
linkClass: link
rawHTML: sanitize
imageBasePath: /uploads
allowedSchemes: |
  ^monero:[48]
  ^bitcoin:(1|3|bc1)
parser:
  linkify: false
  imageScheme: "attachment:"
`
	cfg, err := DecodeConfig(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "link", cfg.LinkClass)
	assert.Equal(t, RawHTMLSanitize, cfg.RawHTML)
	assert.Equal(t, "/uploads", cfg.ImageBasePath)
	assert.Equal(t, "^monero:[48]\n^bitcoin:(1|3|bc1)\n", cfg.AllowedSchemes)
	require.NotNil(t, cfg.Parser.Linkify)
	assert.False(t, *cfg.Parser.Linkify)
	assert.Equal(t, "attachment:", cfg.Parser.ImageScheme)

	r := newTestRenderer(t, cfg)
	assert.Equal(t, fixtures[9].expectedFull, strings.ReplaceAll(r.Full(fixtures[9].input), `class="link"`, `class="text-link"`))
}

func TestDecodeConfigRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeConfig(strings.NewReader("linkClas: typo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "linkClas")
}

func TestDecodeConfigEmpty(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")
	require.NoError(t, os.WriteFile(path, []byte("linkTarget: _self\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "_self", cfg.LinkTarget)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
