package mdparser

import (
	"github.com/rgonek/fider-markdown/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

// Parser turns markdown source into a render-agnostic document tree.
// A Parser is immutable after New and safe for concurrent use.
type Parser struct {
	config Config
	md     goldmark.Markdown
}

type state struct {
	config Config
	source []byte
}

var defaultParser = mustNew(Config{})

// New creates a Parser with the given config.
func New(config Config) (*Parser, error) {
	cfg := config.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	extensions := []goldmark.Extender{extension.Strikethrough}
	if *cfg.Linkify {
		extensions = append(extensions, extension.Linkify)
	}

	return &Parser{
		config: cfg,
		md: goldmark.New(
			goldmark.WithExtensions(extensions...),
		),
	}, nil
}

func mustNew(config Config) *Parser {
	p, err := New(config)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse parses markdown with the default parser.
func Parse(markdown string) document.Doc {
	return defaultParser.Parse(markdown)
}

// Parse converts markdown into a document tree. It never fails: input that
// does not form valid markdown constructs is kept as literal text.
func (p *Parser) Parse(markdown string) document.Doc {
	s := &state{
		config: p.config,
		source: []byte(normalizeInput(markdown)),
	}

	root := p.md.Parser().Parse(gmtext.NewReader(s.source))
	return s.convertDocument(root)
}
