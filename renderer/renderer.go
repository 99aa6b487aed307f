package renderer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgonek/fider-markdown/document"
	"github.com/rgonek/fider-markdown/mdparser"
	"github.com/rgonek/fider-markdown/schemes"
)

// Mode selects the output projection of a render.
type Mode string

const (
	// ModeFull renders the complete sanitized HTML fragment.
	ModeFull Mode = "full"
	// ModeSimple renders HTML with headings demoted to paragraphs.
	ModeSimple Mode = "simple"
	// ModePlainText renders human-readable text without markup.
	ModePlainText Mode = "plain"
)

// ParseMode converts a mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case ModeFull:
		return ModeFull, nil
	case ModeSimple:
		return ModeSimple, nil
	case ModePlainText, "plaintext", "text":
		return ModePlainText, nil
	default:
		return "", fmt.Errorf("unknown mode %q (allowed: full, simple, plain)", name)
	}
}

// Renderer renders markdown documents. A Renderer is immutable after New and
// safe for concurrent use.
type Renderer struct {
	config Config
	parser *mdparser.Parser
}

type state struct {
	ctx      context.Context
	config   Config
	mode     Mode
	warnings []Warning
	block    blockState

	reportedPolicyErr bool
}

var defaultRenderer = mustNew(Config{})

// New creates a Renderer with the given config.
func New(config Config) (*Renderer, error) {
	cfg := config.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	parser, err := mdparser.New(cfg.Parser)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		config: cfg,
		parser: parser,
	}, nil
}

func mustNew(config Config) *Renderer {
	r, err := New(config)
	if err != nil {
		panic(err)
	}
	return r
}

// Full renders markdown to HTML with the default configuration and the given
// scheme allow-list.
func Full(markdown string, allowed schemes.Provider) string {
	return defaultRenderer.withSchemes(allowed).Full(markdown)
}

// Simple renders markdown to HTML with headings demoted to paragraphs.
func Simple(markdown string, allowed schemes.Provider) string {
	return defaultRenderer.withSchemes(allowed).Simple(markdown)
}

// PlainText renders markdown to plain text.
func PlainText(markdown string) string {
	return defaultRenderer.PlainText(markdown)
}

func (r *Renderer) withSchemes(allowed schemes.Provider) *Renderer {
	clone := *r
	clone.config.Schemes = allowed
	if allowed == nil {
		clone.config.Schemes = schemes.Static("")
	}
	return &clone
}

// Full renders markdown to a sanitized HTML fragment.
func (r *Renderer) Full(markdown string) string {
	return r.mustRender(markdown, ModeFull)
}

// Simple renders markdown to a sanitized HTML fragment without headings.
func (r *Renderer) Simple(markdown string) string {
	return r.mustRender(markdown, ModeSimple)
}

// PlainText renders markdown to a single line of text.
func (r *Renderer) PlainText(markdown string) string {
	return r.mustRender(markdown, ModePlainText)
}

func (r *Renderer) mustRender(markdown string, mode Mode) string {
	result, err := r.Render(context.Background(), markdown, mode)
	if err != nil {
		// Unreachable: the mode is known and the context never ends.
		return ""
	}
	return result.Output
}

// Render renders markdown in the requested mode. Document content never
// causes an error; only an unknown mode or a cancelled context does.
func (r *Renderer) Render(ctx context.Context, markdown string, mode Mode) (Result, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	return r.RenderDocument(ctx, r.parser.Parse(markdown), mode)
}

// RenderDocument renders an already parsed document.
func (r *Renderer) RenderDocument(ctx context.Context, doc document.Doc, mode Mode) (Result, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return Result{}, err
	}

	s := &state{
		ctx:    ctx,
		config: r.config,
		mode:   mode,
	}
	if r.config.Recorder != nil {
		r.config.Recorder.ObserveRender(mode)
	}

	output, err := s.renderDocument(doc)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Output:   output,
		Warnings: s.warnings,
	}, nil
}

func (s *state) renderDocument(doc document.Doc) (string, error) {
	if s.mode == ModePlainText {
		return s.renderPlainDocument(doc)
	}
	return s.renderHTMLDocument(doc)
}

func (s *state) checkContext() error {
	if s.ctx == nil {
		return nil
	}
	return s.ctx.Err()
}

func (s *state) addWarning(warnType WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
}

// policy loads the current allow-list. The provider is consulted on every
// call so that a swapped value applies to the very next target.
func (s *state) policy() *schemes.Policy {
	p := schemes.Load(s.config.Schemes)
	if err := p.Err(); err != nil && !s.reportedPolicyErr {
		s.reportedPolicyErr = true
		s.addWarning(WarningInvalidSchemePattern, "", err.Error())
	}
	return p
}

func (s *state) observeTarget(kind TargetKind, outcome string) {
	if s.config.Recorder != nil {
		s.config.Recorder.ObserveTarget(kind, outcome)
	}
}
