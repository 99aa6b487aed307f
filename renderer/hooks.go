package renderer

import (
	"context"

	"github.com/rgonek/fider-markdown/schemes"
)

// LinkHook can rewrite link destinations before the scheme policy is applied.
type LinkHook func(ctx context.Context, in LinkInput) (LinkOutput, error)

// ImageHook can rewrite image sources before the scheme policy is applied.
type ImageHook func(ctx context.Context, in ImageInput) (ImageOutput, error)

// LinkInput describes a markdown link being rendered.
type LinkInput struct {
	Target string
	Title  string
	Text   string
}

// LinkOutput contains hook-provided link overrides.
type LinkOutput struct {
	Target string
	// TextOnly renders the label without an anchor element.
	TextOnly bool
	Handled  bool
}

// ImageInput describes a markdown image being rendered.
type ImageInput struct {
	Target string
	// Key is set when the image references an internal attachment.
	Key string
	Alt string
}

// ImageOutput contains hook-provided image overrides.
type ImageOutput struct {
	Src     string
	Handled bool
}

// Recorder observes render activity. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveRender(mode Mode)
	ObserveTarget(kind TargetKind, outcome string)
}

// TargetKind distinguishes link and image destinations for a Recorder.
type TargetKind string

const (
	// TargetLink is the destination of an anchor.
	TargetLink TargetKind = "link"
	// TargetImage is the source of an image.
	TargetImage TargetKind = "image"
)

// OutcomeInternal is reported for internal attachment images, which bypass
// the scheme policy.
const OutcomeInternal = "internal"

func outcomeOf(v schemes.Verdict) string {
	return v.String()
}
