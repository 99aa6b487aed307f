package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgonek/fider-markdown/document"
)

func (s *state) applyLinkHook(node document.Node) (LinkOutput, bool) {
	if s.config.LinkHook == nil {
		return LinkOutput{}, false
	}

	output, err := s.config.LinkHook(s.ctx, LinkInput{
		Target: node.Target,
		Title:  node.Title,
		Text:   plainInlines(node.Content),
	})
	if err == nil && output.Handled {
		err = validateLinkOutput(output)
	}
	if err != nil {
		s.addWarning(WarningHookFailed, string(document.KindLink), fmt.Sprintf("link hook failed for %q: %v; using default rendering", node.Target, err))
		return LinkOutput{}, false
	}
	if !output.Handled {
		return LinkOutput{}, false
	}

	output.Target = strings.TrimSpace(output.Target)
	return output, true
}

func (s *state) applyImageHook(node document.Node, alt string) (ImageOutput, bool) {
	if s.config.ImageHook == nil {
		return ImageOutput{}, false
	}

	output, err := s.config.ImageHook(s.ctx, ImageInput{
		Target: node.Target,
		Key:    node.Key,
		Alt:    alt,
	})
	if err == nil && output.Handled {
		err = validateImageOutput(output)
	}
	if err != nil {
		reference := node.Key
		if reference == "" {
			reference = node.Target
		}
		s.addWarning(WarningHookFailed, string(document.KindImage), fmt.Sprintf("image hook failed for %q: %v; using default rendering", reference, err))
		return ImageOutput{}, false
	}
	if !output.Handled {
		return ImageOutput{}, false
	}

	output.Src = strings.TrimSpace(output.Src)
	return output, true
}

func validateLinkOutput(output LinkOutput) error {
	if output.TextOnly {
		return nil
	}
	if strings.TrimSpace(output.Target) == "" {
		return errors.New("handled link output requires a non-empty target unless textOnly is true")
	}
	return nil
}

func validateImageOutput(output ImageOutput) error {
	if strings.TrimSpace(output.Src) == "" {
		return errors.New("handled image output requires a non-empty src")
	}
	return nil
}
