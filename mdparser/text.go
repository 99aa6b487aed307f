package mdparser

import (
	"strings"

	"github.com/rgonek/fider-markdown/document"
	"github.com/yuin/goldmark/util"
)

// normalizeInput replaces NUL characters and invalid UTF-8 sequences with
// U+FFFD before parsing.
func normalizeInput(markdown string) string {
	markdown = strings.ToValidUTF8(markdown, "\uFFFD")
	return strings.ReplaceAll(markdown, "\x00", "\uFFFD")
}

// resolveText removes backslash escapes and decodes entity references.
func resolveText(value []byte) string {
	if len(value) == 0 {
		return ""
	}
	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	value = util.ResolveEntityNames(value)
	return string(value)
}

func newTextNode(textValue string) document.Node {
	return document.Node{
		Kind: document.KindText,
		Text: textValue,
	}
}

func appendInlineNode(content []document.Node, next document.Node) []document.Node {
	if next.Kind == document.KindText && next.Text == "" {
		return content
	}

	if len(content) == 0 {
		return append(content, next)
	}

	last := &content[len(content)-1]
	if last.Kind == document.KindText && next.Kind == document.KindText {
		last.Text += next.Text
		return content
	}

	return append(content, next)
}
