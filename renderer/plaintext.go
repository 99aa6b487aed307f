package renderer

import (
	"strings"

	"github.com/rgonek/fider-markdown/document"
)

// renderPlainDocument strips all markup. Blocks and line breaks collapse to
// single spaces, links and images contribute only their label or alt text,
// and nothing is escaped.
func (s *state) renderPlainDocument(doc document.Doc) (string, error) {
	parts := make([]string, 0, len(doc.Content))
	for _, node := range doc.Content {
		if err := s.checkContext(); err != nil {
			return "", err
		}
		if text := strings.TrimSpace(plainBlock(node)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

func plainBlock(node document.Node) string {
	switch node.Kind {
	case document.KindParagraph, document.KindHeading:
		return plainInlines(node.Content)
	case document.KindCodeBlock, document.KindHTMLBlock:
		return strings.Join(strings.Fields(node.Text), " ")
	case document.KindThematicBreak:
		return ""
	}

	if !node.IsBlock() {
		return plainInlines([]document.Node{node})
	}

	parts := make([]string, 0, len(node.Content))
	for _, child := range node.Content {
		if text := strings.TrimSpace(plainBlock(child)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func plainInlines(nodes []document.Node) string {
	var sb strings.Builder
	for _, node := range nodes {
		document.Walk(node, func(n document.Node) bool {
			switch n.Kind {
			case document.KindText, document.KindCode, document.KindRawHTML:
				sb.WriteString(n.Text)
			case document.KindLineBreak:
				sb.WriteString(" ")
			}
			return true
		})
	}
	return sb.String()
}
