package mdparser

import (
	"strings"

	"github.com/rgonek/fider-markdown/document"
	"github.com/yuin/goldmark/ast"
)

func (s *state) convertParagraphNode(node ast.Node) (document.Node, bool) {
	content := s.convertInlineChildren(node)
	if len(content) == 0 {
		return document.Node{}, false
	}

	return document.Node{
		Kind:    document.KindParagraph,
		Content: content,
	}, true
}

func (s *state) convertHeadingNode(node *ast.Heading) (document.Node, bool) {
	level := node.Level
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}

	return document.Node{
		Kind:    document.KindHeading,
		Level:   level,
		Content: s.convertInlineChildren(node),
	}, true
}

func (s *state) convertFencedCodeBlockNode(node *ast.FencedCodeBlock) (document.Node, bool) {
	codeBlock := document.Node{
		Kind: document.KindCodeBlock,
		Text: strings.TrimRight(s.linesValue(node), "\n"),
	}
	if node.Info != nil {
		info := strings.TrimSpace(string(node.Info.Segment.Value(s.source)))
		if fields := strings.Fields(info); len(fields) > 0 {
			codeBlock.Language = resolveText([]byte(fields[0]))
		}
	}

	return codeBlock, true
}

func (s *state) convertCodeBlockNode(node *ast.CodeBlock) (document.Node, bool) {
	return document.Node{
		Kind: document.KindCodeBlock,
		Text: strings.TrimRight(s.linesValue(node), "\n"),
	}, true
}

func (s *state) convertHTMLBlockNode(node *ast.HTMLBlock) (document.Node, bool) {
	value := s.linesValue(node)
	if node.HasClosure() {
		value += string(node.ClosureLine.Value(s.source))
	}
	value = strings.TrimRight(value, "\n")
	if strings.TrimSpace(value) == "" {
		return document.Node{}, false
	}

	return document.Node{
		Kind: document.KindHTMLBlock,
		Text: value,
	}, true
}
