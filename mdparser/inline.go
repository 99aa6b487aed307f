package mdparser

import (
	"bytes"
	"strings"

	"github.com/rgonek/fider-markdown/document"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

func (s *state) convertInlineChildren(parent ast.Node) []document.Node {
	var content []document.Node

	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		for _, node := range s.convertInlineNode(child) {
			content = appendInlineNode(content, node)
		}
	}

	return content
}

func (s *state) convertInlineNode(node ast.Node) []document.Node {
	switch typed := node.(type) {
	case *ast.Text:
		var content []document.Node
		value := typed.Value(s.source)
		lineBreak := typed.HardLineBreak() || typed.SoftLineBreak()
		if lineBreak {
			value = bytes.TrimRight(value, " \t")
		}

		textValue := string(value)
		if !typed.IsRaw() {
			textValue = resolveText(value)
		}
		if textValue != "" {
			content = append(content, newTextNode(textValue))
		}
		if lineBreak {
			content = append(content, document.Node{Kind: document.KindLineBreak})
		}
		return content

	case *ast.String:
		textValue := string(typed.Value)
		if !typed.IsCode() && !typed.IsRaw() {
			textValue = resolveText(typed.Value)
		}
		return []document.Node{newTextNode(textValue)}

	case *ast.CodeSpan:
		return []document.Node{{
			Kind: document.KindCode,
			Text: s.codeSpanValue(typed),
		}}

	case *ast.Emphasis:
		kind := document.KindEmphasis
		if typed.Level >= 2 {
			kind = document.KindStrong
		}
		return []document.Node{{
			Kind:    kind,
			Content: s.convertInlineChildren(typed),
		}}

	case *extast.Strikethrough:
		return []document.Node{{
			Kind:    document.KindStrike,
			Content: s.convertInlineChildren(typed),
		}}

	case *ast.Link:
		return []document.Node{{
			Kind:    document.KindLink,
			Target:  resolveText(typed.Destination),
			Title:   resolveText(typed.Title),
			Content: s.convertInlineChildren(typed),
		}}

	case *ast.Image:
		return []document.Node{s.convertImageNode(typed)}

	case *ast.AutoLink:
		target := string(typed.URL(s.source))
		if typed.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(target), "mailto:") {
			target = "mailto:" + target
		}
		return []document.Node{{
			Kind:    document.KindLink,
			Target:  target,
			Content: []document.Node{newTextNode(string(typed.Label(s.source)))},
		}}

	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < typed.Segments.Len(); i++ {
			segment := typed.Segments.At(i)
			sb.Write(segment.Value(s.source))
		}
		return []document.Node{{
			Kind: document.KindRawHTML,
			Text: sb.String(),
		}}

	default:
		if node.HasChildren() {
			return s.convertInlineChildren(node)
		}
		return nil
	}
}

func (s *state) convertImageNode(node *ast.Image) document.Node {
	destination := resolveText(node.Destination)
	image := document.Node{
		Kind:    document.KindImage,
		Target:  destination,
		Title:   resolveText(node.Title),
		Content: s.convertInlineChildren(node),
	}

	if key, ok := strings.CutPrefix(destination, s.config.ImageScheme); ok {
		key = strings.TrimSpace(key)
		if key != "" {
			image.Key = key
		}
	}

	return image
}

func (s *state) codeSpanValue(node *ast.CodeSpan) string {
	var sb strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		var value []byte
		switch typed := child.(type) {
		case *ast.Text:
			value = typed.Value(s.source)
		case *ast.String:
			value = typed.Value
		default:
			continue
		}
		if bytes.HasSuffix(value, []byte("\n")) {
			sb.Write(value[:len(value)-1])
			sb.WriteByte(' ')
			continue
		}
		sb.Write(value)
	}
	return sb.String()
}
