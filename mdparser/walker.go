package mdparser

import (
	"strings"

	"github.com/rgonek/fider-markdown/document"
	"github.com/yuin/goldmark/ast"
)

func (s *state) convertDocument(root ast.Node) document.Doc {
	return document.Doc{
		Content: s.convertBlockChildren(root),
	}
}

func (s *state) convertBlockChildren(parent ast.Node) []document.Node {
	var content []document.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if converted, ok := s.convertBlockNode(child); ok {
			content = append(content, converted)
		}
	}
	return content
}

func (s *state) convertBlockNode(node ast.Node) (document.Node, bool) {
	switch typed := node.(type) {
	case *ast.Paragraph:
		return s.convertParagraphNode(typed)
	case *ast.TextBlock:
		return s.convertParagraphNode(typed)
	case *ast.Heading:
		return s.convertHeadingNode(typed)
	case *ast.Blockquote:
		return document.Node{
			Kind:    document.KindBlockquote,
			Content: s.convertBlockChildren(typed),
		}, true
	case *ast.ThematicBreak:
		return document.Node{Kind: document.KindThematicBreak}, true
	case *ast.FencedCodeBlock:
		return s.convertFencedCodeBlockNode(typed)
	case *ast.CodeBlock:
		return s.convertCodeBlockNode(typed)
	case *ast.List:
		return s.convertListNode(typed)
	case *ast.HTMLBlock:
		return s.convertHTMLBlockNode(typed)
	default:
		// Unknown block kinds degrade to a paragraph of their inline content
		// so that no text is silently lost.
		if node.Type() == ast.TypeBlock && node.HasChildren() {
			content := s.convertInlineChildren(node)
			if len(content) == 0 {
				return document.Node{}, false
			}
			return document.Node{Kind: document.KindParagraph, Content: content}, true
		}
		return document.Node{}, false
	}
}

func (s *state) convertListNode(node *ast.List) (document.Node, bool) {
	list := document.Node{
		Kind:    document.KindList,
		Ordered: node.IsOrdered(),
		Tight:   node.IsTight,
	}
	if list.Ordered {
		list.Start = node.Start
	}

	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		item, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		list.Content = append(list.Content, document.Node{
			Kind:    document.KindListItem,
			Content: s.convertBlockChildren(item),
		})
	}

	return list, true
}

func (s *state) linesValue(node ast.Node) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(s.source))
	}
	return sb.String()
}
