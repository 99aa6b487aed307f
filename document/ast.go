package document

import "strings"

// Kind identifies the variant of a Node.
type Kind string

// Block kinds.
const (
	KindParagraph     Kind = "paragraph"
	KindHeading       Kind = "heading"
	KindBlockquote    Kind = "blockquote"
	KindList          Kind = "list"
	KindListItem      Kind = "listItem"
	KindCodeBlock     Kind = "codeBlock"
	KindThematicBreak Kind = "thematicBreak"
	KindHTMLBlock     Kind = "htmlBlock"
)

// Inline kinds.
const (
	KindText      Kind = "text"
	KindLineBreak Kind = "lineBreak"
	KindStrike    Kind = "strike"
	KindEmphasis  Kind = "emphasis"
	KindStrong    Kind = "strong"
	KindCode      Kind = "code"
	KindLink      Kind = "link"
	KindImage     Kind = "image"
	KindRawHTML   Kind = "rawHTML"
)

// Doc is the root of a parsed markdown document.
type Doc struct {
	Content []Node `json:"content,omitempty"`
}

// Node is a single block or inline element of the tree.
//
// Text carries literal content for text, code, codeBlock, rawHTML and
// htmlBlock nodes. Target carries the unvalidated destination of links and
// images; Key is set instead when an image references an internal
// attachment.
type Node struct {
	Kind     Kind   `json:"kind"`
	Text     string `json:"text,omitempty"`
	Level    int    `json:"level,omitempty"`
	Target   string `json:"target,omitempty"`
	Title    string `json:"title,omitempty"`
	Key      string `json:"key,omitempty"`
	Language string `json:"language,omitempty"`
	Ordered  bool   `json:"ordered,omitempty"`
	Tight    bool   `json:"tight,omitempty"`
	Start    int    `json:"start,omitempty"`
	Content  []Node `json:"content,omitempty"`
}

// IsBlock reports whether the node is a block-level element.
func (n Node) IsBlock() bool {
	switch n.Kind {
	case KindParagraph, KindHeading, KindBlockquote, KindList, KindListItem,
		KindCodeBlock, KindThematicBreak, KindHTMLBlock:
		return true
	default:
		return false
	}
}

// IsInternalImage reports whether the node is an image pointing at an
// attachment hosted by the application.
func (n Node) IsInternalImage() bool {
	return n.Kind == KindImage && n.Key != ""
}

// Walk visits node and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func Walk(node Node, fn func(Node) bool) {
	if !fn(node) {
		return
	}
	for _, child := range node.Content {
		Walk(child, fn)
	}
}

// Text returns the literal text of the document with every block on its own
// line. It is meant for diagnostics and tests, not for display.
func (d Doc) Text() string {
	lines := make([]string, 0, len(d.Content))
	for _, block := range d.Content {
		var sb strings.Builder
		Walk(block, func(n Node) bool {
			switch n.Kind {
			case KindText, KindCode, KindCodeBlock, KindRawHTML, KindHTMLBlock:
				sb.WriteString(n.Text)
			case KindLineBreak:
				sb.WriteString("\n")
			}
			return true
		})
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
