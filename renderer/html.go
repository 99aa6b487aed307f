package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rgonek/fider-markdown/document"
	"github.com/rgonek/fider-markdown/schemes"
	"github.com/yuin/goldmark/util"
)

func (s *state) renderHTMLDocument(doc document.Doc) (string, error) {
	blocks := make([]string, 0, len(doc.Content))
	for _, node := range doc.Content {
		if err := s.checkContext(); err != nil {
			return "", err
		}
		s.block = blockState{}
		out := s.renderBlock(node)
		if s.block.hasRawHTML {
			out = s.sanitizeBlock(out)
		}
		if out != "" {
			blocks = append(blocks, out)
		}
	}
	return strings.Join(blocks, "\n"), nil
}

func (s *state) renderBlocks(nodes []document.Node) string {
	blocks := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if out := s.renderBlock(node); out != "" {
			blocks = append(blocks, out)
		}
	}
	return strings.Join(blocks, "\n")
}

func (s *state) renderBlock(node document.Node) string {
	switch node.Kind {
	case document.KindParagraph:
		return "<p>" + s.renderInlines(node.Content) + "</p>"

	case document.KindHeading:
		if s.mode == ModeSimple {
			return "<p>" + s.renderInlines(node.Content) + "</p>"
		}
		level := min(max(node.Level, 1), 6)
		return fmt.Sprintf("<h%d>%s</h%d>", level, s.renderInlines(node.Content), level)

	case document.KindBlockquote:
		inner := s.renderBlocks(node.Content)
		if inner == "" {
			return "<blockquote></blockquote>"
		}
		return "<blockquote>\n" + inner + "\n</blockquote>"

	case document.KindList:
		return s.renderList(node)

	case document.KindListItem:
		return s.renderListItem(node, false)

	case document.KindCodeBlock:
		var sb strings.Builder
		sb.WriteString("<pre><code")
		if lang := codeLanguage(node.Language); lang != "" {
			sb.WriteString(` class="language-`)
			sb.WriteString(escapeHTML(lang))
			sb.WriteString(`"`)
		}
		sb.WriteString(">")
		if node.Text != "" {
			sb.WriteString(escapeHTML(node.Text))
			sb.WriteString("\n")
		}
		sb.WriteString("</code></pre>")
		return sb.String()

	case document.KindThematicBreak:
		return "<hr>"

	case document.KindHTMLBlock:
		if s.config.RawHTML == RawHTMLSanitize {
			s.block.hasRawHTML = true
			return node.Text
		}
		return "<p>" + strings.ReplaceAll(escapeHTML(node.Text), "\n", "<br>") + "</p>"

	default:
		s.addWarning(WarningUnknownNode, string(node.Kind), fmt.Sprintf("unsupported block node %q rendered as text", node.Kind))
		text := plainInlines(node.Content)
		if text == "" {
			text = node.Text
		}
		if text == "" {
			return ""
		}
		return "<p>" + escapeHTML(text) + "</p>"
	}
}

func (s *state) renderList(node document.Node) string {
	tag := "ul"
	var sb strings.Builder
	if node.Ordered {
		tag = "ol"
		sb.WriteString("<ol")
		if node.Start != 0 && node.Start != 1 {
			sb.WriteString(` start="`)
			sb.WriteString(strconv.Itoa(node.Start))
			sb.WriteString(`"`)
		}
		sb.WriteString(">\n")
	} else {
		sb.WriteString("<ul>\n")
	}

	for _, item := range node.Content {
		sb.WriteString(s.renderListItem(item, node.Tight))
		sb.WriteString("\n")
	}

	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteString(">")
	return sb.String()
}

func (s *state) renderListItem(item document.Node, tight bool) string {
	if !tight {
		inner := s.renderBlocks(item.Content)
		if inner == "" {
			return "<li></li>"
		}
		return "<li>\n" + inner + "\n</li>"
	}

	// Paragraphs of tight items are rendered without their <p> wrapper.
	parts := make([]string, 0, len(item.Content))
	for _, child := range item.Content {
		if child.Kind == document.KindParagraph {
			parts = append(parts, s.renderInlines(child.Content))
			continue
		}
		if out := s.renderBlock(child); out != "" {
			parts = append(parts, out)
		}
	}
	return "<li>" + strings.Join(parts, "\n") + "</li>"
}

func (s *state) renderInlines(nodes []document.Node) string {
	var sb strings.Builder
	for _, node := range nodes {
		s.renderInline(&sb, node)
	}
	return sb.String()
}

func (s *state) renderInline(sb *strings.Builder, node document.Node) {
	switch node.Kind {
	case document.KindText:
		sb.WriteString(escapeHTML(node.Text))
	case document.KindLineBreak:
		sb.WriteString("<br>")
	case document.KindStrike:
		s.renderWrapped(sb, "del", node.Content)
	case document.KindEmphasis:
		s.renderWrapped(sb, "em", node.Content)
	case document.KindStrong:
		s.renderWrapped(sb, "strong", node.Content)
	case document.KindCode:
		sb.WriteString("<code>")
		sb.WriteString(escapeHTML(node.Text))
		sb.WriteString("</code>")
	case document.KindLink:
		sb.WriteString(s.renderLink(node))
	case document.KindImage:
		sb.WriteString(s.renderImage(node))
	case document.KindRawHTML:
		if s.config.RawHTML == RawHTMLSanitize {
			s.block.hasRawHTML = true
			sb.WriteString(node.Text)
			return
		}
		sb.WriteString(escapeHTML(node.Text))
	default:
		s.addWarning(WarningUnknownNode, string(node.Kind), fmt.Sprintf("unsupported inline node %q rendered as text", node.Kind))
		if node.Text != "" {
			sb.WriteString(escapeHTML(node.Text))
		}
		s.renderWrapped(sb, "", node.Content)
	}
}

func (s *state) renderWrapped(sb *strings.Builder, tag string, content []document.Node) {
	if tag != "" {
		sb.WriteString("<" + tag + ">")
	}
	for _, child := range content {
		s.renderInline(sb, child)
	}
	if tag != "" {
		sb.WriteString("</" + tag + ">")
	}
}

func (s *state) renderLink(node document.Node) string {
	label := s.renderInlines(node.Content)

	target := node.Target
	if out, ok := s.applyLinkHook(node); ok {
		if out.TextOnly {
			return label
		}
		target = out.Target
	}

	verdict := s.policy().Check(target)
	s.observeTarget(TargetLink, outcomeOf(verdict))

	var sb strings.Builder
	sb.WriteString(`<a class="`)
	sb.WriteString(s.config.LinkClass)
	sb.WriteString(`"`)
	s.writeTarget(&sb, "href", target, verdict, TargetLink)
	if node.Title != "" {
		sb.WriteString(` title="`)
		sb.WriteString(escapeHTML(node.Title))
		sb.WriteString(`"`)
	}
	sb.WriteString(` rel="`)
	sb.WriteString(s.config.LinkRel)
	sb.WriteString(`" target="`)
	sb.WriteString(s.config.LinkTarget)
	sb.WriteString(`">`)
	sb.WriteString(label)
	sb.WriteString("</a>")
	return sb.String()
}

func (s *state) renderImage(node document.Node) string {
	alt := plainInlines(node.Content)

	out, handled := s.applyImageHook(node, alt)
	if node.IsInternalImage() && !handled {
		return s.renderInternalImage(node, alt)
	}

	target := node.Target
	if handled {
		target = out.Src
	}
	verdict := s.policy().Check(target)
	s.observeTarget(TargetImage, outcomeOf(verdict))

	var sb strings.Builder
	sb.WriteString("<img")
	s.writeTarget(&sb, "src", target, verdict, TargetImage)
	sb.WriteString(` alt="`)
	sb.WriteString(escapeHTML(alt))
	sb.WriteString(`"`)
	if node.Title != "" {
		sb.WriteString(` title="`)
		sb.WriteString(escapeHTML(node.Title))
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
	return sb.String()
}

// renderInternalImage rewrites an attachment key to the configured image
// path. Internal images bypass the allow-list but the key itself must be a
// plain relative reference.
func (s *state) renderInternalImage(node document.Node, alt string) string {
	var builtin *schemes.Policy
	verdict := builtin.Check(node.Key)
	outcome := OutcomeInternal
	if verdict != schemes.Admitted {
		outcome = outcomeOf(verdict)
	}
	s.observeTarget(TargetImage, outcome)

	var sb strings.Builder
	sb.WriteString("<img")
	s.writeTarget(&sb, "src", s.config.ImageBasePath+node.Key, verdict, TargetImage)
	sb.WriteString(` alt="`)
	sb.WriteString(escapeHTML(alt))
	sb.WriteString(`" class="`)
	sb.WriteString(s.config.InlineImageClass)
	sb.WriteString(`"`)
	if verdict == schemes.Admitted {
		sb.WriteString(` data-bkey="`)
		sb.WriteString(escapeHTML(node.Key))
		sb.WriteString(`"`)
	}
	if node.Title != "" {
		sb.WriteString(` title="`)
		sb.WriteString(escapeHTML(node.Title))
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
	return sb.String()
}

// writeTarget writes the destination attribute for a checked target.
// Stripped targets omit the attribute and malformed ones collapse to an
// empty value.
func (s *state) writeTarget(sb *strings.Builder, attr, target string, verdict schemes.Verdict, kind TargetKind) {
	switch verdict {
	case schemes.Admitted:
		s.block.noteScheme(target)
		sb.WriteString(" " + attr + `="`)
		sb.WriteString(escapeURL(target))
		sb.WriteString(`"`)
	case schemes.Malformed:
		sb.WriteString(" " + attr + `=""`)
		s.addWarning(WarningMalformedTarget, string(kind), fmt.Sprintf("malformed %s target %q neutralized", kind, target))
	default:
		warnType := WarningStrippedLink
		if kind == TargetImage {
			warnType = WarningStrippedImage
		}
		s.addWarning(warnType, string(kind), fmt.Sprintf("%s target %q uses a scheme outside the allow-list", kind, target))
	}
}

func codeLanguage(info string) string {
	lang := strings.TrimSpace(info)
	if strings.ContainsAny(lang, "\"'<>&` \t") {
		return ""
	}
	return lang
}

func escapeHTML(s string) string {
	return string(util.EscapeHTML([]byte(s)))
}

func escapeURL(s string) string {
	return string(util.EscapeHTML(util.URLEscape([]byte(s), false)))
}
