package renderer

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rgonek/fider-markdown/schemes"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockState tracks a top-level block while it is rendered in sanitize mode.
type blockState struct {
	hasRawHTML bool
	// schemes holds the non-http schemes of targets admitted by the
	// allow-list, which the sanitizer must let through.
	schemes []string
}

func (b *blockState) noteScheme(target string) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" {
		return
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "http" || scheme == "https" || slices.Contains(b.schemes, scheme) {
		return
	}
	b.schemes = append(b.schemes, scheme)
}

var languageClass = regexp.MustCompile(`^language-[A-Za-z0-9+#._-]+$`)

func newSanitizePolicy(extraSchemes []string) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardAttributes()
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes(append([]string{"http", "https"}, extraSchemes...)...)

	p.AllowElements(
		"p", "br", "hr", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "code", "del", "s", "em", "i", "strong", "b", "u",
		"sub", "sup", "span", "div", "abbr", "kbd", "mark", "q", "small", "cite",
	)
	p.AllowLists()
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.AllowAttrs("href", "class", "rel", "target").OnElements("a")
	p.AllowImages()
	p.AllowAttrs("class", "data-bkey").OnElements("img")
	p.AllowAttrs("class").Matching(languageClass).OnElements("code")
	return p
}

const maxSanitizePolicies = 64

var sanitizePolicies = struct {
	sync.Mutex
	entries map[string]*bluemonday.Policy
}{entries: make(map[string]*bluemonday.Policy)}

// sanitizePolicyFor returns a cached policy admitting http, https and the
// given extra schemes. A bluemonday policy is safe for concurrent use once
// built.
func sanitizePolicyFor(extraSchemes []string) *bluemonday.Policy {
	extra := slices.Clone(extraSchemes)
	slices.Sort(extra)
	key := strings.Join(extra, ",")

	sanitizePolicies.Lock()
	defer sanitizePolicies.Unlock()

	if p, ok := sanitizePolicies.entries[key]; ok {
		return p
	}
	if len(sanitizePolicies.entries) >= maxSanitizePolicies {
		clear(sanitizePolicies.entries)
	}
	p := newSanitizePolicy(extra)
	sanitizePolicies.entries[key] = p
	return p
}

var fragmentContext = &html.Node{
	Type:     html.ElementNode,
	Data:     "body",
	DataAtom: atom.Body,
}

// sanitizeBlock cleans a rendered block that embeds raw HTML. The whole
// block goes through bluemonday at once, is re-parsed so that every element
// is closed inside the block, and every remaining link or image target is
// checked against the scheme allow-list.
func (s *state) sanitizeBlock(fragment string) string {
	clean := sanitizePolicyFor(s.block.schemes).Sanitize(fragment)

	nodes, err := html.ParseFragment(strings.NewReader(clean), fragmentContext)
	if err != nil {
		s.addWarning(WarningUnknownNode, "rawHTML", fmt.Sprintf("raw HTML dropped: %v", err))
		return ""
	}

	var sb strings.Builder
	for _, n := range nodes {
		s.enforceTargets(n)
		if err := html.Render(&sb, n); err != nil {
			s.addWarning(WarningUnknownNode, "rawHTML", fmt.Sprintf("raw HTML dropped: %v", err))
			return ""
		}
	}
	return strings.TrimSpace(sb.String())
}

func (s *state) enforceTargets(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.A:
			s.enforceTarget(n, "href", TargetLink)
			s.normalizeAnchor(n)
		case atom.Img:
			s.enforceTarget(n, "src", TargetImage)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.enforceTargets(c)
	}
}

func (s *state) enforceTarget(n *html.Node, key string, kind TargetKind) {
	for i, attr := range n.Attr {
		if attr.Key != key || attr.Val == "" {
			continue
		}
		switch s.policy().Check(attr.Val) {
		case schemes.Admitted:
		case schemes.Malformed:
			n.Attr[i].Val = ""
			s.addWarning(WarningMalformedTarget, "rawHTML", fmt.Sprintf("malformed %s target %q neutralized", kind, attr.Val))
		default:
			n.Attr = slices.Delete(n.Attr, i, i+1)
			warnType := WarningStrippedLink
			if kind == TargetImage {
				warnType = WarningStrippedImage
			}
			s.addWarning(warnType, "rawHTML", fmt.Sprintf("%s target %q uses a scheme outside the allow-list", kind, attr.Val))
		}
		return
	}
}

// normalizeAnchor gives every anchor the configured attributes in the same
// order as generated links.
func (s *state) normalizeAnchor(n *html.Node) {
	attrs := []html.Attribute{{Key: "class", Val: s.config.LinkClass}}
	for _, key := range []string{"href", "title"} {
		for _, attr := range n.Attr {
			if attr.Namespace == "" && attr.Key == key {
				attrs = append(attrs, html.Attribute{Key: key, Val: attr.Val})
				break
			}
		}
	}
	attrs = append(attrs,
		html.Attribute{Key: "rel", Val: s.config.LinkRel},
		html.Attribute{Key: "target", Val: s.config.LinkTarget},
	)
	n.Attr = attrs
}
