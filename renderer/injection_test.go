package renderer

import (
	"context"
	"strings"
	"testing"

	"github.com/rgonek/fider-markdown/schemes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var injectionPayloads = []string{
	`[Uh oh...]("onerror="alert('XSS'))`,
	`[x](javascript:alert(1))`,
	`[x](JaVaScRiPt:alert(1))`,
	`[x](<javascript:alert(1)>)`,
	`[x](&#106;avascript:alert(1))`,
	"[x](java\u200bscript:alert(1))",
	`[x](vbscript:msgbox(1))`,
	`[x](data:text/html;base64,PHNjcmlwdD4=)`,
	`[x](https://example.com/"onmouseover="alert(1))`,
	`![x](" onerror="alert(1))`,
	`![x](javascript:alert(1))`,
	`![](fider-image:"onload="alert(1))`,
	`![](fider-image:javascript:alert(1))`,
	"<a href=\"javascript:alert(1)\">raw</a>",
	"<img src=x onerror=alert(1)>",
	"<script>alert(1)</script>",
	"Hello <b onclick=\"alert(1)\">Beautiful</b> World",
	"```\" onload=\"alert(1)\nbody\n```",
	"<javascript:alert(1)>",
}

// allowedAttributes lists the only attributes escape mode may emit.
var allowedAttributes = map[atom.Atom][]string{
	atom.A:    {"class", "href", "title", "rel", "target"},
	atom.Img:  {"src", "alt", "class", "data-bkey", "title"},
	atom.Ol:   {"start"},
	atom.Code: {"class"},
}

func parseFragment(t *testing.T, out string) []*html.Node {
	t.Helper()
	nodes, err := html.ParseFragment(strings.NewReader(out), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	require.NoError(t, err)
	return nodes
}

func visitElements(nodes []*html.Node, fn func(*html.Node)) {
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			fn(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visitElements([]*html.Node{c}, fn)
		}
	}
}

func assertSafeTarget(t *testing.T, payload string, attr html.Attribute) {
	t.Helper()
	if attr.Key != "href" && attr.Key != "src" {
		return
	}
	value := strings.ToLower(strings.TrimSpace(attr.Val))
	for _, scheme := range []string{"javascript:", "vbscript:", "data:"} {
		assert.False(t, strings.HasPrefix(value, scheme), "payload %q produced %s=%q", payload, attr.Key, attr.Val)
	}
}

func TestFullEmitsOnlyKnownAttributes(t *testing.T) {
	for _, provider := range []schemes.Provider{nil, cryptoSchemes} {
		for _, payload := range injectionPayloads {
			out := Full(payload, provider)
			visitElements(parseFragment(t, out), func(n *html.Node) {
				allowed := allowedAttributes[n.DataAtom]
				for _, attr := range n.Attr {
					assert.Contains(t, allowed, attr.Key, "payload %q produced <%s %s=%q>", payload, n.Data, attr.Key, attr.Val)
					assertSafeTarget(t, payload, attr)
				}
				assert.NotEqual(t, atom.Script, n.DataAtom, "payload %q produced a script element", payload)
			})
		}
	}
}

func TestSanitizeModeDropsEventHandlers(t *testing.T) {
	r := newTestRenderer(t, Config{RawHTML: RawHTMLSanitize})

	for _, payload := range injectionPayloads {
		out := r.Full(payload)
		visitElements(parseFragment(t, out), func(n *html.Node) {
			assert.NotEqual(t, atom.Script, n.DataAtom, "payload %q produced a script element", payload)
			for _, attr := range n.Attr {
				assert.False(t, strings.HasPrefix(attr.Key, "on"), "payload %q produced %s attribute", payload, attr.Key)
				assertSafeTarget(t, payload, attr)
			}
		})
	}
}

func TestPlainTextNeverExposesTargets(t *testing.T) {
	payloads := []string{
		`[x](javascript:alert(1))`,
		`[x](<javascript:alert(1)>)`,
		`[x](https://example.com/"onmouseover="alert(1))`,
		`![x](javascript:alert(1))`,
		`![](fider-image:"onload="alert(1))`,
	}
	for _, payload := range payloads {
		assert.NotContains(t, PlainText(payload), "alert(1)", payload)
	}
	assert.Equal(t, "Uh oh...", PlainText(injectionPayloads[0]))
}

// assertBalanced checks that every non-void element opened in out is closed.
func assertBalanced(t *testing.T, out string) {
	t.Helper()
	open := map[string]int{}
	z := html.NewTokenizer(strings.NewReader(out))
	for {
		switch z.Next() {
		case html.ErrorToken:
			for tag, n := range open {
				assert.Zero(t, n, "unbalanced <%s> in %q", tag, out)
			}
			return
		case html.StartTagToken:
			name, _ := z.TagName()
			open[string(name)]++
		case html.EndTagToken:
			name, _ := z.TagName()
			open[string(name)]--
		}
	}
}

func anchors(t *testing.T, out string) []*html.Node {
	t.Helper()
	var found []*html.Node
	visitElements(parseFragment(t, out), func(n *html.Node) {
		if n.DataAtom == atom.A {
			found = append(found, n)
		}
	})
	return found
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func TestSanitizeModeAppliesSchemePolicyToRawTargets(t *testing.T) {
	closed := newTestRenderer(t, Config{RawHTML: RawHTMLSanitize, Schemes: schemes.Static("")})

	result, err := closed.Render(context.Background(), `<a href="mailto:a@b.c">m</a> and ![i](x.png) <img src="bitcoin:1abc">`, ModeFull)
	require.NoError(t, err)
	assert.NotContains(t, result.Output, "mailto:")
	assert.NotContains(t, result.Output, "bitcoin:")
	assertBalanced(t, result.Output)
	for _, w := range result.Warnings {
		assert.Equal(t, "rawHTML", w.NodeType)
	}

	opened := newTestRenderer(t, Config{RawHTML: RawHTMLSanitize, Schemes: schemes.Static("^mailto:")})
	links := anchors(t, opened.Full(`<a href="mailto:a@b.c">m</a>`))
	require.Len(t, links, 1)
	href, ok := attrValue(links[0], "href")
	assert.True(t, ok)
	assert.Equal(t, "mailto:a@b.c", href)
}

func TestSanitizeModeNormalizesRawAnchors(t *testing.T) {
	r := newTestRenderer(t, Config{RawHTML: RawHTMLSanitize})

	assert.Equal(t,
		`<p><a class="text-link" href="https://example.com" rel="noopener nofollow" target="_blank">x</a></p>`,
		r.Full(`<a href="https://example.com" onclick="alert(1)">x</a>`),
	)
}

func TestSanitizeModeKeepsAdmittedCustomSchemes(t *testing.T) {
	r := newTestRenderer(t, Config{RawHTML: RawHTMLSanitize, Schemes: cryptoSchemes})

	assert.Equal(t,
		`<p><a class="text-link" href="monero:8abc" rel="noopener nofollow" target="_blank">m</a> <b>hi</b></p>`,
		r.Full("[m](monero:8abc) <b>hi</b>"),
	)
}

func TestSanitizeModeBalancesBlocks(t *testing.T) {
	r := newTestRenderer(t, Config{RawHTML: RawHTMLSanitize, Schemes: schemes.Static("")})

	dropped := r.Full(`<a href="bitcoin:1abc">x</a>`)
	assert.NotContains(t, dropped, "bitcoin")
	assertBalanced(t, dropped)

	out := r.Full("<a href=\"https://evil.example\">\n\nnext [ok](/x)")
	assertBalanced(t, out)
	blocks := strings.Split(out, "\n")
	assert.Equal(t, `<p>next <a class="text-link" href="/x" rel="noopener nofollow" target="_blank">ok</a></p>`, blocks[len(blocks)-1])

	visitElements(parseFragment(t, out), func(n *html.Node) {
		if n.DataAtom != atom.A {
			return
		}
		for p := n.Parent; p != nil; p = p.Parent {
			assert.NotEqual(t, atom.A, p.DataAtom, "nested anchor in %q", out)
		}
	})
}

func TestFullReplacesNulAndInvalidUTF8(t *testing.T) {
	assert.Equal(t, "<p>�abc</p>", Full("\x00abc", nil))
	assert.Equal(t, "<p>a�b</p>", Full("a\xff\xfeb", nil))
	assert.Equal(t, "a�b", PlainText("a\x00b"))
	assert.Equal(t, "<p><code>�</code></p>", Full("`\x00`", nil))
}
