// Package markdown renders post content to safe HTML and finds >>id post references.
package markdown

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

const idPattern = `[0-9a-f]{8,64}`

var (
	// rendered text has > escaped
	renderedLinkRegex = regexp.MustCompile(`&gt;&gt;(` + idPattern + `)`)
	referenceRegex    = regexp.MustCompile(`>>(` + idPattern + `)`)
)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(newGreentextParser(), 800),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			renderer.WithNodeRenderers(util.Prioritized(newGreentextRenderer(), 500)),
		),
		goldmark.WithExtensions(extension.Strikethrough),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowElements("span", "del", "br")
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^greentext$`)).OnElements("span")
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^post-link$`)).OnElements("a")
	policy.AllowAttrs("data-post-id").Matching(regexp.MustCompile(`^` + idPattern + `$`)).OnElements("a")
	policy.RequireNoFollowOnLinks(false)
	policy.AllowRelativeURLs(true)

	return &Renderer{md: md, policy: policy}
}

// Render converts post content into sanitized HTML.
func (r *Renderer) Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to render content: %w", err)
	}
	linked := linkOutsideCode(strings.TrimSpace(buf.String()))
	return r.policy.Sanitize(linked), nil
}

// linkOutsideCode turns &gt;&gt;id into post anchors, leaving <code> spans untouched.
func linkOutsideCode(html string) string {
	var out strings.Builder
	out.Grow(len(html))

	pos := 0
	for pos < len(html) {
		start := strings.Index(html[pos:], "<code")
		if start == -1 {
			out.WriteString(replaceLinks(html[pos:]))
			break
		}
		start += pos
		out.WriteString(replaceLinks(html[pos:start]))

		end := strings.Index(html[start:], "</code>")
		if end == -1 {
			out.WriteString(html[start:])
			break
		}
		end += start + len("</code>")
		out.WriteString(html[start:end])
		pos = end
	}
	return out.String()
}

func replaceLinks(text string) string {
	return renderedLinkRegex.ReplaceAllString(text,
		`<a href="#p$1" class="post-link" data-post-id="$1">&gt;&gt;$1</a>`)
}

// ExtractReferences returns the distinct >>id references in content, in order of
// first appearance. References inside fenced code are ignored.
func ExtractReferences(content string) []string {
	var (
		refs    []string
		seen    = make(map[string]struct{})
		inFence bool
	)
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		for _, m := range referenceRegex.FindAllStringSubmatch(line, -1) {
			if _, dup := seen[m[1]]; dup {
				continue
			}
			seen[m[1]] = struct{}{}
			refs = append(refs, m[1])
		}
	}
	return refs
}
