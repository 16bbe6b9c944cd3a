// Package render turns post markdown into HTML for pages and into styled
// text for the terminal.
package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// HTML converts markdown to embeddable markup. Implementations are total:
// every input string yields some output.
type HTML interface {
	Render(markdown string) template.HTML
}

// Options tunes the goldmark pipeline.
type Options struct {
	// HighlightStyle is a chroma style name; empty disables highlighting.
	HighlightStyle string
	HardWraps      bool
	// Unsafe passes raw HTML in the markdown through to the output.
	Unsafe bool
	// Sanitize runs the output through a bluemonday UGC policy.
	Sanitize bool
}

// DefaultOptions matches the site configuration defaults.
func DefaultOptions() Options {
	return Options{HighlightStyle: "dracula", Unsafe: true}
}

// Markdown is the goldmark-backed HTML renderer. It holds no per-call state
// and is safe for concurrent use.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	opts   Options
}

func NewMarkdown(opts Options) *Markdown {
	exts := []goldmark.Extender{extension.GFM, extension.Footnote}
	if opts.HighlightStyle != "" {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(opts.HighlightStyle),
			highlighting.WithFormatOptions(chromahtml.WithClasses(false)),
		))
	}
	var rendererOpts []renderer.Option
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, gmhtml.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, gmhtml.WithUnsafe())
	}

	m := &Markdown{
		opts: opts,
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(rendererOpts...),
		),
	}
	if opts.Sanitize {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		p.AllowAttrs("style").OnElements("pre", "span", "code")
		m.policy = p
	}
	return m
}

// Fingerprint identifies the output-affecting settings of the renderer.
func (m *Markdown) Fingerprint() string {
	return fmt.Sprintf("style=%s hardwraps=%t unsafe=%t sanitize=%t",
		m.opts.HighlightStyle, m.opts.HardWraps, m.opts.Unsafe, m.opts.Sanitize)
}

// Render converts markdown to HTML. On a converter error the escaped source is
// returned inside a <pre> block.
func (m *Markdown) Render(markdown string) template.HTML {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(markdown), &buf); err != nil {
		return template.HTML("<pre>" + html.EscapeString(markdown) + "</pre>")
	}
	if m.policy != nil {
		return template.HTML(m.policy.SanitizeBytes(buf.Bytes()))
	}
	return template.HTML(buf.String())
}
