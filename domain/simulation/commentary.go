package simulation

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// CommentaryHTML renders the service's free-text commentary, which is
// usually light markdown. Raw HTML in the source is dropped.
func CommentaryHTML(comment string) string {
	if strings.TrimSpace(comment) == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank,
	})
	return string(markdown.ToHTML([]byte(comment), p, renderer))
}
