// Package asciidoc rewrites AsciiDoc documentation into retrieval-optimized
// Markdown.
//
// The converter is an ordered sequence of text-level rewrite passes over one
// in-memory buffer, not a parser. Each pass operates on the output of the
// previous one; conversion never fails on content, it only degrades.
package asciidoc

import (
	"fmt"
	"regexp"
	"strings"
)

// Provenance carries the optional metadata injected into converted documents.
type Provenance struct {
	// ProductContext is the human-readable product name, e.g. "Canton".
	ProductContext string
	// SourceURL is the canonical public documentation URL, when derivable.
	SourceURL string
}

// allowedFenceLangs is the language allow-list for fenced code blocks. Tags
// outside this list are dropped while the code content is kept verbatim.
var allowedFenceLangs = map[string]bool{
	"yaml": true, "json": true, "bash": true, "shell": true,
	"python": true, "java": true, "xml": true, "sql": true,
	"javascript": true, "typescript": true, "go": true, "rust": true,
}

var (
	headingRe = regexp.MustCompile(`(?m)^(={1,5})[ \t]+(.+)$`)

	admonitionBlockRe  = regexp.MustCompile(`(?ms)^\[(NOTE|TIP|IMPORTANT|WARNING|CAUTION)\]\n====\n(.*?)\n====$`)
	admonitionInlineRe = regexp.MustCompile(`(?m)^(NOTE|TIP|IMPORTANT|WARNING|CAUTION):[ \t]+(.+)$`)

	taggedCodeBlockRe = regexp.MustCompile(`(?ms)^\[(?:source)?,[ \t]*([A-Za-z0-9_+-]+)\]\n----\n(.*?)\n----$`)
	bareCodeFenceRe   = regexp.MustCompile(`(?m)^----[ \t]*$`)

	doubleBacktickRe = regexp.MustCompile("``([^`\n]+)``")

	xrefRe     = regexp.MustCompile(`xref::?[^\[\]\s]*\[([^\]]*)\]`)
	imageRe    = regexp.MustCompile(`image::?([^\[\]\s]+)\[([^\]]*)\]`)
	urlLabelRe = regexp.MustCompile(`(https?://[^\[\]\s]+)\[([^\]]*)\]`)

	lineContinuationRe = regexp.MustCompile(`(?m)[ \t]*\\$`)
	excessNewlinesRe   = regexp.MustCompile(`\n{3,}`)
)

// Convert rewrites AsciiDoc content to Markdown and injects provenance.
func Convert(content string, prov Provenance) string {
	out := convertHeadings(content)
	out = convertAdmonitions(out)
	out = convertCodeBlocks(out)
	out = collapseInlineCode(out)
	out = convertTables(out)
	out = convertMacros(out)
	out = cleanup(out)

	return InjectProvenance(out, prov)
}

// AnnotateMarkdown applies only the provenance-injection pass, for files that
// are already Markdown.
func AnnotateMarkdown(content string, prov Provenance) string {
	return InjectProvenance(content, prov)
}

// convertHeadings maps `=`..`=====` heading markers 1:1 to `#`..`#####`.
func convertHeadings(content string) string {
	return headingRe.ReplaceAllStringFunc(content, func(match string) string {
		groups := headingRe.FindStringSubmatch(match)
		return strings.Repeat("#", len(groups[1])) + " " + groups[2]
	})
}

// convertAdmonitions rewrites both delimited and inline admonitions into
// block-quoted, bold-labeled lines.
func convertAdmonitions(content string) string {
	out := admonitionBlockRe.ReplaceAllStringFunc(content, func(match string) string {
		groups := admonitionBlockRe.FindStringSubmatch(match)
		body := strings.Join(strings.Fields(groups[2]), " ")
		return fmt.Sprintf("> **%s:** %s", admonitionLabel(groups[1]), body)
	})

	return admonitionInlineRe.ReplaceAllStringFunc(out, func(match string) string {
		groups := admonitionInlineRe.FindStringSubmatch(match)
		return fmt.Sprintf("> **%s:** %s", admonitionLabel(groups[1]), groups[2])
	})
}

func admonitionLabel(kind string) string {
	return kind[:1] + strings.ToLower(kind[1:])
}

// convertCodeBlocks rewrites delimited code blocks into fenced ones. Language
// tags survive only when allow-listed; the code content is always kept verbatim.
func convertCodeBlocks(content string) string {
	out := taggedCodeBlockRe.ReplaceAllStringFunc(content, func(match string) string {
		groups := taggedCodeBlockRe.FindStringSubmatch(match)
		lang := strings.ToLower(groups[1])
		if !allowedFenceLangs[lang] {
			lang = ""
		}
		return "```" + lang + "\n" + groups[2] + "\n```"
	})

	return bareCodeFenceRe.ReplaceAllString(out, "```")
}

// collapseInlineCode reduces double-backtick inline code to single-backtick.
func collapseInlineCode(content string) string {
	return doubleBacktickRe.ReplaceAllString(content, "`$1`")
}

// convertMacros reduces xref macros to label text and rewrites url/image
// macros into standard Markdown syntax.
func convertMacros(content string) string {
	out := xrefRe.ReplaceAllString(content, "$1")
	out = imageRe.ReplaceAllString(out, "![$2]($1)")
	out = urlLabelRe.ReplaceAllString(out, "[$2]($1)")

	return out
}

// cleanup decodes the non-breaking-space entity, strips line-continuation
// backslashes, collapses excess blank lines and trims the document.
func cleanup(content string) string {
	out := strings.ReplaceAll(content, "&#160;", " ")
	out = lineContinuationRe.ReplaceAllString(out, "")
	out = excessNewlinesRe.ReplaceAllString(out, "\n\n")

	return strings.TrimSpace(out)
}
