// Package smartindex synthesizes a cross-document overview of one refreshed
// knowledge base, grouped by product.
package smartindex

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Laisky/kb-refresh/internal/library/docurl"
)

const descriptionLimit = 150

// Document is one converted knowledge-base file to index.
type Document struct {
	Filename     string
	OriginalPath string
	Content      string
}

type indexEntry struct {
	title       string
	filename    string
	description string
}

var (
	markdownLinkRe   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markdownMarkupRe = regexp.MustCompile("[`*_]")
)

// Generate emits one Markdown overview document: one section per product in
// alphabetical order, each listing its documents alphabetically by title.
func Generate(docs []Document) string {
	grouped := make(map[string][]indexEntry)
	for _, doc := range docs {
		product := docurl.ProductKey(doc.OriginalPath)
		grouped[product] = append(grouped[product], indexEntry{
			title:       extractTitle(doc),
			filename:    doc.Filename,
			description: extractDescription(doc.Content),
		})
	}

	products := make([]string, 0, len(grouped))
	for product := range grouped {
		products = append(products, product)
	}
	sort.Strings(products)

	var b strings.Builder
	b.WriteString("# Knowledge Base Index\n")

	for _, product := range products {
		entries := grouped[product]
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].title < entries[j].title
		})

		b.WriteString(fmt.Sprintf("\n## %s\n\n", docurl.DisplayName(product)))
		for _, entry := range entries {
			if entry.description == "" {
				b.WriteString(fmt.Sprintf("- **%s** (`%s`)\n", entry.title, entry.filename))
				continue
			}
			b.WriteString(fmt.Sprintf("- **%s** (`%s`): %s\n", entry.title, entry.filename, entry.description))
		}
	}

	return b.String()
}

// extractTitle returns the first level-1 heading, else a filename-derived
// fallback.
func extractTitle(doc Document) string {
	for _, line := range strings.Split(doc.Content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}

	stem := strings.TrimSuffix(doc.Filename, path.Ext(doc.Filename))
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for idx, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[idx] = strings.ToUpper(string(first)) + word[size:]
	}

	return strings.Join(words, " ")
}

// extractDescription returns the cleaned first paragraph, truncated to
// descriptionLimit runes with an ellipsis when cut.
func extractDescription(content string) string {
	var paragraph []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, ">") || strings.HasPrefix(trimmed, "```") ||
			strings.HasPrefix(trimmed, "|") || strings.HasPrefix(trimmed, "!["):
			if len(paragraph) > 0 {
				return truncateDescription(cleanDescription(strings.Join(paragraph, " ")))
			}
		default:
			paragraph = append(paragraph, trimmed)
		}
	}

	if len(paragraph) > 0 {
		return truncateDescription(cleanDescription(strings.Join(paragraph, " ")))
	}

	return ""
}

func cleanDescription(text string) string {
	out := markdownLinkRe.ReplaceAllString(text, "$1")
	out = markdownMarkupRe.ReplaceAllString(out, "")

	return strings.Join(strings.Fields(out), " ")
}

func truncateDescription(text string) string {
	runes := []rune(text)
	if len(runes) <= descriptionLimit {
		return text
	}

	return strings.TrimSpace(string(runes[:descriptionLimit])) + "..."
}
