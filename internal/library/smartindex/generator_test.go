package smartindex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGenerateGroupsByProduct verifies products come out as alphabetical
// sections with documents alphabetical by title.
func TestGenerateGroupsByProduct(t *testing.T) {
	docs := []Document{
		{
			Filename:     "zeta.md",
			OriginalPath: "canton/modules/ROOT/pages/zeta.adoc",
			Content:      "# Zeta Topic\n\nZeta body text.\n",
		},
		{
			Filename:     "alpha.md",
			OriginalPath: "canton/modules/ROOT/pages/alpha.adoc",
			Content:      "# Alpha Topic\n\nAlpha body text.\n",
		},
		{
			Filename:     "x.md",
			OriginalPath: "catbm/modules/ROOT/pages/x.adoc",
			Content:      "# Basics\n\nIntro paragraph.\n",
		},
	}

	got := Generate(docs)

	cantonIdx := strings.Index(got, "## Canton")
	generalIdx := strings.Index(got, "## General Documentation")
	require.Greater(t, cantonIdx, 0)
	require.Greater(t, generalIdx, cantonIdx)

	alphaIdx := strings.Index(got, "**Alpha Topic**")
	zetaIdx := strings.Index(got, "**Zeta Topic**")
	require.Greater(t, alphaIdx, 0)
	require.Greater(t, zetaIdx, alphaIdx)

	require.Contains(t, got, "- **Basics** (`x.md`): Intro paragraph.")
}

// TestExtractTitleFallback verifies the filename-derived fallback when no
// level-1 heading exists.
func TestExtractTitleFallback(t *testing.T) {
	title := extractTitle(Document{
		Filename: "create-validator_setup.md",
		Content:  "no heading here\n",
	})
	require.Equal(t, "Create Validator Setup", title)

	// multi-byte first runes survive the filename-derived title
	title = extractTitle(Document{
		Filename: "über-uns.md",
		Content:  "plain text\n",
	})
	require.Equal(t, "Über Uns", title)
}

// TestExtractDescription verifies markup is stripped, the paragraph joins
// across lines, and long text truncates with an ellipsis.
func TestExtractDescription(t *testing.T) {
	content := "# Title\n\n> **Source:** [x](https://e.com)\n\nThe `validator` runs on *Kubernetes*\nand talks to [the ledger](https://l.example).\n\nSecond paragraph.\n"
	got := extractDescription(content)
	require.Equal(t, "The validator runs on Kubernetes and talks to the ledger.", got)

	long := "# T\n\n" + strings.Repeat("word ", 60)
	truncated := extractDescription(long)
	require.True(t, strings.HasSuffix(truncated, "..."))
	require.LessOrEqual(t, len(truncated), descriptionLimit+3)

	require.Equal(t, "", extractDescription("# Only Heading\n"))
}
