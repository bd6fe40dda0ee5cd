package asciidoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConvertHeadings verifies heading levels 1-5 map 1:1 with identical text.
func TestConvertHeadings(t *testing.T) {
	input := strings.Join([]string{
		"= Title",
		"== Section",
		"=== Subsection",
		"==== Deep",
		"===== Deeper",
	}, "\n")

	got := convertHeadings(input)
	require.Equal(t, strings.Join([]string{
		"# Title",
		"## Section",
		"### Subsection",
		"#### Deep",
		"##### Deeper",
	}, "\n"), got)
}

// TestConvertAdmonitions covers both delimited and inline forms for all kinds.
func TestConvertAdmonitions(t *testing.T) {
	block := "[NOTE]\n====\nfirst line\nsecond line\n====\n"
	got := convertAdmonitions(block)
	require.Contains(t, got, "> **Note:** first line second line")
	require.NotContains(t, got, "====")

	for kind, label := range map[string]string{
		"NOTE": "Note", "TIP": "Tip", "IMPORTANT": "Important",
		"WARNING": "Warning", "CAUTION": "Caution",
	} {
		inline := kind + ": watch out"
		require.Equal(t, "> **"+label+":** watch out", convertAdmonitions(inline))
	}
}

// TestConvertCodeBlocks verifies the language allow-list: recognized tags
// survive, unrecognized tags are dropped, code content is kept verbatim.
func TestConvertCodeBlocks(t *testing.T) {
	tagged := "[,yaml]\n----\nkey: value\n----"
	got := convertCodeBlocks(tagged)
	require.Equal(t, "```yaml\nkey: value\n```", got)

	unknown := "[,asciidoc]\n----\n= inner heading\n----"
	got = convertCodeBlocks(unknown)
	require.Equal(t, "```\n= inner heading\n```", got)

	sourceForm := "[source,bash]\n----\nls -la\n----"
	require.Equal(t, "```bash\nls -la\n```", convertCodeBlocks(sourceForm))

	untagged := "----\nplain\n----"
	require.Equal(t, "```\nplain\n```", convertCodeBlocks(untagged))
}

// TestCollapseInlineCode verifies double-backtick collapses without touching fences.
func TestCollapseInlineCode(t *testing.T) {
	require.Equal(t, "use `flag` here", collapseInlineCode("use ``flag`` here"))

	fenced := "```yaml\nkey: value\n```"
	require.Equal(t, fenced, collapseInlineCode(fenced))
}

// TestConvertMacros verifies xref labels survive while targets are discarded,
// and url/image macros become Markdown.
func TestConvertMacros(t *testing.T) {
	require.Equal(t, "see Validator Setup for details",
		convertMacros("see xref:validator/setup.adoc[Validator Setup] for details"))
	require.Equal(t, "see Setup",
		convertMacros("see xref::pages/setup.adoc[Setup]"))
	require.Equal(t, "[docs](https://example.com/docs)",
		convertMacros("https://example.com/docs[docs]"))
	require.Equal(t, "![diagram](flow.png)",
		convertMacros("image::flow.png[diagram]"))
}

// TestCleanup verifies entity decoding, continuation stripping and newline collapse.
func TestCleanup(t *testing.T) {
	input := "a&#160;b \\\nnext\n\n\n\n\nend\n"
	got := cleanup(input)
	require.Equal(t, "a b\nnext\n\nend", got)
}

// TestConvertFullDocument runs the whole pass pipeline end to end.
func TestConvertFullDocument(t *testing.T) {
	input := strings.Join([]string{
		"= Create a Validator",
		"",
		"== Prerequisites",
		"",
		"NOTE: requires an onboarding secret.",
		"",
		"[,yaml]",
		"----",
		"validator:",
		"  enabled: true",
		"----",
		"",
		"Run ``make deploy`` afterwards.",
	}, "\n")

	got := Convert(input, Provenance{
		ProductContext: "Canton",
		SourceURL:      "https://docs.example.com/canton/create-validator.html",
	})

	require.Contains(t, got, "# Create a Validator")
	require.Contains(t, got, "## Prerequisites")
	require.Contains(t, got, "> **Note:** requires an onboarding secret.")
	require.Contains(t, got, "```yaml\nvalidator:\n  enabled: true\n```")
	require.Contains(t, got, "Run `make deploy` afterwards.")
	require.Contains(t, got, "This document is part of the `Canton` documentation.")
	require.Contains(t, got, "> **Source:** [https://docs.example.com/canton/create-validator.html](https://docs.example.com/canton/create-validator.html)")

	// the context sentence sits directly under the level-1 heading
	lines := strings.Split(got, "\n")
	require.Equal(t, "# Create a Validator", lines[0])
	require.Equal(t, "", lines[1])
	require.Equal(t, "This document is part of the `Canton` documentation.", lines[2])
}

// TestConvertNeverDropsUnknownConstructs verifies unknown syntax passes through.
func TestConvertNeverDropsUnknownConstructs(t *testing.T) {
	input := "= Doc\n\nsome +++passthrough+++ text\n"
	got := Convert(input, Provenance{})
	require.Contains(t, got, "some +++passthrough+++ text")
}
