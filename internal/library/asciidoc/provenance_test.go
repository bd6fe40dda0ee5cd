package asciidoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestInjectProvenanceIdempotent verifies applying injection twice never
// duplicates the context sentence or the source line.
func TestInjectProvenanceIdempotent(t *testing.T) {
	prov := Provenance{
		ProductContext: "Canton",
		SourceURL:      "https://docs.example.com/canton/x.html",
	}
	content := "# Title\n\nbody text\n"

	once := InjectProvenance(content, prov)
	twice := InjectProvenance(once, prov)
	require.Equal(t, once, twice)

	require.Equal(t, 1, strings.Count(twice, "This document is part of the `Canton` documentation."))
	require.Equal(t, 1, strings.Count(twice, "> **Source:**"))
}

// TestInjectProvenanceWithoutHeading verifies insertion at the top when the
// document has no level-1 heading.
func TestInjectProvenanceWithoutHeading(t *testing.T) {
	got := InjectProvenance("just a paragraph", Provenance{ProductContext: "Canton"})
	require.True(t, strings.HasPrefix(got, "This document is part of the `Canton` documentation."))
	require.Contains(t, got, "just a paragraph")
}

// TestInjectProvenancePartialConfig verifies each field injects independently.
func TestInjectProvenancePartialConfig(t *testing.T) {
	onlyContext := InjectProvenance("# T\n\nbody", Provenance{ProductContext: "Canton"})
	require.Contains(t, onlyContext, "This document is part of")
	require.NotContains(t, onlyContext, "> **Source:**")

	onlyURL := InjectProvenance("# T\n\nbody", Provenance{SourceURL: "https://e.com/x.html"})
	require.NotContains(t, onlyURL, "This document is part of")
	require.Contains(t, onlyURL, "> **Source:** [https://e.com/x.html](https://e.com/x.html)")

	untouched := InjectProvenance("# T\n\nbody", Provenance{})
	require.Equal(t, "# T\n\nbody", untouched)
}

// TestInjectProvenanceOrder verifies the source line lands after the context
// sentence, which lands after the heading.
func TestInjectProvenanceOrder(t *testing.T) {
	got := InjectProvenance("# Title\n\nbody", Provenance{
		ProductContext: "Canton",
		SourceURL:      "https://e.com/x.html",
	})

	lines := strings.Split(got, "\n")
	require.Equal(t, "# Title", lines[0])
	require.Equal(t, "", lines[1])
	require.Equal(t, "This document is part of the `Canton` documentation.", lines[2])
	require.Equal(t, "", lines[3])
	require.Equal(t, "> **Source:** [https://e.com/x.html](https://e.com/x.html)", lines[4])
}
