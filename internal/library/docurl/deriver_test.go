package docurl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSourceURL verifies the Antora path convention maps to public doc URLs.
func TestSourceURL(t *testing.T) {
	cases := []struct {
		name      string
		baseURL   string
		overrides map[string]string
		repoPath  string
		want      string
	}{
		{
			name:     "nested page",
			baseURL:  "https://docs.example.com",
			repoPath: "canton/modules/ROOT/pages/validator-mgmt/create-validator.adoc",
			want:     "https://docs.example.com/canton/validator-mgmt/create-validator.html",
		},
		{
			name:     "default mapping rewrites product segment",
			baseURL:  "https://docs.example.com",
			repoPath: "catbm/modules/ROOT/pages/x.adoc",
			want:     "https://docs.example.com/general/x.html",
		},
		{
			name:     "trailing slash on base url normalized",
			baseURL:  "https://docs.example.com/",
			repoPath: "canton/modules/ROOT/pages/index.adoc",
			want:     "https://docs.example.com/canton/index.html",
		},
		{
			name:      "tenant override wins over default",
			baseURL:   "https://docs.example.com",
			overrides: map[string]string{"catbm": "handbook"},
			repoPath:  "catbm/modules/ROOT/pages/x.adoc",
			want:      "https://docs.example.com/handbook/x.html",
		},
		{
			name:     "path without modules convention falls back to first segment",
			baseURL:  "https://docs.example.com",
			repoPath: "guides/setup.adoc",
			want:     "https://docs.example.com/guides/setup.html",
		},
		{
			name:     "markdown extension stripped",
			baseURL:  "https://docs.example.com",
			repoPath: "canton/modules/ROOT/pages/intro.md",
			want:     "https://docs.example.com/canton/intro.html",
		},
		{
			name:     "no base url yields empty",
			baseURL:  "",
			repoPath: "canton/modules/ROOT/pages/x.adoc",
			want:     "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deriver := NewDeriver(tc.baseURL, tc.overrides)
			require.Equal(t, tc.want, deriver.SourceURL(tc.repoPath))
		})
	}
}

// TestProductKey verifies the product segment extraction rules.
func TestProductKey(t *testing.T) {
	require.Equal(t, "canton", ProductKey("canton/modules/ROOT/pages/x.adoc"))
	require.Equal(t, "guides", ProductKey("guides/setup.adoc"))
	require.Equal(t, "modules", ProductKey("modules/ROOT/pages/x.adoc"))
	require.Equal(t, "", ProductKey(""))
}

// TestDisplayName verifies known names resolve and unknown keys capitalize.
func TestDisplayName(t *testing.T) {
	require.Equal(t, "Canton", DisplayName("canton"))
	require.Equal(t, "General Documentation", DisplayName("catbm"))
	require.Equal(t, "Splice", DisplayName("splice"))
	require.Equal(t, "", DisplayName(""))
	// multi-byte first rune capitalizes without mangling the encoding
	require.Equal(t, "Übersicht", DisplayName("übersicht"))
}
