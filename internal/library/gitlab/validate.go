package gitlab

import (
	"context"
	"fmt"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

const validationSampleLimit = 5

// ValidationResult is the advisory outcome of a pre-save connection check.
// Failures are captured here instead of returned as errors because validation
// feeds UI feedback, unlike the fetch operations used during an actual run.
type ValidationResult struct {
	OK          bool     `json:"ok"`
	Message     string   `json:"message"`
	FileCount   int      `json:"fileCount"`
	SampleFiles []string `json:"sampleFiles"`
}

// Validate composes project resolution with a tree listing and extension
// filter, returning up to five matching paths as a sample.
func (c *Client) Validate(ctx context.Context, pathFilter string, extensions []string) ValidationResult {
	if _, err := c.ResolveProject(ctx); err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken):
			return ValidationResult{Message: "access token was rejected, check the configured token"}
		case errors.Is(err, ErrProjectNotFound):
			return ValidationResult{Message: "project not found, check the repository url"}
		default:
			return ValidationResult{Message: fmt.Sprintf("gitlab api unreachable: %v", err)}
		}
	}

	entries, err := c.ListTree(ctx, pathFilter, true)
	if err != nil {
		return ValidationResult{Message: fmt.Sprintf("list repository tree: %v", err)}
	}

	var matched []string
	for _, entry := range entries {
		if entry.Type != "blob" {
			continue
		}
		if MatchesExtension(entry.Name, extensions) {
			matched = append(matched, entry.Path)
		}
	}

	sample := matched
	if len(sample) > validationSampleLimit {
		sample = sample[:validationSampleLimit]
	}

	if len(matched) == 0 {
		return ValidationResult{
			OK:      true,
			Message: "connection ok, no matching files under the configured path yet",
		}
	}

	return ValidationResult{
		OK:          true,
		Message:     fmt.Sprintf("connection ok, %d matching files", len(matched)),
		FileCount:   len(matched),
		SampleFiles: sample,
	}
}

// MatchesExtension reports whether name ends with one of the configured
// extensions, case-insensitively.
func MatchesExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(strings.TrimSpace(ext))) {
			return true
		}
	}

	return false
}
