package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSanitizeLoggedSQLParamLongString verifies oversized document bodies are summarized in logs.
func TestSanitizeLoggedSQLParamLongString(t *testing.T) {
	longString := strings.Repeat("#", 300)

	sanitized := sanitizeLoggedSQLParam(longString, 256)
	require.Equal(t, "<string:len=300,truncated>", sanitized)
}

// TestSanitizeLoggedSQLParamShortValues verifies small params pass through untouched.
func TestSanitizeLoggedSQLParamShortValues(t *testing.T) {
	require.Equal(t, "agent-1", sanitizeLoggedSQLParam("agent-1", 256))
	require.Equal(t, 42, sanitizeLoggedSQLParam(42, 256))
	require.Equal(t, []byte("ok"), sanitizeLoggedSQLParam([]byte("ok"), 256))
}

// TestParamsFilter verifies the logger sanitizes oversized values in place.
func TestParamsFilter(t *testing.T) {
	logger := &truncatingParamsLogger{maxLoggedParamLength: 256}
	longBytes := []byte(fmt.Sprintf("%0300d", 0))

	sql, params := logger.ParamsFilter(context.Background(), "INSERT INTO documents VALUES (?, ?)", "doc.md", longBytes)
	require.Equal(t, "INSERT INTO documents VALUES (?, ?)", sql)
	require.Len(t, params, 2)
	require.Equal(t, "doc.md", params[0])
	require.Equal(t, "<bytes:len=300,truncated>", params[1])
}
