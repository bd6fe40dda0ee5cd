package vault

import (
	"strings"
	"testing"

	errors "github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

// TestEncryptDecryptRoundtrip verifies a sealed token decrypts back to the original.
func TestEncryptDecryptRoundtrip(t *testing.T) {
	v, err := New("a passphrase that is long enough")
	require.NoError(t, err)

	cipherText, iv, err := v.Encrypt("glpat-secret-token")
	require.NoError(t, err)
	require.Contains(t, cipherText, ":")
	require.NotEmpty(t, iv)

	plain, err := v.Decrypt(cipherText, iv)
	require.NoError(t, err)
	require.Equal(t, "glpat-secret-token", plain)
}

// TestKeyDerivationIsDeterministic verifies two vaults built from the same
// passphrase interoperate across restarts.
func TestKeyDerivationIsDeterministic(t *testing.T) {
	first, err := New("shared passphrase")
	require.NoError(t, err)
	second, err := New("shared passphrase")
	require.NoError(t, err)

	cipherText, iv, err := first.Encrypt("token")
	require.NoError(t, err)

	plain, err := second.Decrypt(cipherText, iv)
	require.NoError(t, err)
	require.Equal(t, "token", plain)
}

// TestDecryptTamperedPayload verifies any tampering surfaces as ErrIntegrity.
func TestDecryptTamperedPayload(t *testing.T) {
	v, err := New("a passphrase")
	require.NoError(t, err)

	cipherText, iv, err := v.Encrypt("token")
	require.NoError(t, err)

	cipherPart, tagPart, _ := strings.Cut(cipherText, ":")

	flip := func(s string) string {
		replacement := "0"
		if s[0] == '0' {
			replacement = "1"
		}
		return replacement + s[1:]
	}

	cases := []struct {
		name       string
		cipherText string
		iv         string
	}{
		{"tampered ciphertext", flip(cipherPart) + ":" + tagPart, iv},
		{"tampered tag", cipherPart + ":" + flip(tagPart), iv},
		{"wrong iv", cipherText, flip(iv)},
		{"missing separator", cipherPart + tagPart, iv},
		{"bad hex", "zz:" + tagPart, iv},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Decrypt(tc.cipherText, tc.iv)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrIntegrity))
		})
	}
}

// TestNewFailsClosedWithoutPassphrase verifies the vault refuses to start
// without an explicit passphrase.
func TestNewFailsClosedWithoutPassphrase(t *testing.T) {
	for _, passphrase := range []string{"", "   ", "\t\n"} {
		_, err := New(passphrase)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrNotConfigured))
	}
}

// TestWrongPassphraseFailsIntegrity verifies decrypting with another key
// is an integrity failure, not a silent wrong answer.
func TestWrongPassphraseFailsIntegrity(t *testing.T) {
	first, err := New("passphrase one")
	require.NoError(t, err)
	second, err := New("passphrase two")
	require.NoError(t, err)

	cipherText, iv, err := first.Encrypt("token")
	require.NoError(t, err)

	_, err = second.Decrypt(cipherText, iv)
	require.True(t, errors.Is(err, ErrIntegrity))
}
