// Package vault encrypts per-agent repository access tokens at rest.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// keySalt is fixed so the same passphrase always derives the same key
	// across process restarts.
	keySalt          = "kb-refresh-credential-vault-v1"
	pbkdf2Iterations = 210000
	keyLength        = 32
)

var (
	// ErrNotConfigured indicates no vault passphrase has been set.
	ErrNotConfigured = errors.New("credential vault passphrase not configured")
	// ErrIntegrity indicates the stored credential failed authentication on decrypt.
	ErrIntegrity = errors.New("credential integrity check failed")
)

// Vault encrypts and decrypts credentials with a key derived from a configured
// passphrase. Construct one per process and inject it; there is no shared instance.
type Vault struct {
	key []byte
}

// New derives the working key from passphrase via PBKDF2-SHA256.
// An empty passphrase fails closed with ErrNotConfigured.
func New(passphrase string) (*Vault, error) {
	passphrase = strings.TrimSpace(passphrase)
	if passphrase == "" {
		return nil, errors.WithStack(ErrNotConfigured)
	}

	return &Vault{
		key: pbkdf2.Key([]byte(passphrase), []byte(keySalt), pbkdf2Iterations, keyLength, sha256.New),
	}, nil
}

// Encrypt seals plaintext with AES-256-GCM under a random per-call IV.
// The returned ciphertext is "cipherHex:tagHex"; the IV hex is stored separately.
func (v *Vault) Encrypt(plaintext string) (cipherTextHex, ivHex string, err error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", "", errors.Wrap(err, "new cipher")
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", "", errors.Wrap(err, "new gcm")
	}

	iv := make([]byte, gcm.NonceSize())
	if _, err = rand.Read(iv); err != nil {
		return "", "", errors.Wrap(err, "generate iv")
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	tagOffset := len(sealed) - gcm.Overhead()

	return hex.EncodeToString(sealed[:tagOffset]) + ":" + hex.EncodeToString(sealed[tagOffset:]),
		hex.EncodeToString(iv), nil
}

// Decrypt opens a "cipherHex:tagHex" payload with its IV. Any tampering with
// the ciphertext, the tag, or the IV surfaces as ErrIntegrity.
func (v *Vault) Decrypt(cipherTextHex, ivHex string) (string, error) {
	cipherPart, tagPart, found := strings.Cut(cipherTextHex, ":")
	if !found {
		return "", errors.Wrap(ErrIntegrity, "malformed credential payload")
	}

	cipherText, err := hex.DecodeString(cipherPart)
	if err != nil {
		return "", errors.Wrap(ErrIntegrity, "decode ciphertext hex")
	}

	tag, err := hex.DecodeString(tagPart)
	if err != nil {
		return "", errors.Wrap(ErrIntegrity, "decode tag hex")
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", errors.Wrap(ErrIntegrity, "decode iv hex")
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", errors.Wrap(err, "new cipher")
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Wrap(err, "new gcm")
	}

	if len(iv) != gcm.NonceSize() {
		return "", errors.Wrap(ErrIntegrity, "bad iv length")
	}

	plaintext, err := gcm.Open(nil, iv, append(cipherText, tag...), nil)
	if err != nil {
		return "", errors.Wrap(ErrIntegrity, "open credential")
	}

	return string(plaintext), nil
}
