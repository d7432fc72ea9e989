package recorder

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// MaxHashSize caps how many bytes of a comment are fingerprinted.
const MaxHashSize = 1024 * 1024

// Hasher fingerprints comment text. With a key it computes HMAC-SHA256,
// which stops dictionary lookups of short comments against the audit log;
// without one it is plain SHA-256.
type Hasher struct {
	key []byte
}

// NewHasher returns a Hasher. An empty key selects plain SHA-256.
func NewHasher(key string) *Hasher {
	if key == "" {
		return &Hasher{}
	}
	return &Hasher{key: []byte(key)}
}

// Sum returns the hex fingerprint of content, or "" for empty content.
// Only the first MaxHashSize bytes are hashed.
func (h *Hasher) Sum(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	if len(content) > MaxHashSize {
		content = content[:MaxHashSize]
	}

	var d hash.Hash
	if h != nil && len(h.key) > 0 {
		d = hmac.New(sha256.New, h.key)
	} else {
		d = sha256.New()
	}
	d.Write(content)
	return hex.EncodeToString(d.Sum(nil))
}

// SumString is Sum for strings.
func (h *Hasher) SumString(s string) string {
	return h.Sum([]byte(s))
}

// HashString returns the unkeyed SHA-256 fingerprint of s.
func HashString(s string) string {
	return (*Hasher)(nil).SumString(s)
}

// TruncateString shortens s to at most maxLen runes, ending in "..." when
// it had to cut.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
