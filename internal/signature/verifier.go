package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Header is the request header Meta uses to carry the webhook body signature.
const Header = "X-Hub-Signature-256"

const prefix = "sha256="

// Verifier validates X-Hub-Signature-256 headers against raw webhook bodies.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a verifier for the given app secret. An empty secret
// yields a verifier whose Required() is false.
func NewVerifier(appSecret string) *Verifier {
	return &Verifier{secret: []byte(appSecret)}
}

// Required reports whether an app secret is configured at all. Callers skip
// verification when it is not; that bypass is a documented gap, not an error.
func (v *Verifier) Required() bool {
	return len(v.secret) > 0
}

// Verify reports whether headerSignature matches the HMAC-SHA256 of rawBody
// under the configured secret. It never panics and fails closed on malformed
// input, using a constant-time comparison for the digest itself.
func (v *Verifier) Verify(rawBody []byte, headerSignature string) bool {
	if len(v.secret) == 0 || headerSignature == "" {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)
	expected := prefix + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(headerSignature))
}
