package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignaturePrefix is prepended to the hex digest in the signature header so
// the scheme can evolve without breaking receivers.
const SignaturePrefix = "sha256="

// Sign computes the hex-encoded HMAC-SHA256 of the delivery body. Receivers
// recompute it with the shared endpoint secret to authenticate the payload.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature header value against the body.
func VerifySignature(secret string, body []byte, header string) bool {
	want := SignaturePrefix + Sign(secret, body)
	return hmac.Equal([]byte(want), []byte(header))
}
