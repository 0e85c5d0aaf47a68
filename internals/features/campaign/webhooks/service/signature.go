package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks the X-Razorpay-Signature header against
// HMAC-SHA256(secret, rawBody) in lowercase hex. Comparison is
// constant-time. An empty secret always fails: a misconfigured
// deployment must reject deliveries, never accept them unverified.
func VerifySignature(rawBody []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
