package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	t.Run("accepts matching signature", func(t *testing.T) {
		assert.True(t, VerifySignature(body, sign(body, secret), secret))
	})

	t.Run("rejects mutated body", func(t *testing.T) {
		sig := sign(body, secret)
		mutated := append([]byte{}, body...)
		mutated[0] ^= 0x01
		assert.False(t, VerifySignature(mutated, sig, secret))
	})

	t.Run("rejects mutated signature", func(t *testing.T) {
		sig := []byte(sign(body, secret))
		sig[0] = flipHexChar(sig[0])
		assert.False(t, VerifySignature(body, string(sig), secret))
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		assert.False(t, VerifySignature(body, sign(body, "other"), secret))
	})

	t.Run("rejects malformed signature", func(t *testing.T) {
		assert.False(t, VerifySignature(body, "not-hex-at-all", secret))
		assert.False(t, VerifySignature(body, "", secret))
	})

	t.Run("fails closed without a secret", func(t *testing.T) {
		assert.False(t, VerifySignature(body, sign(body, ""), ""))
	})
}

func flipHexChar(b byte) byte {
	if b == '0' {
		return '1'
	}
	return '0'
}
