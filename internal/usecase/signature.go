package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// SignWebhookBody returns the header value a sender must attach:
// "sha256=" + hex(HMAC-SHA256(secret, body)).
func SignWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature accepts the value with or without the "sha256=" prefix.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if secret == "" || signature == "" {
		return false
	}
	signature = strings.TrimPrefix(signature, signaturePrefix)
	expected := strings.TrimPrefix(SignWebhookBody(secret, body), signaturePrefix)
	return hmac.Equal([]byte(signature), []byte(expected))
}
