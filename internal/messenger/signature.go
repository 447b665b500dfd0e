package messenger

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // legacy X-Hub-Signature header
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/staya/staya-chatbot-go/internal/errors"
)

// Signature headers sent with every webhook POST.
const (
	HeaderSignature256 = "X-Hub-Signature-256"
	HeaderSignature    = "X-Hub-Signature"
)

// VerifySignature checks body against the signature headers using the app
// secret. The sha256 header is preferred; the sha1 header is only consulted
// when the sha256 one is absent.
func VerifySignature(appSecret string, body []byte, sig256, sig1 string) error {
	switch {
	case sig256 != "":
		return verify(sha256.New, appSecret, body, sig256, "sha256=")
	case sig1 != "":
		return verify(sha1.New, appSecret, body, sig1, "sha1=")
	default:
		return errors.ErrInvalidSignature
	}
}

func verify(newHash func() hash.Hash, secret string, body []byte, header, prefix string) error {
	hexSig, ok := strings.CutPrefix(header, prefix)
	if !ok {
		return errors.ErrInvalidSignature
	}
	got, err := hex.DecodeString(hexSig)
	if err != nil {
		return errors.ErrInvalidSignature
	}

	mac := hmac.New(newHash, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return errors.ErrInvalidSignature
	}
	return nil
}

// Sign returns the X-Hub-Signature-256 header value for body.
func Sign(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
