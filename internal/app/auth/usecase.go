package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

const signaturePrefix = "sha256="

var (
	ErrInvalidRequest     = errors.New("invalid auth request")
	ErrInvalidCredentials = errors.New("invalid webhook credentials")
)

// VerifyRequest carries what the producer sent with a webhook. Either a
// body signature or the shared token is enough.
type VerifyRequest struct {
	Body      []byte
	Signature string
	Token     string
}

// VerifyUseCase authenticates webhook producers against a shared secret.
// An empty secret turns verification off.
type VerifyUseCase struct {
	Secret string
}

func (u VerifyUseCase) Enabled() bool {
	return u.Secret != ""
}

func (u VerifyUseCase) Execute(_ context.Context, req VerifyRequest) error {
	if !u.Enabled() {
		return nil
	}
	sig := strings.TrimSpace(req.Signature)
	token := strings.TrimSpace(req.Token)
	if sig == "" && token == "" {
		return ErrInvalidRequest
	}

	if sig != "" {
		got, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(sig), signaturePrefix))
		if err != nil {
			return ErrInvalidCredentials
		}
		if !hmac.Equal(got, Sign([]byte(u.Secret), req.Body)) {
			return ErrInvalidCredentials
		}
		return nil
	}

	if subtle.ConstantTimeCompare(digest(token), digest(u.Secret)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// Sign returns the HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

func digest(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}
