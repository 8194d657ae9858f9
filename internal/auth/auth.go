// File: internal/auth/auth.go
// MUD Engine - Credential Hashing & MFA

// Package auth wraps password hashing and TOTP multi-factor
// verification behind a small API the session layer calls during the
// login handshake. The persistence store is opaque to this package:
// it only deals with the hash/secret strings a repository hands it.
package auth

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password at the given bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// EnrollMFA generates a new TOTP secret for accountName and a PNG QR
// code encoding its otpauth:// URI for the player to scan.
func EnrollMFA(issuer, accountName string) (secret string, qrPNG []byte, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", nil, fmt.Errorf("generate totp key: %w", err)
	}

	qrCode, err := qr.Encode(key.URL(), qr.M, qr.Auto)
	if err != nil {
		return "", nil, fmt.Errorf("encode qr barcode: %w", err)
	}
	scaled, err := barcode.Scale(qrCode, 256, 256)
	if err != nil {
		return "", nil, fmt.Errorf("scale qr barcode: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", nil, fmt.Errorf("encode qr png: %w", err)
	}

	return key.Secret(), buf.Bytes(), nil
}

// ValidateMFA checks a 6-digit TOTP code against the stored secret.
func ValidateMFA(secret, code string) bool {
	if secret == "" {
		return false
	}
	valid, err := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return valid
}
