package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	// PendingCookieName holds the short-lived token between the password and
	// code steps of a two-factor login.
	PendingCookieName = "eventreg_pending"
	TOTPLoginPath     = "/admin/login/totp"

	pendingSubject = "totp_pending"
	PendingTTL     = 5 * time.Minute
)

// GenerateTOTPSecret returns a new key and its otpauth URL as a PNG data URI
// for authenticator apps to scan.
func GenerateTOTPSecret(username, issuer string) (*otp.Key, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: username,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return key, dataURI, nil
}

func ValidateTOTPCode(code, secret string) bool {
	if code == "" || secret == "" {
		return false
	}
	return totp.Validate(code, secret)
}

type PendingTOTPClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

func GeneratePendingToken(userID int, secret string) (string, error) {
	now := time.Now()
	claims := PendingTOTPClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(PendingTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   pendingSubject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidatePendingToken(tokenStr, secret string) (int, error) {
	claims := &PendingTOTPClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithSubject(pendingSubject))
	if err != nil {
		return 0, fmt.Errorf("invalid pending token: %w", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("pending token is not valid")
	}
	return claims.UserID, nil
}
