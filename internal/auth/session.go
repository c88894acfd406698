// internal/auth/session.go

// Package auth covers the admin console's credentials: argon2id password
// hashes at rest and short-lived ed25519-signed JWTs for the session
// cookie.
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// privateKey and publicKey sign and verify admin session tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL is the admin session lifetime; zero means tokens never expire.
	tokenTTL time.Duration
)

const defaultTokenTTL = 12 * time.Hour

// parseTokenTTL reads ADMIN_TOKEN_TTL (a Go duration, or "never").
func parseTokenTTL() {
	raw := os.Getenv("ADMIN_TOKEN_TTL")
	switch raw {
	case "":
		tokenTTL = defaultTokenTTL
	case "never", "0":
		tokenTTL = 0
	default:
		d, err := time.ParseDuration(raw)
		if err != nil {
			fmt.Printf("failed to parse ADMIN_TOKEN_TTL: %v\n", err)
			os.Exit(1)
		}
		tokenTTL = d
	}
}

// Init generates a fresh ed25519 key pair at runtime. Sessions do not
// survive a restart, which is acceptable for the admin console.
func Init() {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		fmt.Printf("failed to generate ed25519 key pair: %v\n", err)
		os.Exit(1)
	}
	parseTokenTTL()
}

// InitFromPath loads a persisted ed25519 key pair so sessions survive
// restarts.
func InitFromPath(privatePath, publicPath string) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}

	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	parseTokenTTL()
	return nil
}

// CreateJWT signs a session token with "sub" = adminID.
func CreateJWT(adminID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": adminID,
	}
	if tokenTTL > 0 {
		claims["exp"] = time.Now().Add(tokenTTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateJWT verifies a session token and returns the admin id from
// its "sub" claim.
func AuthenticateJWT(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})

	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}

	adminID, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("missing sub in jwt")
	}

	return adminID, nil
}
