package config

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// FirebaseJWKSURL publishes the keys that sign Firebase Auth ID tokens.
	FirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

	firebaseIssuerPrefix = "https://securetoken.google.com/"
)

// FirebaseConfig configures ID-token verification for a Firebase project.
//
// Issuer and Audience derive from ProjectID unless overridden. ClientEmail and PrivateKey are the
// service-account credential; the verifier does not need them, but cmd/devjwt signs with the key.
type FirebaseConfig struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  *rsa.PrivateKey

	Issuer   string
	Audience string
	JWKSURL  string

	ClockSkew              time.Duration
	JWKSRefreshInterval    time.Duration
	JWKSMinRefreshInterval time.Duration

	HTTPTimeout time.Duration
}

// UnescapePrivateKey turns the single-line env form ("-----BEGIN...\\n...") back into PEM.
func UnescapePrivateKey(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func LoadFirebaseConfigFromEnv() (FirebaseConfig, error) {
	projectID := strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID"))
	if projectID == "" {
		return FirebaseConfig{}, fmt.Errorf("missing required env var: FIREBASE_PROJECT_ID")
	}

	cfg := FirebaseConfig{
		ProjectID:   projectID,
		ClientEmail: strings.TrimSpace(os.Getenv("FIREBASE_CLIENT_EMAIL")),
		Issuer:      firebaseIssuerPrefix + projectID,
		Audience:    projectID,
		JWKSURL:     FirebaseJWKSURL,
		ClockSkew:   30 * time.Second,
		// Google rotates securetoken keys every few hours; refresh well inside that window.
		JWKSRefreshInterval: time.Hour,
		// Bound refresh frequency when a token presents an unknown kid (avoid thundering herd).
		JWKSMinRefreshInterval: 10 * time.Second,
		HTTPTimeout:            5 * time.Second,
	}

	if v := os.Getenv("FIREBASE_PRIVATE_KEY"); v != "" {
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(UnescapePrivateKey(v)))
		if err != nil {
			return FirebaseConfig{}, fmt.Errorf("FIREBASE_PRIVATE_KEY must be a PEM RSA private key: %w", err)
		}
		cfg.PrivateKey = key
	}
	if v := strings.TrimSpace(os.Getenv("FIREBASE_ISSUER")); v != "" {
		cfg.Issuer = v
	}
	if v := strings.TrimSpace(os.Getenv("FIREBASE_JWKS_URL")); v != "" {
		cfg.JWKSURL = v
	}

	var err error
	if cfg.ClockSkew, err = durationFromEnv("JWT_CLOCK_SKEW", cfg.ClockSkew); err != nil {
		return FirebaseConfig{}, err
	}
	if cfg.JWKSRefreshInterval, err = durationFromEnv("JWT_JWKS_REFRESH_INTERVAL", cfg.JWKSRefreshInterval); err != nil {
		return FirebaseConfig{}, err
	}
	if cfg.JWKSMinRefreshInterval, err = durationFromEnv("JWT_JWKS_MIN_REFRESH_INTERVAL", cfg.JWKSMinRefreshInterval); err != nil {
		return FirebaseConfig{}, err
	}

	return cfg, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 30s): %w", key, err)
	}
	return d, nil
}
