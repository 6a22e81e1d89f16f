package main

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/skillsprint/roadmap-api/internal/platform/auth/jwks_testutil"
	"github.com/skillsprint/roadmap-api/internal/platform/config"
	"github.com/skillsprint/roadmap-api/internal/platform/logger"
)

// Tiny dev-only Firebase ID token issuer + JWKS server.
//
// This is NOT Firebase Auth. It mints RS256 tokens with the same iss/aud/sub/email claims so the API
// can run real verification locally: point FIREBASE_JWKS_URL at /.well-known/jwks.json and
// FIREBASE_ISSUER at this issuer.

type issuer struct {
	kp       jwks_testutil.Keypair
	iss      string
	aud      string
	ttl      time.Duration
	jwksJSON []byte
	now      func() time.Time
}

func main() {
	log, err := logger.New(getenv("NODE_ENV", "development"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "5556")
	project := getenv("FIREBASE_PROJECT_ID", "skillsprint-dev")

	priv, err := loadOrGenerateKey(os.Getenv("FIREBASE_PRIVATE_KEY"))
	if err != nil {
		log.Fatal("load signing key", zap.Error(err))
	}

	iss, err := newIssuer(jwks_testutil.Keypair{Kid: getenv("KID", "dev-kid-1"), Private: priv},
		getenv("ISSUER", "https://securetoken.google.com/"+project), project,
		getenvDuration("TTL", time.Hour))
	if err != nil {
		log.Fatal("marshal jwks", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           iss.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("devjwt listening",
		zap.String("addr", ":"+port),
		zap.String("iss", iss.iss),
		zap.String("aud", iss.aud),
		zap.String("kid", iss.kp.Kid),
		zap.Duration("ttl", iss.ttl),
	)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("listen", zap.Error(err))
	}
}

func newIssuer(kp jwks_testutil.Keypair, iss, aud string, ttl time.Duration) (*issuer, error) {
	b, err := jwks_testutil.MarshalJWKS([]jwks_testutil.Keypair{kp})
	if err != nil {
		return nil, err
	}
	return &issuer{kp: kp, iss: iss, aud: aud, ttl: ttl, jwksJSON: b, now: time.Now}, nil
}

func (i *issuer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(i.jwksJSON)
	})

	// Mint an ID token:
	//   GET /token?sub=alice&email=alice@example.com&email_verified=true
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sub := strings.TrimSpace(q.Get("sub"))
		if sub == "" {
			http.Error(w, "missing sub", http.StatusBadRequest)
			return
		}
		verified, _ := strconv.ParseBool(q.Get("email_verified"))
		id := jwks_testutil.Identity{Sub: sub, Email: strings.TrimSpace(q.Get("email")), EmailVerified: verified}

		now := i.now().UTC()
		token, err := jwks_testutil.MintIDToken(i.kp, i.iss, i.aud, id, now, i.ttl, nil)
		if err != nil {
			http.Error(w, "failed to mint token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"sub":   sub,
			"email": id.Email,
			"iss":   i.iss,
			"aud":   i.aud,
			"exp":   now.Add(i.ttl).Unix(),
		})
	})

	return mux
}

// loadOrGenerateKey parses a \n-escaped PEM key, or generates a throwaway one when pem is empty.
func loadOrGenerateKey(pem string) (*rsa.PrivateKey, error) {
	if strings.TrimSpace(pem) == "" {
		kp, err := jwks_testutil.GenerateRSAKeypair("")
		if err != nil {
			return nil, err
		}
		return kp.Private, nil
	}
	return jwt.ParseRSAPrivateKeyFromPEM([]byte(config.UnescapePrivateKey(pem)))
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
