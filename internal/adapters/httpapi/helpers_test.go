package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	memclock "github.com/skillsprint/roadmap-api/internal/adapters/memory/clock"
	memgenerator "github.com/skillsprint/roadmap-api/internal/adapters/memory/generator"
	"github.com/skillsprint/roadmap-api/internal/app/roadmaps"
	"github.com/skillsprint/roadmap-api/internal/app/skills"
	"github.com/skillsprint/roadmap-api/internal/domain"
	"github.com/skillsprint/roadmap-api/internal/platform/auth/jwks_testutil"
	"github.com/skillsprint/roadmap-api/internal/platform/auth/jwtverifier"
	"github.com/skillsprint/roadmap-api/internal/platform/config"
	"github.com/skillsprint/roadmap-api/internal/ports/out/identity"
)

const (
	testProject = "skillsprint-test"
	testIssuer  = "https://securetoken.google.com/skillsprint-test"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

var ada = jwks_testutil.Identity{Sub: "uid-ada", Email: "ada@example.com", EmailVerified: true}

// countingVerifier records how often the wrapped verifier is consulted.
type countingVerifier struct {
	next  identity.Verifier
	calls atomic.Int64
}

func (v *countingVerifier) Verify(ctx context.Context, token string) (domain.Claim, error) {
	v.calls.Add(1)
	return v.next.Verify(ctx, token)
}

type fixture struct {
	handler  http.Handler
	gen      *memgenerator.Static
	verifier *countingVerifier
	clk      *memclock.ManualClock
	mint     func(id jwks_testutil.Identity) string
}

type fixtureOptions struct {
	gen          *memgenerator.Static
	exposeDetail bool
	limiter      func(clk *memclock.ManualClock) *RateLimiter
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	jwksSrv, setKeys, _ := jwks_testutil.NewRotatingJWKSServer()
	t.Cleanup(jwksSrv.Close)

	kp, err := jwks_testutil.GenerateRSAKeypair("kid-1")
	require.NoError(t, err)
	setKeys([]jwks_testutil.Keypair{kp})

	clk := memclock.NewManualClock(testNow)
	cfg := config.FirebaseConfig{
		ProjectID:              testProject,
		Issuer:                 testIssuer,
		Audience:               testProject,
		JWKSURL:                jwksSrv.URL,
		JWKSRefreshInterval:    10 * time.Minute,
		JWKSMinRefreshInterval: 0,
		HTTPTimeout:            2 * time.Second,
	}
	cv := &countingVerifier{next: jwtverifier.NewWithOptions(cfg, jwksSrv.Client(), clk)}

	gen := opts.gen
	if gen == nil {
		gen = memgenerator.NewCanned()
	}

	log := zaptest.NewLogger(t)
	svc := roadmaps.NewService(gen, clk, log)
	api := NewServer(svc, skills.Default(), clk, ServerOptions{
		GeminiConfigured:  true,
		ExposeErrorDetail: opts.exposeDetail,
		Log:               log,
	})

	ro := RouterOptions{
		AuthMiddleware:    NewAuthMiddleware(cv, log),
		ExposePanicDetail: opts.exposeDetail,
		Log:               log,
	}
	if opts.limiter != nil {
		ro.RoadmapLimiter = opts.limiter(clk)
		t.Cleanup(ro.RoadmapLimiter.Stop)
	}

	return &fixture{
		handler:  NewRouter(api, ro),
		gen:      gen,
		verifier: cv,
		clk:      clk,
		mint: func(id jwks_testutil.Identity) string {
			tok, err := jwks_testutil.MintIDToken(kp, testIssuer, testProject, id, clk.Now(), 5*time.Minute, nil)
			require.NoError(t, err)
			return tok
		},
	}
}

func (f *fixture) do(t *testing.T, method, path, authz string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) bearer(id jwks_testutil.Identity) string { return "Bearer " + f.mint(id) }

type errorResponse struct {
	Success   bool    `json:"success"`
	Error     string  `json:"error"`
	Message   string  `json:"message"`
	Details   *string `json:"details"`
	RequestID *string `json:"requestId"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	return out
}

func newRequestWithHeaders(method, path string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
