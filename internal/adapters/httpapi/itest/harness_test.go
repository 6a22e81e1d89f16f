package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"

	"github.com/skillsprint/roadmap-api/internal/adapters/httpapi"
	memclock "github.com/skillsprint/roadmap-api/internal/adapters/memory/clock"
	memgenerator "github.com/skillsprint/roadmap-api/internal/adapters/memory/generator"
	"github.com/skillsprint/roadmap-api/internal/app/roadmaps"
	"github.com/skillsprint/roadmap-api/internal/app/skills"
	"github.com/skillsprint/roadmap-api/internal/platform/auth/jwks_testutil"
	"github.com/skillsprint/roadmap-api/internal/platform/auth/jwtverifier"
	"github.com/skillsprint/roadmap-api/internal/platform/config"
	"github.com/skillsprint/roadmap-api/internal/platform/metrics"
)

const (
	project = "skillsprint-itest"
	issuer  = "https://securetoken.google.com/skillsprint-itest"
)

type testServer struct {
	baseURL string
	client  *http.Client
	gen     *memgenerator.Static
	clk     *memclock.ManualClock
	kp      jwks_testutil.Keypair
}

func newTestServer(t *testing.T, gen *memgenerator.Static) *testServer {
	t.Helper()

	jwksSrv, setKeys, _ := jwks_testutil.NewRotatingJWKSServer()
	t.Cleanup(jwksSrv.Close)
	kp, err := jwks_testutil.GenerateRSAKeypair("itest-kid")
	if err != nil {
		t.Fatalf("GenerateRSAKeypair: %v", err)
	}
	setKeys([]jwks_testutil.Keypair{kp})

	clk := memclock.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	v := jwtverifier.NewWithOptions(config.FirebaseConfig{
		ProjectID:           project,
		Issuer:              issuer,
		Audience:            project,
		JWKSURL:             jwksSrv.URL,
		JWKSRefreshInterval: 10 * time.Minute,
		HTTPTimeout:         2 * time.Second,
	}, jwksSrv.Client(), clk)

	if gen == nil {
		gen = memgenerator.NewCanned()
	}

	log := zaptest.NewLogger(t)
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	svc := roadmaps.NewService(gen, clk, log)
	svc.Metrics = collector
	api := httpapi.NewServer(svc, skills.Default(), clk, httpapi.ServerOptions{GeminiConfigured: true, Log: log})

	handler := httpapi.NewRouter(api, httpapi.RouterOptions{
		AuthMiddleware: httpapi.NewAuthMiddleware(v, log),
		MetricsHandler: metrics.Handler(reg),
		StatusRecorder: collector,
		Log:            log,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{baseURL: srv.URL, client: srv.Client(), gen: gen, clk: clk, kp: kp}
}

func (s *testServer) token(t *testing.T, id jwks_testutil.Identity) string {
	t.Helper()
	tok, err := jwks_testutil.MintIDToken(s.kp, issuer, project, id, s.clk.Now(), time.Hour, nil)
	if err != nil {
		t.Fatalf("MintIDToken: %v", err)
	}
	return tok
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, token string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireError(t *testing.T, status int, body []byte, wantStatus int, wantError string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error != wantError {
		t.Fatalf("error=%q want=%q body=%s", got.Error, wantError, string(body))
	}
	if got.Success {
		t.Fatalf("success=true on error body: %s", string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
