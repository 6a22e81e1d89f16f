package itest

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	memgenerator "github.com/skillsprint/roadmap-api/internal/adapters/memory/generator"
	"github.com/skillsprint/roadmap-api/internal/platform/auth/jwks_testutil"
)

var grace = jwks_testutil.Identity{Sub: "uid-grace", Email: "grace@example.com", EmailVerified: true}

type roadmapEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		RoadmapID         string `json:"roadmapId"`
		NumberOfDays      int    `json:"numberOfDays"`
		Roadmap           string `json:"roadmap"`
		RoadmapStructured *struct {
			Title  string           `json:"title"`
			Phases []map[string]any `json:"phases"`
		} `json:"roadmapStructured"`
		UserID string `json:"userId"`
	} `json:"data"`
}

func TestRoadmapFlow_EndToEnd(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	tok := s.token(t, grace)

	status, body, hdr := s.doJSON(t, http.MethodGet, "/api/auth/verify", tok, nil)
	if status != http.StatusOK {
		t.Fatalf("verify status=%d body=%s", status, body)
	}
	requireHeaderPresent(t, hdr, "Content-Type")

	status, body, _ = s.doJSON(t, http.MethodPost, "/api/generate/roadmap", tok,
		map[string]any{"skillName": "Rust", "numberOfDays": 30})
	if status != http.StatusOK {
		t.Fatalf("roadmap status=%d body=%s", status, body)
	}
	got := mustUnmarshal[roadmapEnvelope](t, body)
	if !got.Success || got.Data.NumberOfDays != 30 || got.Data.UserID != grace.Sub {
		t.Fatalf("unexpected envelope: %s", body)
	}
	if got.Data.RoadmapStructured == nil || got.Data.RoadmapStructured.Title == "" {
		t.Fatalf("expected structured roadmap with a title: %s", body)
	}
	if len(got.Data.RoadmapStructured.Phases) == 0 {
		t.Fatalf("expected phases: %s", body)
	}

	// Two generations never share an id.
	_, body2, _ := s.doJSON(t, http.MethodPost, "/api/generate/roadmap", tok,
		map[string]any{"skillName": "Rust", "numberOfDays": 30})
	if mustUnmarshal[roadmapEnvelope](t, body2).Data.RoadmapID == got.Data.RoadmapID {
		t.Fatalf("roadmapId reused")
	}

	status, body, _ = s.doJSON(t, http.MethodGet, "/metrics", "", nil)
	if status != http.StatusOK {
		t.Fatalf("metrics status=%d", status)
	}
	if !strings.Contains(string(body), `skillsprint_roadmap_generations_total{outcome="structured"} 2`) {
		t.Fatalf("expected generation counter in metrics output:\n%s", body)
	}
}

func TestRoadmapFlow_AuthRequired(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)

	status, body, _ := s.doJSON(t, http.MethodPost, "/api/generate/roadmap", "", map[string]any{"skillName": "Rust", "numberOfDays": 30})
	requireError(t, status, body, http.StatusUnauthorized, "No token provided or invalid format")
	if rid := mustUnmarshal[errorResponse](t, body).RequestID; rid == "" {
		t.Fatalf("expected requestId: %s", body)
	}

	// Signed by an unknown key.
	other, err := jwks_testutil.GenerateRSAKeypair("itest-kid")
	if err != nil {
		t.Fatalf("GenerateRSAKeypair: %v", err)
	}
	forged, err := jwks_testutil.MintIDToken(other, issuer, project, grace, s.clk.Now(), time.Hour, nil)
	if err != nil {
		t.Fatalf("MintIDToken: %v", err)
	}
	status, body, _ = s.doJSON(t, http.MethodGet, "/api/generate/skills", forged, nil)
	requireError(t, status, body, http.StatusUnauthorized, "Invalid or expired token")

	if s.gen.Calls() != 0 {
		t.Fatalf("generator called %d times", s.gen.Calls())
	}
}

func TestRoadmapFlow_Validation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	tok := s.token(t, grace)

	for _, days := range []int{0, 366, -5} {
		status, body, _ := s.doJSON(t, http.MethodPost, "/api/generate/roadmap", tok, map[string]any{"skillName": "Rust", "numberOfDays": days})
		if status != http.StatusBadRequest {
			t.Fatalf("days=%d status=%d body=%s", days, status, body)
		}
	}
	status, body, _ := s.doJSON(t, http.MethodPost, "/api/generate/roadmap", tok, map[string]any{"numberOfDays": 30})
	requireError(t, status, body, http.StatusBadRequest, "Missing required fields")

	if s.gen.Calls() != 0 {
		t.Fatalf("generator called %d times", s.gen.Calls())
	}
}

func TestRoadmapFlow_QuotaExceeded(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, memgenerator.NewFailing(errors.New("rpc error: code = ResourceExhausted desc = QUOTA_EXCEEDED")))
	status, body, _ := s.doJSON(t, http.MethodPost, "/api/generate/roadmap", s.token(t, grace),
		map[string]any{"skillName": "Rust", "numberOfDays": 30})
	requireError(t, status, body, http.StatusInternalServerError, "Gemini API quota exceeded")
}

func TestRoadmapFlow_ProseStillSucceeds(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, memgenerator.NewStatic("Here is your plan: read the book."))
	status, body, _ := s.doJSON(t, http.MethodPost, "/api/generate/roadmap", s.token(t, grace),
		map[string]any{"skillName": "Rust", "numberOfDays": 30})
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%s", status, body)
	}
	got := mustUnmarshal[roadmapEnvelope](t, body)
	if got.Data.RoadmapStructured != nil {
		t.Fatalf("expected null roadmapStructured: %s", body)
	}
	if got.Data.Roadmap != "Here is your plan: read the book." {
		t.Fatalf("raw text changed: %q", got.Data.Roadmap)
	}
}
