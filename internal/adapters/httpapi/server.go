package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"

	"go.uber.org/zap"

	"github.com/skillsprint/roadmap-api/internal/app/roadmaps"
	"github.com/skillsprint/roadmap-api/internal/app/skills"
	"github.com/skillsprint/roadmap-api/internal/domain"
	clockport "github.com/skillsprint/roadmap-api/internal/ports/out/clock"
	"github.com/skillsprint/roadmap-api/internal/ports/out/identity"
)

// maxBodyBytes matches the usual 100kb JSON body limit of web frameworks.
const maxBodyBytes = 100 << 10

const isoMillis = "2006-01-02T15:04:05.000Z"

// ServerOptions carries process-level flags that affect response bodies.
type ServerOptions struct {
	// GeminiConfigured is reported by the generator health endpoint.
	GeminiConfigured bool
	// ExposeErrorDetail echoes upstream error text in 500 bodies (development mode only).
	ExposeErrorDetail bool
	Log               *zap.Logger
}

// Server implements the HTTP handlers. It holds no per-request state.
type Server struct {
	roadmaps *roadmaps.Service
	skills   *skills.Catalog
	clk      clockport.Clock
	log      *zap.Logger

	geminiConfigured  bool
	exposeErrorDetail bool
}

func NewServer(rs *roadmaps.Service, catalog *skills.Catalog, clk clockport.Clock, opts ServerOptions) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		roadmaps:          rs,
		skills:            catalog,
		clk:               clk,
		log:               log,
		geminiConfigured:  opts.GeminiConfigured,
		exposeErrorDetail: opts.ExposeErrorDetail,
	}
}

func (s *Server) now() string { return s.clk.Now().UTC().Format(isoMillis) }

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Health is the process liveness check (GET /api/health).
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Message:   "SkillSprint server is running!",
		Timestamp: s.now(),
	})
}

type generatorHealthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	GeminiConfigured bool   `json:"geminiConfigured"`
	Timestamp        string `json:"timestamp"`
}

// GeneratorHealth reports whether a generator API key is present. No call is made upstream.
func (s *Server) GeneratorHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, generatorHealthResponse{
		Status:           "OK",
		Service:          "SkillSprint Roadmap Generator",
		GeminiConfigured: s.geminiConfigured,
		Timestamp:        s.now(),
	})
}

type userInfo struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

func userFromClaim(c domain.Claim) userInfo {
	return userInfo{UID: string(c.Subject), Email: c.Email, EmailVerified: c.EmailVerified}
}

type verifyResponse struct {
	Message string   `json:"message"`
	User    userInfo `json:"user"`
}

// VerifySession echoes the caller's identity (GET /api/auth/verify).
func (s *Server) VerifySession(w http.ResponseWriter, r *http.Request) {
	claim, ok := ClaimFromContext(r.Context())
	if !ok {
		writeAuthError(w, r, identity.ReasonMissingToken)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Message: "Token is valid", User: userFromClaim(claim)})
}

type testAuthResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	User      userInfo `json:"user"`
	Timestamp string   `json:"timestamp"`
}

// TestAuth is a probe for client integrations (GET /api/generate/test-auth).
func (s *Server) TestAuth(w http.ResponseWriter, r *http.Request) {
	claim, ok := ClaimFromContext(r.Context())
	if !ok {
		writeAuthError(w, r, identity.ReasonMissingToken)
		return
	}
	writeJSON(w, http.StatusOK, testAuthResponse{
		Status:    "OK",
		Message:   "Authentication successful!",
		User:      userFromClaim(claim),
		Timestamp: s.now(),
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialsAck struct {
	Message string `json:"message"`
	Note    string `json:"note"`
	Example string `json:"example"`
}

// Login acknowledges a credential payload. Sign-in itself happens client-side against Firebase Auth.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	s.acknowledgeCredentials(w, r, credentialsAck{
		Message: "Login endpoint reached",
		Note:    "Use Firebase Auth on frontend to get ID token, then send it in Authorization header",
		Example: "Authorization: Bearer <firebase_id_token>",
	})
}

// Signup acknowledges a credential payload. Account creation happens client-side against Firebase Auth.
func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	s.acknowledgeCredentials(w, r, credentialsAck{
		Message: "Signup endpoint reached",
		Note:    "Use Firebase Auth on frontend to create account, then send ID token in Authorization header",
		Example: "Authorization: Bearer <firebase_id_token>",
	})
}

func (s *Server) acknowledgeCredentials(w http.ResponseWriter, r *http.Request, ack credentialsAck) {
	var body credentialsRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, r, http.StatusBadRequest, "Missing credentials", "Email and password are required")
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

type skillsData struct {
	Skills []string `json:"skills"`
	Count  int      `json:"count"`
	Note   string   `json:"note"`
}

// ListSkills returns the static suggestion catalog (GET /api/generate/skills).
func (s *Server) ListSkills(w http.ResponseWriter, _ *http.Request) {
	list := s.skills.List()
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Popular skills retrieved successfully",
		Data:    skillsData{Skills: list, Count: len(list), Note: s.skills.Note()},
	})
}

// createRoadmapRequest keeps numberOfDays raw so that absent, null, non-numeric and fractional
// values can be told apart.
type createRoadmapRequest struct {
	SkillName    *string         `json:"skillName"`
	NumberOfDays json.RawMessage `json:"numberOfDays"`
}

// toDomain applies the request-shape checks in the same order as domain validation:
// missing fields first, then the day count.
func (b createRoadmapRequest) toDomain() (domain.RoadmapRequest, error) {
	var req domain.RoadmapRequest
	if b.SkillName != nil {
		req.SkillName = *b.SkillName
	}

	raw := bytes.TrimSpace(b.NumberOfDays)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return req, domain.ErrRoadmapFieldsMissing
	}
	var days float64
	if err := json.Unmarshal(raw, &days); err != nil {
		if req.SkillName == "" {
			return req, domain.ErrRoadmapFieldsMissing
		}
		return req, domain.ErrRoadmapDaysRange
	}
	if days == 0 || req.SkillName == "" {
		return req, domain.ErrRoadmapFieldsMissing
	}
	if days != math.Trunc(days) || days < domain.MinRoadmapDays || days > domain.MaxRoadmapDays {
		return req, domain.ErrRoadmapDaysRange
	}
	req.NumberOfDays = int(days)
	return req, nil
}

type roadmapData struct {
	RoadmapID         string                  `json:"roadmapId"`
	SkillName         string                  `json:"skillName"`
	NumberOfDays      int                     `json:"numberOfDays"`
	Roadmap           string                  `json:"roadmap"`
	RoadmapStructured *domain.RoadmapDocument `json:"roadmapStructured"`
	GeneratedAt       string                  `json:"generatedAt"`
	UserID            string                  `json:"userId"`
	UserEmail         string                  `json:"userEmail"`
}

// CreateRoadmap generates a roadmap for the authenticated caller (POST /api/generate/roadmap).
func (s *Server) CreateRoadmap(w http.ResponseWriter, r *http.Request) {
	claim, ok := ClaimFromContext(r.Context())
	if !ok {
		writeAuthError(w, r, identity.ReasonMissingToken)
		return
	}

	var body createRoadmapRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	req, err := body.toDomain()
	if err != nil {
		s.writeAppError(w, r, roadmaps.ValidationError(err))
		return
	}

	if !s.skills.Contains(req.SkillName) {
		s.log.Debug("roadmap requested for skill outside catalog", zap.String("skill", req.SkillName))
	}

	res, err := s.roadmaps.Generate(r.Context(), req, claim)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Learning roadmap generated for " + res.SkillName,
		Data: roadmapData{
			RoadmapID:         string(res.ID),
			SkillName:         res.SkillName,
			NumberOfDays:      res.NumberOfDays,
			Roadmap:           res.RawText,
			RoadmapStructured: res.Structured,
			GeneratedAt:       res.GeneratedAt.UTC().Format(isoMillis),
			UserID:            string(res.RequesterID),
			UserEmail:         res.RequesterEmail,
		},
	})
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *roadmaps.Error
	if errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Message, ae.Hint)
		return
	}

	var ge *roadmaps.GenerationError
	if errors.As(err, &ge) {
		switch ge.Kind {
		case roadmaps.KindAuthConfigInvalid:
			writeError(w, r, http.StatusInternalServerError,
				"Gemini API authentication failed",
				"Please check your Gemini API key configuration")
		case roadmaps.KindQuotaExceeded:
			writeError(w, r, http.StatusInternalServerError,
				"Gemini API quota exceeded",
				"Please wait a moment before trying again or check your API usage limits")
		default:
			details := "Internal server error"
			if s.exposeErrorDetail && ge.Err != nil {
				details = ge.Err.Error()
			}
			writeErrorDetails(w, r, http.StatusInternalServerError,
				"Roadmap generation failed",
				"Something went wrong while generating your learning roadmap. Please try again.",
				&details)
		}
		return
	}

	s.log.Error("unhandled error", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "Something went wrong on the server!", "Internal server error")
}

// decodeJSON reads at most maxBodyBytes. An empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
