package roadmaps

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/skillsprint/roadmap-api/internal/domain"
	clockport "github.com/skillsprint/roadmap-api/internal/ports/out/clock"
	"github.com/skillsprint/roadmap-api/internal/ports/out/generator"
)

const tracerName = "github.com/skillsprint/roadmap-api/internal/app/roadmaps"

// Outcomes reported to the Recorder.
const (
	OutcomeStructured = "structured"
	OutcomeRawOnly    = "raw_only"
)

// Recorder receives generation metrics. A nil Recorder disables recording.
type Recorder interface {
	RecordGeneration(outcome string, d time.Duration)
	RecordNormalizationFallback()
}

type Service struct {
	gen generator.Generator
	clk clockport.Clock
	log *zap.Logger

	tracer       trace.Tracer
	newRoadmapID func() domain.RoadmapID

	Metrics Recorder
}

func NewService(gen generator.Generator, clk clockport.Clock, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		gen:    gen,
		clk:    clk,
		log:    log,
		tracer: otel.Tracer(tracerName),
		newRoadmapID: func() domain.RoadmapID {
			return domain.RoadmapID(uuid.NewString())
		},
	}
}

// Generate builds the prompt, calls the generator once and normalizes its output.
//
// Validation failures return *Error (400). Generator failures return *GenerationError.
// A response that is not valid JSON is not an error: the result carries RawText only.
func (s *Service) Generate(ctx context.Context, req domain.RoadmapRequest, claim domain.Claim) (domain.RoadmapResult, error) {
	if err := req.Validate(); err != nil {
		return domain.RoadmapResult{}, ValidationError(err)
	}

	ctx, span := s.tracer.Start(ctx, "roadmaps.generate", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(
		attribute.String("roadmap.skill_name", req.SkillName),
		attribute.Int("roadmap.number_of_days", req.NumberOfDays),
	)

	log := s.log.With(
		zap.String("skill", req.SkillName),
		zap.Int("days", req.NumberOfDays),
		zap.String("subject", string(claim.Subject)),
	)
	log.Info("generating roadmap", zap.String("email", claim.Email))

	start := s.clk.Now()
	text, err := s.gen.GenerateText(ctx, BuildPrompt(req.SkillName, req.NumberOfDays))
	elapsed := s.clk.Now().Sub(start)
	if err != nil {
		kind := Classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		s.recordGeneration(string(kind), elapsed)
		log.Error("roadmap generation failed", zap.String("kind", string(kind)), zap.Error(err))
		return domain.RoadmapResult{}, &GenerationError{Kind: kind, Err: err}
	}

	norm := Normalize(text)
	outcome := OutcomeStructured
	if norm.ParseErr != nil {
		outcome = OutcomeRawOnly
		if s.Metrics != nil {
			s.Metrics.RecordNormalizationFallback()
		}
		log.Warn("roadmap JSON parse failed, returning plain text fallback", zap.Error(norm.ParseErr))
	}
	span.SetAttributes(attribute.String("roadmap.outcome", outcome))
	s.recordGeneration(outcome, elapsed)

	res := domain.RoadmapResult{
		ID:             s.newRoadmapID(),
		SkillName:      req.SkillName,
		NumberOfDays:   req.NumberOfDays,
		RawText:        norm.RawText,
		Structured:     norm.Structured,
		GeneratedAt:    s.clk.Now(),
		RequesterID:    claim.Subject,
		RequesterEmail: claim.Email,
	}
	log.Info("roadmap generated",
		zap.String("roadmap_id", string(res.ID)),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (s *Service) recordGeneration(outcome string, d time.Duration) {
	if s.Metrics != nil {
		s.Metrics.RecordGeneration(outcome, d)
	}
}

// ValidationError maps a domain request validation error to a 400 *Error.
func ValidationError(err error) *Error {
	e := &Error{
		Status: http.StatusBadRequest,
		Code:   "VALIDATION_ERROR",
		Err:    err,
	}
	switch {
	case errors.Is(err, domain.ErrRoadmapDaysRange):
		e.Message = "Invalid number of days"
		e.Hint = "Please provide a number of days between 1 and 365"
	default:
		e.Message = "Missing required fields"
		e.Hint = "Skill name and number of days are required"
	}
	return e
}
