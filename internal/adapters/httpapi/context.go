package httpapi

import (
	"context"

	"github.com/skillsprint/roadmap-api/internal/domain"
)

type claimKey struct{}

func WithClaim(ctx context.Context, c domain.Claim) context.Context {
	return context.WithValue(ctx, claimKey{}, c)
}

func ClaimFromContext(ctx context.Context) (domain.Claim, bool) {
	c, ok := ctx.Value(claimKey{}).(domain.Claim)
	return c, ok && c.Subject != ""
}

// subjectSlot lets inner middleware report the authenticated subject to the request logger.
type subjectSlot struct{ subject string }

type subjectSlotKey struct{}

func withSubjectSlot(ctx context.Context, s *subjectSlot) context.Context {
	return context.WithValue(ctx, subjectSlotKey{}, s)
}

func reportSubject(ctx context.Context, sub domain.SubjectID) {
	if s, ok := ctx.Value(subjectSlotKey{}).(*subjectSlot); ok {
		s.subject = string(sub)
	}
}
