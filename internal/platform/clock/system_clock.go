package clock

import (
	"time"

	clockport "github.com/skillsprint/roadmap-api/internal/ports/out/clock"
)

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

var _ clockport.Clock = SystemClock{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
