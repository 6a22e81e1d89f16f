package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"time"
)

const (
	MinRoadmapDays = 1
	MaxRoadmapDays = 365
)

var (
	ErrRoadmapFieldsMissing = errors.New("skill name and number of days are required")
	ErrRoadmapDaysRange     = errors.New("number of days must be between 1 and 365")
)

// RoadmapRequest is the caller-supplied input for one roadmap generation.
type RoadmapRequest struct {
	SkillName    string
	NumberOfDays int
}

// Validate reports ErrRoadmapFieldsMissing or ErrRoadmapDaysRange.
// A zero NumberOfDays counts as missing.
func (r RoadmapRequest) Validate() error {
	if r.SkillName == "" || r.NumberOfDays == 0 {
		return ErrRoadmapFieldsMissing
	}
	if r.NumberOfDays < MinRoadmapDays || r.NumberOfDays > MaxRoadmapDays {
		return ErrRoadmapDaysRange
	}
	return nil
}

// RoadmapDocument is the parsed model output.
//
// The generator is not contractually bound to the prompt schema, so the value is kept
// loosely typed (whatever JSON value was produced, numbers preserved as json.Number).
type RoadmapDocument struct {
	Value any
}

func (d RoadmapDocument) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Value)
}

// Object returns the document as a JSON object when it is one.
func (d RoadmapDocument) Object() (map[string]any, bool) {
	m, ok := d.Value.(map[string]any)
	return m, ok
}

// Title returns the "title" field when present and a string.
func (d RoadmapDocument) Title() (string, bool) {
	m, ok := d.Object()
	if !ok {
		return "", false
	}
	s, ok := m["title"].(string)
	return s, ok
}

// PhaseCount returns len(phases) when phases is an array, otherwise 0.
func (d RoadmapDocument) PhaseCount() int {
	m, ok := d.Object()
	if !ok {
		return 0
	}
	phases, _ := m["phases"].([]any)
	return len(phases)
}

// ParseRoadmapDocument strictly decodes a single JSON value. Trailing content is an error.
func ParseRoadmapDocument(b []byte) (RoadmapDocument, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return RoadmapDocument{}, err
	}
	// Anything left other than whitespace (e.g. a stray bracket or prose) fails the parse.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return RoadmapDocument{}, errors.New("unexpected content after JSON value")
	}
	return RoadmapDocument{Value: v}, nil
}

// RoadmapResult is what one generation produces. RawText is the only field guaranteed to be set;
// Structured is nil whenever normalization failed.
type RoadmapResult struct {
	ID             RoadmapID
	SkillName      string
	NumberOfDays   int
	RawText        string
	Structured     *RoadmapDocument
	GeneratedAt    time.Time
	RequesterID    SubjectID
	RequesterEmail string
}
