package domain

// SubjectID is the authenticated subject extracted from ID-token claims ("sub", the Firebase uid).
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// RoadmapID identifies a single generated roadmap in logs and responses.
type RoadmapID string
