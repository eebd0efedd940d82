// Package models defines the data structures for transcript events.
package models

// EventKind discriminates interim from final transcript events.
type EventKind string

const (
	// KindInterim marks a provisional transcript that may still be revised.
	KindInterim EventKind = "interim"
	// KindFinal marks the confirmed transcript for a completed utterance.
	KindFinal EventKind = "final"
)

// TranscriptEvent is the unified recognizer event consumed by the filler
// gate. Immutable once observed; the gate either forwards it unchanged or
// drops it.
type TranscriptEvent struct {
	Kind       EventKind `json:"kind"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence,omitempty"`
}

// TranscriptPartial is the wire payload for an interim transcript that
// survived the filler gate.
type TranscriptPartial struct {
	EventType     string `json:"eventType"`
	InteractionID string `json:"interactionId"`
	TenantID      string `json:"tenantId"`
	Timestamp     int64  `json:"timestamp"`
	SegmentID     string `json:"segmentId"`
	Text          string `json:"text"`
}

// TranscriptFinal is the wire payload for a final transcript that survived
// the filler gate, with the recognizer's confidence score.
type TranscriptFinal struct {
	EventType     string  `json:"eventType"`
	InteractionID string  `json:"interactionId"`
	TenantID      string  `json:"tenantId"`
	Timestamp     int64   `json:"timestamp"`
	SegmentID     string  `json:"segmentId"`
	Text          string  `json:"text"`
	Confidence    float64 `json:"confidence"`
	AudioOffsetMs int64   `json:"audioOffsetMs"`
}
