package models

import (
	"encoding/json"
	"time"
)

// WordDetail is the per-word breakdown produced by the speech-recognition
// engine for a single practiced sentence.
type WordDetail struct {
	Word    string `json:"word"`
	Matched bool   `json:"matched"`
	Score   int    `json:"score"`
}

// PronunciationRecord is one practice attempt in a patient's history.
// Records are immutable once written.
type PronunciationRecord struct {
	ID           string
	PatientID    string
	Sentence     string
	OverallScore int
	WordDetails  []WordDetail
	CreatedAt    time.Time
}

// EncodeWordDetails serializes per-word detail to the opaque blob stored in
// the history table. A nil slice encodes as an empty JSON array.
func EncodeWordDetails(details []WordDetail) (string, error) {
	if details == nil {
		details = []WordDetail{}
	}
	data, err := json.Marshal(details)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeWordDetails parses the stored blob back into a detail sequence.
// Malformed blobs decode to an empty sequence rather than failing the read.
func DecodeWordDetails(blob string) []WordDetail {
	if blob == "" {
		return []WordDetail{}
	}
	var details []WordDetail
	if err := json.Unmarshal([]byte(blob), &details); err != nil {
		return []WordDetail{}
	}
	if details == nil {
		return []WordDetail{}
	}
	return details
}
