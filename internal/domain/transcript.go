package domain

import "time"

// TranscriptMetadata describes the transcription artifact.
type TranscriptMetadata struct {
	Duration  float64   `json:"duration"`
	Language  string    `json:"language"`
	FileType  string    `json:"file_type"`
	Speakers  int       `json:"speakers,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptRecord is the text artifact produced by the transcription stage.
// Owned 1:1 by its file and read-only once written.
type TranscriptRecord struct {
	FileID        string             `json:"file_id"`
	Transcription string             `json:"transcription"`
	Metadata      TranscriptMetadata `json:"metadata"`
}

// TranscriptMatch is one search hit from the transcript index.
type TranscriptMatch struct {
	FileID  string  `json:"file_id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
