package domain

import "time"

// FileRecord holds identity and static facts about an uploaded recording.
// Created once at upload and never mutated.
type FileRecord struct {
	FileID           string    `json:"file_id"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	FileType         string    `json:"file_type"`
	UploadTime       time.Time `json:"upload_time"`
}

// UploadResponse is returned by the upload endpoint.
type UploadResponse struct {
	FileID  string `json:"file_id"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}
