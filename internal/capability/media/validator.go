package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/briefkit/briefkit/internal/capability"
)

// Supported upload extensions.
const (
	FileTypeMP4  = "mp4"
	FileTypeAVI  = "avi"
	FileTypeMOV  = "mov"
	FileTypeMKV  = "mkv"
	FileTypeMP3  = "mp3"
	FileTypeWAV  = "wav"
	FileTypeM4A  = "m4a"
	FileTypeFLAC = "flac"
)

var videoTypes = map[string]bool{
	FileTypeMP4: true,
	FileTypeAVI: true,
	FileTypeMOV: true,
	FileTypeMKV: true,
}

var audioTypes = map[string]bool{
	FileTypeMP3:  true,
	FileTypeWAV:  true,
	FileTypeM4A:  true,
	FileTypeFLAC: true,
}

// DetectFileType returns the lowercase extension without the dot.
func DetectFileType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return strings.TrimPrefix(ext, ".")
}

// IsSupported reports whether the pipeline accepts this file type.
func IsSupported(fileType string) bool {
	return videoTypes[fileType] || audioTypes[fileType]
}

// IsVideo reports whether the type needs audio extraction first.
func IsVideo(fileType string) bool {
	return videoTypes[fileType]
}

// FileValidator checks extension and size limits on uploaded media files.
type FileValidator struct {
	maxFileSize int64
}

// NewFileValidator creates a validator with the given size cap in bytes.
func NewFileValidator(maxFileSize int64) *FileValidator {
	return &FileValidator{maxFileSize: maxFileSize}
}

// Validate checks that the file exists, has a supported media extension and
// is within the size limit. A failed check is a valid=false result, not an
// error; errors are reserved for filesystem faults.
func (v *FileValidator) Validate(ctx context.Context, fileID, path string) (capability.ValidationResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return capability.ValidationResult{Valid: false, Message: "file not found"}, nil
		}
		return capability.ValidationResult{}, fmt.Errorf("stat %s: %w", path, err)
	}

	fileType := DetectFileType(path)
	if !IsSupported(fileType) {
		return capability.ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("unsupported file type: %s", fileType),
			Size:    info.Size(),
		}, nil
	}

	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return capability.ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("file too large: %d bytes (max %d)", info.Size(), v.maxFileSize),
			Size:    info.Size(),
		}, nil
	}

	if info.Size() == 0 {
		return capability.ValidationResult{Valid: false, Message: "file is empty"}, nil
	}

	return capability.ValidationResult{Valid: true, Size: info.Size()}, nil
}
