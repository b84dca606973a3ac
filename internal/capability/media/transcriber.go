// Package media implements the upload validator and the exec-based
// transcriber: ffmpeg extracts a mono 16kHz WAV from video containers, then
// an external speech-to-text command turns it into JSON.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/capability"
	"github.com/briefkit/briefkit/internal/domain"
)

// TranscriberConfig configures the external commands.
type TranscriberConfig struct {
	// FFmpegPath is the ffmpeg binary used for audio extraction.
	FFmpegPath string
	// Command is the speech-to-text binary. It receives Args followed by the
	// audio path and must print a JSON object {text, duration, language,
	// speakers} on stdout.
	Command string
	Args    []string
	// WorkDir holds extracted intermediate audio, scoped per input file.
	WorkDir string
}

// ExecTranscriber shells out to ffmpeg and a speech-to-text command.
type ExecTranscriber struct {
	cfg    TranscriberConfig
	logger *zap.Logger
}

// NewExecTranscriber creates an exec-based transcriber.
func NewExecTranscriber(cfg TranscriberConfig, logger *zap.Logger) *ExecTranscriber {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	return &ExecTranscriber{cfg: cfg, logger: logger}
}

type sttOutput struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Language string  `json:"language"`
	Speakers int     `json:"speakers"`
}

// Transcribe extracts audio when needed and runs the configured
// speech-to-text command. An empty transcript is an explicit failure.
func (t *ExecTranscriber) Transcribe(ctx context.Context, path string) (capability.Transcript, error) {
	fileType := DetectFileType(path)

	audioPath := path
	if IsVideo(fileType) {
		extracted, err := t.extractAudio(ctx, path)
		if err != nil {
			return capability.Transcript{}, fmt.Errorf("audio extraction: %w", err)
		}
		defer os.Remove(extracted)
		audioPath = extracted
	}

	args := append(append([]string{}, t.cfg.Args...), audioPath)
	cmd := exec.CommandContext(ctx, t.cfg.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.logger.Info("running speech-to-text",
		zap.String("command", t.cfg.Command),
		zap.String("audio", audioPath),
	)
	if err := cmd.Run(); err != nil {
		return capability.Transcript{}, fmt.Errorf("speech-to-text failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var out sttOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return capability.Transcript{}, fmt.Errorf("decode speech-to-text output: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return capability.Transcript{}, fmt.Errorf("speech-to-text produced no text for %s", filepath.Base(path))
	}
	if out.Language == "" {
		out.Language = "en"
	}

	return capability.Transcript{
		Text: out.Text,
		Metadata: domain.TranscriptMetadata{
			Duration:  out.Duration,
			Language:  out.Language,
			FileType:  fileType,
			Speakers:  out.Speakers,
			CreatedAt: time.Now().UTC(),
		},
	}, nil
}

func (t *ExecTranscriber) extractAudio(ctx context.Context, videoPath string) (string, error) {
	workDir := t.cfg.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(workDir, base+".wav")

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		audioPath,
	}
	cmd := exec.CommandContext(ctx, t.cfg.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return audioPath, nil
}
