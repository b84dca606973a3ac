package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/capability"
	"github.com/briefkit/briefkit/internal/config"
	"github.com/briefkit/briefkit/internal/docval"
	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/ledger"
	"github.com/briefkit/briefkit/internal/pipeline"
	"github.com/briefkit/briefkit/internal/repository"
	"github.com/briefkit/briefkit/internal/service"
	"github.com/briefkit/briefkit/internal/status"
)

type stubValidator struct{}

func (stubValidator) Validate(ctx context.Context, fileID, path string) (capability.ValidationResult, error) {
	return capability.ValidationResult{Valid: true}, nil
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(ctx context.Context, path string) (capability.Transcript, error) {
	return capability.Transcript{
		Text:     "team agreed to ship the beta in october",
		Metadata: domain.TranscriptMetadata{Language: "en", Duration: 30},
	}, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	var b strings.Builder
	for _, h := range docval.RequiredSections(domain.LevelSimple) {
		b.WriteString("# " + h + "\n\n")
	}
	for len(strings.Fields(b.String())) < 1800 {
		b.WriteString("beta rollout scope decision ")
	}
	return b.String(), nil
}

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, record *domain.DocumentationRecord, format domain.ExportFormat) (capability.RenderResult, error) {
	return capability.RenderResult{Path: "/tmp/out." + string(format)}, nil
}

type testEnv struct {
	router  *gin.Engine
	tracker *status.Tracker
	runner  *pipeline.Runner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := ledger.NewMemory()
	logger := zap.NewNop()

	cfg := &config.Config{}
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Storage.Uploads = t.TempDir()
	cfg.Storage.MaxFileSize = 1 << 20
	cfg.Downloads.Retention = time.Hour
	cfg.Pipeline.MaxAttempts = 2

	files := repository.NewFiles(store)
	transcripts := repository.NewTranscripts(store)
	documents := repository.NewDocuments(store)
	downloads := repository.NewDownloads(store)
	tracker := status.NewTracker(store, logger)

	runner := pipeline.NewRunner(logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		runner.Shutdown(ctx)
	})

	orch := pipeline.NewOrchestrator(pipeline.Config{
		MaxAttempts:     2,
		GenerationDelay: time.Millisecond,
		FetchDelay:      time.Millisecond,
	}, logger, tracker, files, transcripts, documents,
		stubValidator{}, stubTranscriber{}, stubGenerator{}, nil, runner)

	uploads := service.NewUploadService(cfg, logger, files, tracker, orch)
	docs := service.NewDocumentService(logger, files, transcripts, documents, tracker, orch)
	dl := service.NewDownloadService(cfg, logger, documents, downloads, stubRenderer{}, runner)

	router := SetupRouter(uploads, docs, dl, nil, RouterConfig{AllowOrigins: []string{"*"}})
	return &testEnv{router: router, tracker: tracker, runner: runner}
}

func multipartUpload(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("fake media bytes"))
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()
	return body, w.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUploadThroughStatusToDocumentation(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "meeting.mp4", map[string]string{
		"document_type":       "BRD",
		"documentation_level": "simple",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}

	var resp domain.UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if resp.FileID == "" || resp.Status != domain.StatusUploaded {
		t.Fatalf("upload response %+v", resp)
	}

	// Poll status until the background run finishes.
	deadline := time.Now().Add(5 * time.Second)
	for {
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status/"+resp.FileID, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d", w.Code)
		}
		var st domain.ProcessingStatus
		if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if st.Status == domain.StatusCompleted {
			break
		}
		if st.Status == domain.StatusFailed {
			t.Fatalf("pipeline failed: %s", st.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("pipeline did not complete, last status %+v", st)
		}
		time.Sleep(10 * time.Millisecond)
	}

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documentation/"+resp.FileID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("documentation endpoint = %d: %s", w.Code, w.Body.String())
	}
	var doc domain.DocumentationRecord
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode documentation: %v", err)
	}
	if doc.DocumentType != domain.DocumentTypeBRD || doc.Content == "" {
		t.Fatalf("documentation %+v", doc)
	}
}

func TestUploadSyncReturnsFullResult(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "meeting.mp4", map[string]string{
		"document_type":       "brd",
		"documentation_level": "simple",
		"sync":                "true",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sync upload status = %d: %s", w.Code, w.Body.String())
	}

	var result pipeline.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode sync result: %v", err)
	}
	if result.FileID == "" || result.DocumentationID == "" {
		t.Fatalf("sync result incomplete: %+v", result)
	}
	if result.QualityScore < 70 {
		t.Fatalf("quality score %.1f, want >= 70", result.QualityScore)
	}

	// The run already completed; no polling needed.
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status/"+result.FileID, nil))
	var st domain.ProcessingStatus
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Status != domain.StatusCompleted || st.Progress != 100 {
		t.Fatalf("status after sync upload %+v", st)
	}
}

func TestReprocessStartsFreshRun(t *testing.T) {
	env := newTestEnv(t)

	// Sync upload so the first run is done before reprocessing.
	body, contentType := multipartUpload(t, "meeting.mp4", map[string]string{"sync": "true"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sync upload status = %d: %s", w.Code, w.Body.String())
	}
	var result pipeline.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode sync result: %v", err)
	}

	reqBody := strings.NewReader(`{"document_type":"SOW","documentation_level":"intermediate"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/process/"+result.FileID, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("reprocess status = %d: %s", w.Code, w.Body.String())
	}

	// The fresh run overwrites the status record and runs to completion.
	deadline := time.Now().Add(5 * time.Second)
	for {
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status/"+result.FileID, nil))
		var st domain.ProcessingStatus
		if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if st.Status == domain.StatusCompleted {
			break
		}
		if st.Status == domain.StatusFailed {
			t.Fatalf("reprocess run failed: %s", st.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("reprocess did not complete, last status %+v", st)
		}
		time.Sleep(10 * time.Millisecond)
	}

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documentation/"+result.FileID, nil))
	var doc domain.DocumentationRecord
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode documentation: %v", err)
	}
	if doc.DocumentType != domain.DocumentTypeSOW {
		t.Fatalf("documentation type %q after reprocess, want SOW", doc.DocumentType)
	}
}

func TestReprocessUnknownFileReturns404(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/process/nope", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "malware.exe", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestStatusUnknownFileReturns404(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDownloadInvalidFormatReturns400(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/download/f1/xlsx", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSearchDisabledReturns400(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=rollout", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
