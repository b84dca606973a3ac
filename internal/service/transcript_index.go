package service

import (
	"context"
	"fmt"

	ragoconfig "github.com/liliang-cn/rago/v2/pkg/config"
	ragodomain "github.com/liliang-cn/rago/v2/pkg/domain"
	"github.com/liliang-cn/rago/v2/pkg/providers"
	"github.com/liliang-cn/rago/v2/pkg/rag"
	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/config"
	"github.com/briefkit/briefkit/internal/domain"
)

const (
	metadataKeyFileID   = "file_id"
	metadataKeyLanguage = "language"
	metadataKeyDuration = "duration"
)

// TranscriptIndex stores transcripts in a vector index so meetings can be
// searched by content. The pipeline treats it as optional enrichment; the
// ledger holds the durable copy of every transcript.
type TranscriptIndex struct {
	cfg       *config.Config
	logger    *zap.Logger
	ragClient *rag.Client
}

// NewTranscriptIndex builds the vector index over the configured LLM
// provider. It returns nil without error when indexing is disabled.
func NewTranscriptIndex(cfg *config.Config, logger *zap.Logger) (*TranscriptIndex, error) {
	if !cfg.RAG.Enabled {
		return nil, nil
	}

	ragoCfg := &ragoconfig.Config{
		Sqvect: ragoconfig.SqvectConfig{
			DBPath:    cfg.RAG.DBPath,
			IndexType: cfg.RAG.IndexType,
		},
		Chunker: ragoconfig.ChunkerConfig{
			ChunkSize: cfg.RAG.ChunkSize,
			Overlap:   cfg.RAG.ChunkOverlap,
		},
	}

	factory := providers.NewFactory()
	providerCfg := &ragodomain.OpenAIProviderConfig{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		LLMModel:       cfg.LLM.Model,
	}

	ctx := context.Background()

	embedder, err := factory.CreateEmbedderProvider(ctx, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	llmProvider, err := factory.CreateLLMProvider(ctx, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	ragClient, err := rag.NewClient(ragoCfg, embedder, llmProvider, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create RAG client: %w", err)
	}

	return &TranscriptIndex{
		cfg:       cfg,
		logger:    logger,
		ragClient: ragClient,
	}, nil
}

// Index ingests a transcript into the vector store. Safe on a nil receiver
// so callers need not branch on whether indexing is enabled.
func (s *TranscriptIndex) Index(ctx context.Context, record *domain.TranscriptRecord) error {
	if s == nil {
		return nil
	}

	metadata := map[string]any{
		metadataKeyFileID:   record.FileID,
		metadataKeyLanguage: record.Metadata.Language,
		metadataKeyDuration: record.Metadata.Duration,
	}

	opts := &rag.IngestOptions{
		ChunkSize: s.cfg.RAG.ChunkSize,
		Overlap:   s.cfg.RAG.ChunkOverlap,
		Metadata:  metadata,
	}
	resp, err := s.ragClient.IngestText(ctx, record.Transcription, record.FileID, opts)
	if err != nil {
		return fmt.Errorf("failed to index transcript: %w", err)
	}

	s.logger.Info("transcript indexed",
		zap.String("file_id", record.FileID),
		zap.Int("chunks", resp.ChunkCount),
	)
	return nil
}

// Search performs a pure vector search over indexed transcripts.
func (s *TranscriptIndex) Search(ctx context.Context, query string, topK int) ([]domain.TranscriptMatch, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: transcript search is disabled", domain.ErrInvalidRequest)
	}
	if topK <= 0 {
		topK = 5
	}

	opts := &rag.QueryOptions{
		TopK:        topK,
		ShowSources: true,
	}
	resp, err := s.ragClient.Query(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.TranscriptMatch, len(resp.Sources))
	for i, src := range resp.Sources {
		matches[i] = domain.TranscriptMatch{
			Content: src.Content,
			Score:   src.Score,
		}
		if src.Metadata != nil {
			if fileID, ok := src.Metadata[metadataKeyFileID].(string); ok {
				matches[i].FileID = fileID
			}
		}
	}
	return matches, nil
}
