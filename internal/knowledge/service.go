// Package knowledge manages the uploaded reference documents that are folded
// into the homeowner persona.
package knowledge

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
	"github.com/MikeSquared-Agency/doorstep/internal/hermes"
)

// PreviewChars is the length of the listing preview.
const PreviewChars = 120

// Repository is the storage the service needs.
type Repository interface {
	InsertKnowledgeFile(ctx context.Context, doc domain.KnowledgeDocument) error
	// ListKnowledgeFiles returns files newest first.
	ListKnowledgeFiles(ctx context.Context) ([]domain.KnowledgeFile, error)
	DeleteKnowledgeFile(ctx context.Context, id uuid.UUID) error
	// KnowledgeForPrompt returns documents oldest first.
	KnowledgeForPrompt(ctx context.Context) ([]domain.PromptDocument, error)
}

// Publisher announces knowledge base changes. It may be nil.
type Publisher interface {
	Publish(subject string, data any) error
}

type Service struct {
	repo   Repository
	cache  *Cache
	pub    Publisher
	now    func() time.Time
	logger *slog.Logger
}

func New(repo Repository, cache *Cache, pub Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		pub:    pub,
		now:    time.Now,
		logger: logger,
	}
}

// Add stores a document and invalidates the prompt cache.
func (s *Service) Add(ctx context.Context, filename, content string) (uuid.UUID, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || strings.TrimSpace(content) == "" {
		return uuid.Nil, domain.Validationf("filename and content are required")
	}

	doc := domain.KnowledgeDocument{
		ID:         uuid.New(),
		Filename:   filename,
		Content:    content,
		UploadedAt: s.now().UTC(),
	}
	if err := s.repo.InsertKnowledgeFile(ctx, doc); err != nil {
		return uuid.Nil, domain.Collaborator("insert knowledge file", err)
	}
	s.cache.Invalidate()

	s.logger.Info("knowledge file added", "id", doc.ID, "filename", doc.Filename, "chars", len(content))
	s.announce("added", doc.ID, doc.Filename)
	return doc.ID, nil
}

// List returns the files newest first with a short preview.
func (s *Service) List(ctx context.Context) ([]domain.KnowledgeFile, error) {
	files, err := s.repo.ListKnowledgeFiles(ctx)
	if err != nil {
		return nil, domain.Collaborator("list knowledge files", err)
	}
	for i := range files {
		files[i].Preview = preview(files[i].Preview)
	}
	return files, nil
}

// Delete removes a file. Unknown or malformed ids are not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		s.logger.Debug("ignoring delete of malformed knowledge id", "id", id)
		return nil
	}
	if err := s.repo.DeleteKnowledgeFile(ctx, parsed); err != nil {
		return domain.Collaborator("delete knowledge file", err)
	}
	s.cache.Invalidate()

	s.logger.Info("knowledge file deleted", "id", parsed)
	s.announce("deleted", parsed, "")
	return nil
}

// ForPrompt returns all documents oldest first, from the cache when it is fresh.
func (s *Service) ForPrompt(ctx context.Context) ([]domain.PromptDocument, error) {
	docs, gen, ok := s.cache.Get()
	if ok {
		return docs, nil
	}

	docs, err := s.repo.KnowledgeForPrompt(ctx)
	if err != nil {
		return nil, domain.Collaborator("load knowledge", err)
	}
	if docs == nil {
		docs = []domain.PromptDocument{}
	}
	s.cache.Set(docs, gen)
	s.logger.Debug("knowledge cache refreshed", "documents", len(docs))
	return docs, nil
}

// HandleKnowledgeChanged is the NATS handler for knowledge change events. It
// drops the local snapshot so replicas pick up edits made elsewhere.
func (s *Service) HandleKnowledgeChanged(subject string, data []byte) {
	var evt hermes.KnowledgeChanged
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.Warn("failed to parse knowledge event", "subject", subject, "error", err)
		return
	}
	s.cache.Invalidate()
	s.logger.Debug("knowledge cache invalidated by event", "action", evt.Action, "file_id", evt.FileID)
}

func (s *Service) announce(action string, id uuid.UUID, filename string) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(hermes.SubjectKnowledgeChanged, hermes.KnowledgeChanged{
		Action:    action,
		FileID:    id.String(),
		Filename:  filename,
		Timestamp: s.now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to publish knowledge change", "action", action, "error", err)
	}
}

func preview(content string) string {
	n := 0
	for i := range content {
		if n == PreviewChars {
			return content[:i]
		}
		n++
	}
	return content
}
