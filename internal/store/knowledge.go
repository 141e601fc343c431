package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

func (s *Store) InsertKnowledgeFile(ctx context.Context, doc domain.KnowledgeDocument) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO knowledge_files (id, filename, content, uploaded_at)
		VALUES ($1, $2, $3, $4)`,
		doc.ID, doc.Filename, doc.Content, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert knowledge file: %w", err)
	}
	return nil
}

// ListKnowledgeFiles returns files newest first. Only the head of the content
// is read back.
func (s *Store) ListKnowledgeFiles(ctx context.Context) ([]domain.KnowledgeFile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, left(content, 120), uploaded_at
		FROM knowledge_files
		ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query knowledge files: %w", err)
	}
	defer rows.Close()

	files := []domain.KnowledgeFile{}
	for rows.Next() {
		var f domain.KnowledgeFile
		if err := rows.Scan(&f.ID, &f.Filename, &f.Preview, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge files: %w", err)
	}
	return files, nil
}

// DeleteKnowledgeFile removes a file. Deleting an unknown id is not an error.
func (s *Store) DeleteKnowledgeFile(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM knowledge_files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete knowledge file: %w", err)
	}
	return nil
}

// KnowledgeForPrompt returns every document oldest first.
func (s *Store) KnowledgeForPrompt(ctx context.Context) ([]domain.PromptDocument, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT filename, content
		FROM knowledge_files
		ORDER BY uploaded_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query knowledge: %w", err)
	}
	defer rows.Close()

	docs := []domain.PromptDocument{}
	for rows.Next() {
		var d domain.PromptDocument
		if err := rows.Scan(&d.Filename, &d.Content); err != nil {
			return nil, fmt.Errorf("scan knowledge: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge: %w", err)
	}
	return docs, nil
}
