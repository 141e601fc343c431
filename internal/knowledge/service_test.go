package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
	"github.com/MikeSquared-Agency/doorstep/internal/hermes"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRepo struct {
	mu        sync.Mutex
	docs      []domain.KnowledgeDocument
	loads     int
	deletes   int
	failLoads bool
}

func (r *fakeRepo) InsertKnowledgeFile(_ context.Context, doc domain.KnowledgeDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	return nil
}

func (r *fakeRepo) ListKnowledgeFiles(_ context.Context) ([]domain.KnowledgeFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := append([]domain.KnowledgeDocument(nil), r.docs...)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].UploadedAt.After(docs[j].UploadedAt) })
	out := make([]domain.KnowledgeFile, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.KnowledgeFile{ID: d.ID, Filename: d.Filename, Preview: d.Content, UploadedAt: d.UploadedAt})
	}
	return out, nil
}

func (r *fakeRepo) DeleteKnowledgeFile(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	for i, d := range r.docs {
		if d.ID == id {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRepo) KnowledgeForPrompt(_ context.Context) ([]domain.PromptDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	if r.failLoads {
		return nil, errors.New("connection refused")
	}
	docs := append([]domain.KnowledgeDocument(nil), r.docs...)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].UploadedAt.Before(docs[j].UploadedAt) })
	out := make([]domain.PromptDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.PromptDocument{Filename: d.Filename, Content: d.Content})
	}
	return out, nil
}

type recordingPublisher struct {
	subjects []string
	events   []hermes.KnowledgeChanged
}

func (p *recordingPublisher) Publish(subject string, data any) error {
	p.subjects = append(p.subjects, subject)
	if evt, ok := data.(hermes.KnowledgeChanged); ok {
		p.events = append(p.events, evt)
	}
	return nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(repo *fakeRepo, pub Publisher) (*Service, *clock) {
	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc := New(repo, NewCache(DefaultCacheTTL, clk.Now), pub, discardLogger())
	svc.now = clk.Now
	return svc, clk
}

func TestAdd_Validation(t *testing.T) {
	svc, _ := newTestService(&fakeRepo{}, nil)
	ctx := context.Background()

	for _, tc := range []struct{ filename, content string }{
		{"", "content"},
		{"  ", "content"},
		{"f.txt", ""},
		{"f.txt", " \n "},
	} {
		if _, err := svc.Add(ctx, tc.filename, tc.content); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Add(%q, %q): expected validation error, got %v", tc.filename, tc.content, err)
		}
	}
}

func TestForPrompt_CachesWithinTTL(t *testing.T) {
	repo := &fakeRepo{}
	svc, clk := newTestService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "pricing.txt", "Panels cost $20k."); err != nil {
		t.Fatalf("Add: %v", err)
	}

	first, err := svc.ForPrompt(ctx)
	if err != nil {
		t.Fatalf("ForPrompt: %v", err)
	}
	clk.Advance(59 * time.Second)
	second, err := svc.ForPrompt(ctx)
	if err != nil {
		t.Fatalf("ForPrompt: %v", err)
	}

	if repo.loads != 1 {
		t.Errorf("expected 1 storage read, got %d", repo.loads)
	}
	if len(first) != 1 || &first[0] != &second[0] {
		t.Error("expected the identical cached snapshot on the second call")
	}
}

func TestForPrompt_ReloadsAfterTTL(t *testing.T) {
	repo := &fakeRepo{}
	svc, clk := newTestService(repo, nil)
	ctx := context.Background()

	_, _ = svc.ForPrompt(ctx)
	clk.Advance(60 * time.Second)
	_, _ = svc.ForPrompt(ctx)

	if repo.loads != 2 {
		t.Errorf("expected reload once the snapshot is 60s old, got %d loads", repo.loads)
	}
}

func TestForPrompt_AddInvalidates(t *testing.T) {
	repo := &fakeRepo{}
	svc, clk := newTestService(repo, nil)
	ctx := context.Background()

	docs, _ := svc.ForPrompt(ctx)
	if len(docs) != 0 {
		t.Fatalf("expected empty knowledge base, got %d", len(docs))
	}

	clk.Advance(time.Second)
	if _, err := svc.Add(ctx, "objections.md", "Spouse objection."); err != nil {
		t.Fatalf("Add: %v", err)
	}

	docs, _ = svc.ForPrompt(ctx)
	if repo.loads != 2 {
		t.Errorf("expected add to force a reload, got %d loads", repo.loads)
	}
	if len(docs) != 1 || docs[0].Filename != "objections.md" {
		t.Errorf("expected fresh snapshot with the new file, got %+v", docs)
	}
}

func TestForPrompt_DeleteInvalidates(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo, nil)
	ctx := context.Background()

	id, _ := svc.Add(ctx, "a.txt", "alpha")
	_, _ = svc.ForPrompt(ctx)

	if err := svc.Delete(ctx, id.String()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	docs, _ := svc.ForPrompt(ctx)
	if repo.loads != 2 || len(docs) != 0 {
		t.Errorf("expected reload without the deleted file, loads=%d docs=%+v", repo.loads, docs)
	}
}

func TestForPrompt_OldestFirst(t *testing.T) {
	repo := &fakeRepo{}
	svc, clk := newTestService(repo, nil)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "first.txt", "1")
	clk.Advance(time.Minute)
	_, _ = svc.Add(ctx, "second.txt", "2")

	docs, _ := svc.ForPrompt(ctx)
	if len(docs) != 2 || docs[0].Filename != "first.txt" {
		t.Errorf("expected oldest first, got %+v", docs)
	}

	files, _ := svc.List(ctx)
	if len(files) != 2 || files[0].Filename != "second.txt" {
		t.Errorf("expected listing newest first, got %+v", files)
	}
}

func TestForPrompt_StorageError(t *testing.T) {
	repo := &fakeRepo{failLoads: true}
	svc, _ := newTestService(repo, nil)

	_, err := svc.ForPrompt(context.Background())
	if !errors.Is(err, domain.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
}

func TestList_Preview(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo, nil)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "long.txt", strings.Repeat("é", 500))
	files, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if n := len([]rune(files[0].Preview)); n != PreviewChars {
		t.Errorf("expected %d character preview, got %d", PreviewChars, n)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo, nil)
	ctx := context.Background()

	if err := svc.Delete(ctx, uuid.NewString()); err != nil {
		t.Errorf("expected no error for unknown id, got %v", err)
	}
	if err := svc.Delete(ctx, "not-a-uuid"); err != nil {
		t.Errorf("expected no error for malformed id, got %v", err)
	}
	if repo.deletes != 1 {
		t.Errorf("expected malformed id to skip storage, got %d deletes", repo.deletes)
	}
}

func TestPublishesChanges(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(&fakeRepo{}, pub)
	ctx := context.Background()

	id, _ := svc.Add(ctx, "a.txt", "alpha")
	_ = svc.Delete(ctx, id.String())

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if pub.subjects[0] != hermes.SubjectKnowledgeChanged {
		t.Errorf("unexpected subject %q", pub.subjects[0])
	}
	if pub.events[0].Action != "added" || pub.events[1].Action != "deleted" {
		t.Errorf("unexpected actions %+v", pub.events)
	}
	if pub.events[1].FileID != id.String() {
		t.Errorf("expected deleted id %s, got %s", id, pub.events[1].FileID)
	}
}

func TestCache_InvalidateDuringLoad(t *testing.T) {
	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := NewCache(time.Minute, clk.Now)

	_, gen, ok := c.Get()
	if ok {
		t.Fatal("expected empty cache")
	}
	c.Invalidate()
	c.Set([]domain.PromptDocument{{Filename: "stale"}}, gen)

	if _, _, ok := c.Get(); ok {
		t.Error("expected snapshot loaded before an invalidation to be discarded")
	}
}

func TestHandleKnowledgeChanged(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo, nil)
	ctx := context.Background()

	_, _ = svc.ForPrompt(ctx)

	data, _ := json.Marshal(hermes.KnowledgeChanged{Action: "added", FileID: uuid.NewString()})
	svc.HandleKnowledgeChanged(hermes.SubjectKnowledgeChanged, data)
	_, _ = svc.ForPrompt(ctx)

	if repo.loads != 2 {
		t.Errorf("expected event to force a reload, got %d loads", repo.loads)
	}

	svc.HandleKnowledgeChanged(hermes.SubjectKnowledgeChanged, []byte("not json"))
	_, _ = svc.ForPrompt(ctx)
	if repo.loads != 2 {
		t.Errorf("expected a bad event to be ignored, got %d loads", repo.loads)
	}
}
