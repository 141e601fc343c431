// Package coach runs the practice pipeline: it relays rep turns to the model
// playing the homeowner and hands finished conversations to the evaluator.
package coach

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/doorstep/internal/anthropic"
	"github.com/MikeSquared-Agency/doorstep/internal/conversation"
	"github.com/MikeSquared-Agency/doorstep/internal/domain"
	"github.com/MikeSquared-Agency/doorstep/internal/extractor"
	"github.com/MikeSquared-Agency/doorstep/internal/prompt"
)

// Knowledge supplies the documents folded into the persona.
type Knowledge interface {
	ForPrompt(ctx context.Context) ([]domain.PromptDocument, error)
}

// Evaluator scores a rendered transcript.
type Evaluator interface {
	Scorecard(ctx context.Context, transcript string) (string, error)
	Analyze(ctx context.Context, transcript string) (domain.AnalysisRecord, error)
}

type Options struct {
	Persona   string
	MaxTokens int
	// ModelTimeout bounds each model call. Zero means no deadline beyond the
	// caller's context.
	ModelTimeout time.Duration
}

type Coach struct {
	sessions  *conversation.Registry
	knowledge Knowledge
	llm       extractor.Completer
	eval      Evaluator
	opts      Options
	logger    *slog.Logger
}

func New(sessions *conversation.Registry, knowledge Knowledge, llm extractor.Completer, eval Evaluator, opts Options, logger *slog.Logger) *Coach {
	if opts.Persona == "" {
		opts.Persona = prompt.HomeownerPersona
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	return &Coach{
		sessions:  sessions,
		knowledge: knowledge,
		llm:       llm,
		eval:      eval,
		opts:      opts,
		logger:    logger,
	}
}

// Chat records the rep's message and returns the homeowner's reply. When the
// model call fails the rep turn stays in the session. A reply that arrives
// after the session was reset is returned but not recorded.
func (c *Coach) Chat(ctx context.Context, sessionID, message string) (string, error) {
	sess := c.sessions.Get(sessionID)
	gen, err := sess.AppendRep(message)
	if err != nil {
		return "", err
	}

	docs, err := c.knowledge.ForPrompt(ctx)
	if err != nil {
		return "", err
	}
	system := prompt.Build(c.opts.Persona, docs)

	ctx, cancel := c.modelContext(ctx)
	defer cancel()

	reply, err := c.llm.Complete(ctx, system, ToMessages(sess.Transcript()), c.opts.MaxTokens)
	if err != nil {
		c.logger.Error("homeowner reply failed", "session", sessionID, "error", err)
		return "", domain.Collaborator("llm chat", err)
	}

	if !sess.AppendHomeowner(gen, reply) {
		c.logger.Info("dropped reply to reset conversation", "session", sessionID)
		return reply, nil
	}
	c.logger.Debug("chat turn",
		"session", sessionID,
		"turns", sess.Len(),
		"knowledge_docs", len(docs),
	)
	return reply, nil
}

// Scorecard evaluates the session as free text.
func (c *Coach) Scorecard(ctx context.Context, sessionID string) (string, error) {
	transcript, err := c.transcript(sessionID)
	if err != nil {
		return "", err
	}

	ctx, cancel := c.modelContext(ctx)
	defer cancel()
	return c.eval.Scorecard(ctx, transcript)
}

// Analyze evaluates the session as a structured analysis record.
func (c *Coach) Analyze(ctx context.Context, sessionID string) (domain.AnalysisRecord, error) {
	transcript, err := c.transcript(sessionID)
	if err != nil {
		return domain.AnalysisRecord{}, err
	}

	ctx, cancel := c.modelContext(ctx)
	defer cancel()
	return c.eval.Analyze(ctx, transcript)
}

// Reset clears the session. Unknown ids are ignored.
func (c *Coach) Reset(sessionID string) {
	c.sessions.Reset(sessionID)
	c.logger.Debug("session reset", "session", sessionID)
}

// RepTurns counts the rep's messages in the session.
func (c *Coach) RepTurns(sessionID string) int {
	sess, ok := c.sessions.Peek(sessionID)
	if !ok {
		return 0
	}
	return sess.RepTurns()
}

func (c *Coach) transcript(sessionID string) (string, error) {
	sess, ok := c.sessions.Peek(sessionID)
	if !ok || sess.IsEmpty() {
		return "", domain.Preconditionf("no conversation to evaluate")
	}
	return sess.RenderForScoring(), nil
}

func (c *Coach) modelContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.ModelTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opts.ModelTimeout)
}

// ToMessages maps turns onto model roles: the rep is the user and the
// homeowner is the assistant. Consecutive turns by the same speaker are merged
// since the dialogue is not required to alternate.
func ToMessages(turns []domain.Turn) []anthropic.Message {
	msgs := make([]anthropic.Message, 0, len(turns))
	for _, t := range turns {
		role := anthropic.RoleUser
		if t.Role == domain.SpeakerHomeowner {
			role = anthropic.RoleAssistant
		}
		if n := len(msgs); n > 0 && msgs[n-1].Role == role {
			msgs[n-1].Content = strings.Join([]string{msgs[n-1].Content, t.Content}, "\n\n")
			continue
		}
		msgs = append(msgs, anthropic.Message{Role: role, Content: t.Content})
	}
	return msgs
}
