// Package conversation holds the per-client practice dialogue.
package conversation

import (
	"strings"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

// Labels used when a transcript is embedded in scoring and analysis prompts.
// The model is told to expect exactly these.
const (
	RepLabel       = "SALES REP"
	HomeownerLabel = "HOMEOWNER/COACH"
)

// Session is an ordered, append-only log of turns. Each reset starts a new
// generation so replies to turns from before the reset can be told apart.
type Session struct {
	mu         sync.Mutex
	turns      []domain.Turn
	gen        uint64
	lastActive time.Time
	now        func() time.Time
}

// NewSession returns an empty session.
func NewSession() *Session {
	return newSession(time.Now)
}

func newSession(now func() time.Time) *Session {
	return &Session{now: now, lastActive: now()}
}

// AppendRep adds a rep turn and returns the generation it was recorded in.
// Blank text is rejected.
func (s *Session) AppendRep(text string) (uint64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, domain.Validationf("message is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(domain.SpeakerRep, text)
	return s.gen, nil
}

// AppendHomeowner adds a model turn as-is, provided the session has not been
// reset since generation gen. It reports whether the turn was kept.
func (s *Session) AppendHomeowner(gen uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.appendLocked(domain.SpeakerHomeowner, text)
	return true
}

// Generation returns the current reset generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Session) appendLocked(role domain.Speaker, text string) {
	s.turns = append(s.turns, domain.Turn{Role: role, Content: text})
	s.lastActive = s.now()
}

// Transcript returns a copy of the turns in dialogue order.
func (s *Session) Transcript() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// RenderForScoring renders the transcript as labelled lines separated by blank lines.
func (s *Session) RenderForScoring() string {
	return Render(s.Transcript())
}

// Render labels each turn by its speaker. Alternation is not assumed.
func Render(turns []domain.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		label := HomeownerLabel
		if t.Role == domain.SpeakerRep {
			label = RepLabel
		}
		lines = append(lines, label+": "+t.Content)
	}
	return strings.Join(lines, "\n\n")
}

// Reset clears all turns.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.gen++
	s.lastActive = s.now()
}

// IsEmpty reports whether the session has no turns.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns) == 0
}

// Len returns the number of turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// RepTurns counts the turns made by the rep.
func (s *Session) RepTurns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.turns {
		if t.Role == domain.SpeakerRep {
			n++
		}
	}
	return n
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
