package hermes

import "time"

const (
	// SubjectSessionSaved is published after a practice session is archived.
	SubjectSessionSaved = "doorstep.session.saved"
	// SubjectKnowledgeChanged is published after a knowledge file is added or deleted.
	SubjectKnowledgeChanged = "doorstep.knowledge.changed"
)

// SessionSaved is the payload of SubjectSessionSaved.
type SessionSaved struct {
	SessionID       string    `json:"session_id"`
	RepName         string    `json:"rep_name"`
	Overall         int       `json:"overall"`
	DurationSeconds int       `json:"duration_seconds"`
	RepMessageCount int       `json:"rep_message_count"`
	KeyImprovement  string    `json:"key_improvement,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// KnowledgeChanged is the payload of SubjectKnowledgeChanged.
type KnowledgeChanged struct {
	Action    string    `json:"action"` // added | deleted
	FileID    string    `json:"file_id"`
	Filename  string    `json:"filename,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
