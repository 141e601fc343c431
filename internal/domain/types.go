// Package domain holds the records shared by the conversation, knowledge and
// archive packages.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerRep       Speaker = "rep"
	SpeakerHomeowner Speaker = "homeowner"
)

// Turn is one message in the dialogue.
type Turn struct {
	Role    Speaker `json:"role"`
	Content string  `json:"content"`
}

// KnowledgeDocument is an uploaded reference file.
type KnowledgeDocument struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// KnowledgeFile is the listing view of a KnowledgeDocument.
type KnowledgeFile struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	Preview    string    `json:"preview"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// PromptDocument is the part of a KnowledgeDocument folded into the persona prompt.
type PromptDocument struct {
	Filename string
	Content  string
}

// SessionSummary is a finished practice session as persisted.
type SessionSummary struct {
	ID              uuid.UUID      `json:"id"`
	RepName         string         `json:"repName"`
	CreatedAt       time.Time      `json:"createdAt"`
	DurationSeconds int            `json:"durationSeconds"`
	RepMessageCount int            `json:"repMessageCount"`
	Analysis        AnalysisRecord `json:"analysis"`
}

// RepStats aggregates one rep's sessions for the manager view.
type RepStats struct {
	Name             string          `json:"name"`
	SessionCount     int             `json:"sessionCount"`
	AvgScore         int             `json:"avgScore"`
	BestScore        int             `json:"bestScore"`
	LatestScore      int             `json:"latestScore"`
	LastActive       time.Time       `json:"lastActive"`
	ImprovementTrend *int            `json:"improvementTrend"`
	CategoryAverages map[string]*int `json:"categoryAverages"`
	TopIssues        []string        `json:"topIssues"`
}
