package hermes

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSessionSavedParsing(t *testing.T) {
	raw := `{
		"session_id": "5f0c1a8e-0000-0000-0000-000000000000",
		"rep_name": "Alex",
		"overall": 72,
		"duration_seconds": 310,
		"rep_message_count": 9,
		"key_improvement": "Ask for the appointment",
		"timestamp": "2026-03-01T12:00:00Z"
	}`

	var evt SessionSaved
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		t.Fatalf("failed to parse SessionSaved: %v", err)
	}
	if evt.RepName != "Alex" {
		t.Errorf("expected rep_name 'Alex', got '%s'", evt.RepName)
	}
	if evt.Overall != 72 {
		t.Errorf("expected overall 72, got %d", evt.Overall)
	}
	if evt.RepMessageCount != 9 {
		t.Errorf("expected rep_message_count 9, got %d", evt.RepMessageCount)
	}
	if !evt.Timestamp.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %v", evt.Timestamp)
	}
}

func TestKnowledgeChangedOmitsEmptyFilename(t *testing.T) {
	data, err := json.Marshal(KnowledgeChanged{Action: "deleted", FileID: "abc"})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if _, ok := fields["filename"]; ok {
		t.Error("expected filename to be omitted for deletes")
	}
	if fields["action"] != "deleted" {
		t.Errorf("expected action 'deleted', got %v", fields["action"])
	}
}

func TestSubjectConstants(t *testing.T) {
	if SubjectSessionSaved != "doorstep.session.saved" {
		t.Errorf("unexpected SubjectSessionSaved '%s'", SubjectSessionSaved)
	}
	if SubjectKnowledgeChanged != "doorstep.knowledge.changed" {
		t.Errorf("unexpected SubjectKnowledgeChanged '%s'", SubjectKnowledgeChanged)
	}
}
