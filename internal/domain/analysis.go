package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Categories is the fixed breakdown set, in display order.
var Categories = []string{
	"opening",
	"objectionHandling",
	"rapport",
	"tonality",
	"timing",
	"closing",
}

// CategoryScore is one entry of an analysis breakdown. Score is nil when the
// model left it out or sent something that is not a number.
type CategoryScore struct {
	Score    *int   `json:"score"`
	Feedback string `json:"feedback"`
}

// AnalysisRecord is the structured evaluation of a finished session.
//
// Decoding is lenient: any JSON object is accepted and fields with unexpected
// types are left at their zero value. The exact JSON the record was decoded
// from is kept and re-emitted by MarshalJSON, so whatever shape the model
// produced is what gets stored and returned.
type AnalysisRecord struct {
	Overall        int                      `json:"overall"`
	Breakdown      map[string]CategoryScore `json:"breakdown"`
	Summary        string                   `json:"summary"`
	KeyStrength    string                   `json:"keyStrength"`
	KeyImprovement string                   `json:"keyImprovement"`

	raw json.RawMessage
}

var errNotObject = errors.New("analysis is not a JSON object")

// Raw returns the JSON the record was decoded from, or nil when it was built in code.
func (a AnalysisRecord) Raw() json.RawMessage {
	return a.raw
}

// MarshalJSON re-emits the original JSON when there is one.
func (a AnalysisRecord) MarshalJSON() ([]byte, error) {
	if len(a.raw) > 0 {
		return a.raw, nil
	}
	type plain AnalysisRecord
	return json.Marshal(plain(a))
}

// UnmarshalJSON accepts any JSON object.
func (a *AnalysisRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errNotObject
	}

	rec := AnalysisRecord{raw: bytes.Clone(data)}
	if n, ok := intValue(fields["overall"]); ok {
		rec.Overall = n
	}
	rec.Summary = stringValue(fields["summary"])
	rec.KeyStrength = stringValue(fields["keyStrength"])
	rec.KeyImprovement = stringValue(fields["keyImprovement"])

	var breakdown map[string]json.RawMessage
	if json.Unmarshal(fields["breakdown"], &breakdown) == nil && len(breakdown) > 0 {
		rec.Breakdown = make(map[string]CategoryScore, len(breakdown))
		for name, entry := range breakdown {
			var cat map[string]json.RawMessage
			if json.Unmarshal(entry, &cat) != nil || cat == nil {
				continue
			}
			cs := CategoryScore{Feedback: stringValue(cat["feedback"])}
			if n, ok := intValue(cat["score"]); ok {
				cs.Score = &n
			}
			rec.Breakdown[name] = cs
		}
	}

	*a = rec
	return nil
}

// CategoryScoreOf returns the score for a category if one is present.
func (a AnalysisRecord) CategoryScoreOf(category string) (int, bool) {
	cs, ok := a.Breakdown[category]
	if !ok || cs.Score == nil {
		return 0, false
	}
	return *cs.Score, true
}

func intValue(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return RoundHalfUp(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return RoundHalfUp(f), true
	default:
		return 0, false
	}
}

func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// RoundHalfUp rounds to the nearest integer with .5 going towards +Inf.
func RoundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}
