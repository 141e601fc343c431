package extractor

import (
	"encoding/json"
	"strings"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

const fence = "```"

// ExtractScorecard returns the scorecard text for display.
func ExtractScorecard(raw string) string {
	return strings.TrimSpace(raw)
}

// ExtractAnalysis turns model output into an AnalysisRecord. It tries, in order:
// the interior of the first fenced block (or the whole trimmed text when there is
// none), then the span from the first '{' to the last '}' of that candidate.
func ExtractAnalysis(raw string) (domain.AnalysisRecord, error) {
	candidate, ok := fencedBlock(raw)
	if !ok {
		candidate = strings.TrimSpace(raw)
	}

	rec, err := decodeObject(candidate)
	if err == nil {
		return rec, nil
	}

	if span, ok := outermostBraces(candidate); ok {
		if rec, spanErr := decodeObject(span); spanErr == nil {
			return rec, nil
		}
	}

	return domain.AnalysisRecord{}, &domain.MalformedResponseError{Raw: raw, Err: err}
}

func decodeObject(s string) (domain.AnalysisRecord, error) {
	var rec domain.AnalysisRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return domain.AnalysisRecord{}, err
	}
	return rec, nil
}

// fencedBlock returns the trimmed interior of the first ``` block. An optional
// language tag directly after the opening fence is skipped. An opening fence
// without a closing one does not count.
func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, fence)
	if start < 0 {
		return "", false
	}
	body := s[start+len(fence):]

	i := 0
	for i < len(body) && isTagByte(body[i]) {
		i++
	}
	body = body[i:]

	end := strings.Index(body, fence)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(body[:end]), true
}

func isTagByte(b byte) bool {
	return b >= 'a' && b <= 'z' ||
		b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' ||
		b == '_' || b == '-' || b == '+'
}

// outermostBraces returns s from its first '{' through its last '}'.
func outermostBraces(s string) (string, bool) {
	open := strings.IndexByte(s, '{')
	closing := strings.LastIndexByte(s, '}')
	if open < 0 || closing <= open {
		return "", false
	}
	return s[open : closing+1], true
}
