// internal/models/result.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ComponentScore is a single component/flag code with its raw score.
type ComponentScore struct {
	Code  string  `json:"code"`
	Score float64 `json:"score"`
}

// ComponentScores is an ordered score map. On the wire it is a JSON object;
// decoding keeps the document's key order, which is the tie-break order for
// equal scores.
type ComponentScores []ComponentScore

// Lookup returns the score for code.
func (s ComponentScores) Lookup(code string) (float64, bool) {
	for _, cs := range s {
		if cs.Code == code {
			return cs.Score, true
		}
	}
	return 0, false
}

// Codes returns the codes in order.
func (s ComponentScores) Codes() []string {
	out := make([]string, len(s))
	for i, cs := range s {
		out[i] = cs.Code
	}
	return out
}

func (s ComponentScores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cs := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cs.Code)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(cs.Score)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *ComponentScores) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("component scores must be a JSON object")
	}

	out := ComponentScores{}
	seen := map[string]struct{}{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		code := keyTok.(string)
		if _, dup := seen[code]; dup {
			return fmt.Errorf("duplicate component code %q", code)
		}
		seen[code] = struct{}{}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("score for %q must be a number", code)
		}
		score, err := num.Float64()
		if err != nil {
			return fmt.Errorf("score for %q: %w", code, err)
		}
		out = append(out, ComponentScore{Code: code, Score: score})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}

// RankedFlag is one entry of a flag-based outcome. Rank starts at 1.
type RankedFlag struct {
	Code  string  `json:"code"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// ResolutionOutcome is the result of applying a pattern to scores. For
// flag-based patterns Flags is set; for range-based patterns Range is set
// when Matched is true.
type ResolutionOutcome struct {
	PatternID      string          `json:"patternId"`
	Category       PatternCategory `json:"category"`
	Flags          []RankedFlag    `json:"flags,omitempty"`
	Range          *ScoreRange     `json:"range,omitempty"`
	Filter         string          `json:"filter,omitempty"`
	Matched        bool            `json:"matched"`
	AggregateScore *float64        `json:"aggregateScore,omitempty"`
}

// FlagCodes returns the ranked codes in order.
func (o ResolutionOutcome) FlagCodes() []string {
	out := make([]string, len(o.Flags))
	for i, f := range o.Flags {
		out[i] = f.Code
	}
	return out
}

// ResultCode is the concatenated flag codes, or the matched range label.
func (o ResolutionOutcome) ResultCode() string {
	if o.Category == CategoryFlagBased {
		return strings.Join(o.FlagCodes(), "")
	}
	if o.Range != nil {
		return o.Range.Label
	}
	return ""
}

// FinalScore is the sum of the selected flag scores, or the aggregate score
// for range outcomes.
func (o ResolutionOutcome) FinalScore() float64 {
	if o.Category == CategoryFlagBased {
		var total float64
		for _, f := range o.Flags {
			total += f.Score
		}
		return total
	}
	if o.AggregateScore != nil {
		return *o.AggregateScore
	}
	return 0
}

type GenerationMethod string

const (
	GenerationRangeBased GenerationMethod = "range_based"
	GenerationFlagBased  GenerationMethod = "flag_based"
	GenerationManual     GenerationMethod = "manual"
	GenerationHybrid     GenerationMethod = "hybrid"
)

// TestResult is a predefined catalog entry in test_results.
type TestResult struct {
	ID          string `json:"id"`
	TestID      string `json:"testId"`
	ResultCode  string `json:"resultCode"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

// ResultComponent describes a single component code of a test.
type ResultComponent struct {
	ID            string `json:"id"`
	TestID        string `json:"testId"`
	ComponentCode string `json:"componentCode"`
	Title         string `json:"title"`
	Description   string `json:"description"`
}

// UserTestResult is the persisted result of one test attempt.
type UserTestResult struct {
	ID                   string           `json:"id"`
	TestAttemptID        string           `json:"testAttemptId"`
	TestID               string           `json:"testId"`
	UserID               string           `json:"userId"`
	ResultID             *string          `json:"resultId"`
	PatternID            string           `json:"patternId"`
	GeneratedResultCode  string           `json:"generatedResultCode"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	FinalScore           float64          `json:"finalScore"`
	GenerationMethod     GenerationMethod `json:"generationMethod"`
	ComponentCombination json.RawMessage  `json:"componentCombination"`
	CalculationDetails   json.RawMessage  `json:"calculationDetails"`
	IsFinal              bool             `json:"isFinal"`
	ViewCount            int64            `json:"viewCount"`
	DownloadCount        int64            `json:"downloadCount"`
	CreatedAt            time.Time        `json:"createdAt"`
}
