// Package markalert implements exam grade-distribution alerts: subscriber
// and snapshot persistence, the Campus Dual poller and change detection.
package markalert

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Period values of a graded assessment instance.
const (
	PeriodWinter = "WS"
	PeriodSummer = "SS"
)

// Exam identifies one graded assessment instance.
// On disk it is stored as a 3-element array, e.g. ["5CS-PT1-00", 2025, "WS"].
type Exam struct {
	ModuleCode string
	Year       int
	Period     string
}

// Key returns the canonical string for the exam, used as snapshot file name
// and as callback payload.
func (e Exam) Key() string {
	return fmt.Sprintf("%s_%d_%s", e.ModuleCode, e.Year, e.Period)
}

// MarshalJSON writes the exam as a [module, year, period] tuple.
func (e Exam) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.ModuleCode, e.Year, e.Period})
}

// UnmarshalJSON reads the [module, year, period] tuple form.
func (e *Exam) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 3 {
		return fmt.Errorf("exam tuple has %d elements, want 3", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &e.ModuleCode); err != nil {
		return fmt.Errorf("exam module code: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &e.Year); err != nil {
		return fmt.Errorf("exam year: %w", err)
	}
	if err := json.Unmarshal(tuple[2], &e.Period); err != nil {
		return fmt.Errorf("exam period: %w", err)
	}
	return nil
}

// ParseKey parses a canonical exam key back into an Exam.
func ParseKey(key string) (Exam, error) {
	match := keyRegex.FindStringSubmatch(key)
	if match == nil {
		return Exam{}, fmt.Errorf("malformed exam key %q", key)
	}
	year, err := strconv.Atoi(match[2])
	if err != nil {
		return Exam{}, fmt.Errorf("malformed exam year in %q", key)
	}
	return Exam{ModuleCode: match[1], Year: year, Period: match[3]}, nil
}

var keyRegex = regexp.MustCompile(`^(.+)_(\d{4})_(WS|SS)$`)

// GradeCount is one row of a grade distribution as served by Campus Dual.
type GradeCount struct {
	GradeText string `json:"GRADETEXT"`
	Count     int    `json:"COUNT"`
}

// Distribution is the full grade distribution of one exam.
type Distribution []GradeCount

// TotalCount sums the submission counts over all grades.
func (d Distribution) TotalCount() int {
	total := 0
	for _, g := range d {
		total += g.Count
	}
	return total
}

// Change is the outcome of checking one exam against its last snapshot.
// NewResult is true iff a previous snapshot existed and the total count
// changed. A redistribution with a constant total is deliberately not
// reported; only "a new result exists" matters to subscribers.
type Change struct {
	Exam      Exam
	Old       Distribution // nil when no prior snapshot existed
	New       Distribution
	NewResult bool
}
