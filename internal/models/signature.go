package models

import (
	"fmt"
	"strconv"
	"strings"
)

// CompareOp enumerates the comparison operators a trigger condition may use.
type CompareOp string

const (
	OpGreater CompareOp = ">"
	OpLess    CompareOp = "<"
)

// Condition is a trigger predicate parsed once at signature-load time.
// An invalid condition (unparseable source text) never evaluates as satisfied.
type Condition struct {
	Op        CompareOp `json:"op"`
	Threshold float64   `json:"threshold"`
	Unit      string    `json:"unit,omitempty"`
	Raw       string    `json:"raw"`
	Valid     bool      `json:"valid"`
}

// ParseCondition converts condition source text such as ">80", "<500ms" or
// ">90%" into a typed Condition. Parse failures yield an invalid Condition
// rather than an error so one bad signature cannot block catalog loading.
func ParseCondition(raw string) Condition {
	cond := Condition{Raw: raw}

	text := strings.TrimSpace(raw)
	if len(text) < 2 {
		return cond
	}

	switch text[0] {
	case '>':
		cond.Op = OpGreater
	case '<':
		cond.Op = OpLess
	default:
		return cond
	}

	number := strings.TrimSpace(text[1:])
	switch {
	case strings.HasSuffix(number, "%"):
		cond.Unit = "%"
		number = strings.TrimSuffix(number, "%")
	case strings.HasSuffix(number, "ms"):
		cond.Unit = "ms"
		number = strings.TrimSuffix(number, "ms")
	}

	threshold, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return cond
	}

	cond.Threshold = threshold
	cond.Valid = true
	return cond
}

// Satisfied reports whether value meets the condition. Invalid conditions are
// never satisfied.
func (c Condition) Satisfied(value float64) bool {
	if !c.Valid {
		return false
	}
	switch c.Op {
	case OpGreater:
		return value > c.Threshold
	case OpLess:
		return value < c.Threshold
	default:
		return false
	}
}

func (c Condition) String() string {
	if !c.Valid {
		return fmt.Sprintf("invalid(%s)", c.Raw)
	}
	return fmt.Sprintf("%s%g%s", c.Op, c.Threshold, c.Unit)
}

// Trigger pairs a trigger name with its parsed condition. When the name is a
// metric key the condition applies numerically; otherwise the name itself is
// matched as a case-insensitive substring of the log lines.
type Trigger struct {
	Name      string    `json:"name"`
	Condition Condition `json:"condition"`
}

// Signature is a named failure pattern from the static catalog.
type Signature struct {
	Name       string    `json:"name"`
	Symptoms   []string  `json:"symptoms"`
	Triggers   []Trigger `json:"triggers"`
	RootCause  string    `json:"root_cause"`
	Solutions  []string  `json:"solutions"`
	Prevention []string  `json:"prevention"`
	Confidence float64   `json:"confidence"`
}

// LearnedPattern is a signature reinforced from resolved incidents. Confidence
// grows by a fixed additive step per matching incident and is deliberately not
// clamped at 1.0 (preserved source behaviour).
type LearnedPattern struct {
	Symptoms    []string `json:"symptoms"`
	RootCause   string   `json:"root_cause"`
	Solution    string   `json:"solution"`
	Occurrences int      `json:"occurrences"`
	Confidence  float64  `json:"confidence"`
}

// Baseline is the statistical profile for one metric. Learned marks profiles
// computed from samples; built-in defaults carry only a median and normal
// range. The flag is structural on purpose: a learned p95 can legitimately be
// zero (an all-zero error_rate history) and must not be mistaken for a default.
type Baseline struct {
	Median      float64 `json:"median"`
	P95         float64 `json:"p95"`
	P99         float64 `json:"p99"`
	NormalRange string  `json:"normal_range"`
	Learned     bool    `json:"learned"`
}
