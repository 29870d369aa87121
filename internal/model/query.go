package model

import "strings"

// Query is a single compliance question as issued by the caller.
// Immutable once issued; its lifecycle is a single request.
type Query struct {
	Text   string `json:"text"`             // Natural-language question
	Intent string `json:"intent,omitempty"` // Optional declared intent (a QueryClass name)
}

// QueryClass routes a query to the sources that can answer it
type QueryClass int

const (
	ClassUnknown        QueryClass = 0 // Not yet classified
	ClassEstablishedLaw QueryClass = 1 // Long-standing rules, rates, thresholds
	ClassRecentChanges  QueryClass = 2 // Announcements, updates, "latest" questions
	ClassProcedural     QueryClass = 3 // Forms-and-process, "how do I" questions
	ClassHybrid         QueryClass = 4 // Mixed or ambiguous signals
)

func (c QueryClass) String() string {
	switch c {
	case ClassEstablishedLaw:
		return "established_law"
	case ClassRecentChanges:
		return "recent_changes"
	case ClassProcedural:
		return "procedural"
	case ClassHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// ParseQueryClass maps a declared intent string to a QueryClass.
// Returns false for anything it does not recognize.
func ParseQueryClass(s string) (QueryClass, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "established_law", "established":
		return ClassEstablishedLaw, true
	case "recent_changes", "recent":
		return ClassRecentChanges, true
	case "procedural", "procedure":
		return ClassProcedural, true
	case "hybrid":
		return ClassHybrid, true
	default:
		return ClassUnknown, false
	}
}

// Decision is the classifier's output: the class plus the decision-table
// row that produced it, so routing stays explainable and testable.
type Decision struct {
	Class  QueryClass `json:"class"`
	Rule   string     `json:"rule"`             // Which table rule fired
	Reason string     `json:"reason,omitempty"` // Matched signals, human-readable
}
