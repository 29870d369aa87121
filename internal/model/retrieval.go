package model

// RetrievalState is a stop on the orchestrator's per-query state machine:
// classified -> adapters_dispatched -> (partial_results | all_failed) -> merged
type RetrievalState string

const (
	StateClassified     RetrievalState = "classified"
	StateDispatched     RetrievalState = "adapters_dispatched"
	StatePartialResults RetrievalState = "partial_results"
	StateAllFailed      RetrievalState = "all_failed"
	StateMerged         RetrievalState = "merged"
)

// AdapterFailure records why a dispatched adapter produced no usable results.
type AdapterFailure struct {
	Source  SourceKind `json:"source"`
	Timeout bool       `json:"timeout"`           // Deadline exceeded, as opposed to unreachable
	Message string     `json:"message,omitempty"` // Underlying cause
}

// RetrievalOutcome is the orchestrator's terminal record for one query,
// handed to the resolver. Items carry raw adapter output in a fixed
// source order (knowledge base before web); ranking happens downstream.
type RetrievalOutcome struct {
	State        RetrievalState   `json:"state"`
	Transitions  []RetrievalState `json:"transitions,omitempty"` // States visited, in order
	Items        []EvidenceItem   `json:"items"`
	Primary      SourceKind       `json:"primary"`               // Adapter the routing table selected first
	UsedFallback bool             `json:"used_fallback"`         // Primary failed or came back empty
	FallbackTo   SourceKind       `json:"fallback_to,omitempty"` // Adapter that served the fallback
	Failures     []AdapterFailure `json:"failures,omitempty"`
}

// FallbackOnly reports whether every surviving item came from the fallback
// path. The resolver treats that condition as a staleness trigger.
func (o RetrievalOutcome) FallbackOnly() bool {
	if !o.UsedFallback || len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if item.Origin != o.FallbackTo {
			return false
		}
	}
	return true
}
