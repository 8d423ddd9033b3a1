package domain

import (
	"encoding/json"
	"fmt"
)

type StatusKind int

const (
	StatusNotGoaled StatusKind = iota
	StatusIncomplete
	StatusPartiallyComplete
	StatusComplete
)

var statusNames = map[StatusKind]string{
	StatusNotGoaled:         "not_goaled",
	StatusIncomplete:        "incomplete",
	StatusPartiallyComplete: "partially_complete",
	StatusComplete:          "complete",
}

func (k StatusKind) String() string {
	if name, ok := statusNames[k]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(k))
}

// CompletionStatus is the per item, per day state. Count and Goal are only
// meaningful for PartiallyComplete and Complete.
type CompletionStatus struct {
	Kind  StatusKind
	Count int
	Goal  int
}

var (
	NotGoaled  = CompletionStatus{Kind: StatusNotGoaled}
	Incomplete = CompletionStatus{Kind: StatusIncomplete}
)

func PartiallyComplete(count, goal int) CompletionStatus {
	return CompletionStatus{Kind: StatusPartiallyComplete, Count: count, Goal: goal}
}

func Complete(count, goal int) CompletionStatus {
	return CompletionStatus{Kind: StatusComplete, Count: count, Goal: goal}
}

// IsComplete is the only state that counts as done in aggregate math.
func (s CompletionStatus) IsComplete() bool {
	return s.Kind == StatusComplete
}

func (s CompletionStatus) IsGoaled() bool {
	return s.Kind != StatusNotGoaled
}

func (s CompletionStatus) String() string {
	if s.Kind == StatusPartiallyComplete {
		return fmt.Sprintf("%s(%d/%d)", s.Kind, s.Count, s.Goal)
	}
	return s.Kind.String()
}

type statusJSON struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Goal   int    `json:"goal,omitempty"`
}

func (s CompletionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusJSON{Status: s.Kind.String(), Count: s.Count, Goal: s.Goal})
}

func (s *CompletionStatus) UnmarshalJSON(data []byte) error {
	var raw statusJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for kind, name := range statusNames {
		if name == raw.Status {
			*s = CompletionStatus{Kind: kind, Count: raw.Count, Goal: raw.Goal}
			return nil
		}
	}
	return fmt.Errorf("unknown completion status %q", raw.Status)
}
