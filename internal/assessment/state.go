// Package assessment drives a valuation through its clarification round:
// questions are generated, the seller answers, and the answers become
// normalization adjustments for the final report.
package assessment

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/valuatum/myyntikunto/internal/engine"
	"github.com/valuatum/myyntikunto/internal/questions"
)

// State is the lifecycle state of an assessment.
type State string

const (
	StateInitial       State = "initial"
	StateProcessing    State = "processing"
	StateAwaitingInput State = "awaiting_input"
	StateComplete      State = "complete"
	StateFailed        State = "failed"
)

var (
	// ErrNotFound indicates that the assessment does not exist or has expired.
	ErrNotFound = errors.New("assessment not found")
	// ErrInvalidTransition is returned when an operation is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid assessment state transition")
)

var transitions = map[State][]State{
	StateInitial:       {StateProcessing, StateFailed},
	StateProcessing:    {StateAwaitingInput, StateComplete, StateFailed},
	StateAwaitingInput: {StateProcessing, StateFailed},
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// Assessment is one company's valuation session.
type Assessment struct {
	ID          uuid.UUID `json:"id"`
	BusinessID  string    `json:"businessId"`
	CompanyName string    `json:"companyName"`
	State       State     `json:"state"`

	Input     engine.Input         `json:"input"`
	Questions []questions.Question `json:"questions"`
	Answers   []questions.Answer   `json:"answers,omitempty"`

	ReportID *uuid.UUID     `json:"reportId,omitempty"`
	Output   *engine.Output `json:"output,omitempty"`
	Error    string         `json:"error,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Assessment) transition(to State) error {
	if !slices.Contains(transitions[a.State], to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.State, to)
	}
	a.State = to
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// StartProcessing moves an initial or answered assessment into processing.
func (a *Assessment) StartProcessing() error {
	return a.transition(StateProcessing)
}

// AwaitInput records the generated questions and waits for answers.
func (a *Assessment) AwaitInput(qs []questions.Question) error {
	if err := a.transition(StateAwaitingInput); err != nil {
		return err
	}
	a.Questions = qs
	return nil
}

// Complete records the stored report.
func (a *Assessment) Complete(reportID uuid.UUID, out engine.Output) error {
	if err := a.transition(StateComplete); err != nil {
		return err
	}
	a.ReportID = &reportID
	a.Output = &out
	return nil
}

// Fail records the cause and ends the assessment.
func (a *Assessment) Fail(cause error) error {
	if err := a.transition(StateFailed); err != nil {
		return err
	}
	a.Error = cause.Error()
	return nil
}
