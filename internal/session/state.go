// Package session tracks one image from acquisition through analysis outcome.
//
// State changes go through Transition, a pure function of (State, Event).
// Session wraps a State behind a mutex, runs the analysis call, and feeds its
// outcome back through Transition.
package session

import (
	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/imaging"
)

// Phase is the lifecycle phase of a session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseAnalyzing Phase = "analyzing"
	PhaseSuccess   Phase = "success"
	PhaseError     Phase = "error"
)

// State is an immutable snapshot. Results are meaningful only in
// PhaseSuccess and ErrorMessage only in PhaseError.
type State struct {
	Phase        Phase
	Image        *imaging.Image
	Results      []ai.PersonRecord
	ErrorMessage string
	AttemptID    string
}

// HasImage reports whether an image is held.
func (s State) HasImage() bool {
	return s.Image != nil
}

// CanAnalyze reports whether triggering analysis would start a call.
func (s State) CanAnalyze() bool {
	return s.Image != nil && s.Phase != PhaseAnalyzing
}

// Event is one of ImageAcquired, AnalysisStarted, AnalysisSucceeded, AnalysisFailed.
type Event interface {
	isEvent()
}

// ImageAcquired replaces the held image and resets to idle.
type ImageAcquired struct {
	Image imaging.Image
}

// AnalysisStarted begins the attempt identified by AttemptID.
type AnalysisStarted struct {
	AttemptID string
}

// AnalysisSucceeded completes an attempt with its results.
type AnalysisSucceeded struct {
	AttemptID string
	Results   []ai.PersonRecord
}

// AnalysisFailed completes an attempt with the user-facing message.
type AnalysisFailed struct {
	AttemptID string
	Message   string
}

func (ImageAcquired) isEvent()     {}
func (AnalysisStarted) isEvent()   {}
func (AnalysisSucceeded) isEvent() {}
func (AnalysisFailed) isEvent()    {}

// Transition returns the state that follows s after e. Events that do not
// apply (starting without an image, starting while analyzing, completing an
// attempt that is no longer current) leave s unchanged.
func Transition(s State, e Event) State {
	switch e := e.(type) {
	case ImageAcquired:
		img := e.Image
		return State{Phase: PhaseIdle, Image: &img}

	case AnalysisStarted:
		if !s.CanAnalyze() {
			return s
		}
		return State{Phase: PhaseAnalyzing, Image: s.Image, AttemptID: e.AttemptID}

	case AnalysisSucceeded:
		if s.Phase != PhaseAnalyzing || s.AttemptID != e.AttemptID {
			return s
		}
		results := make([]ai.PersonRecord, len(e.Results))
		copy(results, e.Results)
		return State{Phase: PhaseSuccess, Image: s.Image, Results: results, AttemptID: e.AttemptID}

	case AnalysisFailed:
		if s.Phase != PhaseAnalyzing || s.AttemptID != e.AttemptID {
			return s
		}
		return State{Phase: PhaseError, Image: s.Image, ErrorMessage: e.Message, AttemptID: e.AttemptID}
	}
	return s
}
