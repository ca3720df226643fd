package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/imaging"
)

// ErrAnalysisInFlight is returned when analysis is triggered while the
// session is already analyzing.
var ErrAnalysisInFlight = errors.New("analysis already in progress")

// Analyzer is the analysis entry point a session calls.
type Analyzer interface {
	Analyze(ctx context.Context, imageDataURL string) ([]ai.PersonRecord, error)
}

// Session owns the state of one analysis session. It is safe for concurrent use.
type Session struct {
	analyzer       Analyzer
	failureMessage string
	newID          func() string

	mu    sync.Mutex
	state State
}

// New creates an idle session. failureMessage is stored on any analysis
// failure in place of the underlying error.
func New(analyzer Analyzer, failureMessage string) *Session {
	return &Session{
		analyzer:       analyzer,
		failureMessage: failureMessage,
		newID:          uuid.NewString,
		state:          State{Phase: PhaseIdle},
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) apply(e Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Transition(s.state, e)
	return s.state
}

// Acquire stores a new image, discarding prior results and errors. An
// in-flight attempt keeps running but its outcome will be ignored.
func (s *Session) Acquire(img imaging.Image) State {
	return s.apply(ImageAcquired{Image: img})
}

// Attempt is an analysis that has moved the session to analyzing and has
// not yet made its call.
type Attempt struct {
	ID      string
	session *Session
	dataURL string
}

// Begin moves the session to analyzing. It returns (nil, nil) when no image
// is held and ErrAnalysisInFlight when an attempt is already running.
func (s *Session) Begin() (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Image == nil {
		return nil, nil
	}
	if s.state.Phase == PhaseAnalyzing {
		return nil, ErrAnalysisInFlight
	}

	id := s.newID()
	s.state = Transition(s.state, AnalysisStarted{AttemptID: id})
	return &Attempt{ID: id, session: s, dataURL: s.state.Image.DataURL()}, nil
}

// Run makes the single analyze call for this attempt and records its outcome.
// The returned error is the analysis error, for callers that want its kind;
// the state only carries the fixed failure message.
func (a *Attempt) Run(ctx context.Context) (State, error) {
	results, err := a.session.analyzer.Analyze(ctx, a.dataURL)
	if err != nil {
		log.Printf("analysis %s failed: %v", a.ID, err)
		return a.session.apply(AnalysisFailed{AttemptID: a.ID, Message: a.session.failureMessage}), err
	}
	return a.session.apply(AnalysisSucceeded{AttemptID: a.ID, Results: results}), nil
}

// Analyze begins and runs an attempt. Without an image it is a no-op that
// returns the unchanged state.
func (s *Session) Analyze(ctx context.Context) (State, error) {
	attempt, err := s.Begin()
	if err != nil {
		return s.Snapshot(), err
	}
	if attempt == nil {
		return s.Snapshot(), nil
	}
	return attempt.Run(ctx)
}
