// Package workflow holds the biography generation state machine. A
// Session tracks one workflow: idle, loading, success or error, plus the
// copy acknowledgment window. It owns no rendering; subscribers observe
// state snapshots and draw them however they like.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bioforge-ai/bioforge-api/internal/bio"
	"github.com/bioforge-ai/bioforge-api/internal/prompt"
)

// DefaultAckWindow is how long CopyAcknowledged stays raised after a copy
const DefaultAckWindow = 2 * time.Second

var (
	// ErrSessionClosed is returned by operations on a closed session
	ErrSessionClosed = errors.New("session is closed")

	// ErrNothingToCopy is returned when copy is invoked without a result on display
	ErrNothingToCopy = errors.New("no biography to copy")
)

// Generator produces biographies. *bio.Service satisfies it; tests
// substitute stubs.
type Generator interface {
	// Generate dispatches one generation call.
	Generate(ctx context.Context, req bio.Request) (*bio.Result, error)
	// Validate runs every pre-dispatch check without calling the provider.
	Validate(ctx context.Context, req bio.Request) error
}

// State is a snapshot of a session's workflow. Biography and ErrorMessage
// are mutually exclusive: at most one is non-empty at any time.
type State struct {
	Phase            Phase
	Biography        string
	ErrorMessage     string
	CopyAcknowledged bool
	Style            prompt.Style
}

// Submission is one generation request from a client.
type Submission struct {
	Info     string
	Style    prompt.Style // optional; empty keeps the session's current style
	Model    string       // optional; empty uses the session default
	Provider string       // optional explicit provider override
}

// SessionConfig wires a session's collaborators and defaults.
// Only Generator is required.
type SessionConfig struct {
	Generator Generator
	Clipboard Clipboard     // nil means NopClipboard
	AckWindow time.Duration // 0 means DefaultAckWindow
	Style     prompt.Style  // initial style; empty means professional
	Model     string        // default model for submissions
	Provider  string        // default provider override for submissions
}

// Session is one biography generation workflow. All methods are safe for
// concurrent use; subscriber callbacks run outside the session lock so
// they may call back in.
type Session struct {
	mu        sync.Mutex
	gen       Generator
	clip      Clipboard
	ackWindow time.Duration
	model     string
	provider  string

	ctx    context.Context
	cancel context.CancelFunc

	state    State
	reqToken uint64
	ackToken uint64
	ackTimer *time.Timer

	subs    map[int]func(State)
	nextSub int
	closed  bool
}

// NewSession creates an idle session
func NewSession(cfg SessionConfig) *Session {
	clip := cfg.Clipboard
	if clip == nil {
		clip = NopClipboard{}
	}

	ackWindow := cfg.AckWindow
	if ackWindow <= 0 {
		ackWindow = DefaultAckWindow
	}

	style := cfg.Style
	if !style.Valid() {
		style = prompt.StyleProfessional
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		gen:       cfg.Generator,
		clip:      clip,
		ackWindow: ackWindow,
		model:     cfg.Model,
		provider:  cfg.Provider,
		ctx:       ctx,
		cancel:    cancel,
		state:     State{Phase: PhaseIdle, Style: style},
		subs:      make(map[int]func(State)),
	}
}

// Submit starts a generation for sub and reports whether the submission
// was taken up. Blank info is the validation guard: Submit returns false
// without any state transition and without touching the generator.
//
// Pre-dispatch checks (credentials, model, style) run synchronously, so a
// configuration problem transitions straight to the error state with zero
// provider calls. A submission that passes them supersedes any request
// still in flight: the older response is discarded when it arrives.
//
// ctx only covers the synchronous checks; the dispatched call runs on the
// session's own context so it survives the caller.
func (s *Session) Submit(ctx context.Context, sub Submission) bool {
	if strings.TrimSpace(sub.Info) == "" {
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	style := sub.Style
	if style == "" {
		style = s.state.Style
	}
	model := sub.Model
	if model == "" {
		model = s.model
	}
	providerName := sub.Provider
	if providerName == "" {
		providerName = s.provider
	}
	s.mu.Unlock()

	req := bio.Request{
		Info:     sub.Info,
		Style:    style,
		Model:    model,
		Provider: providerName,
	}

	if err := s.gen.Validate(ctx, req); err != nil {
		if errors.Is(err, bio.ErrEmptyInput) {
			return false
		}
		s.failEagerly(style, err)
		return true
	}

	token, ok := s.beginLoading(style)
	if !ok {
		return false
	}

	go s.dispatch(token, req)
	return true
}

// failEagerly records a submission rejected before dispatch
func (s *Session) failEagerly(style prompt.Style, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	// Supersede any request still in flight: its response must not
	// overwrite this error when it lands.
	s.reqToken++
	s.stopAckLocked()
	s.state.Phase = PhaseError
	s.state.ErrorMessage = bio.UserMessage(err)
	s.state.Biography = ""
	s.state.CopyAcknowledged = false
	if style.Valid() {
		s.state.Style = style
	}
	state, fns := s.subscribersLocked()
	s.mu.Unlock()
	notify(state, fns)
}

// beginLoading transitions into the loading phase and hands out the token
// that identifies this submission
func (s *Session) beginLoading(style prompt.Style) (uint64, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, false
	}
	s.reqToken++
	token := s.reqToken
	s.stopAckLocked()
	s.state.Phase = PhaseLoading
	s.state.ErrorMessage = ""
	s.state.CopyAcknowledged = false
	s.state.Style = style
	state, fns := s.subscribersLocked()
	s.mu.Unlock()
	notify(state, fns)
	return token, true
}

// dispatch runs the generation call and applies its outcome, unless a
// newer submission has superseded this one in the meantime.
func (s *Session) dispatch(token uint64, req bio.Request) {
	result, err := s.gen.Generate(s.ctx, req)

	s.mu.Lock()
	if s.closed || token != s.reqToken {
		// Stale response: a newer submission owns the state now
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.state.Phase = PhaseError
		s.state.ErrorMessage = bio.UserMessage(err)
		s.state.Biography = ""
	} else {
		s.state.Phase = PhaseSuccess
		s.state.Biography = result.Biography
		s.state.ErrorMessage = ""
	}
	state, fns := s.subscribersLocked()
	s.mu.Unlock()
	notify(state, fns)
}

// Copy writes the current biography to the clipboard, raises
// CopyAcknowledged and schedules its reset. Copying again inside the
// window restarts it; the windows do not stack.
func (s *Session) Copy() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state.Phase != PhaseSuccess || s.state.Biography == "" {
		s.mu.Unlock()
		return ErrNothingToCopy
	}
	text := s.state.Biography
	s.mu.Unlock()

	// Clipboard helpers shell out on some platforms; keep the write
	// outside the lock.
	if err := s.clip.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}

	s.mu.Lock()
	if s.closed || s.state.Phase != PhaseSuccess {
		// The biography changed while we were writing; the copy still
		// happened but the acknowledgment no longer applies.
		s.mu.Unlock()
		return nil
	}
	if s.ackTimer != nil {
		s.ackTimer.Stop()
	}
	s.ackToken++
	token := s.ackToken
	s.state.CopyAcknowledged = true
	s.ackTimer = time.AfterFunc(s.ackWindow, func() { s.expireAck(token) })
	state, fns := s.subscribersLocked()
	s.mu.Unlock()
	notify(state, fns)
	return nil
}

// expireAck lowers CopyAcknowledged when the window identified by token
// is still the active one
func (s *Session) expireAck(token uint64) {
	s.mu.Lock()
	if s.closed || token != s.ackToken || !s.state.CopyAcknowledged {
		s.mu.Unlock()
		return
	}
	s.state.CopyAcknowledged = false
	state, fns := s.subscribersLocked()
	s.mu.Unlock()
	notify(state, fns)
}

// SetStyle changes the style used by subsequent submissions. A request
// already in flight keeps the style it was submitted with.
func (s *Session) SetStyle(style prompt.Style) error {
	if !style.Valid() {
		return fmt.Errorf("unknown style: %q (allowed: professional, social)", style)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state.Style == style {
		s.mu.Unlock()
		return nil
	}
	s.state.Style = style
	state, fns := s.subscribersLocked()
	s.mu.Unlock()
	notify(state, fns)
	return nil
}

// Subscribe registers fn to receive every state change. The returned
// function cancels the subscription.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submittable reports whether a new submission would start right away.
// The engine accepts submissions while one is loading (the newer one
// supersedes); this hint exists so UIs can disable the submit action.
func (s *Session) Submittable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.state.Phase != PhaseLoading
}

// Done is closed when the session is torn down
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Close tears the session down: the ack timer is cancelled, in-flight
// work is abandoned and subscribers are dropped. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopAckLocked()
	s.subs = nil
	s.mu.Unlock()
	s.cancel()
}

// stopAckLocked cancels the pending ack reset. The token bump neutralizes
// a timer callback that already fired but has not taken the lock yet.
func (s *Session) stopAckLocked() {
	if s.ackTimer != nil {
		s.ackTimer.Stop()
		s.ackTimer = nil
	}
	s.ackToken++
}

// subscribersLocked snapshots the state and subscriber list for delivery
// after the lock is released
func (s *Session) subscribersLocked() (State, []func(State)) {
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return s.state, fns
}

func notify(state State, fns []func(State)) {
	for _, fn := range fns {
		fn(state)
	}
}
