// Package stream fans live debate messages out to any number of subscribers.
// Every session buffers its full backlog so a subscriber joining late still
// sees the conversation from the start.
package stream

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dialectic-ai/dialectic/internal/dialogue"
)

// Debate session states.
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusError    = "error"
)

// UnknownSessionError is returned when a debate id does not resolve to a
// live session.
type UnknownSessionError struct {
	ID string
}

func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("unknown debate session: %s", e.ID)
}

// Snapshot is a point-in-time copy of a session's state, messages split by
// conversation variant.
type Snapshot struct {
	DebateID          string             `json:"debate_id"`
	Problem           string             `json:"problem"`
	Strategy          string             `json:"strategy"`
	Status            string             `json:"status"`
	Error             string             `json:"error,omitempty"`
	SimulatedMessages []dialogue.Message `json:"simulated_messages"`
	DualMessages      []dialogue.Message `json:"dual_messages"`
}

// session is the broker-owned state of one live debate. The backlog is
// append-only: written by the single publishing goroutine, read by any
// number of subscribers through their own cursors.
type session struct {
	problem  string
	strategy string

	mu          sync.Mutex
	status      string
	errMsg      string
	messages    []dialogue.Message
	update      chan struct{} // closed and replaced on every state change
	subscribers int
	endedAt     time.Time
}

func (s *session) terminalLocked() bool {
	return s.status == StatusComplete || s.status == StatusError
}

// notifyLocked wakes all blocked subscribers.
func (s *session) notifyLocked() {
	close(s.update)
	s.update = make(chan struct{})
}

// Broker owns all live debate sessions. Terminal sessions linger for a grace
// period after the last subscriber disconnects, then are reaped.
type Broker struct {
	mu       sync.RWMutex
	sessions map[string]*session

	grace time.Duration
	stop  chan struct{}
	once  sync.Once
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithGracePeriod sets how long a finished session survives before reaping.
func WithGracePeriod(d time.Duration) BrokerOption {
	return func(b *Broker) {
		if d > 0 {
			b.grace = d
		}
	}
}

// NewBroker creates a broker and starts its background reaper.
func NewBroker(opts ...BrokerOption) *Broker {
	b := &Broker{
		sessions: make(map[string]*session),
		grace:    2 * time.Minute,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.reapLoop()
	return b
}

// Stop halts the background reaper. Sessions remain readable.
func (b *Broker) Stop() {
	b.once.Do(func() { close(b.stop) })
}

// OpenSession registers a new debate session in the pending state.
func (b *Broker) OpenSession(debateID, problem, strategy string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.sessions[debateID]; exists {
		return fmt.Errorf("debate session already open: %s", debateID)
	}
	b.sessions[debateID] = &session{
		problem:  problem,
		strategy: strategy,
		status:   StatusPending,
		update:   make(chan struct{}),
	}
	return nil
}

// Publish appends a message to the session backlog and wakes subscribers.
// Publishing to a closed session is a no-op apart from a warning, so a
// straggling conversation goroutine cannot corrupt terminal state.
func (b *Broker) Publish(debateID string, msg dialogue.Message) error {
	sess, err := b.session(debateID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.terminalLocked() {
		slog.Warn("publish on closed debate session", "debate_id", debateID)
		return nil
	}
	if sess.status == StatusPending {
		sess.status = StatusRunning
	}
	sess.messages = append(sess.messages, msg)
	sess.notifyLocked()
	return nil
}

// CloseSession marks a session terminal and wakes all subscribers with the
// final status. errMsg is recorded only for StatusError.
func (b *Broker) CloseSession(debateID, finalStatus, errMsg string) error {
	sess, err := b.session(debateID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.terminalLocked() {
		return nil
	}
	sess.status = finalStatus
	if finalStatus == StatusError {
		sess.errMsg = errMsg
	}
	sess.endedAt = time.Now()
	sess.notifyLocked()
	return nil
}

// Snapshot returns a copy of the session's current state.
func (b *Broker) Snapshot(debateID string) (*Snapshot, error) {
	sess, err := b.session(debateID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := &Snapshot{
		DebateID:          debateID,
		Problem:           sess.problem,
		Strategy:          sess.strategy,
		Status:            sess.status,
		Error:             sess.errMsg,
		SimulatedMessages: []dialogue.Message{},
		DualMessages:      []dialogue.Message{},
	}
	for _, msg := range sess.messages {
		switch msg.Variant {
		case dialogue.VariantDual:
			snap.DualMessages = append(snap.DualMessages, msg)
		default:
			snap.SimulatedMessages = append(snap.SimulatedMessages, msg)
		}
	}
	return snap, nil
}

// Subscribe attaches a new subscriber whose cursor starts at the beginning
// of the backlog. The caller must Close the subscription when done.
func (b *Broker) Subscribe(debateID string) (*Subscription, error) {
	sess, err := b.session(debateID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.subscribers++
	sess.mu.Unlock()

	return &Subscription{sess: sess}, nil
}

func (b *Broker) session(debateID string) (*session, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sess, ok := b.sessions[debateID]
	if !ok {
		return nil, &UnknownSessionError{ID: debateID}
	}
	return sess, nil
}

func (b *Broker) reapLoop() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.reap(time.Now())
		}
	}
}

// reap removes terminal sessions with no subscribers once the grace period
// has elapsed.
func (b *Broker) reap(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sess := range b.sessions {
		sess.mu.Lock()
		expired := sess.terminalLocked() && sess.subscribers == 0 && now.Sub(sess.endedAt) >= b.grace
		sess.mu.Unlock()
		if expired {
			delete(b.sessions, id)
			slog.Debug("reaped debate session", "debate_id", id)
		}
	}
}

// Subscription is one subscriber's view of a session. Messages are consumed
// through a cursor over the shared backlog, so subscriptions never copy the
// backlog ahead of time and can always replay from the start.
type Subscription struct {
	sess   *session
	cursor int
	closed bool
}

// Updated returns a channel that is closed as soon as the subscription has
// something to deliver: either pending backlog beyond the cursor or the
// terminal state.
func (s *Subscription) Updated() <-chan struct{} {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()
	if s.cursor < len(s.sess.messages) || s.sess.terminalLocked() {
		ready := make(chan struct{})
		close(ready)
		return ready
	}
	return s.sess.update
}

// Drain returns all messages past the cursor and advances it. inProgress is
// false once the session is terminal and the backlog is fully consumed.
func (s *Subscription) Drain() (messages []dialogue.Message, inProgress bool) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	if s.cursor < len(s.sess.messages) {
		messages = append(messages, s.sess.messages[s.cursor:]...)
		s.cursor = len(s.sess.messages)
	}
	return messages, !s.sess.terminalLocked()
}

// Err returns the session's error message, set only for error-terminal
// sessions.
func (s *Subscription) Err() string {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()
	return s.sess.errMsg
}

// Close detaches the subscriber. Idempotent.
func (s *Subscription) Close() {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.sess.subscribers--
	if s.sess.subscribers == 0 && s.sess.terminalLocked() && s.sess.endedAt.IsZero() {
		s.sess.endedAt = time.Now()
	}
}
