package core

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/model"
)

// Phase identifies what is driving the tag at this instant. Exactly one
// phase is active at a time; Advance dispatches on it, which is what keeps
// the wander walk and the traversal animation from racing each other.
type Phase int

const (
	// PhaseIdle means the tag has not been placed yet (no geometry).
	PhaseIdle Phase = iota
	// PhaseWandering is the bounded random-walk dwell inside one room.
	PhaseWandering
	// PhaseTraversing is the eased point-to-point move between rooms.
	PhaseTraversing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWandering:
		return "wandering"
	case PhaseTraversing:
		return "traversing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// SchedulerConfig holds the motion tuning constants.
type SchedulerConfig struct {
	WanderTick    time.Duration // cadence of jitter steps while wandering
	DwellDuration time.Duration // wander time per room before moving on
	MoveDuration  time.Duration // length of the traversal animation
	JitterMax     float64       // max jitter per axis per wander tick, px
	Padding       float64       // inner-bounds inset keeping the tag off room borders, px
}

// DefaultSchedulerConfig returns the reference tuning.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		WanderTick:    40 * time.Millisecond,
		DwellDuration: 10 * time.Second,
		MoveDuration:  2 * time.Second,
		JitterMax:     12,
		Padding:       18,
	}
}

func (c SchedulerConfig) normalized() SchedulerConfig {
	def := DefaultSchedulerConfig()
	if c.WanderTick <= 0 {
		c.WanderTick = def.WanderTick
	}
	if c.DwellDuration <= 0 {
		c.DwellDuration = def.DwellDuration
	}
	if c.MoveDuration <= 0 {
		c.MoveDuration = def.MoveDuration
	}
	if c.JitterMax <= 0 {
		c.JitterMax = def.JitterMax
	}
	if c.Padding < 0 {
		c.Padding = def.Padding
	}
	return c
}

// SchedulerMetricsRecorder receives motion counters. Implemented by the
// observability collector; a nil recorder is allowed.
type SchedulerMetricsRecorder interface {
	IncWanderStep()
	IncRoomTransition(room string)
}

// PathScheduler owns the tag state machine. It is the only writer of the
// tag's position and room; everything else reads through TagState.
//
// All mutation happens inside Advance, so whoever drives the tick loop
// decides the threading model. Internal locking only protects concurrent
// readers against a tick in progress.
type PathScheduler struct {
	mu       sync.Mutex
	cfg      SchedulerConfig
	resolver *GeometryResolver
	path     []model.RoomID
	events   *EventLog
	log      logging.Logger
	rng      *rand.Rand
	metrics  SchedulerMetricsRecorder

	phase   Phase
	pathIdx int
	room    model.RoomID
	pos     model.Point

	lastNow       time.Time
	wanderElapsed time.Duration
	wanderAccum   time.Duration

	travFrom  model.Point
	travTo    model.Point
	travDest  model.RoomID
	travStart time.Time
}

// SchedulerOption customises PathScheduler construction.
type SchedulerOption func(*PathScheduler)

// WithRand injects a deterministic random source for tests.
func WithRand(rng *rand.Rand) SchedulerOption {
	return func(s *PathScheduler) {
		s.rng = rng
	}
}

// WithSchedulerMetrics attaches a metrics recorder.
func WithSchedulerMetrics(m SchedulerMetricsRecorder) SchedulerOption {
	return func(s *PathScheduler) {
		s.metrics = m
	}
}

// NewPathScheduler constructs a scheduler over the given visit sequence.
// The tag is placed lazily: the first Advance that finds geometry for the
// sequence's first room spawns the tag at that room's center.
func NewPathScheduler(resolver *GeometryResolver, path []model.RoomID, events *EventLog, cfg SchedulerConfig, log logging.Logger, opts ...SchedulerOption) (*PathScheduler, error) {
	if resolver == nil {
		return nil, fmt.Errorf("NewPathScheduler: resolver is nil")
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("NewPathScheduler: empty path sequence")
	}
	if events == nil {
		events = NewEventLog(nil)
	}
	if log == nil {
		log = logging.Noop()
	}

	seq := make([]model.RoomID, len(path))
	copy(seq, path)

	s := &PathScheduler{
		cfg:      cfg.normalized(),
		resolver: resolver,
		path:     seq,
		events:   events,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Advance runs one scheduling step at the given instant. It dispatches on
// the current phase, so at most one mover touches the position per call.
func (s *PathScheduler) Advance(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseIdle:
		s.tryPlace(now)
	case PhaseWandering:
		s.advanceWander(now)
	case PhaseTraversing:
		s.advanceTraversal(now)
	}
}

// tryPlace spawns the tag at the first room's center. A direct placement,
// not an animated state; retried every tick until geometry shows up.
func (s *PathScheduler) tryPlace(now time.Time) {
	first := s.path[s.pathIdx%len(s.path)]
	layout, ok := s.resolver.Layout(first)
	if !ok {
		return
	}
	s.room = first
	s.pos = layout.Center
	s.enterWander(now)
	s.log.Info(context.Background(), "tag placed",
		logging.String("room", string(first)))
}

func (s *PathScheduler) enterWander(now time.Time) {
	s.phase = PhaseWandering
	s.wanderElapsed = 0
	s.wanderAccum = 0
	s.lastNow = now
}

func (s *PathScheduler) advanceWander(now time.Time) {
	delta := now.Sub(s.lastNow)
	if delta < 0 {
		delta = 0
	}
	s.lastNow = now
	s.wanderElapsed += delta
	s.wanderAccum += delta

	for s.wanderAccum >= s.cfg.WanderTick {
		s.wanderAccum -= s.cfg.WanderTick
		s.stepWander()
	}

	if s.wanderElapsed >= s.cfg.DwellDuration {
		s.beginTraversal(now)
	}
}

// stepWander applies one jitter step: independent uniform jitter per axis,
// clamped into the room's inner bounds. A room with no resolved layout
// freezes the tag for this step rather than writing bad coordinates.
func (s *PathScheduler) stepWander() {
	layout, ok := s.resolver.Layout(s.room)
	if !ok {
		return
	}
	candidate := model.Point{
		X: s.pos.X + (s.rng.Float64()*2-1)*s.cfg.JitterMax,
		Y: s.pos.Y + (s.rng.Float64()*2-1)*s.cfg.JitterMax,
	}
	bounds := InnerBounds(layout.Bounds, s.cfg.Padding)
	s.pos = bounds.Clamp(candidate, layout.Center)
	if s.metrics != nil {
		s.metrics.IncWanderStep()
	}
}

// beginTraversal captures the traversal endpoints and flips the phase.
// When the destination has no resolved layout the transition is deferred:
// the scheduler stays in the wander phase (dwell already elapsed, so the
// next tick retries) instead of animating toward unknown coordinates.
func (s *PathScheduler) beginTraversal(now time.Time) {
	next := s.path[(s.pathIdx+1)%len(s.path)]
	layout, ok := s.resolver.Layout(next)
	if !ok {
		s.wanderElapsed = s.cfg.DwellDuration
		s.log.Debug(context.Background(), "traversal deferred, destination layout unavailable",
			logging.String("dest", string(next)))
		return
	}
	s.travFrom = s.pos
	s.travTo = layout.Center
	s.travDest = next
	s.travStart = now
	s.phase = PhaseTraversing
	s.log.Debug(context.Background(), "traversal started",
		logging.String("from", string(s.room)),
		logging.String("to", string(next)))
}

func (s *PathScheduler) advanceTraversal(now time.Time) {
	s.lastNow = now
	t := float64(now.Sub(s.travStart)) / float64(s.cfg.MoveDuration)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	s.pos = Lerp(s.travFrom, s.travTo, EaseInOutQuad(t))

	if t >= 1 {
		arrived := s.travDest
		s.room = arrived
		s.pathIdx = (s.pathIdx + 1) % len(s.path)
		s.enterWander(now)
		s.events.Append(fmt.Sprintf("Entered %s", arrived.DisplayName()))
		if s.metrics != nil {
			s.metrics.IncRoomTransition(string(arrived))
		}
		s.log.Info(context.Background(), "room entered",
			logging.String("room", string(arrived)),
			logging.Int("path_index", s.pathIdx))
	}
}

// TagState returns a read-only copy of the tag. While a traversal is in
// flight the room-local position is expressed in the destination room's
// frame, which is where the tag renders.
func (s *PathScheduler) TagState() model.TagState {
	s.mu.Lock()
	defer s.mu.Unlock()

	renderRoom := s.room
	if s.phase == PhaseTraversing {
		renderRoom = s.travDest
	}
	local, _ := s.resolver.ToRoomLocal(renderRoom, s.pos)
	return model.TagState{
		Room:      s.room,
		Position:  s.pos,
		Local:     local,
		PathIndex: s.pathIdx,
	}
}

// Phase returns the current phase.
func (s *PathScheduler) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// NextRoom returns the destination the next traversal will target.
func (s *PathScheduler) NextRoom() model.RoomID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path[(s.pathIdx+1)%len(s.path)]
}

// PathIndex returns the current position in the visit sequence.
func (s *PathScheduler) PathIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pathIdx
}
