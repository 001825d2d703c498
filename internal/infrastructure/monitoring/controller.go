package monitoring

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// Options configure a Controller.
type Options struct {
	Generator         ports.InsightGenerator
	Sink              ports.InsightSink
	RealtimeInterval  time.Duration
	ProactiveSchedule string
	Logger            ports.Logger
	Clock             func() time.Time
}

// Controller runs at most one background session per (user, kind).
type Controller struct {
	opts     Options
	mu       sync.Mutex
	sessions map[sessionKey]*session
}

type sessionKey struct {
	userID string
	kind   domain.MonitorKind
}

type session struct {
	info   domain.MonitoringSession
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	// mu serializes ticks against Stop.
	mu      sync.Mutex
	stopped bool
}

// NewController builds a controller with no active sessions.
func NewController(opts Options) *Controller {
	if opts.RealtimeInterval <= 0 {
		opts.RealtimeInterval = domain.DefaultRealtimeInterval
	}
	if opts.ProactiveSchedule == "" {
		opts.ProactiveSchedule = domain.DefaultProactiveSchedule
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Controller{opts: opts, sessions: map[sessionKey]*session{}}
}

// Start begins a session. It reports false when one is already active.
func (c *Controller) Start(userID string, kind domain.MonitorKind) (bool, error) {
	if _, ok := domain.ParseMonitorKind(string(kind)); !ok {
		return false, errors.Newf("unknown monitoring kind %q", kind)
	}
	schedule, err := c.schedule(kind)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := sessionKey{userID: userID, kind: kind}
	if _, ok := c.sessions[key]; ok {
		return false, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		info:   domain.MonitoringSession{UserID: userID, Kind: kind, Active: true, StartedAt: c.opts.Clock()},
		ctx:    ctx,
		cancel: cancel,
	}
	logger := cronLogger{log: c.opts.Logger}
	s.cron = cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	s.cron.Schedule(schedule, cron.FuncJob(func() { c.tick(s) }))
	s.cron.Start()
	c.sessions[key] = s

	c.debug("monitoring started", s.info)
	return true, nil
}

// Stop ends a session and waits for a running tick to finish.
// It reports false when nothing was active.
func (c *Controller) Stop(userID string, kind domain.MonitorKind) bool {
	c.mu.Lock()
	key := sessionKey{userID: userID, kind: kind}
	s, ok := c.sessions[key]
	delete(c.sessions, key)
	c.mu.Unlock()
	if !ok {
		return false
	}
	c.halt(s)
	return true
}

// StopAll ends every session.
func (c *Controller) StopAll() {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = map[sessionKey]*session{}
	c.mu.Unlock()
	for _, s := range sessions {
		c.halt(s)
	}
}

// Active reports whether a session is running.
func (c *Controller) Active(userID string, kind domain.MonitorKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[sessionKey{userID: userID, kind: kind}]
	return ok
}

// Sessions lists active sessions ordered by user then kind.
func (c *Controller) Sessions() []domain.MonitoringSession {
	c.mu.Lock()
	out := make([]domain.MonitoringSession, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, s.info)
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func (c *Controller) halt(s *session) {
	s.cancel()
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	c.debug("monitoring stopped", s.info)
}

func (c *Controller) tick(s *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	for _, insight := range c.opts.Generator.Generate(s.ctx, s.info.UserID, s.info.Kind) {
		if s.ctx.Err() != nil {
			return
		}
		if err := c.opts.Sink.Deliver(s.ctx, insight); err != nil && c.opts.Logger != nil {
			c.opts.Logger.Warn("insight delivery failed", map[string]interface{}{
				"user_id": s.info.UserID,
				"kind":    string(s.info.Kind),
				"error":   err.Error(),
			})
		}
	}
}

func (c *Controller) schedule(kind domain.MonitorKind) (cron.Schedule, error) {
	if kind == domain.MonitorRealtime {
		return intervalSchedule{every: c.opts.RealtimeInterval}, nil
	}
	schedule, err := cron.ParseStandard(c.opts.ProactiveSchedule)
	if err != nil {
		return nil, errors.Wrapf(err, "parse proactive schedule %q", c.opts.ProactiveSchedule)
	}
	return schedule, nil
}

func (c *Controller) debug(msg string, info domain.MonitoringSession) {
	if c.opts.Logger == nil {
		return
	}
	c.opts.Logger.Debug(msg, map[string]interface{}{"user_id": info.UserID, "kind": string(info.Kind)})
}

// intervalSchedule fires every interval without cron.Every's one second rounding.
type intervalSchedule struct {
	every time.Duration
}

func (s intervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.every)
}

// cronLogger routes scheduler messages to the panel logger.
type cronLogger struct {
	log ports.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.log != nil {
		l.log.Debug("cron: "+msg, pairs(keysAndValues))
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l.log != nil {
		l.log.Error("cron: "+msg, err, pairs(keysAndValues))
	}
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}

var (
	_ ports.MonitoringController = (*Controller)(nil)
	_ cron.Logger                = cronLogger{}
)
