package dispatcher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// MaxMessageRunes caps error messages surfaced to callers.
const MaxMessageRunes = 200

// Dispatcher routes commands to the handler registered for their target module.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]ports.Handler
	timeout  time.Duration
	log      ports.Logger
}

// New builds a Dispatcher. A non-positive timeout uses the default.
func New(timeout time.Duration, log ports.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = domain.DefaultDispatchTimeout
	}
	return &Dispatcher{
		handlers: make(map[string]ports.Handler),
		timeout:  timeout,
		log:      log,
	}
}

// Register binds a handler to a module, replacing any previous binding.
func (d *Dispatcher) Register(module string, handler ports.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[module] = handler
}

// Modules lists registered modules, sorted.
func (d *Dispatcher) Modules() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	modules := make([]string, 0, len(d.handlers))
	for module := range d.handlers {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules
}

// Execute implements ports.Dispatcher. It never panics and never returns a
// result outside the closed status set. There are no retries.
func (d *Dispatcher) Execute(ctx context.Context, cmd domain.StructuredCommand, userID string) domain.ExecutionResult {
	d.mu.RLock()
	handler, ok := d.handlers[cmd.TargetModule]
	d.mu.RUnlock()
	if !ok {
		d.warn("no handler registered", domain.ErrUnsupportedModule, cmd)
		return domain.ErrorResult("%s", domain.ErrUnsupportedModule.Error())
	}

	req := domain.HandlerRequest{
		UserID:     userID,
		ActionType: cmd.ActionType,
		Parameters: copyParams(cmd.Parameters),
	}
	resp, err := d.invoke(ctx, handler, req)
	if err != nil {
		d.warn("handler failed", err, cmd)
		return domain.ErrorResult("%s", userMessage(err))
	}
	return domain.OKResult(resp.Message, resp.Data, resp.NextSteps)
}

type outcome struct {
	resp domain.HandlerResponse
	err  error
}

// invoke runs the handler under the dispatch timeout. The result channel is
// buffered so a handler that outlives the timeout does not leak blocked.
func (d *Dispatcher) invoke(ctx context.Context, handler ports.Handler, req domain.HandlerRequest) (domain.HandlerResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: errors.Newf("handler panicked: %v", r)}
			}
		}()
		resp, err := handler.Handle(ctx, req)
		done <- outcome{resp: resp, err: err}
	}()

	select {
	case out := <-done:
		return out.resp, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.HandlerResponse{}, errors.Wrapf(domain.ErrHandlerTimeout, "no answer within %s", d.timeout)
		}
		return domain.HandlerResponse{}, errors.Wrap(ctx.Err(), "dispatch cancelled")
	}
}

// userMessage prefers handler-authored messages and sanitizes the rest.
func userMessage(err error) string {
	var handlerErr *domain.HandlerError
	if errors.As(err, &handlerErr) {
		return sanitize(handlerErr.Message)
	}
	return sanitize(err.Error())
}

// sanitize collapses whitespace to a single line and caps the length.
func sanitize(msg string) string {
	msg = strings.Join(strings.Fields(msg), " ")
	if msg == "" {
		return "command failed"
	}
	if utf8.RuneCountInString(msg) <= MaxMessageRunes {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:MaxMessageRunes-1]) + "…"
}

func copyParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

func (d *Dispatcher) warn(msg string, err error, cmd domain.StructuredCommand) {
	if d.log == nil {
		return
	}
	d.log.Warn(msg, map[string]interface{}{
		"module":     cmd.TargetModule,
		"action":     cmd.ActionType,
		"command_id": cmd.ID,
		"error":      fmt.Sprint(err),
	})
}

var _ ports.Dispatcher = (*Dispatcher)(nil)
