package dispatcher

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/pkg/logger"
	"github.com/doeshing/panel-go/internal/ports"
)

func command(module string) domain.StructuredCommand {
	return domain.StructuredCommand{
		ID:           "cmd-1",
		ActionType:   "donation.create",
		TargetModule: module,
		Parameters:   map[string]string{"amount": "1000", "currency": "TL"},
	}
}

func TestExecuteSuccess(t *testing.T) {
	d := New(time.Second, logger.NewNop())
	var got domain.HandlerRequest
	d.Register("donations", ports.HandlerFunc(func(_ context.Context, req domain.HandlerRequest) (domain.HandlerResponse, error) {
		got = req
		return domain.HandlerResponse{
			Message:   "donation recorded",
			Data:      map[string]any{"id": "d-1"},
			NextSteps: []string{"send a thank-you message"},
		}, nil
	}))

	result := d.Execute(context.Background(), command("donations"), "ayse")

	assert.Equal(t, domain.StatusOK, result.Status)
	assert.Equal(t, "donation recorded", result.Message)
	assert.Equal(t, map[string]any{"id": "d-1"}, result.Data)
	assert.Equal(t, []string{"send a thank-you message"}, result.NextSteps)
	assert.Equal(t, "ayse", got.UserID)
	assert.Equal(t, "donation.create", got.ActionType)
	assert.Equal(t, "1000", got.Parameters["amount"])
}

func TestExecuteHandlerCannotMutateCommand(t *testing.T) {
	d := New(time.Second, nil)
	d.Register("donations", ports.HandlerFunc(func(_ context.Context, req domain.HandlerRequest) (domain.HandlerResponse, error) {
		req.Parameters["amount"] = "0"
		return domain.HandlerResponse{Message: "ok"}, nil
	}))
	cmd := command("donations")

	d.Execute(context.Background(), cmd, "u")

	assert.Equal(t, "1000", cmd.Parameters["amount"])
}

func TestExecuteFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name    string
		module  string
		handler ports.Handler
		want    string
	}{
		{
			name:   "unsupported module",
			module: "rockets",
			want:   "unsupported module",
		},
		{
			name:   "handler error",
			module: "donations",
			handler: ports.HandlerFunc(func(context.Context, domain.HandlerRequest) (domain.HandlerResponse, error) {
				return domain.HandlerResponse{}, errors.New("ledger\nunavailable")
			}),
			want: "ledger unavailable",
		},
		{
			name:   "handler error keeps user message",
			module: "donations",
			handler: ports.HandlerFunc(func(context.Context, domain.HandlerRequest) (domain.HandlerResponse, error) {
				return domain.HandlerResponse{}, domain.NewHandlerErrorWithCause("donations", "amount must be positive", errors.New("sql: constraint"))
			}),
			want: "amount must be positive",
		},
		{
			name:   "panic",
			module: "donations",
			handler: ports.HandlerFunc(func(context.Context, domain.HandlerRequest) (domain.HandlerResponse, error) {
				panic("boom")
			}),
			want: "handler panicked: boom",
		},
		{
			name:   "timeout",
			module: "donations",
			handler: ports.HandlerFunc(func(ctx context.Context, _ domain.HandlerRequest) (domain.HandlerResponse, error) {
				<-ctx.Done()
				return domain.HandlerResponse{}, ctx.Err()
			}),
			want: "handler timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(50*time.Millisecond, logger.NewNop())
			if tt.handler != nil {
				d.Register(tt.module, tt.handler)
			}

			var result domain.ExecutionResult
			require.NotPanics(t, func() {
				result = d.Execute(context.Background(), command(tt.module), "u")
			})

			assert.Equal(t, domain.StatusError, result.Status)
			assert.True(t, result.Valid())
			assert.Contains(t, result.Message, tt.want)
			assert.NotContains(t, result.Message, "\n")
		})
	}
}

func TestExecuteTimeoutDoesNotWaitForHandler(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	d := New(20*time.Millisecond, nil)
	d.Register("slow", ports.HandlerFunc(func(context.Context, domain.HandlerRequest) (domain.HandlerResponse, error) {
		<-release
		return domain.HandlerResponse{Message: "late"}, nil
	}))

	start := time.Now()
	result := d.Execute(context.Background(), command("slow"), "u")

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, domain.StatusError, result.Status)
}

func TestExecuteNoRetries(t *testing.T) {
	var calls int32
	d := New(time.Second, nil)
	d.Register("donations", ports.HandlerFunc(func(context.Context, domain.HandlerRequest) (domain.HandlerResponse, error) {
		atomic.AddInt32(&calls, 1)
		return domain.HandlerResponse{}, errors.New("transient")
	}))

	d.Execute(context.Background(), command("donations"), "u")

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "command failed", sanitize(" \n\t "))
	assert.Equal(t, "a b c", sanitize("a\n  b\tc"))

	long := sanitize(strings.Repeat("ş", 500))
	assert.Equal(t, MaxMessageRunes, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "…"))
}

func TestModules(t *testing.T) {
	d := New(0, nil)
	noop := ports.HandlerFunc(func(context.Context, domain.HandlerRequest) (domain.HandlerResponse, error) {
		return domain.HandlerResponse{}, nil
	})
	d.Register("tasks", noop)
	d.Register("donations", noop)

	assert.Equal(t, []string{"donations", "tasks"}, d.Modules())
}
