package monitoring

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nats-io/nats.go"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// MemorySink queues insights per user until drained. When a queue is full
// the oldest insight is dropped.
type MemorySink struct {
	mu     sync.Mutex
	size   int
	queues map[string][]domain.Insight
}

// NewMemorySink builds a sink holding at most size insights per user.
func NewMemorySink(size int) *MemorySink {
	if size <= 0 {
		size = domain.DefaultInsightBuffer
	}
	return &MemorySink{size: size, queues: map[string][]domain.Insight{}}
}

// Deliver implements ports.InsightSink.
func (m *MemorySink) Deliver(ctx context.Context, insight domain.Insight) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	queue := append(m.queues[insight.UserID], insight)
	if len(queue) > m.size {
		queue = queue[len(queue)-m.size:]
	}
	m.queues[insight.UserID] = queue
	return nil
}

// Drain returns and forgets the queued insights of a user, oldest first.
func (m *MemorySink) Drain(userID string) []domain.Insight {
	m.mu.Lock()
	defer m.mu.Unlock()
	queue := m.queues[userID]
	delete(m.queues, userID)
	return queue
}

// NATSSink publishes insights as JSON to "<subject>.<userID>".
type NATSSink struct {
	nc      *nats.Conn
	subject string
}

// ConnectNATSSink dials url with reconnects enabled.
func ConnectNATSSink(url, subject string) (*NATSSink, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("panel-insights"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to nats at %s", url)
	}
	return NewNATSSink(nc, subject), nil
}

// NewNATSSink wraps an existing connection.
func NewNATSSink(nc *nats.Conn, subject string) *NATSSink {
	if subject == "" {
		subject = domain.DefaultNATSSubject
	}
	return &NATSSink{nc: nc, subject: subject}
}

// Deliver implements ports.InsightSink.
func (n *NATSSink) Deliver(ctx context.Context, insight domain.Insight) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(insight)
	if err != nil {
		return errors.Wrap(err, "encode insight")
	}
	subject := SubjectFor(n.subject, insight.UserID)
	return errors.Wrapf(n.nc.Publish(subject, data), "publish to %s", subject)
}

// Close drains the connection.
func (n *NATSSink) Close() error {
	return n.nc.Drain()
}

// SubjectFor builds the per-user subject. Characters NATS treats as
// separators or wildcards are replaced in the user id.
func SubjectFor(prefix, userID string) string {
	token := make([]rune, 0, len(userID))
	for _, r := range userID {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			token = append(token, '_')
		default:
			token = append(token, r)
		}
	}
	if len(token) == 0 {
		return prefix + "._"
	}
	return prefix + "." + string(token)
}

// MultiSink fans an insight out to every sink and combines their errors.
type MultiSink []ports.InsightSink

// Deliver implements ports.InsightSink.
func (m MultiSink) Deliver(ctx context.Context, insight domain.Insight) error {
	var combined error
	for _, sink := range m {
		combined = errors.CombineErrors(combined, sink.Deliver(ctx, insight))
	}
	return combined
}

var (
	_ ports.InsightSink = (*MemorySink)(nil)
	_ ports.InsightSink = (*NATSSink)(nil)
	_ ports.InsightSink = MultiSink(nil)
)
