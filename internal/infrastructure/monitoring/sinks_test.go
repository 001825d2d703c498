package monitoring

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/panel-go/internal/domain"
)

func TestMemorySinkBoundsQueue(t *testing.T) {
	sink := NewMemorySink(2)
	for i := 1; i <= 3; i++ {
		require.NoError(t, sink.Deliver(context.Background(), domain.Insight{ID: fmt.Sprint(i), UserID: "ayse"}))
	}
	require.NoError(t, sink.Deliver(context.Background(), domain.Insight{ID: "x", UserID: "mehmet"}))

	got := sink.Drain("ayse")
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID, "oldest is dropped")
	assert.Empty(t, sink.Drain("ayse"))
	assert.Equal(t, 1, queued(sink, "mehmet"))
}

func TestMemorySinkCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemorySink(1).Deliver(ctx, domain.Insight{UserID: "ayse"}), context.Canceled)
}

func TestMultiSinkCombinesErrors(t *testing.T) {
	memory := NewMemorySink(4)
	failing := &failingSink{}
	err := MultiSink{memory, failing}.Deliver(context.Background(), domain.Insight{UserID: "ayse"})

	require.Error(t, err)
	assert.Equal(t, 1, queued(memory, "ayse"), "healthy sinks still receive")
	assert.Equal(t, 1, failing.calls)
	assert.NoError(t, MultiSink{memory}.Deliver(context.Background(), domain.Insight{UserID: "ayse"}))
}

func TestSubjectFor(t *testing.T) {
	tests := []struct {
		user string
		want string
	}{
		{user: "ayse", want: "panel.insights.ayse"},
		{user: "ali.kaya", want: "panel.insights.ali_kaya"},
		{user: "a b*>", want: "panel.insights.a_b__"},
		{user: "", want: "panel.insights._"},
		{user: "gönüllü-01", want: "panel.insights.gönüllü-01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SubjectFor("panel.insights", tt.user), tt.user)
	}
}

func queued(m *MemorySink, userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[userID])
}
