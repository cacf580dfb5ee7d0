package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialectic-ai/dialectic/internal/dialogue"
)

func newTestBroker(t *testing.T) *Broker {
	t.Helper()
	b := NewBroker()
	t.Cleanup(b.Stop)
	return b
}

func msg(content string) dialogue.Message {
	return dialogue.NewMessage(dialogue.RoleAgentA, content, dialogue.VariantSimulated)
}

func TestOpenSessionTwice(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.OpenSession("d1", "problem", "debate"))
	require.Error(t, b.OpenSession("d1", "problem", "debate"))
}

func TestUnknownSession(t *testing.T) {
	b := newTestBroker(t)

	var unknown *UnknownSessionError
	_, err := b.Subscribe("nope")
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.ID)

	require.ErrorAs(t, b.Publish("nope", msg("x")), &unknown)
	_, err = b.Snapshot("nope")
	require.ErrorAs(t, err, &unknown)
}

func TestLateSubscriberReceivesBacklog(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.OpenSession("d1", "problem", "debate"))

	require.NoError(t, b.Publish("d1", msg("one")))
	require.NoError(t, b.Publish("d1", msg("two")))
	require.NoError(t, b.Publish("d1", msg("three")))

	sub, err := b.Subscribe("d1")
	require.NoError(t, err)
	defer sub.Close()

	// The full backlog is pending immediately.
	select {
	case <-sub.Updated():
	default:
		t.Fatal("expected pending backlog")
	}

	messages, inProgress := sub.Drain()
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "two", messages[1].Content)
	assert.Equal(t, "three", messages[2].Content)
	assert.True(t, inProgress)

	// A live message wakes the subscriber again.
	require.NoError(t, b.Publish("d1", msg("four")))
	select {
	case <-sub.Updated():
	case <-time.After(time.Second):
		t.Fatal("expected wakeup on live publish")
	}
	messages, inProgress = sub.Drain()
	require.Len(t, messages, 1)
	assert.Equal(t, "four", messages[0].Content)
	assert.True(t, inProgress)

	// Closing the session delivers the terminal signal.
	require.NoError(t, b.CloseSession("d1", StatusComplete, ""))
	select {
	case <-sub.Updated():
	case <-time.After(time.Second):
		t.Fatal("expected wakeup on close")
	}
	messages, inProgress = sub.Drain()
	assert.Empty(t, messages)
	assert.False(t, inProgress)
}

func TestSubscriberBlocksUntilPublish(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.OpenSession("d1", "problem", "debate"))

	sub, err := b.Subscribe("d1")
	require.NoError(t, err)
	defer sub.Close()

	select {
	case <-sub.Updated():
		t.Fatal("nothing published yet")
	case <-time.After(50 * time.Millisecond):
	}

	done := make(chan struct{})
	go func() {
		<-sub.Updated()
		close(done)
	}()

	require.NoError(t, b.Publish("d1", msg("hello")))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber not woken by publish")
	}
}

func TestMultipleSubscribersIndependentCursors(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.OpenSession("d1", "problem", "debate"))
	require.NoError(t, b.Publish("d1", msg("one")))

	first, err := b.Subscribe("d1")
	require.NoError(t, err)
	defer first.Close()

	got, _ := first.Drain()
	require.Len(t, got, 1)

	require.NoError(t, b.Publish("d1", msg("two")))

	// A second subscriber still replays from the very beginning.
	second, err := b.Subscribe("d1")
	require.NoError(t, err)
	defer second.Close()

	got, _ = second.Drain()
	require.Len(t, got, 2)

	got, _ = first.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "two", got[0].Content)
}

func TestPublishAfterCloseIsIgnored(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.OpenSession("d1", "problem", "debate"))
	require.NoError(t, b.CloseSession("d1", StatusComplete, ""))

	require.NoError(t, b.Publish("d1", msg("late")))

	snap, err := b.Snapshot("d1")
	require.NoError(t, err)
	assert.Empty(t, snap.SimulatedMessages)
	assert.Equal(t, StatusComplete, snap.Status)
}

func TestCloseWithError(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.OpenSession("d1", "problem", "debate"))

	sub, err := b.Subscribe("d1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.CloseSession("d1", StatusError, "upstream unreachable"))

	_, inProgress := sub.Drain()
	assert.False(t, inProgress)
	assert.Equal(t, "upstream unreachable", sub.Err())

	snap, err := b.Snapshot("d1")
	require.NoError(t, err)
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "upstream unreachable", snap.Error)
}

func TestSnapshotSplitsVariants(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.OpenSession("d1", "problem", "debate"))

	require.NoError(t, b.Publish("d1", dialogue.NewMessage(dialogue.RoleAgentA, "sim", dialogue.VariantSimulated)))
	require.NoError(t, b.Publish("d1", dialogue.NewMessage(dialogue.RoleAgentB, "dual", dialogue.VariantDual)))

	snap, err := b.Snapshot("d1")
	require.NoError(t, err)
	assert.Equal(t, "problem", snap.Problem)
	assert.Equal(t, "debate", snap.Strategy)
	assert.Equal(t, StatusRunning, snap.Status)
	require.Len(t, snap.SimulatedMessages, 1)
	require.Len(t, snap.DualMessages, 1)
	assert.Equal(t, "sim", snap.SimulatedMessages[0].Content)
	assert.Equal(t, "dual", snap.DualMessages[0].Content)
}

func TestReapRemovesExpiredSessions(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.OpenSession("done", "p", "debate"))
	require.NoError(t, b.OpenSession("live", "p", "debate"))
	require.NoError(t, b.OpenSession("watched", "p", "debate"))

	require.NoError(t, b.CloseSession("done", StatusComplete, ""))
	require.NoError(t, b.CloseSession("watched", StatusComplete, ""))

	sub, err := b.Subscribe("watched")
	require.NoError(t, err)
	defer sub.Close()

	b.reap(time.Now().Add(3 * time.Minute))

	var unknown *UnknownSessionError
	_, err = b.Snapshot("done")
	require.ErrorAs(t, err, &unknown)

	// Still running or still watched: survives.
	_, err = b.Snapshot("live")
	require.NoError(t, err)
	_, err = b.Snapshot("watched")
	require.NoError(t, err)
}

func TestReapRespectsGracePeriod(t *testing.T) {
	b := newTestBroker(t)
	require.NoError(t, b.OpenSession("d1", "p", "debate"))
	require.NoError(t, b.CloseSession("d1", StatusComplete, ""))

	b.reap(time.Now().Add(30 * time.Second))

	_, err := b.Snapshot("d1")
	require.NoError(t, err)
}
