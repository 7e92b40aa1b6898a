package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavelayer/mlme/internal/mock"
)

type testEvent string

func TestScheduleAndTrigger(t *testing.T) {
	sched := mock.NewFakeScheduler()
	tm := New[testEvent](sched)

	id := tm.Schedule("auth-timeout", sched.Now().Add(time.Second))
	assert.Equal(t, 1, tm.Pending())

	fired := sched.Advance(2 * time.Second)
	require.Len(t, fired, 1)

	ev, ok := tm.Triggered(fired[0])
	require.True(t, ok)
	assert.Equal(t, testEvent("auth-timeout"), ev)
	assert.Equal(t, id, fired[0])
	assert.Equal(t, 0, tm.Pending())
}

func TestTriggeredIsOneShot(t *testing.T) {
	sched := mock.NewFakeScheduler()
	tm := New[testEvent](sched)

	id := tm.Schedule("e", sched.Now().Add(time.Second))
	sched.Advance(time.Second)

	_, ok := tm.Triggered(id)
	require.True(t, ok)
	_, ok = tm.Triggered(id)
	assert.False(t, ok)
}

func TestCanceledEventDoesNotTrigger(t *testing.T) {
	sched := mock.NewFakeScheduler()
	tm := New[testEvent](sched)

	id := tm.Schedule("e", sched.Now().Add(time.Second))
	tm.Cancel(id)
	assert.Equal(t, 0, sched.Pending())

	_, ok := tm.Triggered(id)
	assert.False(t, ok)
}

func TestStaleFiringIsIgnored(t *testing.T) {
	sched := mock.NewFakeScheduler()
	tm := New[testEvent](sched)

	_, ok := tm.Triggered(42)
	assert.False(t, ok)
}

func TestCancelAll(t *testing.T) {
	sched := mock.NewFakeScheduler()
	tm := New[testEvent](sched)

	tm.Schedule("a", sched.Now().Add(time.Second))
	tm.Schedule("b", sched.Now().Add(2*time.Second))
	tm.CancelAll()
	assert.Equal(t, 0, tm.Pending())
	assert.Equal(t, 0, sched.Pending())
	assert.Empty(t, sched.Advance(3*time.Second))
}

func TestFiringOrderFollowsDeadlines(t *testing.T) {
	sched := mock.NewFakeScheduler()
	tm := New[testEvent](sched)

	late := tm.Schedule("late", sched.Now().Add(2*time.Second))
	early := tm.Schedule("early", sched.Now().Add(time.Second))

	fired := sched.Advance(3 * time.Second)
	require.Len(t, fired, 2)
	assert.Equal(t, early, fired[0])
	assert.Equal(t, late, fired[1])
}
