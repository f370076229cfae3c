package chanflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotify_BankedPermitSatisfiesLaterWait(t *testing.T) {
	n := NewNotify()
	n.NotifyOne()
	assert.True(t, n.Wait())
}

func TestNotify_WaitBlocksUntilNotified(t *testing.T) {
	n := NewNotify()
	done := make(chan bool, 1)
	go func() { done <- n.Wait() }()

	time.Sleep(10 * time.Millisecond)
	n.NotifyOne()

	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("wait did not unblock")
	}
}

func TestNotify_NotifyAllWakesEveryWaiter(t *testing.T) {
	n := NewNotify()
	const waiters = 5
	done := make(chan bool, waiters)
	for i := 0; i < waiters; i++ {
		go func() { done <- n.Wait() }()
	}
	time.Sleep(10 * time.Millisecond)
	n.NotifyAll()

	for i := 0; i < waiters; i++ {
		select {
		case ok := <-done:
			assert.True(t, ok)
		case <-time.After(time.Second):
			t.Fatal("a waiter did not unblock")
		}
	}
}

func TestNotify_CloseWakesWaitersFalse(t *testing.T) {
	n := NewNotify()
	done := make(chan bool, 1)
	go func() { done <- n.Wait() }()
	time.Sleep(10 * time.Millisecond)
	n.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("wait did not unblock on close")
	}

	assert.False(t, n.Wait())
}
