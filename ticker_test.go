package chanflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicker_FiresRepeatedly(t *testing.T) {
	ticker := NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-ticker.C():
		case <-time.After(time.Second):
			t.Fatal("ticker did not fire")
		}
	}
}

func TestTicker_ResetChangesPeriod(t *testing.T) {
	ticker := NewTicker(time.Hour)
	defer ticker.Stop()
	ticker.Reset(5 * time.Millisecond)

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Fatal("ticker did not fire after reset")
	}
}

func TestTicker_StopHaltsDelivery(t *testing.T) {
	ticker := NewTicker(5 * time.Millisecond)
	<-ticker.C()
	ticker.Stop()

	select {
	case <-ticker.C():
		t.Fatal("ticker delivered a tick after Stop")
	case <-time.After(20 * time.Millisecond):
	}
	assert.True(t, true)
}
