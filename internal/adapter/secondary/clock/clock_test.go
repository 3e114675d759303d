package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_AdvanceFiresTicker(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)
	ticker := c.NewTicker(10 * time.Millisecond)

	c.Advance(5 * time.Millisecond)
	select {
	case <-ticker.C():
		t.Fatal("ticked early")
	default:
	}

	c.Advance(5 * time.Millisecond)
	select {
	case got := <-ticker.C():
		assert.Equal(t, start.Add(10*time.Millisecond), got)
	default:
		t.Fatal("expected tick")
	}

	ticker.Stop()
	c.Advance(time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker fired")
	default:
	}
	assert.Equal(t, start.Add(1010*time.Millisecond), c.Now())
}

func TestSystem(t *testing.T) {
	var c System
	ticker := c.NewTicker(time.Millisecond)
	defer ticker.Stop()

	before := c.Now()
	select {
	case got := <-ticker.C():
		assert.False(t, got.Before(before.Add(-time.Second)))
	case <-time.After(time.Second):
		require.Fail(t, "system ticker did not fire")
	}
}
