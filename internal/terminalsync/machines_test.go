package terminalsync

import (
	"testing"
	"time"

	"adisyon-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestCanMove(t *testing.T) {
	assert.True(t, canMove(ConnConnecting, ConnLive))
	assert.True(t, canMove(ConnConnecting, ConnError))
	assert.True(t, canMove(ConnLive, ConnConnecting))
	assert.True(t, canMove(ConnError, ConnConnecting))
	assert.True(t, canMove(ConnError, ConnLive))

	assert.False(t, canMove(ConnLive, ConnError))
	assert.False(t, canMove(ConnConnecting, ConnConnecting))
}

func TestDebouncer_TriggerWhileRunningReschedules(t *testing.T) {
	clk := testutil.NewFakeClock(t0)
	runs := 0
	var d *Debouncer
	d = NewDebouncer(clk, 300*time.Millisecond, func() {
		runs++
		assert.Equal(t, DebounceRunning, d.State())
		if runs == 1 {
			d.Trigger()
		}
	})

	d.Trigger()
	assert.Equal(t, DebounceScheduled, d.State())

	clk.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, runs)
	assert.Equal(t, DebounceScheduled, d.State())

	clk.Advance(300 * time.Millisecond)
	assert.Equal(t, 2, runs)
	assert.Equal(t, DebounceIdle, d.State())
	assert.Zero(t, clk.Pending())
}

func TestDebouncer_StopIgnoresLaterTriggers(t *testing.T) {
	clk := testutil.NewFakeClock(t0)
	runs := 0
	d := NewDebouncer(clk, time.Second, func() { runs++ })

	d.Trigger()
	d.Stop()
	d.Stop()
	d.Trigger()
	clk.Advance(time.Minute)

	assert.Zero(t, runs)
	assert.Zero(t, clk.Pending())
}

func TestPoller_StopInsideTickDoesNotRearm(t *testing.T) {
	clk := testutil.NewFakeClock(t0)
	ticks := 0
	var p *Poller
	p = NewPoller(clk, 10*time.Second, func() {
		ticks++
		if ticks == 2 {
			p.Stop()
		}
	})

	p.Start()
	p.Start()
	assert.Equal(t, 1, clk.Pending())

	clk.Advance(10 * time.Second)
	assert.Equal(t, 1, ticks)
	assert.Equal(t, 1, clk.Pending())

	clk.Advance(10 * time.Second)
	assert.Equal(t, 2, ticks)
	assert.Equal(t, PollStopped, p.State())
	assert.Zero(t, clk.Pending())
}

func TestNotificationChannel_Enable(t *testing.T) {
	player := &fakePlayer{blocked: true}
	n := NewNotificationChannel(player)
	assert.Equal(t, ChannelLocked, n.State())

	n.Notify()
	assert.True(t, n.Armed())

	assert.ErrorIs(t, n.Enable(), ErrPlaybackBlocked)
	assert.Equal(t, ChannelLocked, n.State())
	assert.False(t, n.Armed())

	player.blocked = false
	assert.NoError(t, n.Enable())
	assert.Equal(t, ChannelUnlocked, n.State())
	assert.Zero(t, n.Missed())
}
