package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestScope_Match(t *testing.T) {
	s := Scope{BusinessID: 1, Collections: []Collection{CollectionOrders}}

	assert.True(t, s.Match(NewEvent(1, CollectionOrders, OpInsert, 10, at)))
	assert.False(t, s.Match(NewEvent(1, CollectionPayments, OpInsert, 10, at)))
	assert.False(t, s.Match(NewEvent(2, CollectionOrders, OpInsert, 10, at)))

	all := Scope{BusinessID: 1}
	assert.True(t, all.Match(NewEvent(1, CollectionPayments, OpUpdate, 3, at)))
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a := NewEvent(1, CollectionOrders, OpInsert, 1, at)
	b := NewEvent(1, CollectionOrders, OpInsert, 1, at)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestHub_FiltersByBusiness(t *testing.T) {
	hub := NewHub()
	w1 := hub.Watch(Scope{BusinessID: 1}, 4)
	w2 := hub.Watch(Scope{BusinessID: 2}, 4)
	defer w1.Close()
	defer w2.Close()

	hub.Publish(NewEvent(1, CollectionOrders, OpInsert, 5, at))

	select {
	case ev := <-w1.C():
		assert.Equal(t, uint(5), ev.RecordID)
	default:
		t.Fatal("işletme 1 olayı almalıydı")
	}
	select {
	case <-w2.C():
		t.Fatal("işletme 2 olay almamalıydı")
	default:
	}
}

func TestHub_LossyWhenBufferFull(t *testing.T) {
	hub := NewHub()
	w := hub.Watch(Scope{BusinessID: 1}, 2)
	defer w.Close()

	for i := 0; i < 5; i++ {
		hub.Publish(NewEvent(1, CollectionOrders, OpUpdate, uint(i), at))
	}

	assert.Len(t, w.C(), 2)
	assert.Equal(t, uint64(3), w.Dropped())
}

func TestHub_CloseIdempotent(t *testing.T) {
	hub := NewHub()
	w := hub.Watch(Scope{BusinessID: 1}, 1)
	assert.Equal(t, 1, hub.Watchers())

	w.Close()
	w.Close()
	assert.Equal(t, 0, hub.Watchers())

	_, ok := <-w.C()
	assert.False(t, ok)

	// kapalı izleyiciye yayın panik üretmez
	hub.Publish(NewEvent(1, CollectionOrders, OpInsert, 1, at))
}

func TestHub_SubscribeDeliversReadyThenEvents(t *testing.T) {
	hub := NewHub()
	ready := make(chan struct{})
	events := make(chan Event, 1)

	sub, err := hub.Subscribe(Scope{BusinessID: 1}, Handler{
		OnReady: func() { close(ready) },
		OnEvent: func(ev Event) { events <- ev },
	})
	require.NoError(t, err)
	defer sub.Close()

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("onay gelmedi")
	}

	hub.Publish(NewEvent(1, CollectionPayments, OpInsert, 9, at))
	select {
	case ev := <-events:
		assert.Equal(t, CollectionPayments, ev.Collection)
	case <-time.After(time.Second):
		t.Fatal("olay gelmedi")
	}
}

func TestReadStream_ParsesFrames(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeFrame(w, EventReady, []byte(`{}`)))
	_, _ = w.WriteString(": ping\n\n")

	ev := NewEvent(3, CollectionOrders, OpInsert, 42, at)
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, writeFrame(w, EventChange, data))

	readyCount := 0
	var got []Event
	err = ReadStream(&buf, Handler{
		OnReady: func() { readyCount++ },
		OnEvent: func(e Event) { got = append(got, e) },
	})

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 1, readyCount)
	require.Len(t, got, 1)
	assert.Equal(t, ev.ID, got[0].ID)
	assert.Equal(t, uint(42), got[0].RecordID)
	assert.True(t, got[0].At.Equal(at))
}

func TestReadStream_BadPayload(t *testing.T) {
	err := ReadStream(strings.NewReader("event: change\ndata: {bozuk\n\n"), Handler{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection(" Orders ")
	require.NoError(t, err)
	assert.Equal(t, CollectionOrders, c)

	_, err = ParseCollection("invoices")
	assert.Error(t, err)
}
