package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutbox_FIFOAndBatching(t *testing.T) {
	req := require.New(t)
	o := newOutbox(1 << 10)

	for _, f := range []string{"a", "b", "c"} {
		req.True(o.push([]byte(f)))
	}
	<-o.ready

	batch, finished := o.take(2)
	req.False(finished)
	req.Equal([][]byte{[]byte("a"), []byte("b")}, batch)

	// A partial take leaves the pump a wake-up for the rest.
	select {
	case <-o.ready:
	default:
		t.Fatal("expected ready signal after partial take")
	}

	batch, _ = o.take(2)
	req.Equal([][]byte{[]byte("c")}, batch)
	frames, size := o.queued()
	req.Zero(frames)
	req.Zero(size)
}

func TestOutbox_ByteLimit(t *testing.T) {
	req := require.New(t)
	o := newOutbox(10)

	// An empty queue always takes one frame, whatever its size.
	req.True(o.push(make([]byte, 25)))
	req.False(o.push([]byte("x")))

	o.take(maxBatch)
	req.True(o.push(make([]byte, 6)))
	req.True(o.push(make([]byte, 4)))
	req.False(o.push([]byte("x")))

	frames, size := o.queued()
	req.Equal(2, frames)
	req.Equal(10, size)
}

func TestOutbox_CloseDrainsThenFinishes(t *testing.T) {
	req := require.New(t)
	o := newOutbox(1 << 10)
	req.True(o.push([]byte("last")))

	o.close()
	o.close()
	req.False(o.push([]byte("late")))

	batch, finished := o.take(maxBatch)
	req.Equal([][]byte{[]byte("last")}, batch)
	req.True(finished)

	batch, finished = o.take(maxBatch)
	req.Empty(batch)
	req.True(finished)
}
