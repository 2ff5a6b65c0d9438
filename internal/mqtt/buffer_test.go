package mqtt

import (
	"fmt"
	"testing"
)

func msg(i int) bufferedMsg {
	return bufferedMsg{topic: Topic, payload: []byte(fmt.Sprintf("m%d", i))}
}

func TestRingBufferPushDrain(t *testing.T) {
	r := newRingBuffer(4)

	for i := 0; i < 3; i++ {
		if dropped := r.push(msg(i)); dropped {
			t.Errorf("push %d: unexpected drop", i)
		}
	}
	if r.len() != 3 {
		t.Errorf("len: got %d, want 3", r.len())
	}

	msgs := r.drainAll()
	if len(msgs) != 3 {
		t.Fatalf("drained: got %d, want 3", len(msgs))
	}
	for i, m := range msgs {
		want := fmt.Sprintf("m%d", i)
		if string(m.payload) != want {
			t.Errorf("message %d: got %s, want %s", i, m.payload, want)
		}
	}
	if r.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", r.len())
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	r := newRingBuffer(3)

	for i := 0; i < 3; i++ {
		r.push(msg(i))
	}
	if dropped := r.push(msg(3)); !dropped {
		t.Error("expected drop report on first overflow")
	}
	// Only the first overflowing push reports the drop.
	if dropped := r.push(msg(4)); dropped {
		t.Error("second overflow should not report again")
	}

	msgs := r.drainAll()
	if len(msgs) != 3 {
		t.Fatalf("drained: got %d, want 3", len(msgs))
	}
	// Oldest two (m0, m1) were overwritten.
	want := []string{"m2", "m3", "m4"}
	for i, m := range msgs {
		if string(m.payload) != want[i] {
			t.Errorf("message %d: got %s, want %s", i, m.payload, want[i])
		}
	}
}

func TestRingBufferDrainEmpty(t *testing.T) {
	r := newRingBuffer(4)
	if msgs := r.drainAll(); msgs != nil {
		t.Errorf("expected nil from empty drain, got %d messages", len(msgs))
	}
}

func TestRingBufferReusableAfterDrain(t *testing.T) {
	r := newRingBuffer(2)
	r.push(msg(0))
	r.push(msg(1))
	r.push(msg(2)) // overflow
	r.drainAll()

	// Overflow flag resets with the drain, so a fresh overflow reports again.
	r.push(msg(3))
	r.push(msg(4))
	if dropped := r.push(msg(5)); !dropped {
		t.Error("expected drop report after drain reset")
	}
}
