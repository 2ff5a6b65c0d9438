package gpio

import (
	"errors"
	"testing"
)

func TestFakeChipRequestLine(t *testing.T) {
	c := NewFakeChip()

	var got []Event
	line, err := c.RequestLine(17, EdgeBoth, func(evt Event) {
		got = append(got, evt)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fl, ok := c.Lines[17]
	if !ok {
		t.Fatal("line 17 not recorded on chip")
	}
	if fl != line {
		t.Error("returned line differs from recorded line")
	}
	if fl.Edge != EdgeBoth {
		t.Errorf("edge: got %v, want %v", fl.Edge, EdgeBoth)
	}

	// Pull-up idle level is High
	v, err := line.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != High {
		t.Errorf("idle level: got %d, want %d", v, High)
	}

	fl.Fall()
	fl.Rise()
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Rising {
		t.Error("first event should be falling")
	}
	if !got[1].Rising {
		t.Error("second event should be rising")
	}
}

func TestFakeChipRequestError(t *testing.T) {
	c := NewFakeChip()
	c.RequestError = errors.New("simulated error")

	_, err := c.RequestLine(17, EdgeFalling, nil)
	if err == nil {
		t.Error("expected error to be returned")
	}
}

func TestFakeLineEdgeFiltering(t *testing.T) {
	tests := []struct {
		name        string
		edge        Edge
		wantFalling int
		wantRising  int
	}{
		{"falling only", EdgeFalling, 1, 0},
		{"rising only", EdgeRising, 0, 1},
		{"both", EdgeBoth, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFakeChip()
			var falling, rising int
			_, err := c.RequestLine(4, tt.edge, func(evt Event) {
				if evt.Rising {
					rising++
				} else {
					falling++
				}
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			c.Lines[4].Fall()
			c.Lines[4].Rise()

			if falling != tt.wantFalling {
				t.Errorf("falling events: got %d, want %d", falling, tt.wantFalling)
			}
			if rising != tt.wantRising {
				t.Errorf("rising events: got %d, want %d", rising, tt.wantRising)
			}
		})
	}
}

func TestFakeLineLevelFollowsEdges(t *testing.T) {
	c := NewFakeChip()
	line, _ := c.RequestLine(4, EdgeBoth, nil)
	fl := c.Lines[4]

	fl.Fall()
	if v, _ := line.Value(); v != Low {
		t.Errorf("after Fall: got %d, want %d", v, Low)
	}

	fl.Rise()
	if v, _ := line.Value(); v != High {
		t.Errorf("after Rise: got %d, want %d", v, High)
	}
}

func TestFakeLineValueError(t *testing.T) {
	c := NewFakeChip()
	line, _ := c.RequestLine(4, EdgeFalling, nil)
	c.Lines[4].ValueError = errors.New("simulated error")

	if _, err := line.Value(); err == nil {
		t.Error("expected error to be returned")
	}
}

func TestFakeClose(t *testing.T) {
	c := NewFakeChip()
	line, _ := c.RequestLine(4, EdgeFalling, nil)

	if err := line.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !c.Lines[4].Closed {
		t.Error("line should be closed after Close()")
	}

	if err := c.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !c.Closed {
		t.Error("chip should be closed after Close()")
	}
}
