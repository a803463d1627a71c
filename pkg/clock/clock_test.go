package clock

import "testing"

func TestManual_AdvanceAccumulates(t *testing.T) {
	m := NewManual(1000)
	if m.NowMillis() != 1000 {
		t.Fatalf("expected 1000, got %d", m.NowMillis())
	}

	m.Advance(500)
	if m.NowMillis() != 1500 {
		t.Fatalf("expected 1500, got %d", m.NowMillis())
	}

	m.Advance(-200)
	if m.NowMillis() != 1300 {
		t.Fatalf("expected 1300, got %d", m.NowMillis())
	}
}

func TestReal_ReturnsIncreasingTime(t *testing.T) {
	c := Real()
	a := c.NowMillis()
	b := c.NowMillis()
	if b < a {
		t.Fatalf("expected non-decreasing time, got %d then %d", a, b)
	}
}
