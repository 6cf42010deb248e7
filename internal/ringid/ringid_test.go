package ringid

import "testing"

// exhaustive enumeration over a small ring, per the testable-properties
// requirement that ring arithmetic be checked for every (k,a,b) triple
// at a small bit width.
func TestInArcExhaustive(t *testing.T) {
	const bits = 6
	m := Mod(bits)
	for a := uint64(0); a < m; a++ {
		for b := uint64(0); b < m; b++ {
			for k := uint64(0); k < m; k++ {
				open := InArcOpen(k, a, b, bits)
				closed := InArcClosed(k, a, b, bits)
				halfOpen := InArcLeftOpenRightClosed(k, a, b, bits)

				if open && !closed {
					t.Fatalf("open(%d,%d,%d) true but closed false", k, a, b)
				}
				if k == a || k == b {
					if a != b && open {
						t.Fatalf("open(%d,%d,%d) true at endpoint", k, a, b)
					}
				}
				if k == b && a != b && !halfOpen {
					t.Fatalf("halfOpen(%d,%d,%d) should include right endpoint", k, a, b)
				}
				if k == a && a != b && halfOpen {
					t.Fatalf("halfOpen(%d,%d,%d) should exclude left endpoint", k, a, b)
				}
			}
		}
	}
}

func TestWrapAdd(t *testing.T) {
	cases := []struct{ k, delta uint64; bits uint; want uint64 }{
		{250, 10, 8, 4},
		{0, 0, 8, 0},
		{255, 1, 8, 0},
	}
	for _, c := range cases {
		if got := WrapAdd(c.k, c.delta, c.bits); got != c.want {
			t.Errorf("WrapAdd(%d,%d,%d) = %d, want %d", c.k, c.delta, c.bits, got, c.want)
		}
	}
}

func TestWrapSub(t *testing.T) {
	if got := WrapSub(4, 10, 8); got != 250 {
		t.Errorf("WrapSub(4,10,8) = %d, want 250", got)
	}
}

func TestInArcSingletonRing(t *testing.T) {
	// a == b: closed arc is the whole ring, open arc excludes only a.
	if !InArcClosed(5, 3, 3, 8) {
		t.Error("closed arc with a==b should contain every point")
	}
	if InArcOpen(3, 3, 3, 8) {
		t.Error("open arc with a==b should exclude a itself")
	}
	if !InArcOpen(5, 3, 3, 8) {
		t.Error("open arc with a==b should contain every other point")
	}
}
