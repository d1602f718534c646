package cache

import "testing"

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	a := hashIP("203.0.113.7")
	b := hashIP("203.0.113.7")
	if a != b {
		t.Error("hashIP should be deterministic")
	}
	if len(a) != 16 {
		t.Errorf("hashIP should be 16 hex chars, got %d", len(a))
	}

	if hashIP("203.0.113.7") == hashIP("203.0.113.8") {
		t.Error("different IPs should hash differently")
	}
}
