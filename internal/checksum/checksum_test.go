package checksum

import "testing"

func TestSum_Deterministic(t *testing.T) {
	data := []byte("# Heading\n\nSome document body.\n")
	if Sum(data) != Sum(data) {
		t.Error("same bytes should yield the same checksum")
	}
}

func TestSum_DifferentInputs(t *testing.T) {
	a := Sum([]byte("alpha"))
	b := Sum([]byte("alphb"))
	if a == b {
		t.Errorf("expected different checksums, both %d", a)
	}
}

func TestSum_Empty(t *testing.T) {
	if Sum(nil) != Sum([]byte{}) {
		t.Error("nil and empty slice should checksum identically")
	}
}
