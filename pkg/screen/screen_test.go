package screen

import (
	"image"
	"image/color"
	"testing"
)

func TestClassifyTransition(t *testing.T) {
	cases := []struct {
		distance int
		want     TransitionClass
	}{
		{0, TransitionNone},
		{1, TransitionMinor},
		{9, TransitionMinor},
		{10, TransitionPartial},
		{29, TransitionPartial},
		{30, TransitionFull},
		{64, TransitionFull},
	}
	for _, c := range cases {
		if got := ClassifyTransition(c.distance); got != c.want {
			t.Errorf("ClassifyTransition(%d) = %q, want %q", c.distance, got, c.want)
		}
	}
}

func TestTransitionMatches(t *testing.T) {
	if !TransitionUnknown.Matches(TransitionFull) {
		t.Error("unknown expectation should match any observed class")
	}
	if !TransitionClass("").Matches(TransitionMinor) {
		t.Error("empty expectation should match any observed class")
	}
	if !TransitionFull.Matches(TransitionFull) {
		t.Error("identical classes should match")
	}
	if TransitionNone.Matches(TransitionFull) {
		t.Error("none should not match full_transition")
	}
}

func solidFrame(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPerceptionHashIdenticalFrames(t *testing.T) {
	hasher := NewPerceptionHasher()
	a, err := hasher.Hash(solidFrame(color.White))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := hasher.Hash(solidFrame(color.White))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	dist, err := a.Distance(b)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if dist != 0 {
		t.Errorf("distance between identical frames = %d, want 0", dist)
	}
}

type fakeHash int

func (fakeHash) Distance(Hash) (int, error) { return 0, nil }
func (fakeHash) String() string             { return "fake" }

func TestPerceptionHashRejectsForeignHash(t *testing.T) {
	hasher := NewPerceptionHasher()
	h, err := hasher.Hash(solidFrame(color.Black))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if _, err := h.Distance(fakeHash(0)); err == nil {
		t.Error("expected error comparing incompatible hash types")
	}
}
