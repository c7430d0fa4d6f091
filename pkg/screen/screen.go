// Package screen provides screen capture, perceptual hashing of frames, and
// the coarse classification of screen transitions by hash distance.
package screen

import (
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

// Capturer produces a bitmap of the current screen (or game window).
type Capturer interface {
	Capture() (image.Image, error)
}

// Hash is an opaque perceptual hash of a frame.
type Hash interface {
	// Distance returns the Hamming-style distance to another hash.
	Distance(other Hash) (int, error)
	String() string
}

// Hasher computes perceptual hashes of frames.
type Hasher interface {
	Hash(img image.Image) (Hash, error)
}

// WindowLocator resolves a window title to its top-left screen offset.
// Unknown titles resolve to (0, 0).
type WindowLocator interface {
	Offset(title string) (x, y int)
}

// PerceptionHasher computes 64-bit perception hashes (DCT-based).
type PerceptionHasher struct{}

// NewPerceptionHasher creates a PerceptionHasher.
func NewPerceptionHasher() *PerceptionHasher {
	return &PerceptionHasher{}
}

// Hash computes the perception hash of a frame.
func (h *PerceptionHasher) Hash(img image.Image) (Hash, error) {
	ph, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("perception hash: %w", err)
	}
	return perceptionHash{ph}, nil
}

type perceptionHash struct {
	inner *goimagehash.ImageHash
}

func (p perceptionHash) Distance(other Hash) (int, error) {
	o, ok := other.(perceptionHash)
	if !ok {
		return 0, fmt.Errorf("cannot compare %T with perception hash", other)
	}
	return p.inner.Distance(o.inner)
}

func (p perceptionHash) String() string {
	return p.inner.ToString()
}

// TransitionClass buckets a hash distance into a coarse screen-change level.
type TransitionClass string

const (
	TransitionNone    TransitionClass = "none"
	TransitionMinor   TransitionClass = "minor_change"
	TransitionPartial TransitionClass = "partial_change"
	TransitionFull    TransitionClass = "full_transition"

	// TransitionUnknown is the recorded expectation when no transition was
	// captured at recording time; it matches any observed class.
	TransitionUnknown TransitionClass = "unknown"
)

// Distance thresholds between transition classes.
const (
	minorThreshold   = 10
	partialThreshold = 30
)

// ClassifyTransition buckets a perceptual-hash distance.
func ClassifyTransition(distance int) TransitionClass {
	switch {
	case distance == 0:
		return TransitionNone
	case distance < minorThreshold:
		return TransitionMinor
	case distance < partialThreshold:
		return TransitionPartial
	default:
		return TransitionFull
	}
}

// Matches reports whether an observed class satisfies the expected one.
// An unknown (or empty) expectation matches everything.
func (c TransitionClass) Matches(observed TransitionClass) bool {
	if c == TransitionUnknown || c == "" {
		return true
	}
	return c == observed
}
