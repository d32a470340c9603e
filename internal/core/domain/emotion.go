package domain

import (
	"errors"
	"fmt"
	"math"
)

// Channel is one of the five fixed emotion categories. The numeric order is
// the canonical vector order and must never change: every vector comparison
// and fusion step indexes by it.
type Channel int

const (
	Anger Channel = iota
	Sad
	Neutral
	Happy
	Surprise
)

// NumChannels is the fixed width of every emotion vector.
const NumChannels = 5

var channelNames = [NumChannels]string{"anger", "sad", "neutral", "happy", "surprise"}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel resolves a canonical channel name back to its index.
func ParseChannel(name string) (Channel, bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// ErrInvalidVectorShape indicates a vector that does not have exactly five
// numeric elements.
var ErrInvalidVectorShape = errors.New("domain: vector must have exactly 5 elements")

// EmotionVector is an ordered 5-tuple over the canonical channel order
// [anger, sad, neutral, happy, surprise].
type EmotionVector [NumChannels]float64

// NewEmotionVector validates the shape of a raw slice (as received off the
// wire or from a store) and copies it into a fixed-size vector.
func NewEmotionVector(values []float64) (EmotionVector, error) {
	if len(values) != NumChannels {
		return EmotionVector{}, fmt.Errorf("%w: got %d", ErrInvalidVectorShape, len(values))
	}
	var v EmotionVector
	copy(v[:], values)
	return v, nil
}

// Dominant returns the channel with the maximum value. Ties resolve to the
// lowest canonical index; the strict comparison in the scan guarantees it.
func (v EmotionVector) Dominant() Channel {
	best := Channel(0)
	for i := 1; i < NumChannels; i++ {
		if v[i] > v[best] {
			best = Channel(i)
		}
	}
	return best
}

// Rounded returns the vector with every channel rounded to 3 decimals.
func (v EmotionVector) Rounded() EmotionVector {
	var out EmotionVector
	for i, val := range v {
		out[i] = round3(val)
	}
	return out
}

// Slice returns the vector as a plain slice for serialization.
func (v EmotionVector) Slice() []float64 {
	out := make([]float64, NumChannels)
	copy(out, v[:])
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
