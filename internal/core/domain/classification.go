package domain

// Classification is one expression-engine reading for a single image: the
// predicted label, its confidence, and the full probability distribution
// over the canonical channel order.
type Classification struct {
	Label string
	Score float64
	Probs EmotionVector
}
