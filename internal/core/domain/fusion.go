package domain

// Fixed fusion weights. Expression data is trusted over self-report.
const (
	SurveyWeight     = 0.3
	ExpressionWeight = 0.7
)

// Fused is one fused emotion reading: a score vector and its dominant
// channel. It is produced per frame and again for the session aggregate.
type Fused struct {
	Dominant Channel
	Scores   EmotionVector
}

// FusionSummary is the full result of fusing one session: the three labeled
// modality readings plus the per-frame fusions for auditability. Computed
// values only; persistence of any part of it is the boundary's decision.
type FusionSummary struct {
	FrameCount int
	Survey     Fused
	Expression Fused
	Total      Fused
	Frames     []Fused
}

// Outcome projects the summary onto the slice of it that survey documents
// persist.
func (s FusionSummary) Outcome() *FusionOutcome {
	return &FusionOutcome{
		SurveyDominant:     s.Survey.Dominant,
		ExpressionDominant: s.Expression.Dominant,
		TotalDominant:      s.Total.Dominant,
		TotalScores:        s.Total.Scores,
		FrameCount:         s.FrameCount,
	}
}

// FuseFrame combines the constant survey vector with a single expression
// frame as a per-channel weighted sum, rounded to 3 decimals.
func FuseFrame(survey, frame EmotionVector) Fused {
	var scores EmotionVector
	for i := range scores {
		scores[i] = round3(SurveyWeight*survey[i] + ExpressionWeight*frame[i])
	}
	return Fused{Dominant: scores.Dominant(), Scores: scores}
}

// AggregateFrames reduces the per-frame fused results of one session to a
// single reading by element-wise arithmetic mean.
//
// A zero-frame input returns full neutral confidence instead of dividing by
// zero. Callers are expected to refuse empty sessions before getting here;
// the fallback is a defensive guard, not a substitute for that check.
func AggregateFrames(frames []Fused) Fused {
	if len(frames) == 0 {
		return Fused{Dominant: Neutral, Scores: EmotionVector{0, 0, 1, 0, 0}}
	}
	var sum EmotionVector
	for _, f := range frames {
		for i, s := range f.Scores {
			sum[i] += s
		}
	}
	var mean EmotionVector
	for i := range sum {
		mean[i] = round3(sum[i] / float64(len(frames)))
	}
	return Fused{Dominant: mean.Dominant(), Scores: mean}
}

// MeanVector is the unweighted element-wise mean of raw expression frames,
// rounded to 3 decimals. It summarizes the webcam signal alone, with no
// survey contribution, and returns the zero vector for an empty input.
func MeanVector(frames []EmotionVector) EmotionVector {
	var mean EmotionVector
	if len(frames) == 0 {
		return mean
	}
	for _, f := range frames {
		for i, s := range f {
			mean[i] += s
		}
	}
	for i := range mean {
		mean[i] = round3(mean[i] / float64(len(frames)))
	}
	return mean
}
