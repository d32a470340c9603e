package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// QuestionCount is the number of Likert items in the questionnaire.
const QuestionCount = 8

// questionChannels assigns each question slot (index 0 = question1) to the
// channel its score accumulates into. Neutral is never assigned directly;
// it is derived from answer frequency in Vector.
var questionChannels = [QuestionCount]Channel{Sad, Happy, Anger, Surprise, Sad, Happy, Anger, Surprise}

// channelMaxima are the per-channel normalization ceilings. Each non-neutral
// channel is fed by exactly two slots capped at 5 (max 10); neutral's ceiling
// is the slot count, since every answer could be a 3.
var channelMaxima = [NumChannels]float64{10, 10, 8, 10, 10}

// Answers maps question slot numbers (1..8) to Likert responses (1..5).
// Missing slots do not contribute to the vector.
type Answers map[int]int

var errAnswerRange = errors.New("domain: answers must be integers between 1 and 5")

// Validate checks that every present slot is a known question with an
// in-range score, and that no slot is missing.
func (a Answers) Validate() error {
	for slot, score := range a {
		if slot < 1 || slot > QuestionCount {
			return fmt.Errorf("domain: unknown question slot %d", slot)
		}
		if score < 1 || score > 5 {
			return fmt.Errorf("%w: question%d is %d", errAnswerRange, slot, score)
		}
	}
	if len(a) != QuestionCount {
		return fmt.Errorf("domain: expected %d answers, got %d", QuestionCount, len(a))
	}
	return nil
}

// Vector converts the answers into a normalized emotion vector.
//
// Each present answer adds its score to its assigned channel. Neutral is the
// count of answers that are exactly 3, not a sum; this asymmetry is
// deliberate and must not be "fixed". Every channel is then divided by its
// fixed ceiling and rounded to 3 decimals, so each lands in [0,1]
// independently (the vector is not a probability distribution).
func (a Answers) Vector() EmotionVector {
	var raw EmotionVector
	neutralCount := 0.0
	for slot := 1; slot <= QuestionCount; slot++ {
		score, ok := a[slot]
		if !ok {
			continue
		}
		raw[questionChannels[slot-1]] += float64(score)
		if score == 3 {
			neutralCount++
		}
	}
	raw[Neutral] = neutralCount

	var out EmotionVector
	for i := range raw {
		out[i] = round3(raw[i] / channelMaxima[i])
	}
	return out
}

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Survey is a finalized questionnaire document, optionally annotated with
// the fusion outcome computed for the session it was submitted with.
type Survey struct {
	ID        string
	UserID    int
	Date      string // YYYY-MM-DD
	Name      string
	Age       int
	Answers   Answers
	IsViewed  bool
	Outcome   *FusionOutcome
	CreatedAt time.Time
}

// FusionOutcome is the persisted slice of a fusion result: the three
// dominant labels plus the aggregate score vector.
type FusionOutcome struct {
	SurveyDominant     Channel
	ExpressionDominant Channel
	TotalDominant      Channel
	TotalScores        EmotionVector
	FrameCount         int
}

// Validate enforces the document constraints before persistence.
func (s Survey) Validate() error {
	if s.UserID < 0 || s.UserID > 9999 {
		return fmt.Errorf("domain: userId must be between 0 and 9999, got %d", s.UserID)
	}
	if !dateFormat.MatchString(s.Date) {
		return fmt.Errorf("domain: date must be YYYY-MM-DD, got %q", s.Date)
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("domain: name is required")
	}
	if len(s.Name) > 100 {
		return errors.New("domain: name cannot exceed 100 characters")
	}
	if s.Age < 1 || s.Age > 100 {
		return fmt.Errorf("domain: age must be between 1 and 100, got %d", s.Age)
	}
	return s.Answers.Validate()
}
