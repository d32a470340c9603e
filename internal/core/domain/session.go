package domain

import "time"

// Session is a bounded recording window during which expression frames
// accumulate before a single terminal fusion. The frame list is append-only;
// it is never truncated, only deleted wholesale with the session.
type Session struct {
	ID        string
	Recording bool
	CreatedAt time.Time
	Frames    []EmotionVector
}

// SessionInfo is the metadata view of a session returned by store lookups.
type SessionInfo struct {
	Recording  bool      `json:"isRecording"`
	CreatedAt  time.Time `json:"createdAt"`
	FrameCount int       `json:"frameCount"`
}
