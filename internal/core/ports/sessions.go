package ports

import (
	"context"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

// SessionStore owns the lifetime of session frame buffers. Implementations
// must preserve per-session append order and should expire sessions after an
// idle window to bound growth.
//
// The store gives no cross-operation atomicity: concurrent fuse and delete
// on one session id is last-writer-wins, and callers that care must
// serialize per id. One active session per id is the expected usage.
type SessionStore interface {
	// Create registers a session with an empty frame buffer and
	// recording=true. Calling it for an existing id must not drop frames;
	// implementations log it as a logic warning instead.
	Create(ctx context.Context, id string) error

	// AppendFrame adds one expression vector to the session's buffer. A
	// missing session is auto-created in recording state rather than
	// rejected, so out-of-order client calls do not lose frames. Returns
	// the frame count after the append.
	AppendFrame(ctx context.Context, id string, frame domain.EmotionVector) (int, error)

	// Stop clears the recording flag. No-op if the session is absent.
	Stop(ctx context.Context, id string) error

	// Frames returns the full ordered buffer, empty (never nil) if the
	// session is absent.
	Frames(ctx context.Context, id string) ([]domain.EmotionVector, error)

	// Delete removes all state for the id. No-op if absent.
	Delete(ctx context.Context, id string) error

	// Info returns session metadata, or ok=false if the session is absent.
	Info(ctx context.Context, id string) (domain.SessionInfo, bool, error)
}
