// Package redisstore provides a Redis-backed implementation of the session
// store port for deployments where frame pushes and fusion may land on
// different processes.
//
// Layout per session: a hash `session:{id}` holding the recording flag,
// creation time, and frame count, and a list `frames:{id}` holding the
// JSON-encoded vectors in append order (RPUSH preserves it). Both keys carry
// the idle TTL so abandoned sessions expire server-side.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

// Store implements the session store port on Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection. A non-positive ttl
// defaults to one hour.
func New(ctx context.Context, addr, password string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redisstore: ping failed: %w", err)
	}
	return &Store{client: client, ttl: ttl}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func sessionKey(id string) string { return "session:" + id }
func framesKey(id string) string  { return "frames:" + id }

// Create registers a new recording session. If the session already exists
// its frames are kept and only the recording flag is refreshed.
func (s *Store) Create(ctx context.Context, id string) error {
	exists, err := s.client.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redisstore: exists check: %w", err)
	}
	if exists > 0 {
		log.Printf("WARN redisstore: create for existing session %s (frames kept)", id)
		if err := s.client.HSet(ctx, sessionKey(id), "isRecording", "true").Err(); err != nil {
			return fmt.Errorf("redisstore: refresh session: %w", err)
		}
		return s.touch(ctx, id)
	}

	err = s.client.HSet(ctx, sessionKey(id), map[string]interface{}{
		"isRecording": "true",
		"createdAt":   time.Now().UnixMilli(),
		"frameCount":  0,
	}).Err()
	if err != nil {
		return fmt.Errorf("redisstore: create session: %w", err)
	}
	return s.touch(ctx, id)
}

// AppendFrame RPUSHes the vector onto the session list, auto-creating the
// session hash if the push arrived before the create.
func (s *Store) AppendFrame(ctx context.Context, id string, frame domain.EmotionVector) (int, error) {
	exists, err := s.client.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("redisstore: exists check: %w", err)
	}
	if exists == 0 {
		log.Printf("WARN redisstore: auto-creating missing session %s on frame push", id)
		if err := s.Create(ctx, id); err != nil {
			return 0, err
		}
	}

	payload, err := json.Marshal(frame.Slice())
	if err != nil {
		return 0, fmt.Errorf("redisstore: encode frame: %w", err)
	}
	if err := s.client.RPush(ctx, framesKey(id), payload).Err(); err != nil {
		return 0, fmt.Errorf("redisstore: append frame: %w", err)
	}
	count, err := s.client.HIncrBy(ctx, sessionKey(id), "frameCount", 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redisstore: bump frame count: %w", err)
	}
	if err := s.touch(ctx, id); err != nil {
		return 0, err
	}
	return int(count), nil
}

// Stop clears the recording flag; a missing session is a no-op.
func (s *Store) Stop(ctx context.Context, id string) error {
	exists, err := s.client.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redisstore: exists check: %w", err)
	}
	if exists == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, sessionKey(id), "isRecording", "false").Err(); err != nil {
		return fmt.Errorf("redisstore: stop session: %w", err)
	}
	return nil
}

// Frames returns the full ordered buffer; empty (never nil) when absent.
func (s *Store) Frames(ctx context.Context, id string) ([]domain.EmotionVector, error) {
	raw, err := s.client.LRange(ctx, framesKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: read frames: %w", err)
	}
	frames := make([]domain.EmotionVector, 0, len(raw))
	for i, item := range raw {
		var values []float64
		if err := json.Unmarshal([]byte(item), &values); err != nil {
			return nil, fmt.Errorf("redisstore: decode frame %d of session %s: %w", i, id, err)
		}
		frame, err := domain.NewEmotionVector(values)
		if err != nil {
			return nil, fmt.Errorf("redisstore: frame %d of session %s: %w", i, id, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// Delete removes both session keys; a missing session is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id), framesKey(id)).Err(); err != nil {
		return fmt.Errorf("redisstore: delete session: %w", err)
	}
	return nil
}

// Info returns session metadata, or ok=false for an absent session.
func (s *Store) Info(ctx context.Context, id string) (domain.SessionInfo, bool, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return domain.SessionInfo{}, false, fmt.Errorf("redisstore: read session: %w", err)
	}
	if len(fields) == 0 {
		return domain.SessionInfo{}, false, nil
	}

	createdMillis, _ := strconv.ParseInt(fields["createdAt"], 10, 64)
	frameCount, _ := strconv.Atoi(fields["frameCount"])
	return domain.SessionInfo{
		Recording:  fields["isRecording"] == "true",
		CreatedAt:  time.UnixMilli(createdMillis),
		FrameCount: frameCount,
	}, true, nil
}

func (s *Store) touch(ctx context.Context, id string) error {
	if err := s.client.Expire(ctx, sessionKey(id), s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: refresh ttl: %w", err)
	}
	// The frames list may not exist yet; EXPIRE on a missing key is harmless.
	if err := s.client.Expire(ctx, framesKey(id), s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: refresh ttl: %w", err)
	}
	return nil
}
