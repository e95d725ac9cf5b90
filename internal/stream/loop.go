package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Garsondee/vr-targets/internal/game"
)

// FrameInterval is the session tick at 60 frames per second.
const FrameInterval = time.Second / 60

// Loop drives one session from hub commands and broadcasts each frame.
type Loop struct {
	Session *game.Session
	Hub     *Hub
	pose    game.HeadPose
}

// NewLoop binds a session to a hub.
func NewLoop(s *game.Session, h *Hub) *Loop {
	return &Loop{Session: s, Hub: h, pose: game.IdentityPose()}
}

// Step applies queued commands, advances one frame and broadcasts the scene.
func (l *Loop) Step() error {
drain:
	for {
		select {
		case cmd := <-l.Hub.Commands():
			l.apply(cmd)
		default:
			break drain
		}
	}
	l.Session.Frame(l.pose)
	msg, err := json.Marshal(l.Session.Scene())
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	l.Hub.Broadcast(msg)
	return nil
}

func (l *Loop) apply(cmd Command) {
	switch cmd.Type {
	case CommandTrigger:
		l.Session.Trigger()
	case CommandPose:
		l.pose = game.PoseFromYawPitch(cmd.Yaw, cmd.Pitch)
	}
}

// Run steps at FrameInterval until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := l.Step(); err != nil {
				return err
			}
		}
	}
}
