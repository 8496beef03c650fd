// In file: internal/service/sessions.go
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/apperrors"
	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
)

// SetLocation registers the device location of a session. City is required.
func (s *Service) SetLocation(sessionID string, loc dialogue.Location) (dialogue.Location, error) {
	loc.City = strings.TrimSpace(loc.City)
	loc.Province = strings.TrimSpace(loc.Province)
	if loc.City == "" {
		return dialogue.Location{}, apperrors.Validation("城市不能为空")
	}
	sessionID = normalizeSessionID(sessionID)

	unlock := s.sessions.LockSession(sessionID)
	defer unlock()
	s.sessions.SetLocation(sessionID, loc)
	s.logger.Info("device location updated",
		zap.String("session_id", sessionID),
		zap.String("city", loc.City))
	return loc, nil
}

// Location returns the device location of a session.
func (s *Service) Location(sessionID string) (dialogue.Location, error) {
	sessionID = normalizeSessionID(sessionID)
	loc, ok := s.sessions.Location(sessionID)
	if !ok {
		return dialogue.Location{}, apperrors.NotFound("未设置设备位置")
	}
	return loc, nil
}

// History returns the conversation memory of a session, oldest first.
func (s *Service) History(sessionID string) []dialogue.Message {
	return s.sessions.History(normalizeSessionID(sessionID))
}

// ClearSession empties a session's history but keeps the session alive.
func (s *Service) ClearSession(sessionID string) error {
	sessionID = normalizeSessionID(sessionID)
	unlock := s.sessions.LockSession(sessionID)
	defer unlock()
	if !s.sessions.Clear(sessionID) {
		return apperrors.NotFound("会话不存在")
	}
	return nil
}

// DeleteSession forgets a session entirely.
func (s *Service) DeleteSession(sessionID string) error {
	sessionID = normalizeSessionID(sessionID)
	unlock := s.sessions.LockSession(sessionID)
	defer unlock()
	if !s.sessions.Delete(sessionID) {
		return apperrors.NotFound("会话不存在")
	}
	return nil
}

// RecentIntents lists the most recently persisted intents, newest first.
func (s *Service) RecentIntents(ctx context.Context, limit int) ([]*intent.Intent, error) {
	if s.intents == nil {
		return []*intent.Intent{}, nil
	}
	out, err := s.intents.FindRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "查询意图记录失败")
	}
	return out, nil
}

// Stats reports the session store occupancy.
func (s *Service) Stats() dialogue.Stats {
	return s.sessions.Stats()
}
