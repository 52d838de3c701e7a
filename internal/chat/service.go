// Package chat implements the context-grounded response path: grounding
// context assembly, generation with a guard timeout, deterministic
// keyword fallback, and conversation persistence.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/flowternity/facility-assistant/internal/model"
	"github.com/flowternity/facility-assistant/internal/reconcile"
	"github.com/flowternity/facility-assistant/internal/store"
)

// Reply is the outcome of one chat request.
type Reply struct {
	Text    string
	IsError bool
}

// Service handles chat requests against the canonical facility record.
type Service struct {
	store      store.Store
	reconciler *reconcile.Reconciler
	generator  Generator
	genTimeout time.Duration
}

// NewService creates a chat Service. genTimeout bounds each generative
// call so a hung upstream cannot block a chat request indefinitely.
func NewService(st store.Store, rec *reconcile.Reconciler, gen Generator, genTimeout time.Duration) *Service {
	if genTimeout <= 0 {
		genTimeout = 15 * time.Second
	}
	return &Service{
		store:      st,
		reconciler: rec,
		generator:  gen,
		genTimeout: genTimeout,
	}
}

// Send answers one user message. The generative call is grounded on the
// reconciled record; if it fails for any reason the deterministic
// fallback engine produces the answer instead, so the user always
// receives a substantive reply. Exactly one conversation turn is
// persisted per call; a persistence failure is logged but never hides
// the reply from the user.
func (s *Service) Send(ctx context.Context, sessionID, message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, eris.New("chat: empty message")
	}
	if strings.TrimSpace(sessionID) == "" {
		return Reply{}, eris.New("chat: empty session id")
	}

	record, err := s.reconciler.Reconcile(ctx)
	if err != nil {
		return Reply{}, eris.Wrap(err, "chat: reconcile record")
	}

	reply := s.respond(ctx, message, record)

	turn := model.ConversationTurn{
		SessionID:    sessionID,
		UserText:     message,
		ResponseText: reply.Text,
		IsError:      reply.IsError,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.store.AppendTurn(ctx, turn); err != nil {
		// Chat value over log durability: the reply still goes out.
		zap.L().Error("persist conversation turn failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	return reply, nil
}

// respond runs the generative call under the guard timeout and falls
// back to the keyword engine on any failure. Fallback replies are
// substantive answers, not errors, so IsError stays false.
func (s *Service) respond(ctx context.Context, message string, record *model.FacilityRecord) Reply {
	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	text, err := s.generator.Generate(genCtx, BuildGroundingContext(record), buildPrompt(message))
	if err != nil {
		zap.L().Warn("generation failed, using fallback answer", zap.Error(err))
		return Reply{Text: FallbackAnswer(message, record)}
	}
	return Reply{Text: text}
}

// History returns a session's turns ascending by time.
func (s *Service) History(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	turns, err := s.store.ListTurnsBySession(ctx, sessionID)
	if err != nil {
		return nil, eris.Wrap(err, "chat: list history")
	}
	return turns, nil
}

// Summary generates a short facility summary from the canonical record,
// with a deterministic sentence on generation failure.
func (s *Service) Summary(ctx context.Context) (string, error) {
	record, err := s.reconciler.Reconcile(ctx)
	if err != nil {
		return "", eris.Wrap(err, "chat: reconcile record")
	}

	prompt := fmt.Sprintf(
		"Based on the following information about %s, create a concise and engaging summary:\n\nFacility: %s\nLocation: %s\nSports: %s\nRating: %.1f/5\nHours: %s\n\nCreate a 2-3 sentence summary that highlights the key features and appeal of this sports facility.",
		record.BasicInfo.Name,
		record.BasicInfo.Name,
		record.BasicInfo.Locality,
		strings.Join(record.Sports, ", "),
		record.BasicInfo.Rating,
		record.BasicInfo.Hours,
	)

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	text, err := s.generator.Generate(genCtx, "", prompt)
	if err != nil {
		zap.L().Warn("summary generation failed, using fallback", zap.Error(err))
		return fmt.Sprintf(
			"%s is a premier multi-sport facility in %s, offering %s with professional coaching and modern amenities.",
			record.BasicInfo.Name, record.BasicInfo.Locality, strings.Join(record.Sports, ", "),
		), nil
	}
	return text, nil
}
