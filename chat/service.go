package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/uniassist/api"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/rs/zerolog"
)

// API is the authenticated backend transport.
type API interface {
	DoJSON(ctx context.Context, method, path string, in, out any) error
}

type Service struct {
	api     API
	history *History
	now     func() time.Time
	log     zerolog.Logger
}

func NewService(api API, history *History, log zerolog.Logger) *Service {
	return &Service{api: api, history: history, now: time.Now, log: log.With().Str("component", "chat").Logger()}
}

// Ask sends message in mode and records the exchange. Failed calls leave the
// history untouched.
func (s *Service) Ask(ctx context.Context, mode Mode, message string) (*api.ChatReply, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", apperrors.ErrInvalidInput)
	}

	sentAt := s.now()
	var reply api.ChatReply
	if err := s.api.DoJSON(ctx, http.MethodPost, api.RouteChat, api.ChatRequest{Mode: string(mode), Message: message}, &reply); err != nil {
		return nil, apperrors.Wrapf(err, "chat")
	}

	err := s.history.Append(ctx, mode,
		Message{Role: RoleUser, Content: message, CreatedAt: sentAt},
		Message{Role: RoleAssistant, Content: reply.Answer, Sources: reply.Sources, CreatedAt: s.now()},
	)
	if err != nil {
		// The answer is still good; only the local record is missing.
		s.log.Warn().Err(err).Str("mode", string(mode)).Msg("Failed to save chat history")
	}
	return &reply, nil
}

func (s *Service) History() *History {
	return s.history
}
