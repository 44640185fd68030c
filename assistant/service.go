package assistant

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FallbackMessage is shown whenever the provider cannot produce an answer.
const FallbackMessage = "Error connecting to the assistant. Please check your connection."

// Exchange is one question and its outcome, handed to a Recorder.
type Exchange struct {
	User      string
	ProfileID string
	Question  string
	Answer    string
	Provider  string
	Failed    bool
	Error     string
	Duration  time.Duration
}

// Recorder stores exchanges. Recording failures never reach the caller.
type Recorder interface {
	Record(ctx context.Context, ex Exchange) error
}

// Reply is what the user sees.
type Reply struct {
	Answer string `json:"answer"`
	Failed bool   `json:"failed"`
}

// Service turns provider failures into the fallback message.
type Service struct {
	assistant Assistant
	provider  string
	recorder  Recorder
	log       *zap.Logger
}

// NewService wraps a. A nil a means no provider is configured and every question
// gets the fallback reply. recorder may be nil.
func NewService(a Assistant, provider string, recorder Recorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{assistant: a, provider: provider, recorder: recorder, log: log}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s.assistant != nil
}

// Answer asks the provider about pc. The only error returned is ErrEmptyQuestion.
func (s *Service) Answer(ctx context.Context, pc PromptContext) (Reply, error) {
	question := strings.TrimSpace(pc.Question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}
	pc.Question = question

	start := time.Now()
	ex := Exchange{
		User:      pc.User,
		ProfileID: pc.Profile.ID,
		Question:  question,
		Provider:  s.provider,
	}

	var (
		answer string
		err    error
	)
	if s.assistant == nil {
		err = ErrNoAPIKey
	} else {
		answer, err = s.assistant.Ask(ctx, BuildPrompt(pc))
	}
	ex.Duration = time.Since(start)

	reply := Reply{Answer: answer}
	if err != nil {
		s.log.Warn("assistant request failed",
			zap.String("provider", s.provider),
			zap.Duration("took", ex.Duration),
			zap.Error(err),
		)
		reply = Reply{Answer: FallbackMessage, Failed: true}
		ex.Failed = true
		ex.Error = err.Error()
	} else {
		s.log.Debug("assistant answered",
			zap.String("provider", s.provider),
			zap.Duration("took", ex.Duration),
			zap.Int("chars", len(answer)),
		)
	}
	ex.Answer = reply.Answer

	if s.recorder != nil {
		if rerr := s.recorder.Record(ctx, ex); rerr != nil {
			s.log.Error("record assistant exchange", zap.Error(rerr))
		}
	}
	return reply, nil
}
