package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ask-web/internal/domain"
)

const (
	DefaultModel          = "gpt-3.5-turbo"
	DefaultMaxTokens      = 300
	DefaultSystemPrompt   = "You are a helpful assistant."
	DefaultMaxQuestionLen = 2000
)

type LLMClient interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
	Moderate(ctx context.Context, input string) (bool, error)
}

// ExchangeRecorder stores answered questions. It is optional.
type ExchangeRecorder interface {
	RecordExchange(ctx context.Context, ex domain.Exchange) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// Settings tunes an AskService. Zero values select the defaults above.
type Settings struct {
	Model          string
	MaxTokens      int
	SystemPrompt   string
	MaxQuestionLen int
	Moderation     bool
	Recorder       ExchangeRecorder
}

type AskService struct {
	llm      LLMClient
	settings Settings
}

type AskInput struct {
	Question string
}

type AskOutput struct {
	Answer string
	Model  string
}

func NewAskService(llm LLMClient, settings Settings) (*AskService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	settings.Model = strings.TrimSpace(settings.Model)
	if settings.Model == "" {
		settings.Model = DefaultModel
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = DefaultMaxTokens
	}
	if strings.TrimSpace(settings.SystemPrompt) == "" {
		settings.SystemPrompt = DefaultSystemPrompt
	}
	if settings.MaxQuestionLen <= 0 {
		settings.MaxQuestionLen = DefaultMaxQuestionLen
	}
	return &AskService{llm: llm, settings: settings}, nil
}

func (s *AskService) Ask(ctx context.Context, in AskInput) (AskOutput, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return AskOutput{}, newError(ErrorInvalidInput, ReasonEmptyQuestion, nil)
	}
	if utf8.RuneCountInString(question) > s.settings.MaxQuestionLen {
		return AskOutput{}, newError(ErrorInvalidInput, ReasonQuestionTooLong, nil)
	}

	if s.settings.Moderation {
		flagged, err := s.llm.Moderate(ctx, question)
		if err != nil {
			return AskOutput{}, upstreamError("moderation", err)
		}
		if flagged {
			return AskOutput{}, newError(ErrorInvalidQuestion, ReasonModerationFlagged, nil)
		}
	}

	raw, err := s.llm.Complete(ctx, domain.CompletionRequest{
		Model:     s.settings.Model,
		MaxTokens: s.settings.MaxTokens,
		Messages:  buildMessages(s.settings.SystemPrompt, question),
	})
	if err != nil {
		return AskOutput{}, upstreamError("completion", err)
	}

	answer := strings.TrimSpace(raw)
	if answer == "" {
		return AskOutput{}, newError(ErrorUpstream, ReasonEmptyCompletion, nil)
	}

	if s.settings.Recorder != nil {
		ex := domain.Exchange{
			ID:        newUUID(),
			Question:  question,
			Answer:    answer,
			Model:     s.settings.Model,
			CreatedAt: now().UTC(),
		}
		if err := s.settings.Recorder.RecordExchange(ctx, ex); err != nil {
			slog.WarnContext(ctx, "failed to record exchange", "exchange_id", ex.ID, "err", err)
		}
	}

	return AskOutput{Answer: answer, Model: s.settings.Model}, nil
}

// upstreamError classifies a failed call to the completion service. stage
// prefixes the reason, e.g. "completion_rate_limited".
func upstreamError(stage string, err error) *Error {
	if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
		return newError(ErrorRateLimited, stage+"_rate_limited", err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return newError(ErrorUpstream, stage+"_timeout", err)
	}
	return newError(ErrorUpstream, stage+"_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newUUID = func() string {
	return uuid.NewString()
}

var now = time.Now
