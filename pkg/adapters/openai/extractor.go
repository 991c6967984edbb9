package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/maitre/internal/logging"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/aretw0/maitre/pkg/ports"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
	DefaultTimeout     = 30 * time.Second
)

// ErrEmptyResponse is returned when the model produces no choices or no content.
var ErrEmptyResponse = errors.New("model returned an empty response")

// ChatCompletionService is the part of the OpenAI client the extractor uses.
// *oai.ChatCompletionService satisfies it.
type ChatCompletionService interface {
	New(ctx context.Context, body oai.ChatCompletionNewParams, opts ...option.RequestOption) (*oai.ChatCompletion, error)
}

// Config holds connection and sampling settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Extractor implements ports.Extractor with OpenAI structured outputs.
type Extractor struct {
	chat        ChatCompletionService
	model       string
	temperature float64
	timeout     time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

var _ ports.Extractor = (*Extractor)(nil)

// Option configures the Extractor.
type Option func(*Extractor)

// WithClock overrides the clock used for "today" in prompts and date checks.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an extractor backed by the OpenAI API.
func New(cfg Config, opts ...Option) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// The conversation engine owns retry policy.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	client := oai.NewClient(clientOpts...)
	return NewWithService(&client.Chat.Completions, cfg, opts...), nil
}

// NewWithService creates an extractor around an existing chat completion service.
func NewWithService(chat ChatCompletionService, cfg Config, opts ...Option) *Extractor {
	e := &Extractor{
		chat:        chat,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		now:         time.Now,
		logger:      logging.NewNop(),
	}
	if e.model == "" {
		e.model = DefaultModel
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFields asks the model for the fields mentioned in the conversation so far.
func (e *Extractor) ExtractFields(ctx context.Context, history []domain.Message, current domain.BookingDetails) (domain.Extraction, error) {
	now := e.now()
	var info bookingInfo
	err := e.complete(ctx, collectionPrompt(now, current), history, "booking_info", bookingInfoSchema, &info)
	if err != nil {
		return domain.Extraction{}, err
	}

	fields, rejected := info.toDetails(now)
	if len(rejected) > 0 {
		e.logger.DebugContext(ctx, "dropped invalid extracted values", "fields", strings.Join(rejected, ","))
	}

	text := strings.TrimSpace(info.ResponseMessage)
	if text == "" {
		return domain.Extraction{}, fmt.Errorf("extraction: %w", ErrEmptyResponse)
	}
	return domain.Extraction{Fields: fields, AssistantText: text}, nil
}

// ClassifyConfirmation asks the model whether the user accepted the summary.
func (e *Extractor) ClassifyConfirmation(ctx context.Context, history []domain.Message) (domain.Decision, error) {
	var resp confirmationResponse
	err := e.complete(ctx, confirmationPrompt, history, "confirmation_response", confirmationSchema, &resp)
	if err != nil {
		return domain.Decision{}, err
	}

	d := domain.Decision{Proceed: resp.UserWantsToProceed}
	if !d.Proceed && resp.RequestedChanges != nil {
		d.ChangeRequest = strings.TrimSpace(*resp.RequestedChanges)
	}
	return d, nil
}

// complete runs one structured chat completion and decodes its reply into out.
func (e *Extractor) complete(ctx context.Context, system string, history []domain.Message, name string, schema any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	params := oai.ChatCompletionNewParams{
		Model:       oai.ChatModel(e.model),
		Messages:    toMessages(system, history),
		Temperature: oai.Float(e.temperature),
		ResponseFormat: oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &oai.ResponseFormatJSONSchemaParam{
				JSONSchema: oai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: schema,
					Strict: oai.Bool(false),
				},
			},
		},
	}

	start := time.Now()
	resp, err := e.chat.New(ctx, params)
	if err != nil {
		return fmt.Errorf("openai %s: %w", name, err)
	}
	e.logger.DebugContext(ctx, "chat completion", "schema", name, "model", e.model, "took", time.Since(start))

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return fmt.Errorf("openai %s: %w", name, ErrEmptyResponse)
	}
	if err := decodeStructured(resp.Choices[0].Message.Content, out); err != nil {
		return fmt.Errorf("openai %s: %w", name, err)
	}
	return nil
}

func toMessages(system string, history []domain.Message) []oai.ChatCompletionMessageParamUnion {
	msgs := make([]oai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	msgs = append(msgs, oai.SystemMessage(system))
	for _, m := range history {
		switch m.Role {
		case domain.RoleUser:
			msgs = append(msgs, oai.UserMessage(m.Content))
		case domain.RoleAssistant:
			msgs = append(msgs, oai.AssistantMessage(m.Content))
		case domain.RoleSystem:
			msgs = append(msgs, oai.SystemMessage(m.Content))
		}
	}
	return msgs
}
