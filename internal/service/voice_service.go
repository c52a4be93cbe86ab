package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	apperrors "voiceclone/internal/errors"
	"voiceclone/internal/fishaudio"
)

// VoiceProvider is the upstream cloning and synthesis API.
type VoiceProvider interface {
	ListModels(ctx context.Context, tag string) ([]fishaudio.Model, error)
	CreateModel(ctx context.Context, in fishaudio.CreateModelRequest) (json.RawMessage, error)
	Synthesize(ctx context.Context, in fishaudio.SynthesisRequest) (*fishaudio.Speech, error)
}

// ModelCache stores per-user model listings.
type ModelCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// VoiceSample is an uploaded recording of the voice to clone.
type VoiceSample struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// ModelOptions are the user-chosen attributes of a new voice model.
type ModelOptions struct {
	Title               string
	Description         string
	EnhanceAudioQuality bool
}

// SpeechInput is a text-to-speech request.
type SpeechInput struct {
	Text        string
	ReferenceID string
	Variant     string
}

// VoiceService runs credit-gated calls against the voice provider.
type VoiceService interface {
	ListModels(ctx context.Context, username string) (map[string]string, error)
	CreateModel(ctx context.Context, username string, sample VoiceSample, opts ModelOptions) (json.RawMessage, error)
	TextToSpeech(ctx context.Context, username string, in SpeechInput) (*fishaudio.Speech, error)
}

type voiceService struct {
	provider VoiceProvider
	credits  CreditService
	cache    ModelCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewVoiceService creates a voice service. A nil cache or a zero cacheTTL
// disables model-list caching.
func NewVoiceService(provider VoiceProvider, credits CreditService, cache ModelCache, cacheTTL time.Duration, logger *zap.Logger) VoiceService {
	return &voiceService{
		provider: provider,
		credits:  credits,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (s *voiceService) cacheKey(username string) string {
	return fmt.Sprintf("models:%s", username)
}

func (s *voiceService) invalidateModels(ctx context.Context, username string) {
	if s.cache != nil {
		s.cache.Delete(ctx, s.cacheKey(username))
	}
}

func (s *voiceService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// ListModels maps model id to title for the user's own models.
func (s *voiceService) ListModels(ctx context.Context, username string) (map[string]string, error) {
	if s.cacheEnabled() {
		var cached map[string]string
		if s.cache.GetJSON(ctx, s.cacheKey(username), &cached) && cached != nil {
			return cached, nil
		}
	}

	items, err := s.provider.ListModels(ctx, username)
	if err != nil {
		return nil, err
	}

	models := make(map[string]string, len(items))
	for _, item := range items {
		models[item.ID] = item.Title
	}

	if s.cacheEnabled() {
		s.cache.SetJSON(ctx, s.cacheKey(username), models, s.cacheTTL)
	}
	return models, nil
}

// CreateModel clones a voice for one credit.
func (s *voiceService) CreateModel(ctx context.Context, username string, sample VoiceSample, opts ModelOptions) (json.RawMessage, error) {
	if sample.Content == nil {
		return nil, fmt.Errorf("voice sample has no content")
	}

	charge, err := s.reserve(ctx, username, "to create a model")
	if err != nil {
		return nil, err
	}

	payload, err := s.provider.CreateModel(ctx, fishaudio.CreateModelRequest{
		Tag:                 username,
		Title:               opts.Title,
		Description:         opts.Description,
		EnhanceAudioQuality: opts.EnhanceAudioQuality,
		Filename:            sample.Filename,
		ContentType:         sample.ContentType,
		Voice:               sample.Content,
	})
	if errors.Is(err, apperrors.ErrMalformedUpstreamReply) {
		// Upstream answered 2xx, so the model exists and the credit stays spent.
		s.invalidateModels(ctx, username)
		s.logger.Warn("voice model created but reply unreadable",
			zap.String("username", username), zap.Error(err))
		return nil, err
	}
	if err != nil {
		s.refund(ctx, charge, err)
		return nil, err
	}

	s.invalidateModels(ctx, username)
	s.logger.Info("voice model created", zap.String("username", username), zap.Bool("admin", charge.Exempt))
	return payload, nil
}

// TextToSpeech starts synthesis for one credit. The caller must close the
// returned body; a failure after this point is not refunded.
func (s *voiceService) TextToSpeech(ctx context.Context, username string, in SpeechInput) (*fishaudio.Speech, error) {
	variant, err := fishaudio.ParseModelVariant(in.Variant)
	if err != nil {
		return nil, err
	}

	charge, err := s.reserve(ctx, username, "to use TTS")
	if err != nil {
		return nil, err
	}

	speech, err := s.provider.Synthesize(ctx, fishaudio.SynthesisRequest{
		Text:        in.Text,
		ReferenceID: in.ReferenceID,
		Variant:     variant,
	})
	if err != nil {
		s.refund(ctx, charge, err)
		return nil, err
	}

	s.logger.Info("speech synthesis started",
		zap.String("username", username), zap.String("model", string(variant)), zap.Bool("admin", charge.Exempt))
	return speech, nil
}

func (s *voiceService) reserve(ctx context.Context, username, action string) (*Charge, error) {
	charge, err := s.credits.Reserve(ctx, username)
	if errors.Is(err, apperrors.ErrInsufficientCredits) {
		return nil, fmt.Errorf("%w %s", apperrors.ErrInsufficientCredits, action)
	}
	return charge, err
}

// refund survives client disconnects: the upstream failure may be the
// cancellation itself.
func (s *voiceService) refund(ctx context.Context, charge *Charge, cause error) {
	s.logger.Warn("billable action failed",
		zap.String("username", charge.Username), zap.Error(cause))
	if err := s.credits.Refund(context.WithoutCancel(ctx), charge); err != nil {
		s.logger.Error("refund lost", zap.String("username", charge.Username), zap.Error(err))
	}
}
