package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultTTSModel = "gemini-2.5-flash-preview-tts"
	defaultVoice    = "Aoede"

	speechPrefix = "Please read this interview question in a professional, clear interviewer voice: "
)

// Synthesizer turns question text into spoken audio using the Gemini TTS models.
type Synthesizer struct {
	models contentCaller
	model  string
	voice  string
	logger *zap.Logger
}

func NewSynthesizer(client *genai.Client, model, voice string, logger *zap.Logger) *Synthesizer {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultTTSModel
	}
	if voice = strings.TrimSpace(voice); voice == "" {
		voice = defaultVoice
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Synthesizer{
		models: client.Models,
		model:  model,
		voice:  voice,
		logger: logger,
	}
}

// Synthesize returns the raw audio bytes for the provided text, or nil when
// the model responded without an audio part.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: s.voice,
				},
			},
		},
	}

	resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(speechPrefix+text), config)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil {
				continue
			}
			if len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	s.logger.Debug("tts response contained no audio part", zap.String("model", s.model))

	return nil, nil
}
