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
	defaultSTTModel = "gemini-2.5-flash"

	transcribeInstruction = "Please transcribe the audio exactly as spoken. Only provide the transcription text, nothing else."

	defaultAudioMIME = "audio/wav"
)

// Transcriber converts recorded candidate audio into text by sending the
// audio inline to a Gemini model.
type Transcriber struct {
	models contentCaller
	model  string
	logger *zap.Logger
}

func NewTranscriber(client *genai.Client, model string, logger *zap.Logger) *Transcriber {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultSTTModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transcriber{
		models: client.Models,
		model:  model,
		logger: logger,
	}
}

func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("audio payload is empty")
	}

	if mimeType = strings.TrimSpace(mimeType); mimeType == "" {
		mimeType = defaultAudioMIME
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
			{Text: transcribeInstruction},
		},
	}}

	resp, err := t.models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	transcription := collectText(resp)
	if transcription == "" {
		return "", errors.New("gemini api returned empty transcription")
	}

	t.logger.Debug("audio transcribed",
		zap.Int("audio_bytes", len(audio)),
		zap.String("mime_type", mimeType),
	)

	return transcription, nil
}
