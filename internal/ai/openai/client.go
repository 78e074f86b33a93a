package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const (
	defaultModel    = "gpt-4o"
	defaultTTSModel = "tts-1"
	defaultSTTModel = "whisper-1"
	defaultVoice    = "alloy"
)

// Config carries the model selection for the OpenAI provider.
type Config struct {
	Model    string
	TTSModel string
	STTModel string
	Voice    string
}

// Provider implements text generation, speech synthesis and transcription on
// top of the OpenAI API.
type Provider struct {
	client   openaisdk.Client
	model    string
	ttsModel string
	sttModel string
	voice    string
	logger   *zap.Logger
}

func NewProvider(apiKey string, cfg Config, logger *zap.Logger) (*Provider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Provider{
		client:   openaisdk.NewClient(option.WithAPIKey(apiKey)),
		model:    strings.TrimSpace(cfg.Model),
		ttsModel: strings.TrimSpace(cfg.TTSModel),
		sttModel: strings.TrimSpace(cfg.STTModel),
		voice:    strings.TrimSpace(cfg.Voice),
		logger:   logger,
	}

	if p.model == "" {
		p.model = defaultModel
	}
	if p.ttsModel == "" {
		p.ttsModel = defaultTTSModel
	}
	if p.sttModel == "" {
		p.sttModel = defaultSTTModel
	}
	if p.voice == "" {
		p.voice = defaultVoice
	}

	return p, nil
}

func (p *Provider) GenerateContent(ctx context.Context, system, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, 2)
	if system = strings.TrimSpace(system); system != "" {
		messages = append(messages, openaisdk.SystemMessage(system))
	}
	messages = append(messages, openaisdk.UserMessage(prompt))

	resp, err := p.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(p.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	return output, nil
}

func (p *Provider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	resp, err := p.client.Audio.Speech.New(ctx, openaisdk.AudioSpeechNewParams{
		Model:          openaisdk.SpeechModel(p.ttsModel),
		Voice:          openaisdk.AudioSpeechNewParamsVoice(p.voice),
		Input:          text,
		ResponseFormat: openaisdk.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}

	if len(audio) == 0 {
		return nil, nil
	}

	return audio, nil
}

func (p *Provider) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("audio payload is empty")
	}

	if mimeType = strings.TrimSpace(mimeType); mimeType == "" {
		mimeType = "audio/wav"
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, openaisdk.AudioTranscriptionNewParams{
		Model: openaisdk.AudioModel(p.sttModel),
		File:  openaisdk.File(bytes.NewReader(audio), "answer.wav", mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	transcription := strings.TrimSpace(resp.Text)
	if transcription == "" {
		return "", errors.New("openai api returned empty transcription")
	}

	p.logger.Debug("audio transcribed",
		zap.Int("audio_bytes", len(audio)),
		zap.String("mime_type", mimeType),
	)

	return transcription, nil
}
