package ai

import "context"

// Provider identifiers accepted in configuration.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// TextGenerator produces free-form text for a system instruction and a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

// SpeechSynthesizer converts question text into spoken audio. A nil byte
// slice with a nil error means the provider produced no audio and the
// question is delivered as text only.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Transcriber converts recorded candidate audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Suite bundles the three collaborator services a single provider exposes.
type Suite struct {
	Generator   TextGenerator
	Synthesizer SpeechSynthesizer
	Transcriber Transcriber
}
