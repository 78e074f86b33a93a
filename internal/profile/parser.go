package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/talvox/talvox/internal/ai"
	"github.com/talvox/talvox/internal/utils"
)

//go:embed resume_prompt.md
var resumePromptTemplate string

//go:embed job_prompt.md
var jobPromptTemplate string

const (
	extractorSystem = "You are a precise information extractor. Respond with a single JSON object and nothing else."

	defaultMaxLogLength = 200
)

// Parser extracts structured resume and job profiles with the help of the
// text generation collaborator.
type Parser struct {
	generator ai.TextGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewParser(generator ai.TextGenerator, logger *zap.Logger, maxLogLength int) *Parser {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Parser{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// ParseResume asks the generator to structure raw resume text.
func (p *Parser) ParseResume(ctx context.Context, resumeText string) (*Resume, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, ErrResumeUnavailable
	}

	prompt := strings.ReplaceAll(resumePromptTemplate, "{{RESUME_TEXT}}", resumeText)

	p.logger.Debug("resume extraction request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, p.maxLogLen)),
	)

	raw, err := p.generator.GenerateContent(ctx, extractorSystem, prompt)
	if err != nil {
		return nil, fmt.Errorf("parse resume: %w", err)
	}

	var resume Resume
	if err := decodePayload(raw, &resume); err != nil {
		return nil, fmt.Errorf("parse resume: %w", err)
	}

	p.logger.Debug("resume extracted",
		zap.String("candidate", resume.Name),
		zap.Int("skills", len(resume.Skills)),
		zap.Int("projects", len(resume.Projects)),
	)

	return &resume, nil
}

// AnalyzeJob asks the generator to structure a raw job description.
func (p *Parser) AnalyzeJob(ctx context.Context, jobText string) (*Job, error) {
	jobText = strings.TrimSpace(jobText)
	if jobText == "" {
		return nil, fmt.Errorf("analyze job: %w", errEmptyInput)
	}

	prompt := strings.ReplaceAll(jobPromptTemplate, "{{JOB_TEXT}}", jobText)

	p.logger.Debug("job analysis request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, p.maxLogLen)),
	)

	raw, err := p.generator.GenerateContent(ctx, extractorSystem, prompt)
	if err != nil {
		return nil, fmt.Errorf("analyze job: %w", err)
	}

	var job Job
	if err := decodePayload(raw, &job); err != nil {
		return nil, fmt.Errorf("analyze job: %w", err)
	}

	return &job, nil
}

// decodePayload strips code fences from the generator output, parses the JSON
// object and decodes it into target with weak typing, so numeric years or
// stringified lists survive.
func decodePayload(raw string, target any) error {
	cleaned := ExtractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return fmt.Errorf("parse generator response: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("decode generator response: %w", err)
	}

	return nil
}

// ExtractJSON removes surrounding markdown code fences the generator tends to
// wrap its JSON payloads in.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
