package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/talvox/talvox/internal/ai"
	"github.com/talvox/talvox/internal/ai/gemini"
	"github.com/talvox/talvox/internal/ai/openai"
	"github.com/talvox/talvox/internal/interview"
	"github.com/talvox/talvox/internal/logger"
	"github.com/talvox/talvox/internal/profile"
	"github.com/talvox/talvox/internal/secrets"
)

const (
	app = "talvox"
)

type Config struct {
	Listen    string           `mapstructure:"listen"`
	LogFile   string           `mapstructure:"log-file"`
	AI        *AIConfig        `mapstructure:"ai"`
	Interview *InterviewConfig `mapstructure:"interview"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	OpenAI   *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	TTSModel     string `mapstructure:"tts-model"`
	STTModel     string `mapstructure:"stt-model"`
	Voice        string `mapstructure:"voice"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type OpenAIConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	TTSModel   string `mapstructure:"tts-model"`
	STTModel   string `mapstructure:"stt-model"`
	Voice      string `mapstructure:"voice"`
}

type InterviewConfig struct {
	MaxQuestions  int           `mapstructure:"max-questions"`
	Workers       int           `mapstructure:"workers"`
	Prefetch      int           `mapstructure:"prefetch"`
	QueueSize     int           `mapstructure:"queue-size"`
	CallTimeout   time.Duration `mapstructure:"call-timeout"`
	TranscriptDir string        `mapstructure:"transcript-dir"`
	IdleTimeout   time.Duration `mapstructure:"idle-timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talvox is a voice-driven interview service: it asks, listens and evaluates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.openai.api-key-file", "OPENAI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding OPENAI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talvox.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for serve and run. Version works without one.
	if serveCmd.CalledAs() == "" && runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func newLogger(config *Config) (*zap.Logger, error) {
	logFile := ""
	if config != nil {
		logFile = config.LogFile
	}

	if logFile != "" {
		return logger.NewWithFile(viper.GetBool("json"), viper.GetBool("debug"), logFile)
	}
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

// newSuite builds the provider-specific generation, synthesis and
// transcription collaborators from the configuration.
func newSuite(ctx context.Context, config *AIConfig, log *zap.Logger) (ai.Suite, error) {
	if config == nil {
		return ai.Suite{}, fmt.Errorf("ai configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	switch provider {
	case "", ai.ProviderGemini:
		return newGeminiSuite(ctx, config.Gemini, log)
	case ai.ProviderOpenAI:
		return newOpenAISuite(config.OpenAI, log)
	default:
		return ai.Suite{}, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
}

func newGeminiSuite(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (ai.Suite, error) {
	if cfg == nil {
		cfg = &GeminiConfig{}
	}

	apiKeyFile := cfg.APIKeyFile
	if apiKeyFile == "" {
		apiKeyFile = viper.GetString("ai.gemini.api-key-file")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: apiKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return ai.Suite{}, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return ai.Suite{}, err
	}

	providerLogger := log.With(
		zap.String(logger.FieldProvider, ai.ProviderGemini),
		zap.String(logger.FieldModel, cfg.Model),
	)

	return ai.Suite{
		Generator:   gemini.NewGenerator(client, cfg.Model, cfg.MaxRetries, providerLogger),
		Synthesizer: gemini.NewSynthesizer(client, cfg.TTSModel, cfg.Voice, providerLogger),
		Transcriber: gemini.NewTranscriber(client, cfg.STTModel, providerLogger),
	}, nil
}

func newOpenAISuite(cfg *OpenAIConfig, log *zap.Logger) (ai.Suite, error) {
	if cfg == nil {
		cfg = &OpenAIConfig{}
	}

	apiKeyFile := cfg.APIKeyFile
	if apiKeyFile == "" {
		apiKeyFile = viper.GetString("ai.openai.api-key-file")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "openai api key",
		File: apiKeyFile,
		Env:  "OPENAI_API_KEY",
	})
	if err != nil {
		return ai.Suite{}, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
	}

	providerLogger := log.With(
		zap.String(logger.FieldProvider, ai.ProviderOpenAI),
		zap.String(logger.FieldModel, cfg.Model),
	)

	provider, err := openai.NewProvider(apiKey, openai.Config{
		Model:    cfg.Model,
		TTSModel: cfg.TTSModel,
		STTModel: cfg.STTModel,
		Voice:    cfg.Voice,
	}, providerLogger)
	if err != nil {
		return ai.Suite{}, err
	}

	return ai.Suite{
		Generator:   provider,
		Synthesizer: provider,
		Transcriber: provider,
	}, nil
}

// newOrchestrator assembles the interview engine shared by serve and run.
func newOrchestrator(ctx context.Context, config *Config, log *zap.Logger) (*interview.Orchestrator, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	suite, err := newSuite(ctx, config.AI, log)
	if err != nil {
		return nil, err
	}

	maxLogLength := 0
	if config.AI != nil && config.AI.Gemini != nil {
		maxLogLength = config.AI.Gemini.MaxLogLength
	}

	interviewCfg := interview.Config{}
	if config.Interview != nil {
		interviewCfg = interview.Config{
			MaxQuestions:  config.Interview.MaxQuestions,
			Workers:       config.Interview.Workers,
			Prefetch:      config.Interview.Prefetch,
			QueueSize:     config.Interview.QueueSize,
			CallTimeout:   config.Interview.CallTimeout,
			TranscriptDir: config.Interview.TranscriptDir,
		}
	}

	return interview.NewOrchestrator(interviewCfg, interview.Deps{
		Suite:    suite,
		Profiles: profile.NewParser(suite.Generator, log, maxLogLength),
		Logger:   log,
	}), nil
}
