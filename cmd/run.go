package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talvox/talvox/internal/interview"
	"github.com/talvox/talvox/internal/profile"
)

const (
	PromptContinue = "Next question"
	PromptStatus   = "Show progress"
	PromptFinish   = "Finish and get the report"
)

var errFinish = errors.New("finish requested")

var continuePrompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptContinue, PromptStatus, PromptFinish},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "path to the candidate resume (pdf or plain text)")
	runCmd.Flags().StringP("job", "J", "", "path to the job description text file")
}

// run drives a whole interview on the terminal with typed answers.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	logger, err := newLogger(config)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting the talvox interview", zap.String("version", resolveVersion()))

	resumePath := cmd.Flag("resume").Value.String()
	jobPath := cmd.Flag("job").Value.String()
	if resumePath == "" || jobPath == "" {
		logger.Fatal("both --resume and --job are required")
	}

	resumeText, err := profile.LoadResumeText(resumePath)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err), zap.String("path", resumePath))
	}

	jobBytes, err := os.ReadFile(jobPath)
	if err != nil {
		logger.Fatal("loading job description", zap.Error(err), zap.String("path", jobPath))
	}

	orchestrator, err := newOrchestrator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the interview orchestrator", zap.Error(err))
	}
	defer orchestrator.Close()

	info, err := orchestrator.CreateSession(ctx, string(jobBytes), resumeText)
	if err != nil {
		logger.Fatal("creating the interview session", zap.Error(err))
	}
	defer orchestrator.Cleanup(info.SessionID)

	fmt.Printf("\nInterviewing %s for %s (%d questions)\n\n",
		info.CandidateName, info.JobTitle, info.TotalQuestions)

	for {
		if err := askOne(ctx, orchestrator, info.SessionID); err != nil {
			if errors.Is(err, interview.ErrInterviewCompleted) || errors.Is(err, errFinish) {
				break
			}
			logger.Fatal("interview failed", zap.Error(err))
		}

		done, err := afterAnswer(orchestrator, info.SessionID)
		if err != nil {
			if errors.Is(err, errFinish) {
				break
			}
			logger.Fatal("interview failed", zap.Error(err))
		}
		if done {
			break
		}
	}

	report, err := orchestrator.FinalReport(ctx, info.SessionID)
	if err != nil {
		logger.Fatal("producing the final report", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(report, "", "  ")
	fmt.Printf("\nFINAL REPORT\n%s\n", pretty)
}

func askOne(ctx context.Context, orchestrator *interview.Orchestrator, sessionID string) error {
	question, err := orchestrator.NextQuestion(ctx, sessionID)
	if err != nil {
		return err
	}

	fmt.Printf("Question %d [%s]: %s\n", question.Number, question.Category, question.Text)

	answerPrompt := promptui.Prompt{
		Label: "Your answer",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("answer can not be empty")
			}
			return nil
		},
	}

	answer, err := answerPrompt.Run()
	if err != nil {
		return err
	}

	_, err = orchestrator.SubmitAnswerText(ctx, sessionID, answer)
	return err
}

func afterAnswer(orchestrator *interview.Orchestrator, sessionID string) (bool, error) {
	status, err := orchestrator.Status(sessionID)
	if err != nil {
		return false, err
	}
	if status.IsComplete {
		return true, nil
	}

	for {
		_, action, err := continuePrompt.Run()
		if err != nil {
			return false, err
		}

		switch action {
		case PromptContinue:
			return false, nil
		case PromptStatus:
			pretty, _ := json.MarshalIndent(status, "", "  ")
			fmt.Printf("%s\n", pretty)
		case PromptFinish:
			return false, errFinish
		}
	}
}
