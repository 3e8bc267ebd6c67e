package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/careerflow/careerflow-agent/internal/logger"
	"github.com/careerflow/careerflow-agent/internal/orchestrator"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const chatExitCommand = "exit"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session with the assistant",
	Run: func(cmd *cobra.Command, _ []string) {
		chat(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("resume-file", "", "file with resume text, stored once and reused for the whole session")
	chatCmd.Flags().String("role", "", "target role context")
	chatCmd.Flags().String("company", "", "target company context")
}

// chat runs the interactive loop. Each message goes through the same
// pipeline as the run command; the resume version is resolved once up front.
func chat(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	o, versions, cleanup := buildOrchestrator(ctx, config, logger)
	defer cleanup()

	versionID := ""
	if resumeFile := cmd.Flag("resume-file").Value.String(); resumeFile != "" {
		versionID = importResume(ctx, versions, resumeFile, logger)
	}

	fmt.Printf("%s interactive session. Type %q to quit.\n", app, chatExitCommand)

	prompt := promptui.Prompt{Label: "you"}
	for {
		message, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			logger.Fatal("reading input", zap.Error(err))
		}

		message = strings.TrimSpace(message)
		if message == "" {
			continue
		}
		if strings.EqualFold(message, chatExitCommand) {
			return
		}

		result, err := o.HandleMessage(ctx, orchestrator.Request{
			Message:         message,
			ResumeVersionID: versionID,
			Role:            cmd.Flag("role").Value.String(),
			Company:         cmd.Flag("company").Value.String(),
		})
		if err != nil {
			logger.Error("handling the message", zap.Error(err))
			continue
		}

		fmt.Printf("\nassistant: %s\n", result.Reply)
		if len(result.AgentsCalled) > 0 {
			fmt.Printf("(capabilities: %s)\n", strings.Join(result.AgentsCalled, ", "))
		}
		fmt.Println()
	}
}
