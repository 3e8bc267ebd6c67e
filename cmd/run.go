package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/careerflow/careerflow-agent/internal/agents"
	"github.com/careerflow/careerflow-agent/internal/llm"
	"github.com/careerflow/careerflow-agent/internal/logger"
	"github.com/careerflow/careerflow-agent/internal/orchestrator"
	"github.com/careerflow/careerflow-agent/internal/routing"
	"github.com/careerflow/careerflow-agent/internal/secrets"
	"github.com/careerflow/careerflow-agent/internal/store"
	"github.com/careerflow/careerflow-agent/internal/telemetry"
	"github.com/careerflow/careerflow-agent/internal/websearch"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Handle a single message and print the orchestrated result as JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("message", "m", "", "the user message to handle")
	runCmd.Flags().String("resume-version", "", "resume version id to load resume text from")
	runCmd.Flags().String("resume-file", "", "file with resume text, stored as a fresh version before handling")
	runCmd.Flags().String("role", "", "target role context")
	runCmd.Flags().String("company", "", "target company context")
	runCmd.Flags().String("job-description", "", "job description text")
}

// run handles a single message end to end.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the careerflow-agent", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	message := cmd.Flag("message").Value.String()
	if strings.TrimSpace(message) == "" {
		logger.Fatal("a message is required", zap.String("hint", "pass it with --message"))
	}

	o, versions, cleanup := buildOrchestrator(ctx, config, logger)
	defer cleanup()

	versionID := cmd.Flag("resume-version").Value.String()
	if resumeFile := cmd.Flag("resume-file").Value.String(); resumeFile != "" {
		versionID = importResume(ctx, versions, resumeFile, logger)
	}

	result, err := o.HandleMessage(ctx, orchestrator.Request{
		Message:         message,
		ResumeVersionID: versionID,
		Role:            cmd.Flag("role").Value.String(),
		Company:         cmd.Flag("company").Value.String(),
		JobDescription:  cmd.Flag("job-description").Value.String(),
	})
	if err != nil {
		logger.Fatal("handling the message", zap.Error(err))
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("encoding the result", zap.Error(err))
	}
	fmt.Println(string(out))
}

// buildOrchestrator wires the full pipeline from the config. The returned
// cleanup flushes telemetry and closes the store.
func buildOrchestrator(ctx context.Context, config *Config, logger *zap.Logger) (*orchestrator.Orchestrator, store.VersionStore, func()) {
	resolveKey(config.LLM, config.Search, logger)

	client, err := llm.New(ctx, config.LLM, logger)
	if err != nil {
		logger.Fatal("creating the llm client", zap.Error(err))
	}
	logger.Info("llm client ready", zap.String("model", client.Model()))

	var searcher websearch.Searcher = websearch.Nop{}
	if config.Search.APIKey != "" {
		searcher = websearch.NewTavily(config.Search, logger)
	}

	versions, closeStore := buildStore(ctx, config, logger)

	recorder, closeTelemetry := buildTelemetry(config, logger)

	router := routing.NewChain([]routing.Rule{
		routing.NewManualTranslate(),
		routing.NewClassifier(client, logger),
	}, logger)

	o := orchestrator.New(
		router,
		client,
		agents.NewCompanyResearch(client, searcher, logger),
		agents.NewJobMatch(client, logger),
		agents.NewSectionEnhance(client, logger),
		orchestrator.Options{Versions: versions, Telemetry: recorder},
		logger,
	)

	cleanup := func() {
		closeTelemetry()
		closeStore()
	}
	return o, versions, cleanup
}

func buildStore(ctx context.Context, config *Config, logger *zap.Logger) (store.VersionStore, func()) {
	databaseURL := strings.TrimSpace(config.DatabaseURL)
	if databaseURL == "" {
		databaseURL = strings.TrimSpace(viper.GetString("database-url"))
	}
	if databaseURL == "" {
		logger.Debug("no database configured, using the in-memory store")
		return store.NewMemory(), func() {}
	}

	pg, err := store.ConnectPostgres(ctx, databaseURL)
	if err != nil {
		logger.Fatal("connecting to the database", zap.Error(err))
	}
	return pg, pg.Close
}

func buildTelemetry(config *Config, logger *zap.Logger) (telemetry.Recorder, func()) {
	if config.Telemetry == nil || !config.Telemetry.Enabled {
		return telemetry.Nop{}, func() {}
	}

	dispatcher := telemetry.NewDispatcher(
		telemetry.NewZapSink(logger),
		config.Telemetry.Buffer,
		logger,
	)
	return dispatcher, dispatcher.Close
}

// resolveKey loads provider credentials from their configured key files.
// Absent credentials are not an error here; the llm gateway falls back to
// offline mode and the searcher is disabled.
func resolveKey(llmConfig *llm.Config, searchConfig *websearch.Config, logger *zap.Logger) {
	if llmConfig.Groq == nil {
		llmConfig.Groq = &llm.GroqConfig{}
	}
	if llmConfig.Gemini == nil {
		llmConfig.Gemini = &llm.GeminiConfig{}
	}

	var err error
	llmConfig.Groq.APIKey, err = secrets.LoadOptional(secrets.Source{
		Name: "groq api key",
		File: llmConfig.Groq.APIKeyFile,
		Env:  "GROQ_API_KEY",
	})
	if err != nil {
		logger.Fatal("loading the groq api key", zap.Error(err))
	}

	llmConfig.Gemini.APIKey, err = secrets.LoadOptional(secrets.Source{
		Name: "gemini api key",
		File: llmConfig.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		logger.Fatal("loading the gemini api key", zap.Error(err))
	}

	searchConfig.APIKey, err = secrets.LoadOptional(secrets.Source{
		Name: "tavily api key",
		File: searchConfig.APIKeyFile,
		Env:  "TAVILY_API_KEY",
	})
	if err != nil {
		logger.Fatal("loading the tavily api key", zap.Error(err))
	}
}

// importResume stores the file's content as a fresh resume version and
// returns its id.
func importResume(ctx context.Context, versions store.VersionStore, path string, logger *zap.Logger) string {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("reading the resume file", zap.Error(err))
	}

	_, version, err := versions.CreateResume(ctx, path, string(content))
	if err != nil {
		logger.Fatal("storing the resume", zap.Error(err))
	}

	logger.Info("stored resume",
		zap.String("resume_version_id", version.ID.String()),
	)
	return version.ID.String()
}
