package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/careerflow/careerflow-agent/internal/agents"
	"github.com/careerflow/careerflow-agent/internal/logger"
	"github.com/careerflow/careerflow-agent/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply section-enhance edits to a resume version and store the result as a new version",
	Run: func(cmd *cobra.Command, _ []string) {
		apply(cmd)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().String("resume-version", "", "resume version id to apply the edits to")
	applyCmd.Flags().String("edits-file", "", "json file with the edits, as produced under structured.section_enhance")
}

// apply turns accepted edits into a new stored resume version linked to its
// parent.
func apply(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	versionID, err := uuid.Parse(cmd.Flag("resume-version").Value.String())
	if err != nil {
		logger.Fatal("a valid resume version id is required", zap.Error(err))
	}

	editsFile := cmd.Flag("edits-file").Value.String()
	if editsFile == "" {
		logger.Fatal("an edits file is required", zap.String("hint", "pass it with --edits-file"))
	}

	data, err := os.ReadFile(editsFile)
	if err != nil {
		logger.Fatal("reading the edits file", zap.Error(err))
	}

	var payload struct {
		Edits []agents.Edit `json:"edits"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Fatal("decoding the edits file", zap.Error(err))
	}
	if len(payload.Edits) == 0 {
		logger.Fatal("the edits file contains no edits")
	}

	versions, closeStore := buildStore(ctx, config, logger)
	defer closeStore()

	version, err := versions.GetVersion(ctx, versionID)
	if err != nil {
		logger.Fatal("loading the resume version", zap.Error(err))
	}
	if version == nil {
		logger.Fatal("resume version not found", zap.String("resume_version_id", versionID.String()))
	}

	updated := store.ApplyEdits(version.Content, payload.Edits)

	next, err := versions.AddVersion(ctx, version.ResumeID, &version.ID, updated, map[string]any{
		"source": "section_enhance",
		"edits":  len(payload.Edits),
	})
	if err != nil {
		logger.Fatal("storing the new version", zap.Error(err))
	}

	logger.Info("stored new resume version",
		zap.String("resume_version_id", next.ID.String()),
		zap.String("parent_version_id", version.ID.String()),
		zap.Int("edits", len(payload.Edits)),
	)
	fmt.Println(next.ID.String())
}
