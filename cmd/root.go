package cmd

import (
	"log"

	"github.com/careerflow/careerflow-agent/internal/llm"
	"github.com/careerflow/careerflow-agent/internal/websearch"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "careerflow-agent"
)

type Config struct {
	LLM       *llm.Config       `mapstructure:"llm"`
	Search    *websearch.Config `mapstructure:"search"`
	Telemetry *TelemetryConfig  `mapstructure:"telemetry"`

	DatabaseURL string `mapstructure:"database-url"`
}

type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Buffer  int  `mapstructure:"buffer"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "careerflow-agent is a resume-tailoring assistant routing free-form requests to LLM-backed capabilities",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"llm.groq.api-key-file":   "GROQ_API_KEY_FILE",
		"llm.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"search.api-key-file":     "TAVILY_API_KEY_FILE",
		"database-url":            "DATABASE_URL",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is careerflow-agent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The config file is optional. Environment variables and flags are
	// enough to run against a live provider, and no configuration at all
	// means offline mode.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.LLM == nil {
		config.LLM = &llm.Config{}
	}
	if config.Search == nil {
		config.Search = &websearch.Config{}
	}

	return config, nil
}
