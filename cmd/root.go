package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/applypilot/applypilot/internal/forms"
)

const (
	app = "applypilot"
)

type Config struct {
	ResponsesFile string    `mapstructure:"responses-file"`
	ResumeFile    string    `mapstructure:"resume-file"`
	ArtifactsDir  string    `mapstructure:"artifacts-dir"`
	AI            *AIConfig `mapstructure:"ai"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile        string `mapstructure:"api-key-file"`
	Model             string `mapstructure:"model"`
	MaxRetries        int    `mapstructure:"max-retries"`
	RequestsPerMinute int    `mapstructure:"requests-per-minute"`
	MaxLogLength      int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "applypilot answers job application form questions from a persistent knowledge base with AI fallback",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Secrets may live in a local .env; absence is fine.
	_ = godotenv.Load()

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is applypilot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("responses-file", "", "path to the form responses file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("responses-file", rootCmd.PersistentFlags().Lookup("responses-file"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The CLI works without a config file; a present but broken one is
		// still fatal.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
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

	return config, nil
}

// getThresholds layers the optional "matching" config section over the stock
// cutoffs.
func getThresholds() (forms.Thresholds, error) {
	thresholds := forms.DefaultThresholds()

	section := viper.GetStringMap("matching")
	if len(section) == 0 {
		return thresholds, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &thresholds,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return thresholds, err
	}
	if err := decoder.Decode(section); err != nil {
		return thresholds, err
	}

	return thresholds, nil
}
