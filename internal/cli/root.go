package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/joho/godotenv"
	"github.com/ppiankov/parlasf/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is the parlasf release
const Version = "0.3.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
	logFile  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "parlasf",
	Short: "parlasf - stylistic fronting and hardspeech extraction from IGC-Parla",
	Long: `parlasf extracts linguistic observations from the IGC-Parla corpus of
Icelandic parliamentary speeches.

For every speech it resolves the speaker's party, role and coalition
status on the day of the session and runs one of the tasks:

  sf_main_clause   stylistic fronting in main clauses
  sf_sub_clause    stylistic fronting after "sem"
  hardspeech       unaspirated plosive candidates

Each match becomes one row with the speech metadata, optional lexical
aggregates and the speech text.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("parlasf v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.parlasf/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log to this file instead of stderr")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// OPENAI_API_KEY and friends may live in a local .env
	_ = godotenv.Load()

	if err := setDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".parlasf"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	bindEnv()

	err := viper.ReadInConfig()
	if err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
	if err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
	}

	logging.SetupLogging(loggingConf(model.LoggingConfig{
		File:        viper.GetString("logging.file"),
		Level:       logging.LogLevel(viper.GetString("logging.level")),
		MaxFileSize: viper.GetInt("logging.max_file_size"),
		MaxFiles:    viper.GetInt("logging.max_files"),
		MaxAgeDays:  viper.GetInt("logging.max_age_days"),
	}))
}

func loggingConf(cfg model.LoggingConfig) logging.LoggingConf {
	return logging.LoggingConf{
		Path:        cfg.File,
		Level:       cfg.Level,
		MaxFileSize: cfg.MaxFileSize,
		MaxFiles:    cfg.MaxFiles,
		MaxAgeDays:  cfg.MaxAgeDays,
	}
}

// bindEnv reads environment variables that match PARLASF_*
func bindEnv() {
	viper.SetEnvPrefix("PARLASF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key", "PARLASF_LLM_API_KEY", "OPENAI_API_KEY")
	// omitempty fields have no default to be discovered by
	for _, key := range []string{"llm.base_url", "scrape.http_proxy", "scrape.https_proxy", "scrape.no_proxy", "export.mysql_dsn"} {
		_ = viper.BindEnv(key)
	}
}

// setDefaults registers every field of cfg as a viper default so that
// environment variables are seen by Unmarshal
func setDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	registerDefaults("", tree)
	return nil
}

func registerDefaults(prefix string, tree map[string]any) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if sub, ok := value.(map[string]any); ok {
			registerDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, value)
	}
}

// loadConfig returns the effective configuration
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return cfg, nil
}
