package model

import (
	"time"

	"github.com/czcorpus/cnc-gokit/logging"
)

// Task names
const (
	TaskMainClause = "sf_main_clause"
	TaskSubClause  = "sf_sub_clause"
	TaskHardspeech = "hardspeech"
)

// TaskTypes lists the supported tasks, the first one is the default
var TaskTypes = []string{TaskMainClause, TaskSubClause, TaskHardspeech}

// MetadataFileName is the corpus metadata file looked up in an archive directory
const MetadataFileName = "IGC-Parla-22.10.ana.xml"

// Config is the complete parlasf configuration
type Config struct {
	Task        string            `yaml:"task" mapstructure:"task"`
	Data        DataConfig        `yaml:"data" mapstructure:"data"`
	Filter      FilterConfig      `yaml:"filter" mapstructure:"filter"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Hardspeech  HardspeechConfig  `yaml:"hardspeech" mapstructure:"hardspeech"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Scrape      ScrapeConfig      `yaml:"scrape" mapstructure:"scrape"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
}

// DataConfig points to the static dictionaries
type DataConfig struct {
	Metadata     string `yaml:"metadata" mapstructure:"metadata"` // Empty: <archive>/IGC-Parla-22.10.ana.xml
	SpeechTypes  string `yaml:"speech_types" mapstructure:"speech_types"`
	PhoneticDict string `yaml:"phonetic_dict" mapstructure:"phonetic_dict"`
	FreqDict     string `yaml:"freq_dict" mapstructure:"freq_dict"`
}

// FilterConfig restricts which files and speeches are processed
type FilterConfig struct {
	Person    string  `yaml:"person" mapstructure:"person"`
	Years     []int   `yaml:"years" mapstructure:"years"`
	Timespans [][]int `yaml:"timespans" mapstructure:"timespans"` // [start, end] pairs, inclusive
}

// AllYears merges Years with the expanded Timespans
func (f FilterConfig) AllYears() []int {
	years := append([]int{}, f.Years...)
	for _, span := range f.Timespans {
		if len(span) != 2 {
			continue
		}
		for y := span[0]; y <= span[1]; y++ {
			years = append(years, y)
		}
	}
	return years
}

// OutputConfig controls persistence of the extracted rows
type OutputConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	FileName   string `yaml:"file_name" mapstructure:"file_name"`   // Default: <task>.tsv
	Format     string `yaml:"format" mapstructure:"format"`         // tsv or json
	TextScope  string `yaml:"text_scope" mapstructure:"text_scope"` // speech or sentence
	SpeechDir  string `yaml:"speech_dir" mapstructure:"speech_dir"` // Save speech texts here when set
	Verbose    bool   `yaml:"verbose" mapstructure:"verbose"`
	NoManifest bool   `yaml:"no_manifest" mapstructure:"no_manifest"`
}

// AnalysisConfig controls the speech-level aggregates
type AnalysisConfig struct {
	Aggregates   bool  `yaml:"aggregates" mapstructure:"aggregates"`
	MATTRWindows []int `yaml:"mattr_windows" mapstructure:"mattr_windows"`
}

// HardspeechConfig tunes the hardspeech matcher
type HardspeechConfig struct {
	ContextWords int    `yaml:"context_words" mapstructure:"context_words"`
	Voiced       bool   `yaml:"voiced" mapstructure:"voiced"`   // Use the sonorant devoicing pattern
	Pattern      string `yaml:"pattern" mapstructure:"pattern"` // Overrides both built-in patterns
}

// ConcurrencyConfig controls per-file parallelism
type ConcurrencyConfig struct {
	Workers  int  `yaml:"workers" mapstructure:"workers"`
	FailFast bool `yaml:"fail_fast" mapstructure:"fail_fast"`
}

// CacheConfig controls dictionary, memo and page caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	RedisAddr string        `yaml:"redis_addr" mapstructure:"redis_addr"` // Replaces the disk layer when set
	RedisDB   int           `yaml:"redis_db" mapstructure:"redis_db"`
}

// LoggingConfig is passed to cnc-gokit logging setup
type LoggingConfig struct {
	File  string           `yaml:"file" mapstructure:"file"`
	Level logging.LogLevel `yaml:"level" mapstructure:"level"`

	// rotation of File, ignored when logging to stderr
	MaxFileSize int `yaml:"max_file_size" mapstructure:"max_file_size"`
	MaxFiles    int `yaml:"max_files" mapstructure:"max_files"`
	MaxAgeDays  int `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// LLMConfig configures the optional speech type classifier
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "openai" or empty (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxChars  int    `yaml:"max_chars" mapstructure:"max_chars"` // Speech text sent to the model is cut here
}

// ScrapeConfig configures the speech type scraper
type ScrapeConfig struct {
	MainURL           string        `yaml:"main_url" mapstructure:"main_url"`
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ExportConfig configures the optional MySQL export
type ExportConfig struct {
	MySQLDSN  string `yaml:"mysql_dsn,omitempty" mapstructure:"mysql_dsn"`
	Table     string `yaml:"table" mapstructure:"table"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Task: TaskMainClause,
		Data: DataConfig{
			SpeechTypes:  "./extraction_data/speech_types.tsv",
			PhoneticDict: "./extraction_data/ice_pron_dict_north_clear.tsv",
			FreqDict:     "./extraction_data/giga_simple_freq_2.json",
		},
		Output: OutputConfig{
			Dir:       ".",
			Format:    "tsv",
			TextScope: "speech",
		},
		Analysis: AnalysisConfig{
			Aggregates:   true,
			MATTRWindows: []int{100, 300, 500},
		},
		Hardspeech: HardspeechConfig{
			ContextWords: 10,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "./.parlasf-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:       "info",
			MaxFileSize: 100,
			MaxFiles:    5,
			MaxAgeDays:  30,
		},
		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 20,
			MaxChars:  4000,
		},
		Scrape: ScrapeConfig{
			MainURL:           "https://www.althingi.is/thingstorf/raedur/raedur-thingmanna-eftir-thingum/",
			BaseURL:           "https://www.althingi.is",
			UserAgent:         "parlasf/0.3 (+https://github.com/ppiankov/parlasf)",
			Timeout:           30 * time.Second,
			MaxBodyBytes:      5_000_000,
			RequestsPerSecond: 2,
			BurstSize:         2,
			RespectRobots:     true,
		},
		Export: ExportConfig{
			Table:     "parlasf_rows",
			BatchSize: 500,
		},
	}
}
