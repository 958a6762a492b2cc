package types

import "time"

// DefaultUserAgent is a desktop browser identification; catalog sites reject
// obviously scripted clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HTTPConfig holds settings for the page transport.
type HTTPConfig struct {
	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// FetchTimeout bounds listing and detail page fetches (default 15s).
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout" mapstructure:"fetch_timeout"`

	// DownloadTimeout bounds a whole file download (default 60s).
	DownloadTimeout time.Duration `json:"download_timeout" yaml:"download_timeout" mapstructure:"download_timeout"`

	// MaxRedirects is the number of redirects followed per request (default 5).
	MaxRedirects int `json:"max_redirects" yaml:"max_redirects" mapstructure:"max_redirects"`

	// CloudflareBypass wraps the transport with browser-like TLS and headers.
	CloudflareBypass bool `json:"cloudflare_bypass" yaml:"cloudflare_bypass" mapstructure:"cloudflare_bypass"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	// Limit is the default number of results per source (default 10).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`

	// EnrichConcurrency bounds concurrent detail-page fetches per search (default 4).
	EnrichConcurrency int `json:"enrich_concurrency" yaml:"enrich_concurrency" mapstructure:"enrich_concurrency"`
}

// DownloadConfig holds settings for the download stage.
type DownloadConfig struct {
	// OutputDir is where downloaded files are written (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// DescriptorTTL is how long a descriptor resolved during enrichment may be
	// reused by a download in the same process (default 10m).
	DescriptorTTL time.Duration `json:"descriptor_ttl" yaml:"descriptor_ttl" mapstructure:"descriptor_ttl"`
}

// StoreConfig holds settings for last-search persistence and history.
type StoreConfig struct {
	// Dir is the directory holding the JSON state files (default ".").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// ResultsFile holds the asset list of the last search.
	ResultsFile string `json:"results_file" yaml:"results_file" mapstructure:"results_file"`

	// LastSearchFile holds the source/query pair of the last search.
	LastSearchFile string `json:"last_search_file" yaml:"last_search_file" mapstructure:"last_search_file"`

	// HistoryDB is the SQLite search history database, relative to Dir.
	HistoryDB string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`

	// RecordHistory controls whether searches are appended to HistoryDB.
	RecordHistory bool `json:"record_history" yaml:"record_history" mapstructure:"record_history"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all settings of the CLI.
type Config struct {
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	Download DownloadConfig `json:"download" yaml:"download" mapstructure:"download"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			UserAgent:       DefaultUserAgent,
			FetchTimeout:    15 * time.Second,
			DownloadTimeout: 60 * time.Second,
			MaxRedirects:    5,
		},
		Search: SearchConfig{
			Limit:             10,
			EnrichConcurrency: 4,
		},
		Download: DownloadConfig{
			OutputDir:     ".",
			DescriptorTTL: 10 * time.Minute,
		},
		Store: StoreConfig{
			Dir:            ".",
			ResultsFile:    "search-results.json",
			LastSearchFile: ".search-history.json",
			HistoryDB:      ".gameasset-dl/history.db",
			RecordHistory:  true,
		},
		Log: LogConfig{Level: "info"},
	}
}
