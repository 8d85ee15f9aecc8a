package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rohmanhakim/vnlaw-crawler/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	concurrency int
	outputDir   string
	storeDriver string
	logLevel    string
	logEncoding string
	metricsAddr string
	userAgent   string
	timeout     time.Duration
	pageDelay   time.Duration
)

// flagKeys maps persistent flags onto config keys. A flag only overrides
// the environment and the config file when it is given explicitly.
var flagKeys = map[string]string{
	"concurrency":  config.KeyConcurrency,
	"output-dir":   config.KeyOutputDir,
	"store":        config.KeyStoreDriver,
	"log-level":    config.KeyLogLevel,
	"log-encoding": config.KeyLogEncoding,
	"metrics-addr": config.KeyMetricsAddr,
	"user-agent":   config.KeyUserAgent,
	"timeout":      config.KeyTimeout,
	"page-delay":   config.KeyPageDelay,
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vnlaw-crawler",
	Short: "Crawler for Vietnamese legal documents and case law.",
	Long: `vnlaw-crawler collects legal instruments from the national legal
database (vbpl), consolidated texts and case-law precedents (anle), parses
their article outline, enriches them from the canonical registry and stores
them together with their relations.

Base URLs are read from VBPL_BASE_URL, ANLE_BASE_URL and CONCETTI_BASE_URL
(optionally through a .env file or --config-file).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path, JSON or YAML (e.g., /etc/vnlaw-crawler/config.yaml)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of concurrent document workers (default 8)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "root directory for attachments and previews (default \"documents\")")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "document store: postgres or memory (default \"postgres\")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default \"info\")")
	rootCmd.PersistentFlags().StringVar(&logEncoding, "log-encoding", "", "console or json (default \"console\")")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout of a single HTTP request (default 90s)")
	rootCmd.PersistentFlags().DurationVar(&pageDelay, "page-delay", 0, "delay between two listing pages (default 3s)")

	rootCmd.AddCommand(
		crawlCmd,
		crawlIDCmd,
		crawlGraphCmd,
		fetchCmd,
		previewCmd,
		versionCmd,
	)
}

// InitConfigWithError loads .env, the config file and the environment, then
// applies the explicitly given flags of cmd.
func InitConfigWithError(flags *pflag.FlagSet) (config.Config, error) {
	// a missing .env is fine, the environment may be set otherwise
	_ = godotenv.Load()

	v, err := config.NewViper(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("error initializing config: %w", err)
	}
	if err := bindFlags(v, flags); err != nil {
		return config.Config{}, err
	}
	return config.FromViper(v)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind %s flag: %w", name, err)
		}
	}
	return nil
}

func ResetFlags() {
	cfgFile = ""
	concurrency = 0
	outputDir = ""
	storeDriver = ""
	logLevel = ""
	logEncoding = ""
	metricsAddr = ""
	userAgent = ""
	timeout = 0
	pageDelay = 0
	previewRows = 10
	previewIssuedFrom = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

// RootCommandForTest exposes the command tree to tests.
func RootCommandForTest() *cobra.Command {
	return rootCmd
}
