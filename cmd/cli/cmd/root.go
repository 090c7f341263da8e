package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	CfgKeyOSAPIKey    = "opensubtitles.apikey"
	CfgKeyOSUsername  = "opensubtitles.username"
	CfgKeyOSPassword  = "opensubtitles.password"
	CfgKeyOSBaseURL   = "opensubtitles.baseurl"
	CfgKeyOSUserAgent = "opensubtitles.useragent"

	CfgKeyPrefHearingImpaired   = "preferences.hearing_impaired"
	CfgKeyPrefForeignPartsOnly  = "preferences.foreign_parts_only"
	CfgKeyPrefMachineTranslated = "preferences.machine_translated"
	CfgKeyPrefLanguages         = "preferences.languages"

	CfgKeyCacheProvider      = "cache.provider"
	CfgKeyCachePath          = "cache.path"
	CfgKeyCacheTTL           = "cache.ttl"
	CfgKeyCacheSize          = "cache.size"
	CfgKeyCacheSearchTTL     = "cache.search_ttl"
	CfgKeyCacheRedisAddress  = "cache.redis.address"
	CfgKeyCacheRedisPassword = "cache.redis.password"
	CfgKeyCacheRedisDB       = "cache.redis.db"

	CfgKeyRetryAttempts = "retry.attempts"
	CfgKeyLogLevel      = "log.level"

	envPrefix = "SUBFETCH"
	configDir = ".subfetch"
)

// noAPIKeyAnnotation marks commands that run without provider credentials.
const noAPIKeyAnnotation = "subfetch/no-api-key"

var (
	cfgFile    string
	verbose    bool
	metricsOut string

	// RootCmd is the base command. Exported for tests.
	RootCmd = &cobra.Command{
		Use:   "subfetch",
		Short: "Search and download subtitles from OpenSubtitles.com",
		Long: `subfetch searches OpenSubtitles.com for subtitles matching a video or a
title and downloads them next to the video.

Credentials come from the config file ($HOME/.subfetch/config.yaml or
./config.yaml), a .env file, or SUBFETCH_* environment variables such as
SUBFETCH_OPENSUBTITLES_APIKEY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, skip := cmd.Annotations[noAPIKeyAnnotation]; skip {
				return nil
			}
			return ensureAPIKey(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return writeMetrics()
		},
	}
)

// Execute runs the root command and exits non-zero on failure, printing one
// message per error kind.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, UserMessage(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.subfetch/config.yaml or ./config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	RootCmd.PersistentFlags().StringVar(&metricsOut, "metrics-out", "", "write cache metrics in Prometheus text format to this file")

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(CfgKeyPrefHearingImpaired, false)
	v.SetDefault(CfgKeyPrefForeignPartsOnly, false)
	v.SetDefault(CfgKeyPrefMachineTranslated, false)
	v.SetDefault(CfgKeyCacheProvider, "file")
	v.SetDefault(CfgKeyCacheTTL, time.Duration(0))
	v.SetDefault(CfgKeyCacheSize, 256)
	v.SetDefault(CfgKeyCacheSearchTTL, 5*time.Minute)
	v.SetDefault(CfgKeyRetryAttempts, 3)
	v.SetDefault(CfgKeyLogLevel, "warn")
}

// initConfig loads .env, the config file and SUBFETCH_* variables.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error reading .env file: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, configDir))
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error reading config file (%s): %v\n", viper.ConfigFileUsed(), err)
		}
	}
}

// ensureAPIKey asks for the API key when none is configured and saves it
// to $HOME/.subfetch/config.yaml.
func ensureAPIKey(cmd *cobra.Command) error {
	if viper.GetString(CfgKeyOSAPIKey) != "" {
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "OpenSubtitles API Key not found.")
	fmt.Fprint(cmd.OutOrStdout(), "Please enter your API Key: ")

	input, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		if err != nil {
			return fmt.Errorf("%w: failed to read API key: %v", coreerrors.ErrConfiguration, err)
		}
		return fmt.Errorf("%w: API key cannot be empty", coreerrors.ErrConfiguration)
	}
	viper.Set(CfgKeyOSAPIKey, input)

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not get home directory: %w", err)
	}
	dir := filepath.Join(home, configDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to save API key to %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "API Key saved to %s\n", path)
	return nil
}

// newLogger builds the CLI logger from log.level and --verbose.
func newLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(viper.GetString(CfgKeyLogLevel))
	if err != nil {
		level = logrus.WarnLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

func writeMetrics() error {
	if metricsOut == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(metricsOut, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// UserMessage turns an error into the message shown for its kind.
func UserMessage(err error) string {
	switch coreerrors.Kind(err) {
	case "configuration":
		return fmt.Sprintf("Configuration error: %v\nSet %s, %s and %s in the config file or environment.",
			err, CfgKeyOSAPIKey, CfgKeyOSUsername, CfgKeyOSPassword)
	case "authentication":
		return fmt.Sprintf("Authentication failed: %v\nCheck your username and password, then run 'subfetch login'.", err)
	case "too_many_requests":
		return "OpenSubtitles is rate limiting requests. Wait a moment and try again."
	case "service_unavailable":
		return fmt.Sprintf("OpenSubtitles could not be reached: %v\nCheck your connection and try again.", err)
	case "quota_exceeded":
		return "Download limit reached. Upgrade your account or wait for your quota to reset (~24 hours)."
	case "invalid_input":
		return fmt.Sprintf("Invalid request: %v", err)
	case "io":
		return fmt.Sprintf("Could not save the subtitle: %v", err)
	case "parse":
		return fmt.Sprintf("OpenSubtitles sent a response that could not be read: %v", err)
	case "provider":
		return fmt.Sprintf("OpenSubtitles returned an error: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
