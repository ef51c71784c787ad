package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/mybustracker/internal/constants"
	"github.com/fivetwenty-io/mybustracker/internal/observability"
	"github.com/go-playground/validator/v10"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// ConfigDirName is the directory under $HOME holding config.yml.
const ConfigDirName = ".mybustracker"

// Config represents the CLI configuration.
type Config struct {
	APIKey   string                  `json:"api_key,omitempty"  yaml:"api_key,omitempty"`
	Endpoint string                  `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Output   string                  `json:"output"             yaml:"output"             validate:"omitempty,oneof=table json yaml"`
	Timeout  time.Duration           `json:"timeout"            yaml:"timeout"            validate:"min=0"`
	RetryMax int                     `json:"retry_max"          yaml:"retry_max"          validate:"min=0,max=10"`
	Log      observability.LogConfig `json:"log"                yaml:"log"`
	NATS     NATSConfig              `json:"nats"               yaml:"nats"`
}

// NATSConfig configures the publish command.
type NATSConfig struct {
	URL           string `json:"url"            yaml:"url"            validate:"omitempty,url"`
	SubjectPrefix string `json:"subject_prefix" yaml:"subject_prefix"`
}

// loadConfig builds the configuration from viper (file, MBT_* environment and flags).
func loadConfig() *Config {
	config := &Config{
		APIKey:   viper.GetString("api_key"),
		Endpoint: viper.GetString("endpoint"),
		Output:   viper.GetString("output"),
		Timeout:  viper.GetDuration("timeout"),
		RetryMax: viper.GetInt("retry_max"),
		Log: observability.LogConfig{
			Level:   viper.GetString("log.level"),
			Format:  viper.GetString("log.format"),
			Outputs: viper.GetStringSlice("log.outputs"),
			Rotation: observability.RotationConfig{
				Enable:     viper.GetBool("log.rotation.enable"),
				MaxSizeMB:  viper.GetInt("log.rotation.max_size_mb"),
				MaxBackups: viper.GetInt("log.rotation.max_backups"),
				MaxAgeDays: viper.GetInt("log.rotation.max_age_days"),
				Compress:   viper.GetBool("log.rotation.compress"),
			},
		},
		NATS: NATSConfig{
			URL:           viper.GetString("nats.url"),
			SubjectPrefix: viper.GetString("nats.subject_prefix"),
		},
	}

	if config.Output == "" {
		config.Output = constants.FormatTable
	}

	if config.Timeout == 0 {
		config.Timeout = constants.DefaultHTTPTimeout
	}

	if config.NATS.URL == "" {
		config.NATS.URL = constants.DefaultNATSURL
	}

	if config.NATS.SubjectPrefix == "" {
		config.NATS.SubjectPrefix = constants.DefaultSubjectPrefix
	}

	return config
}

// effectiveLogConfig applies --verbose and --log-file on top of the saved logging settings.
func effectiveLogConfig(config *Config) observability.LogConfig {
	logConfig := config.Log
	logConfig.Outputs = append([]string(nil), config.Log.Outputs...)

	if logFile := viper.GetString("log-file"); logFile != "" {
		logConfig.Outputs = append(logConfig.Outputs, logFile)
	}

	if viper.GetBool("verbose") {
		logConfig.Level = "debug"
	}

	return logConfig
}

// validateConfig checks the loaded configuration.
func validateConfig(config *Config) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(config)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]

		return fmt.Errorf("%w: %s failed %s", constants.ErrInvalidConfig, strings.ToLower(fe.Namespace()), fe.Tag())
	}

	return fmt.Errorf("%w: %w", constants.ErrInvalidConfig, err)
}

// configFilePath returns the file config.yml is read from and saved to.
func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ConfigDirName, "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the API key, endpoint, output, logging and NATS settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigSetKeyCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with the API key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.APIKey != "" {
				config.APIKey = constants.MaskedSecret
			}

			return writeOutput(cmd.OutOrStdout(), config, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("API Key", valueOrNA(config.APIKey))
				_ = table.Append("Endpoint", valueOr(config.Endpoint, constants.DefaultEndpoint))
				_ = table.Append("Output", config.Output)
				_ = table.Append("Timeout", config.Timeout.String())
				_ = table.Append("Retry Max", strconv.Itoa(config.RetryMax))
				_ = table.Append("Log Level", valueOr(config.Log.Level, "info"))
				_ = table.Append("Log Outputs", valueOr(strings.Join(config.Log.Outputs, ", "), "stderr"))
				_ = table.Append("NATS URL", config.NATS.URL)
				_ = table.Append("NATS Subject Prefix", config.NATS.SubjectPrefix)
				_ = table.Append("Config File", valueOrNA(viper.ConfigFileUsed()))
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value and save it to the config file.

Keys: endpoint, output, timeout, retry_max, log.level, log.format, log.outputs,
nats.url, nats.subject_prefix. Use 'config set-key' for the API key.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if err := setConfigValue(config, args[0], args[1]); err != nil {
				return err
			}

			if err := validateConfig(config); err != nil {
				return err
			}

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			viper.Set(args[0], args[1])

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], args[1])

			return nil
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "endpoint":
		config.Endpoint = value
	case "output":
		config.Output = value
	case "timeout":
		d, err := str2duration.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: timeout: %w", constants.ErrInvalidConfig, err)
		}

		config.Timeout = d
	case "retry_max":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: retry_max: %w", constants.ErrInvalidConfig, err)
		}

		config.RetryMax = n
	case "log.level":
		config.Log.Level = value
	case "log.format":
		config.Log.Format = value
	case "log.outputs":
		config.Log.Outputs = strings.Split(value, ",")
	case "nats.url":
		config.NATS.URL = value
	case "nats.subject_prefix":
		config.NATS.SubjectPrefix = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func newConfigSetKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key [API_KEY]",
		Short: "Store the API key",
		Long:  "Store the My Bus Tracker API key. Without an argument the key is read from the terminal without echo.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string

			if len(args) == 1 {
				key = args[0]
			} else {
				read, err := readSecret(cmd.OutOrStdout(), "API key: ")
				if err != nil {
					return err
				}

				key = read
			}

			key = strings.TrimSpace(key)
			if key == "" {
				return constants.ErrNoAPIKeyConfigured
			}

			config := loadConfig()
			config.APIKey = key

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			viper.Set("api_key", key)

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "API key saved")

			return nil
		},
	}
}

func readSecret(out io.Writer, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", constants.ErrNotATerminal
	}

	_, _ = fmt.Fprint(out, prompt)

	secret, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}

	return string(secret), nil
}

// jsonIndent is shared by every JSON writer of the CLI.
var jsonIndent = strings.Repeat(" ", constants.JSONIndentSize)

func encodeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", jsonIndent)

	return encoder.Encode(v)
}
