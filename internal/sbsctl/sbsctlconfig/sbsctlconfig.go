// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sbsctlconfig provides configuration parsing and validation for sbsctl.
//
// Configuration is stored at <dir>/sbsctl.yaml, next to the downloaded artifacts.
package sbsctlconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bufdev/sbsctl/internal/sbsctl/sbsctlpath"
	"github.com/bufdev/sbsctl/internal/standard/xos"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPortalURL is the SBS page publishing active interest rates by credit type.
	DefaultPortalURL = "https://www.sbs.gob.pe/app/pp/EstadisticasSAEEPortal/Paginas/TIActivaTipoCreditoEmpresa.aspx?tip=B"
	// DefaultSubmitSettle is how long the form is given to refresh after a date is submitted.
	DefaultSubmitSettle = 4 * time.Second
	// DefaultToggleSettle is how long the form is given to refresh after switching currency.
	DefaultToggleSettle = 3 * time.Second
	// DefaultNavigationTimeout bounds loading the portal page.
	DefaultNavigationTimeout = 60 * time.Second
	// DefaultDownloadTimeout bounds waiting for a single export to finish downloading.
	DefaultDownloadTimeout = 60 * time.Second
	// DefaultScheduleCron runs the daily download at 09:00 on weekdays.
	DefaultScheduleCron = "0 9 * * 1-5"
)

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# The SBS portal page serving the interest-rate spreadsheets.
#
# Optional.
# portal:
#   url: ` + DefaultPortalURL + `
# The browser used to drive the portal form.
#
# Optional. Without an executable path, Chrome or Chromium is located automatically.
# browser:
#   executable_path: /usr/bin/chromium
#   headless: false
# How long to wait for the portal between interactions.
#
# Optional. Values are Go durations.
# timing:
#   submit_settle: 4s
#   toggle_settle: 3s
#   navigation_timeout: 60s
#   download_timeout: 60s
# When "sbsctl schedule" runs the daily download.
#
# Optional. A five-field cron expression, evaluated in local time.
# schedule:
#   cron: "` + DefaultScheduleCron + `"
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// Portal holds the portal location.
	Portal ExternalPortalConfig `yaml:"portal"`
	// Browser holds the browser launch options.
	Browser ExternalBrowserConfig `yaml:"browser"`
	// Timing holds waits and timeouts.
	Timing ExternalTimingConfig `yaml:"timing"`
	// Schedule holds the schedule of the daily download.
	Schedule ExternalScheduleConfig `yaml:"schedule"`
}

// ExternalPortalConfig holds portal configuration.
type ExternalPortalConfig struct {
	// URL is the page containing the rates form.
	URL string `yaml:"url"`
}

// ExternalBrowserConfig holds browser configuration.
type ExternalBrowserConfig struct {
	// ExecutablePath is the path to the Chrome or Chromium executable.
	ExecutablePath string `yaml:"executable_path"`
	// Headless runs the browser without a window.
	Headless bool `yaml:"headless"`
}

// ExternalTimingConfig holds durations as Go duration strings.
type ExternalTimingConfig struct {
	SubmitSettle      string `yaml:"submit_settle"`
	ToggleSettle      string `yaml:"toggle_settle"`
	NavigationTimeout string `yaml:"navigation_timeout"`
	DownloadTimeout   string `yaml:"download_timeout"`
}

// ExternalScheduleConfig holds schedule configuration.
type ExternalScheduleConfig struct {
	// Cron is a five-field cron expression.
	Cron string `yaml:"cron"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// DirPath is the base directory containing sbsctl.yaml and the artifact tree.
	DirPath string
	// PortalURL is the page containing the rates form.
	PortalURL string
	// BrowserExecutablePath is the browser executable, or empty to locate one.
	BrowserExecutablePath string
	// BrowserHeadless runs the browser without a window.
	BrowserHeadless bool
	// SubmitSettle is the wait after submitting a date.
	SubmitSettle time.Duration
	// ToggleSettle is the wait after switching to the foreign-currency view.
	ToggleSettle time.Duration
	// NavigationTimeout bounds loading the portal page.
	NavigationTimeout time.Duration
	// DownloadTimeout bounds waiting for a single download.
	DownloadTimeout time.Duration
	// ScheduleCron is the validated cron expression of the daily download.
	ScheduleCron string
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
func NewConfig(dirPath string, externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	config := &Config{
		DirPath:         dirPath,
		PortalURL:       externalConfig.Portal.URL,
		BrowserHeadless: externalConfig.Browser.Headless,
		ScheduleCron:    externalConfig.Schedule.Cron,
	}
	if config.PortalURL == "" {
		config.PortalURL = DefaultPortalURL
	}
	if externalConfig.Browser.ExecutablePath != "" {
		executablePath, err := xos.ExpandHome(externalConfig.Browser.ExecutablePath)
		if err != nil {
			return nil, err
		}
		config.BrowserExecutablePath = executablePath
	}
	for _, duration := range []struct {
		name         string
		value        string
		defaultValue time.Duration
		target       *time.Duration
	}{
		{"timing.submit_settle", externalConfig.Timing.SubmitSettle, DefaultSubmitSettle, &config.SubmitSettle},
		{"timing.toggle_settle", externalConfig.Timing.ToggleSettle, DefaultToggleSettle, &config.ToggleSettle},
		{"timing.navigation_timeout", externalConfig.Timing.NavigationTimeout, DefaultNavigationTimeout, &config.NavigationTimeout},
		{"timing.download_timeout", externalConfig.Timing.DownloadTimeout, DefaultDownloadTimeout, &config.DownloadTimeout},
	} {
		value, err := parseDuration(duration.value, duration.defaultValue)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", duration.name, err)
		}
		*duration.target = value
	}
	if config.ScheduleCron == "" {
		config.ScheduleCron = DefaultScheduleCron
	}
	if _, err := cron.ParseStandard(config.ScheduleCron); err != nil {
		return nil, fmt.Errorf("invalid schedule.cron %q: %w", config.ScheduleCron, err)
	}
	return config, nil
}

// ReadConfig reads and validates the configuration file from the base directory.
// Returns a clear error message directing users to run "sbsctl config init" if the file is missing.
func ReadConfig(dirPath string) (*Config, error) {
	filePath := sbsctlpath.ConfigFilePath(dirPath)
	config, err := readConfigFile(dirPath, filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found at %s, run \"sbsctl config init\" to create one", filePath)
		}
		return nil, err
	}
	return config, nil
}

// InitConfig creates a new configuration file with a documented template in the base directory.
// Creates the directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(dirPath string) (string, error) {
	filePath := sbsctlpath.ConfigFilePath(dirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(configTemplate), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

// ValidateConfigFile reads and validates the configuration file at the given path.
func ValidateConfigFile(filePath string) error {
	_, err := readConfigFile(filepath.Dir(filePath), filePath)
	return err
}

func readConfigFile(dirPath string, filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	return NewConfig(dirPath, externalConfig)
}

func parseDuration(value string, defaultValue time.Duration) (time.Duration, error) {
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if duration < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", value)
	}
	return duration, nil
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
