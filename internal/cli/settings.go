package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Settings configure the timesheet CLI. They come from ~/.timesheets/config.yaml
// and TIMESHEET_* environment variables, the latter taking precedence.
type Settings struct {
	Server      string `mapstructure:"server"`
	Timezone    string `mapstructure:"timezone"`
	SessionFile string `mapstructure:"session_file"`
	Employer    string `mapstructure:"employer"`
}

// LoadSettings reads the CLI settings. A missing config file is not an error.
func LoadSettings() (Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("finding home directory: %w", err)
	}
	dir := filepath.Join(home, ".timesheets")
	return loadSettings(dir)
}

func loadSettings(dir string) (Settings, error) {
	v := viper.New()
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("timezone", "Local")
	v.SetDefault("session_file", filepath.Join(dir, "session.json"))
	v.SetDefault("employer", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("TIMESHEET")
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Location resolves Timezone. "Local" and "" mean the machine's zone.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}
