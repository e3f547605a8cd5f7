package config

import (
	"fmt"
	"os"
	"path/filepath"

	"ipc-charts/internal/logging"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment holds settings that come from the process environment
// rather than the report file.
type Environment struct {
	InfluxDB  InfluxDBConfig
	OutputDir string `env:"IPC_CHARTS_OUTPUT_DIR"`
	LogLevel  string `env:"IPC_CHARTS_LOG_LEVEL"`
}

type InfluxDBConfig struct {
	Host   string `env:"INFLUXDB_HOST"`
	Token  string `env:"INFLUXDB_TOKEN"`
	Org    string `env:"INFLUXDB_ORG"`
	Bucket string `env:"INFLUXDB_BUCKET"`
}

// Validate reports the connection variables that are still unset.
func (c InfluxDBConfig) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"INFLUXDB_HOST", c.Host},
		{"INFLUXDB_TOKEN", c.Token},
		{"INFLUXDB_ORG", c.Org},
		{"INFLUXDB_BUCKET", c.Bucket},
	}

	var missing []string
	for _, v := range required {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v. Please ensure your .env file contains these variables", missing)
	}
	return nil
}

// LoadDotEnv loads .env from the working directory, falling back to the
// directory of the executable. Variables already set are not overridden.
func LoadDotEnv() {
	logger := logging.GetLogger()

	candidates := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), ".env"))
	}
	for _, envFile := range candidates {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
			continue
		}
		logger.WithField("file", envFile).Debug("Loaded environment variables")
		return
	}
}

func ParseEnvironment() (*Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &e, nil
}
