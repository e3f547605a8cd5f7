package config

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"ipc-charts/internal/logging"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputDir   = "charts"
	DefaultFormat      = "png"
	DefaultDPI         = 300
	DefaultWidth       = 7.0
	DefaultHeight      = 5.0
	DefaultLogLevel    = "info"
	DefaultMeasurement = "ipc_bench"
)

// LoadConfigWithContent reads and parses a report file and also returns
// the unexpanded file content.
func LoadConfigWithContent(filepath string) (*ReportConfig, string, error) {
	logger := logging.GetLogger()

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read config file")
		return nil, "", err
	}

	config, err := Parse(data)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse config file")
		return nil, "", err
	}
	return config, string(data), nil
}

// Parse decodes, defaults and validates a report configuration.
func Parse(data []byte) (*ReportConfig, error) {
	expanded := expandEnvVars(string(data))

	var config ReportConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, err
	}

	for keyName, family := range config.Families {
		family.KeyName = keyName
		if family.Source.Type == "" {
			family.Source.Type = SourceInline
		}
		if family.Source.Type == SourceInfluxDB && family.Source.Measurement == "" {
			family.Source.Measurement = DefaultMeasurement
		}
		config.Families[keyName] = family
	}
	applyDefaults(&config.Report)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

func applyDefaults(r *ReportInfo) {
	if r.OutputDir == "" {
		r.OutputDir = DefaultOutputDir
	}
	if r.Format == "" {
		r.Format = DefaultFormat
	}
	if r.DPI == 0 {
		r.DPI = DefaultDPI
	}
	if r.WidthInches == 0 {
		r.WidthInches = DefaultWidth
	}
	if r.HeightInches == 0 {
		r.HeightInches = DefaultHeight
	}
	if r.Parallelism == 0 {
		r.Parallelism = 1
	}
	if r.LogLevel == "" {
		r.LogLevel = DefaultLogLevel
	}
}

// ParseHeldKey converts a data map key such as "4" or "0.5" to a value.
func ParseHeldKey(key string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid held value %q: %w", key, err)
	}
	return v, nil
}

func validateConfig(config *ReportConfig) error {
	if config.Report.Name == "" {
		return fmt.Errorf("report name is required")
	}
	if config.Report.DPI < 0 {
		return fmt.Errorf("dpi must not be negative")
	}
	if config.Report.WidthInches < 0 || config.Report.HeightInches < 0 {
		return fmt.Errorf("figure size must not be negative")
	}
	if config.Report.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative")
	}

	strategies := make(map[string]bool, len(config.Strategies))
	for i, s := range config.Strategies {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("strategy %d: id is required", i)
		}
		if strategies[s.ID] {
			return fmt.Errorf("strategy %s: declared twice", s.ID)
		}
		strategies[s.ID] = true
	}

	for name, dim := range config.Dimensions {
		if len(dim.Values) == 0 {
			return fmt.Errorf("dimension %s: at least one value is required", name)
		}
		seen := make(map[float64]bool, len(dim.Values))
		for _, v := range dim.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("dimension %s: value %v is not finite", name, v)
			}
			if seen[v] {
				return fmt.Errorf("dimension %s: duplicate value %v", name, v)
			}
			seen[v] = true
		}
	}

	if len(config.Families) == 0 {
		return fmt.Errorf("at least one chart family is required")
	}
	for _, family := range config.GetFamiliesSorted() {
		if err := validateFamily(config, family, strategies); err != nil {
			return fmt.Errorf("family %s: %w", family.KeyName, err)
		}
	}
	return nil
}

func validateFamily(config *ReportConfig, family FamilyConfig, strategies map[string]bool) error {
	if family.Metric == "" {
		return fmt.Errorf("metric is required")
	}
	if family.Filename == "" {
		return fmt.Errorf("filename template is required")
	}
	varying, ok := config.Dimensions[family.Varying]
	if !ok {
		return fmt.Errorf("unknown varying dimension %q", family.Varying)
	}
	held, ok := config.Dimensions[family.Held]
	if !ok {
		return fmt.Errorf("unknown held dimension %q", family.Held)
	}
	if family.Varying == family.Held {
		return fmt.Errorf("varying and held dimension are both %q", family.Held)
	}
	for _, id := range family.Strategies {
		if !strategies[id] {
			return fmt.Errorf("unknown strategy %q", id)
		}
	}

	switch family.Source.Type {
	case SourceInline:
		return validateInlineData(family, varying, held, strategies)
	case SourceSQLite:
		if family.Source.Path == "" {
			return fmt.Errorf("sqlite source requires a path")
		}
	case SourceSpool:
		if family.Source.Path == "" {
			return fmt.Errorf("spool source requires a path")
		}
	case SourceInfluxDB:
	default:
		return fmt.Errorf("unknown source type %q", family.Source.Type)
	}
	return nil
}

func validateInlineData(family FamilyConfig, varying, held DimensionConfig, strategies map[string]bool) error {
	declared := make(map[float64]bool, len(held.Values))
	for _, v := range held.Values {
		declared[v] = true
	}
	keys := make([]string, 0, len(family.Data))
	for key := range family.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	owner := make(map[float64]string, len(keys))
	for _, key := range keys {
		hv, err := ParseHeldKey(key)
		if err != nil {
			return err
		}
		if !declared[hv] {
			return fmt.Errorf("data for held value %s which is not declared in dimension %s", key, family.Held)
		}
		if prev, dup := owner[hv]; dup {
			return fmt.Errorf("data keys %q and %q both name held value %v", prev, key, hv)
		}
		owner[hv] = key
		for id, values := range family.Data[key] {
			if !strategies[id] {
				return fmt.Errorf("data for unknown strategy %q at %s", id, key)
			}
			if len(values) != len(varying.Values) {
				return fmt.Errorf("strategy %s at %s has %d samples, want %d", id, key, len(values), len(varying.Values))
			}
		}
	}
	return nil
}
