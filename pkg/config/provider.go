package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Provider defines the interface for settings sources.
type Provider interface {
	// Load complete settings, starting from Default()
	Load() (Settings, error)
}

// YAMLProvider implements Provider for YAML configuration files.
// Fields absent from the file keep their defaults; OUTDOORRISK_* environment
// variables are applied on top.
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{filename: filename}
}

// Load reads settings from the YAML file, then applies env overrides.
func (y *YAMLProvider) Load() (Settings, error) {
	s := Default()

	data, err := os.ReadFile(y.filename)
	if err != nil {
		return s, fmt.Errorf("error reading config file %s: %w", y.filename, err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("error parsing config file %s: %w", y.filename, err)
	}

	applyEnvOverrides(&s)

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid configuration in %s: %w", y.filename, err)
	}
	return s, nil
}

// EnvProvider implements Provider using only defaults plus OUTDOORRISK_*
// environment variables. Used when no config file is supplied.
type EnvProvider struct{}

// NewEnvProvider creates a provider backed by the process environment.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// Load returns defaults with env overrides applied.
func (e *EnvProvider) Load() (Settings, error) {
	s := Default()
	applyEnvOverrides(&s)
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return s, nil
}

func applyEnvOverrides(s *Settings) {
	envFloat("OUTDOORRISK_THRESHOLD_HOT_HI_C", &s.HotHeatIndexC)
	envFloat("OUTDOORRISK_THRESHOLD_COLD_WC_C", &s.ColdWindChillC)
	envFloat("OUTDOORRISK_THRESHOLD_WIND_MS", &s.WindMS)
	envFloat("OUTDOORRISK_THRESHOLD_RAIN_MM_PER_H", &s.RainMMPerHour)

	envInt("OUTDOORRISK_COVERAGE_MIN_YEARS", &s.MinYears)
	envInt("OUTDOORRISK_COVERAGE_MIN_SAMPLES", &s.MinSamples)
	envBool("OUTDOORRISK_COVERAGE_ENFORCE", &s.EnforceCoverage)

	envInt("OUTDOORRISK_TIMEOUT_CONNECT_S", &s.ConnectTimeoutS)
	envInt("OUTDOORRISK_TIMEOUT_READ_S", &s.ReadTimeoutS)
	envInt("OUTDOORRISK_RETRIES", &s.Retries)

	envInt("OUTDOORRISK_BASELINE_START_YEAR", &s.BaselineStartYear)
	envInt("OUTDOORRISK_BASELINE_END_YEAR", &s.BaselineEndYear)
	envInt("OUTDOORRISK_DEFAULT_WINDOW_DAYS", &s.DefaultWindowDays)

	envString("OUTDOORRISK_REANALYSIS_BASE_URL", &s.ReanalysisBaseURL)
	envBool("OUTDOORRISK_ENABLE_HALF_HOURLY_PRECIP", &s.EnableHalfHourly)
	envBool("OUTDOORRISK_ENABLE_PRECIP_FALLBACK", &s.EnablePrecipFallback)

	envString("OUTDOORRISK_CACHE_PATH", &s.CachePath)
	envInt("OUTDOORRISK_CACHE_TTL_DAYS", &s.CacheTTLDays)

	envString("OUTDOORRISK_LISTEN_ADDR", &s.ListenAddr)
	envInt("OUTDOORRISK_HTTP_PORT", &s.HTTPPort)

	if v, ok := os.LookupEnv("OUTDOORRISK_ALLOWED_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		s.AllowedOrigins = origins
	}
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
