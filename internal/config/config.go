package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tournify/match-resolution/internal/platform/logging"
)

// Config stores runtime configuration for the resolution service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level

	QuorumFraction  float64
	TimeTolerance   time.Duration
	HistoryPoolSize int

	SourceDriver                string
	SourceBaseURL               string
	SourceAPIKey                string
	SourceTimeout               time.Duration
	SourceMaxRetries            int
	SourceCircuitEnabled        bool
	SourceCircuitFailureCount   int
	SourceCircuitOpenTimeout    time.Duration
	SourceCircuitHalfOpenMaxReq int

	MetricsEnabled             bool
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// RiotSimConfig stores runtime configuration for the simulated provider.
type RiotSimConfig struct {
	HTTPAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogLevel     logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	quorumFraction, err := getEnvAsFloat("QUORUM_FRACTION", 0.70)
	if err != nil {
		return Config{}, fmt.Errorf("parse QUORUM_FRACTION: %w", err)
	}
	if quorumFraction <= 0 || quorumFraction > 1 {
		return Config{}, fmt.Errorf("QUORUM_FRACTION must be in (0, 1]")
	}

	timeTolerance, err := time.ParseDuration(getEnv("TIME_TOLERANCE", "300s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TIME_TOLERANCE: %w", err)
	}
	if timeTolerance < 0 {
		return Config{}, fmt.Errorf("TIME_TOLERANCE must be >= 0")
	}

	historyPoolSize, err := getEnvAsInt("HISTORY_POOL_SIZE", 16)
	if err != nil {
		return Config{}, fmt.Errorf("parse HISTORY_POOL_SIZE: %w", err)
	}
	if historyPoolSize < 1 {
		return Config{}, fmt.Errorf("HISTORY_POOL_SIZE must be >= 1")
	}

	sourceDriver, err := parseSourceDriver(getEnv("MATCH_SOURCE_DRIVER", DriverRiotSim))
	if err != nil {
		return Config{}, err
	}

	sourceBaseURLDefault := "http://localhost:8001"
	if sourceDriver == DriverHenrikDev {
		sourceBaseURLDefault = "https://api.henrikdev.xyz"
	}
	sourceBaseURL := strings.TrimSpace(getEnv("MATCH_SOURCE_BASE_URL", sourceBaseURLDefault))
	if sourceBaseURL == "" {
		return Config{}, fmt.Errorf("MATCH_SOURCE_BASE_URL cannot be empty")
	}

	sourceAPIKey := strings.TrimSpace(getEnv("RIOT_APIKEY", ""))
	if sourceDriver == DriverHenrikDev && sourceAPIKey == "" {
		return Config{}, fmt.Errorf("RIOT_APIKEY is required when MATCH_SOURCE_DRIVER=%s", DriverHenrikDev)
	}

	sourceTimeout, err := time.ParseDuration(getEnv("MATCH_SOURCE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_SOURCE_TIMEOUT: %w", err)
	}
	if sourceTimeout <= 0 {
		return Config{}, fmt.Errorf("MATCH_SOURCE_TIMEOUT must be > 0")
	}

	sourceMaxRetries, err := getEnvAsInt("MATCH_SOURCE_MAX_RETRIES", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_SOURCE_MAX_RETRIES: %w", err)
	}
	if sourceMaxRetries < 0 {
		return Config{}, fmt.Errorf("MATCH_SOURCE_MAX_RETRIES must be >= 0")
	}

	sourceCircuitEnabled, err := strconv.ParseBool(getEnv("MATCH_SOURCE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_SOURCE_CIRCUIT_ENABLED: %w", err)
	}
	sourceCircuitFailureCount, err := getEnvAsInt("MATCH_SOURCE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_SOURCE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if sourceCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("MATCH_SOURCE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	sourceCircuitOpenTimeout, err := time.ParseDuration(getEnv("MATCH_SOURCE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_SOURCE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if sourceCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("MATCH_SOURCE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	sourceCircuitHalfOpenMaxReq, err := getEnvAsInt("MATCH_SOURCE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_SOURCE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if sourceCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("MATCH_SOURCE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "match-resolution-api"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("APP_HTTP_ADDR", ":8000"),
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                 readTimeout,
		WriteTimeout:                writeTimeout,
		LogLevel:                    logLevel,
		QuorumFraction:              quorumFraction,
		TimeTolerance:               timeTolerance,
		HistoryPoolSize:             historyPoolSize,
		SourceDriver:                sourceDriver,
		SourceBaseURL:               sourceBaseURL,
		SourceAPIKey:                sourceAPIKey,
		SourceTimeout:               sourceTimeout,
		SourceMaxRetries:            sourceMaxRetries,
		SourceCircuitEnabled:        sourceCircuitEnabled,
		SourceCircuitFailureCount:   sourceCircuitFailureCount,
		SourceCircuitOpenTimeout:    sourceCircuitOpenTimeout,
		SourceCircuitHalfOpenMaxReq: sourceCircuitHalfOpenMaxReq,
		MetricsEnabled:              metricsEnabled,
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

// LoadRiotSim loads configuration for the simulated provider binary.
func LoadRiotSim() (RiotSimConfig, error) {
	logLevel, err := logging.ParseLevel(getEnv("RIOTSIM_LOG_LEVEL", "info"))
	if err != nil {
		return RiotSimConfig{}, fmt.Errorf("parse RIOTSIM_LOG_LEVEL: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("RIOTSIM_READ_TIMEOUT", "10s"))
	if err != nil {
		return RiotSimConfig{}, fmt.Errorf("parse RIOTSIM_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("RIOTSIM_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return RiotSimConfig{}, fmt.Errorf("parse RIOTSIM_WRITE_TIMEOUT: %w", err)
	}

	cfg := RiotSimConfig{
		HTTPAddr:     getEnv("RIOTSIM_HTTP_ADDR", ":8001"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		LogLevel:     logLevel,
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return RiotSimConfig{}, fmt.Errorf("RIOTSIM_HTTP_ADDR cannot be empty")
	}

	return cfg, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	DriverHenrikDev = "henrikdev"
	DriverRiotSim   = "riotsim"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseSourceDriver(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case DriverHenrikDev, DriverRiotSim:
		return value, nil
	default:
		return "", fmt.Errorf("invalid MATCH_SOURCE_DRIVER %q: valid values are %s, %s", v, DriverHenrikDev, DriverRiotSim)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}
