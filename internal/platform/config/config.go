package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration. ParametersFile is an
// optional YAML file overriding the statutory defaults.
type Server struct {
	Addr              string
	ParametersFile    string
	DebugTraceDefault bool
	BatchLimit        int
	BatchConcurrency  int
	LogLevel          string
	ShutdownTimeout   time.Duration
	Redis             Redis
}

// Redis configures the optional amount registry. An empty URL disables it.
type Redis struct {
	URL         string
	PoolSize    int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// LookupFunc matches os.LookupEnv so tests can supply their own environment.
type LookupFunc func(key string) (string, bool)

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup LookupFunc) (Server, error) {
	cfg := Server{
		Addr:             ":8080",
		BatchLimit:       100,
		BatchConcurrency: 8,
		LogLevel:         "info",
		ShutdownTimeout:  10 * time.Second,
		Redis: Redis{
			PoolSize:    10,
			DialTimeout: 2 * time.Second,
			ReadTimeout: 500 * time.Millisecond,
		},
	}

	if v, ok := lookup("SIMTAX_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("SIMTAX_PARAMETERS_FILE"); ok {
		cfg.ParametersFile = strings.TrimSpace(v)
	}
	if v, ok := lookup("SIMTAX_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	var err error
	if cfg.DebugTraceDefault, err = envBool(lookup, "SIMTAX_DEBUG_TRACE_DEFAULT", false); err != nil {
		return Server{}, err
	}
	if cfg.BatchLimit, err = envPositiveInt(lookup, "SIMTAX_BATCH_LIMIT", cfg.BatchLimit); err != nil {
		return Server{}, err
	}
	if cfg.BatchConcurrency, err = envPositiveInt(lookup, "SIMTAX_BATCH_CONCURRENCY", cfg.BatchConcurrency); err != nil {
		return Server{}, err
	}
	if cfg.ShutdownTimeout, err = envDuration(lookup, "SIMTAX_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Server{}, err
	}

	if v, ok := lookup("SIMTAX_REDIS_URL"); ok {
		cfg.Redis.URL = strings.TrimSpace(v)
	}
	if cfg.Redis.PoolSize, err = envPositiveInt(lookup, "SIMTAX_REDIS_POOL_SIZE", cfg.Redis.PoolSize); err != nil {
		return Server{}, err
	}
	if cfg.Redis.DialTimeout, err = envDuration(lookup, "SIMTAX_REDIS_DIAL_TIMEOUT", cfg.Redis.DialTimeout); err != nil {
		return Server{}, err
	}
	if cfg.Redis.ReadTimeout, err = envDuration(lookup, "SIMTAX_REDIS_READ_TIMEOUT", cfg.Redis.ReadTimeout); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func envDuration(lookup LookupFunc, key string, def time.Duration) (time.Duration, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func envBool(lookup LookupFunc, key string, def bool) (bool, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func envPositiveInt(lookup LookupFunc, key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: must be a positive integer, got %q", key, v)
	}
	return n, nil
}
