// Package config loads CLI settings from an optional .env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDB          = "SCOPEGRAPH_DB"
	EnvFormat      = "SCOPEGRAPH_FORMAT"
	EnvIncremental = "SCOPEGRAPH_INCREMENTAL"
	EnvVerbose     = "SCOPEGRAPH_VERBOSE"
)

// Defaults.
const (
	DefaultDBPath = ".scopegraph.db"
	DefaultFormat = "text"
)

// Config holds the settings shared by every scopegraph command. Flags the
// user sets explicitly override these values.
type Config struct {
	DBPath      string
	Format      string
	Incremental bool
	Verbose     bool
}

// Load builds a Config. Values from envFile fill in anything lookup does
// not provide, so the process environment always wins. A missing envFile
// is not an error. lookup is usually os.LookupEnv.
func Load(envFile string, lookup func(string) (string, bool)) (*Config, error) {
	file := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", envFile, err)
		default:
			file = vals
		}
	}

	get := func(key string) string {
		if v, ok := lookup(key); ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(file[key])
	}

	cfg := &Config{
		DBPath: firstNonEmpty(get(EnvDB), DefaultDBPath),
		Format: strings.ToLower(firstNonEmpty(get(EnvFormat), DefaultFormat)),
	}
	var err error
	if cfg.Incremental, err = parseBool(EnvIncremental, get(EnvIncremental)); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = parseBool(EnvVerbose, get(EnvVerbose)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseBool(key, raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
