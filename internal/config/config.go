package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Store struct {
		// Driver selects the backend: memory (default), postgres, redis or mongo.
		Driver   string `yaml:"driver"`
		Timezone string `yaml:"timezone"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Mongo struct {
		URI        string `yaml:"uri"`
		Database   string `yaml:"database"`
		Collection string `yaml:"collection"`
	} `yaml:"mongo"`
	Exams struct {
		StrictWrites   bool   `yaml:"strictWrites"`
		SearchDebounce string `yaml:"searchDebounce"`
	} `yaml:"exams"`
}

// Load reads YAML config from path. A missing file yields the empty
// configuration, which runs on the in-memory store.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Location resolves the configured time zone, defaulting to the host's.
func (c Config) Location() (*time.Location, error) {
	if c.Store.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Store.Timezone)
}

// StringOr returns value unless it is empty.
func StringOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
