// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package config loads resolver and registry settings from a YAML file,
// a .env file and process environment variables, in that order of
// precedence (later sources override earlier ones), and constructs the
// configured Registry and Resolver.
package config

import (
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"codeberg.org/lokal/textdomain"
	"codeberg.org/lokal/textdomain/langselect"
)

// Domain describes one text domain to register at startup.
type Domain struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Charset string `yaml:"charset"`
}

// Config holds every tunable of the translation stack.
type Config struct {
	Output struct {
		Charset string `env:"TEXTDOMAIN_OUTPUT_CHARSET,overwrite" yaml:"charset"`
	} `yaml:"output"`

	Cache struct {
		Enabled  bool `env:"TEXTDOMAIN_CACHE,overwrite" yaml:"enabled"`
		Size     int  `env:"TEXTDOMAIN_CACHE_SIZE,overwrite" yaml:"size"`
		Compress bool `env:"TEXTDOMAIN_CACHE_COMPRESS,overwrite" yaml:"compress"`
	} `yaml:"cache"`

	// Languages overrides the process-environment language selection with a
	// fixed preference list.
	Languages []string `env:"TEXTDOMAIN_LANGUAGES,overwrite" yaml:"languages"`

	Debug bool `env:"TEXTDOMAIN_DEBUG" yaml:"debug"`

	Log struct {
		Level  string `env:"TEXTDOMAIN_LOG_LEVEL,overwrite" yaml:"level"`
		Format string `env:"TEXTDOMAIN_LOG_FORMAT,overwrite" yaml:"format"`
	} `yaml:"log"`

	Domains []Domain `yaml:"domains"`
}

// SetDefaults populates the configuration with default values.
func (cfg *Config) SetDefaults() {
	cfg.Cache.Enabled = true
	cfg.Cache.Size = textdomain.DefaultCacheSize
	cfg.Cache.Compress = false

	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
}

// Load fills cfg from the YAML file at configFilePath (skipped when empty
// or absent), then a .env file, then environment variables.
func (cfg *Config) Load(configFilePath string) error {
	cfg.SetDefaults()

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	cfg.setupLogging()

	return nil
}

// NewRegistry builds a Registry per cfg and registers every configured
// domain, loading their catalogs concurrently. The first load failure
// aborts and is returned.
func (cfg *Config) NewRegistry() (*textdomain.Registry, error) {
	opts := []textdomain.Option{
		textdomain.WithCaching(cfg.Cache.Enabled),
	}
	if cfg.Output.Charset != "" {
		opts = append(opts, textdomain.WithOutputCharset(cfg.Output.Charset))
	}

	reg := textdomain.New(opts...)

	var g errgroup.Group

	for _, d := range cfg.Domains {
		d := d

		g.Go(func() error {
			binds := []textdomain.BindOption{textdomain.WithPath(d.Path)}
			if d.Charset != "" {
				binds = append(binds, textdomain.WithCharset(d.Charset))
			}

			_, err := reg.BindDomain(d.Name, binds...)

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reg, nil
}

// NewResolver builds a Resolver over reg per cfg. A non-empty Languages
// list replaces the environment-based candidate provider.
func (cfg *Config) NewResolver(reg *textdomain.Registry) (*textdomain.Resolver, error) {
	opts := []textdomain.ResolverOption{
		textdomain.WithDebug(cfg.Debug),
		textdomain.WithCacheCompression(cfg.Cache.Compress),
	}

	if cfg.Cache.Size > 0 {
		opts = append(opts, textdomain.WithCacheSize(cfg.Cache.Size))
	}

	if len(cfg.Languages) > 0 {
		opts = append(opts, textdomain.WithProvider(langselect.Static(cfg.Languages)))
	}

	return textdomain.NewResolver(reg, opts...)
}

// ConfigFilePath resolves the config file location: the TEXTDOMAIN_CONFIGFILE
// environment variable when set, otherwise "./textdomain.yaml" with a
// fallback check for "./textdomain.yml".
func ConfigFilePath() string {
	if envVar := os.Getenv("TEXTDOMAIN_CONFIGFILE"); envVar != "" {
		return envVar
	}

	path := "./textdomain.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		ymlPath := "./textdomain.yml"
		if _, statErr := os.Stat(ymlPath); statErr == nil {
			return ymlPath
		}
	}

	return path
}
