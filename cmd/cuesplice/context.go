package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cuesplice/internal/config"
	"cuesplice/internal/logging"
	"cuesplice/internal/pipeline"
	"cuesplice/internal/registry"
	"cuesplice/internal/services"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	store *registry.Store
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

// JSONMode reports whether --json was given.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", path, err)
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrIO, "config", "ensure directories", resolved, err)
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// loggerFor returns the process logger. Commands run before the config is
// loaded get a console logger with defaults.
func (c *commandContext) loggerFor() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.config)
		if err != nil {
			logger, _ = logging.NewFromConfig(nil)
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) registry() (*registry.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := registry.Open(cfg)
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

// pipeline builds a pipeline with the registry attached when it opens.
func (c *commandContext) pipeline() (*pipeline.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var opts []pipeline.Option
	if store, err := c.registry(); err == nil {
		opts = append(opts, pipeline.WithRegistry(store))
	} else {
		logging.WarnEvent(c.loggerFor(), "run history unavailable", "registry_unavailable", logging.Error(err))
	}
	return pipeline.New(cfg, c.loggerFor(), opts...), nil
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
