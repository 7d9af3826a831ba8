// Package extension provides the Forge extension adapter for tokenledger.
//
// It implements the forge.Extension interface to integrate the token
// ledger engine into a Forge application with DI registration and
// lifecycle management. On start it issues configured payment assets and
// installs configured mint converters.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.tokenledger" or
// "tokenledger" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/store"
	"github.com/xraph/tokenledger/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "tokenledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Multi-token ledger with vesting and mint conversion"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the tokenledger engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *tokenledger.Engine
	store      store.Store
	engineOpts []tokenledger.Option
}

// New creates a new tokenledger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying engine.
// This is nil until Register is called.
func (e *Extension) Engine() *tokenledger.Engine { return e.engine }

// Config returns the resolved configuration.
func (e *Extension) Config() Config { return e.config }

// Register implements [forge.Extension]. It loads configuration,
// builds the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		e.store = memory.New()
	}

	opts, err := e.buildEngineOpts()
	if err != nil {
		return err
	}

	e.engine = tokenledger.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*tokenledger.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("tokenledger: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}
	if err := Bootstrap(ctx, e.engine, e.config); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(ctx context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(ctx); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("tokenledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs engine options from the resolved config,
// followed by pass-through options.
func (e *Extension) buildEngineOpts() ([]tokenledger.Option, error) {
	opts, err := e.config.EngineOptions()
	if err != nil {
		return nil, err
	}
	return append(opts, e.engineOpts...), nil
}

// ──────────────────────────────────────────────────
// Config loading
// ──────────────────────────────────────────────────

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("tokenledger: configuration is required but not found in config files; " +
				"ensure 'extensions.tokenledger' or 'tokenledger' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("tokenledger: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("owner", e.config.Owner),
		forge.F("snapshot_granularity", e.config.SnapshotGranularity),
		forge.F("persist_max_retries", e.config.PersistMaxRetries),
		forge.F("assets", len(e.config.Assets)),
		forge.F("converters", len(e.config.Converters)),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.tokenledger", "tokenledger"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("tokenledger: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("tokenledger: loaded config from file", forge.F("key", key))
		return cfg, true
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.SnapshotGranularity == "" {
		cfg.SnapshotGranularity = defaults.SnapshotGranularity
	}
	if cfg.PersistMaxRetries == 0 {
		cfg.PersistMaxRetries = defaults.PersistMaxRetries
	}
	if cfg.PersistMaxElapsed == 0 {
		cfg.PersistMaxElapsed = defaults.PersistMaxElapsed
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML takes precedence; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.NonBurnable {
		yamlConfig.NonBurnable = true
	}

	if yamlConfig.Owner == "" {
		yamlConfig.Owner = programmaticConfig.Owner
	}
	if yamlConfig.BaseURI == "" {
		yamlConfig.BaseURI = programmaticConfig.BaseURI
	}
	if yamlConfig.SnapshotGranularity == "" {
		yamlConfig.SnapshotGranularity = programmaticConfig.SnapshotGranularity
	}
	if yamlConfig.PersistMaxRetries == 0 {
		yamlConfig.PersistMaxRetries = programmaticConfig.PersistMaxRetries
	}
	if yamlConfig.PersistMaxElapsed == 0 {
		yamlConfig.PersistMaxElapsed = programmaticConfig.PersistMaxElapsed
	}
	if len(yamlConfig.Assets) == 0 {
		yamlConfig.Assets = programmaticConfig.Assets
	}
	if len(yamlConfig.Converters) == 0 {
		yamlConfig.Converters = programmaticConfig.Converters
	}

	return mergeWithDefaults(yamlConfig)
}
