package extension

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/plugin"
	"github.com/xraph/tokenledger/store"
	mongostore "github.com/xraph/tokenledger/store/mongo"
	pgstore "github.com/xraph/tokenledger/store/postgres"
	sqlitestore "github.com/xraph/tokenledger/store/sqlite"
)

// Option configures the tokenledger Forge extension.
type Option func(*Extension)

// WithStore sets the store for the engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithPostgres backs the engine with a grove PostgreSQL database.
func WithPostgres(db *grove.DB) Option {
	return func(e *Extension) { e.store = pgstore.New(db) }
}

// WithSQLite backs the engine with a grove SQLite database.
func WithSQLite(db *grove.DB) Option {
	return func(e *Extension) { e.store = sqlitestore.New(db) }
}

// WithMongo backs the engine with a grove MongoDB database.
func WithMongo(db *grove.DB) Option {
	return func(e *Extension) { e.store = mongostore.New(db) }
}

// WithEngineOption passes a tokenledger.Option through to the engine.
// Pass-through options are applied after config-derived ones.
func WithEngineOption(opt tokenledger.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers an engine plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, tokenledger.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithOwner sets the hex address of the administrative owner.
func WithOwner(addr string) Option {
	return func(e *Extension) { e.config.Owner = addr }
}

// WithPersistRetry bounds store retries per transaction.
func WithPersistRetry(maxRetries uint64, maxElapsed time.Duration) Option {
	return func(e *Extension) {
		e.config.PersistMaxRetries = maxRetries
		e.config.PersistMaxElapsed = maxElapsed
	}
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
