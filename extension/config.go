package extension

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/converter"
	"github.com/xraph/tokenledger/snapshot"
	"github.com/xraph/tokenledger/types"
)

// Config holds the tokenledger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.tokenledger" or "tokenledger" keys).
// Addresses and token ids are strings so every config decoder handles them.
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Owner is the hex address that holds the admin role.
	Owner string `json:"owner" mapstructure:"owner" yaml:"owner"`

	// NonBurnable disables Burn, BurnBatch and SetBurnApproval.
	NonBurnable bool `json:"non_burnable" mapstructure:"non_burnable" yaml:"non_burnable"`

	// BaseURI is the metadata URI template; "{id}" is replaced per token.
	BaseURI string `json:"base_uri" mapstructure:"base_uri" yaml:"base_uri"`

	// SnapshotGranularity is "exact" (default) or "day".
	SnapshotGranularity string `json:"snapshot_granularity" mapstructure:"snapshot_granularity" yaml:"snapshot_granularity"`

	// PersistMaxRetries bounds store retries per transaction (default: 5).
	PersistMaxRetries uint64 `json:"persist_max_retries" mapstructure:"persist_max_retries" yaml:"persist_max_retries"`

	// PersistMaxElapsed bounds the total retry time per transaction (default: 10s).
	PersistMaxElapsed time.Duration `json:"persist_max_elapsed" mapstructure:"persist_max_elapsed" yaml:"persist_max_elapsed"`

	// Assets are payment tokens issued on start.
	Assets []AssetConfig `json:"assets" mapstructure:"assets" yaml:"assets"`

	// Converters are added on start, after Assets.
	Converters []ConverterConfig `json:"converters" mapstructure:"converters" yaml:"converters"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// AssetConfig describes a payment token issued by the engine.
type AssetConfig struct {
	Key      string `json:"key" mapstructure:"key" yaml:"key"`
	Decimals uint8  `json:"decimals" mapstructure:"decimals" yaml:"decimals"`
	// Owner controls minting. Empty means the engine owner.
	Owner string `json:"owner" mapstructure:"owner" yaml:"owner"`
}

// ConverterConfig is the file form of converter.Config.
type ConverterConfig struct {
	Name            string `json:"name" mapstructure:"name" yaml:"name"`
	Address         string `json:"address" mapstructure:"address" yaml:"address"`
	Credit          string `json:"credit" mapstructure:"credit" yaml:"credit"`
	Decimals        uint8  `json:"decimals" mapstructure:"decimals" yaml:"decimals"`
	PaymentAsset    string `json:"payment_asset" mapstructure:"payment_asset" yaml:"payment_asset"`
	Treasury        string `json:"treasury" mapstructure:"treasury" yaml:"treasury"`
	ShareRecipient  string `json:"share_recipient" mapstructure:"share_recipient" yaml:"share_recipient"`
	SharePerMillion uint64 `json:"share_per_million" mapstructure:"share_per_million" yaml:"share_per_million"`
	UnlockPeriod    uint64 `json:"unlock_period" mapstructure:"unlock_period" yaml:"unlock_period"`
	Duration        uint64 `json:"duration" mapstructure:"duration" yaml:"duration"`
	VestingOwner    string `json:"vesting_owner" mapstructure:"vesting_owner" yaml:"vesting_owner"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SnapshotGranularity: "exact",
		PersistMaxRetries:   5,
		PersistMaxElapsed:   10 * time.Second,
	}
}

// ParseConfig decodes a YAML document. A top-level "tokenledger" key is
// unwrapped when present.
func ParseConfig(data []byte) (Config, error) {
	var wrapped struct {
		TokenLedger *Config `yaml:"tokenledger"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return Config{}, fmt.Errorf("tokenledger: parse config: %w", err)
	}
	if wrapped.TokenLedger != nil {
		return *wrapped.TokenLedger, nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("tokenledger: parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("tokenledger: read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// EngineOptions converts the config into engine options.
func (c Config) EngineOptions() ([]tokenledger.Option, error) {
	opts := make([]tokenledger.Option, 0, 6)

	if c.Owner != "" {
		owner, err := types.ParseAddress(c.Owner)
		if err != nil {
			return nil, fmt.Errorf("tokenledger: config owner: %w", err)
		}
		opts = append(opts, tokenledger.WithOwner(owner))
	}
	if c.BaseURI != "" {
		opts = append(opts, tokenledger.WithBaseURI(c.BaseURI))
	}
	g, err := snapshot.ParseGranularity(c.SnapshotGranularity)
	if err != nil {
		return nil, fmt.Errorf("tokenledger: config snapshot_granularity: %w", err)
	}
	if c.NonBurnable {
		opts = append(opts, tokenledger.WithBurnable(false))
	}
	opts = append(opts,
		tokenledger.WithSnapshotGranularity(g),
		tokenledger.WithAutoMigrate(!c.DisableMigrate),
	)
	if c.PersistMaxRetries > 0 || c.PersistMaxElapsed > 0 {
		d := DefaultConfig()
		retries, elapsed := c.PersistMaxRetries, c.PersistMaxElapsed
		if retries == 0 {
			retries = d.PersistMaxRetries
		}
		if elapsed == 0 {
			elapsed = d.PersistMaxElapsed
		}
		opts = append(opts, tokenledger.WithPersistRetry(retries, elapsed))
	}
	return opts, nil
}

// Converter converts the file form into a converter.Config.
func (c ConverterConfig) Converter() (converter.Config, error) {
	out := converter.Config{
		Name:            c.Name,
		Decimals:        c.Decimals,
		PaymentAsset:    c.PaymentAsset,
		SharePerMillion: c.SharePerMillion,
		UnlockPeriod:    c.UnlockPeriod,
		Duration:        c.Duration,
	}
	if c.Credit == "" {
		return out, errors.New("tokenledger: converter " + c.Name + ": credit is required")
	}
	credit, err := types.ParseTokenID(c.Credit)
	if err != nil {
		return out, fmt.Errorf("tokenledger: converter %s: %w", c.Name, err)
	}
	out.Credit = credit

	fields := []struct {
		name string
		in   string
		dst  *types.Address
		opt  bool
	}{
		{"address", c.Address, &out.Address, true},
		{"treasury", c.Treasury, &out.Treasury, false},
		{"share_recipient", c.ShareRecipient, &out.ShareRecipient, false},
		{"vesting_owner", c.VestingOwner, &out.VestingOwner, true},
	}
	for _, f := range fields {
		if f.in == "" && f.opt {
			continue
		}
		addr, err := types.ParseAddress(f.in)
		if err != nil {
			return out, fmt.Errorf("tokenledger: converter %s %s: %w", c.Name, f.name, err)
		}
		*f.dst = addr
	}
	return out, out.Validate()
}
