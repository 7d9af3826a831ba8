package extension

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/store/memory"
	"github.com/xraph/tokenledger/types"
)

const (
	ownerHex    = "0x00000000000000000000000000000000000000a1"
	treasuryHex = "0x00000000000000000000000000000000000000b2"
	shareHex    = "0x00000000000000000000000000000000000000c3"
)

const sampleYAML = `
tokenledger:
  owner: "0x00000000000000000000000000000000000000a1"
  base_uri: "https://meta.example/{id}.json"
  snapshot_granularity: day
  non_burnable: true
  persist_max_retries: 3
  persist_max_elapsed: 2s
  assets:
    - key: usd
      decimals: 18
  converters:
    - name: main
      credit: "1"
      decimals: 18
      payment_asset: usd
      treasury: "0x00000000000000000000000000000000000000b2"
      share_recipient: "0x00000000000000000000000000000000000000c3"
      share_per_million: 50000
      unlock_period: 2592000
      duration: 36
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ownerHex, cfg.Owner)
	assert.Equal(t, "day", cfg.SnapshotGranularity)
	assert.True(t, cfg.NonBurnable)
	assert.Equal(t, uint64(3), cfg.PersistMaxRetries)
	assert.Equal(t, 2*time.Second, cfg.PersistMaxElapsed)
	require.Len(t, cfg.Assets, 1)
	assert.Equal(t, "usd", cfg.Assets[0].Key)
	require.Len(t, cfg.Converters, 1)
	assert.Equal(t, uint64(50000), cfg.Converters[0].SharePerMillion)

	unwrapped, err := ParseConfig([]byte("owner: \"" + ownerHex + "\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ownerHex, unwrapped.Owner)

	_, err = ParseConfig([]byte("owner: [unterminated"))
	assert.Error(t, err)
}

func TestEngineOptionsRejectsBadValues(t *testing.T) {
	_, err := Config{Owner: "not-an-address"}.EngineOptions()
	assert.Error(t, err)

	_, err = Config{SnapshotGranularity: "hourly"}.EngineOptions()
	assert.True(t, errs.IsValidation(err))

	opts, err := DefaultConfig().EngineOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
}

func TestConverterConfig(t *testing.T) {
	base := ConverterConfig{
		Name:            "main",
		Credit:          "0x01",
		Decimals:        18,
		PaymentAsset:    "usd",
		Treasury:        treasuryHex,
		ShareRecipient:  shareHex,
		SharePerMillion: 50000,
		UnlockPeriod:    60,
		Duration:        12,
	}

	cc, err := base.Converter()
	require.NoError(t, err)
	assert.True(t, cc.Credit.Equal(types.FungibleID(1)))
	assert.Equal(t, types.HexToAddress(treasuryHex), cc.Treasury)
	assert.True(t, types.IsZero(cc.Address))
	assert.True(t, types.IsZero(cc.VestingOwner))

	tests := []struct {
		name   string
		mutate func(*ConverterConfig)
	}{
		{"missing credit", func(c *ConverterConfig) { c.Credit = "" }},
		{"bad credit", func(c *ConverterConfig) { c.Credit = "xyz" }},
		{"bad treasury", func(c *ConverterConfig) { c.Treasury = "0x12" }},
		{"missing share recipient", func(c *ConverterConfig) { c.ShareRecipient = "" }},
		{"bad vesting owner", func(c *ConverterConfig) { c.VestingOwner = "owner" }},
		{"zero duration", func(c *ConverterConfig) { c.Duration = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			_, err := c.Converter()
			assert.Error(t, err)
		})
	}
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	cfg, err := ParseConfig([]byte(sampleYAML))
	require.NoError(t, err)

	opts, err := cfg.EngineOptions()
	require.NoError(t, err)
	eng := tokenledger.New(memory.New(), opts...)
	require.NoError(t, eng.Start(ctx))
	require.NoError(t, Bootstrap(ctx, eng, cfg))

	owner := types.HexToAddress(ownerHex)
	assert.Equal(t, owner, eng.Owner())
	assert.False(t, eng.Burnable())

	_, err = eng.Asset("usd")
	require.NoError(t, err)
	c, err := eng.Converter("main")
	require.NoError(t, err)
	assert.True(t, eng.HasRole(tokenledger.MinterRole, c.Address()))
	assert.Equal(t, owner, c.Config().VestingOwner)

	// A second bootstrap collides with the registered converter.
	assert.Error(t, Bootstrap(ctx, eng, Config{Converters: cfg.Converters}))
}

func TestBootstrapRejectsBadAssetOwner(t *testing.T) {
	ctx := context.Background()
	eng := tokenledger.New(memory.New(), tokenledger.WithOwner(types.HexToAddress(ownerHex)))
	err := Bootstrap(ctx, eng, Config{Assets: []AssetConfig{{Key: "usd", Owner: "nope"}}})
	assert.Error(t, err)
	_, err = eng.Asset("usd")
	assert.Error(t, err)
}

func TestMergeConfigurations(t *testing.T) {
	file := Config{Owner: ownerHex}
	prog := Config{
		Owner:          "0x00000000000000000000000000000000000000ff",
		BaseURI:        "ipfs://{id}",
		DisableMigrate: true,
		Assets:         []AssetConfig{{Key: "usd", Decimals: 6}},
	}

	merged := mergeConfigurations(file, prog)
	assert.Equal(t, ownerHex, merged.Owner)
	assert.Equal(t, "ipfs://{id}", merged.BaseURI)
	assert.True(t, merged.DisableMigrate)
	assert.Len(t, merged.Assets, 1)
	assert.Equal(t, "exact", merged.SnapshotGranularity)
	assert.Equal(t, uint64(5), merged.PersistMaxRetries)
	assert.Equal(t, 10*time.Second, merged.PersistMaxElapsed)
}

func TestOptions(t *testing.T) {
	st := memory.New()
	e := New(
		WithStore(st),
		WithOwner(ownerHex),
		WithDisableMigrate(),
		WithPersistRetry(2, time.Second),
		WithEngineOption(tokenledger.WithBaseURI("x")),
	)

	assert.Equal(t, ownerHex, e.config.Owner)
	assert.True(t, e.config.DisableMigrate)
	assert.Equal(t, uint64(2), e.config.PersistMaxRetries)
	assert.Len(t, e.engineOpts, 1)
	assert.Same(t, st, e.store)
	assert.Nil(t, e.Engine())
	assert.Error(t, e.Start(context.Background()))
}
