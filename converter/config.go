package converter

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/types"
)

// Million is the denominator of SharePerMillion.
const Million = 1_000_000

// Config describes one converter.
type Config struct {
	// Name identifies the converter within an engine.
	Name string `json:"name" mapstructure:"name" yaml:"name"`

	// Address is the converter's account. Zero derives one from Name.
	Address types.Address `json:"address" mapstructure:"address" yaml:"address"`

	// Credit is the fungible ledger id minted on conversion.
	Credit types.TokenID `json:"credit" mapstructure:"credit" yaml:"credit"`

	// Decimals of the credit token.
	Decimals uint8 `json:"decimals" mapstructure:"decimals" yaml:"decimals"`

	// PaymentAsset is the key of the asset accepted as payment.
	PaymentAsset string `json:"payment_asset" mapstructure:"payment_asset" yaml:"payment_asset"`

	// Treasury receives every payment.
	Treasury types.Address `json:"treasury" mapstructure:"treasury" yaml:"treasury"`

	// ShareRecipient receives the fee share, directly or through vesting.
	ShareRecipient types.Address `json:"share_recipient" mapstructure:"share_recipient" yaml:"share_recipient"`

	// SharePerMillion is the fee share of each payment, at most Million.
	SharePerMillion uint64 `json:"share_per_million" mapstructure:"share_per_million" yaml:"share_per_million"`

	// UnlockPeriod of share vesting schedules, in seconds.
	UnlockPeriod uint64 `json:"unlock_period" mapstructure:"unlock_period" yaml:"unlock_period"`

	// Duration of share vesting schedules, in periods.
	Duration uint64 `json:"duration" mapstructure:"duration" yaml:"duration"`

	// VestingOwner receives authority over share vesting schedules. Zero
	// leaves the converter in charge.
	VestingOwner types.Address `json:"vesting_owner" mapstructure:"vesting_owner" yaml:"vesting_owner"`
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Name == "" {
		return errs.Invalid("name", "is required")
	}
	if c.Credit.IsNonFungible() {
		return errs.Invalid("credit", "%s is not fungible", c.Credit)
	}
	if c.PaymentAsset == "" {
		return errs.Invalid("payment_asset", "is required")
	}
	if types.IsZero(c.Treasury) {
		return errs.Invalid("treasury", "must not be the zero address")
	}
	if types.IsZero(c.ShareRecipient) {
		return errs.Invalid("share_recipient", "must not be the zero address")
	}
	if c.SharePerMillion > Million {
		return errs.Invalid("share_per_million", "must not exceed %d", Million)
	}
	if c.UnlockPeriod == 0 {
		return errs.Invalid("unlock_period", "must be positive")
	}
	if c.Duration == 0 {
		return errs.Invalid("duration", "must be positive")
	}
	return nil
}

// DeriveAddress returns the default account of a converter named name.
func DeriveAddress(name string) types.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("tokenledger.converter:" + name))[12:])
}
