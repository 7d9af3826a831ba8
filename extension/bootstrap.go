package extension

import (
	"context"
	"fmt"

	"github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/types"
)

// Bootstrap issues the configured assets and adds the configured converters,
// acting as the engine owner. Assets come first so converters can reference
// them as payment assets.
func Bootstrap(ctx context.Context, eng *tokenledger.Engine, cfg Config) error {
	owner := eng.Owner()

	for _, a := range cfg.Assets {
		assetOwner := owner
		if a.Owner != "" {
			addr, err := types.ParseAddress(a.Owner)
			if err != nil {
				return fmt.Errorf("tokenledger: asset %s owner: %w", a.Key, err)
			}
			assetOwner = addr
		}
		if _, err := eng.IssueToken(ctx, assetOwner, a.Key, a.Decimals); err != nil {
			return fmt.Errorf("tokenledger: issue asset %s: %w", a.Key, err)
		}
	}

	for _, c := range cfg.Converters {
		cc, err := c.Converter()
		if err != nil {
			return err
		}
		if _, err := eng.AddConverter(ctx, owner, cc); err != nil {
			return fmt.Errorf("tokenledger: add converter %s: %w", c.Name, err)
		}
	}

	return nil
}
