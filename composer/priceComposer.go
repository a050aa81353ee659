package composer

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
)

// ArgsPriceComposer is the argument DTO for the NewPriceComposer function
type ArgsPriceComposer struct {
	Registry         FeedStore
	Resolver         SourceResolver
	HeartbeatSeconds uint64
}

// priceComposer composes the configured legs of an asset into one price
// expressed in the base currency unit, together with a combined liveness
// signal. The read path holds no mutable state: repeated calls with identical
// leg readings return identical results.
type priceComposer struct {
	registry  FeedStore
	evaluator *legEvaluator
}

// NewPriceComposer creates a new price composition engine on top of a feed registry
func NewPriceComposer(args ArgsPriceComposer) (*priceComposer, error) {
	err := checkArgsPriceComposer(args)
	if err != nil {
		return nil, err
	}

	return &priceComposer{
		registry:  args.Registry,
		evaluator: newLegEvaluator(args.Resolver, args.Registry.BaseUnit(), args.HeartbeatSeconds),
	}, nil
}

func checkArgsPriceComposer(args ArgsPriceComposer) error {
	if check.IfNil(args.Registry) {
		return ErrNilFeedRegistry
	}
	if check.IfNil(args.Resolver) {
		return ErrNilSourceResolver
	}

	return nil
}

// GetPriceInfo evaluates every configured leg, applies the per-leg threshold
// overrides and multiplies the results left-to-right in configuration order,
// dividing by the base unit after each step. The composed price is returned
// together with the combined liveness signal; staleness is reported as a
// value here, never as an error, so batch consumers can decide per-asset
// policy without one dead feed short-circuiting the whole batch.
func (composer *priceComposer) GetPriceInfo(ctx context.Context, asset common.Address) (PriceInfo, error) {
	config, staleTimeoutSeconds := composer.registry.feedConfigFor(asset)
	if config == nil {
		return PriceInfo{}, fmt.Errorf("%w: %s", ErrFeedNotSet, asset.Hex())
	}

	var price *big.Int
	isAlive := true
	for _, leg := range config.legs {
		evaluation, err := composer.evaluator.evaluate(ctx, leg, staleTimeoutSeconds)
		if err != nil {
			return PriceInfo{}, err
		}

		legPrice := applyThreshold(evaluation.price, leg)
		if price == nil {
			price = legPrice
		} else {
			price = mulDiv(price, legPrice, composer.registry.BaseUnit())
		}

		isAlive = isAlive && evaluation.isLive
	}

	return PriceInfo{
		Price:   price,
		IsAlive: isAlive && price.Sign() > 0,
	}, nil
}

// GetAssetPrice returns the composed price, failing outright when the
// combined liveness signal is false. Solvency-critical callers use this
// entry point: a silent fallback to a guessed price is explicitly rejected.
func (composer *priceComposer) GetAssetPrice(ctx context.Context, asset common.Address) (*big.Int, error) {
	info, err := composer.GetPriceInfo(ctx, asset)
	if err != nil {
		return nil, err
	}
	if !info.IsAlive {
		return nil, fmt.Errorf("%w: %s", ErrPriceIsStale, asset.Hex())
	}

	return info.Price, nil
}

// IsInterfaceNil returns true if there is no value under the interface
func (composer *priceComposer) IsInterfaceNil() bool {
	return composer == nil
}
