package composer

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// LegKind identifies which capability a price leg exercises
type LegKind uint32

const (
	// VaultConversion marks a leg reading a share->asset conversion rate from a vault-like source
	VaultConversion LegKind = iota
	// RateProvider marks a leg reading an arbitrary-unit rate from a generic rate source
	RateProvider
	// ExternalFeed marks a leg reading an aggregator-style external price feed
	ExternalFeed
)

// String returns the human-readable leg kind name
func (kind LegKind) String() string {
	switch kind {
	case VaultConversion:
		return "vault-conversion"
	case RateProvider:
		return "rate-provider"
	case ExternalFeed:
		return "external-feed"
	}

	return fmt.Sprintf("unknown(%d)", uint32(kind))
}

// ParseLegKind parses the textual leg kind representation
func ParseLegKind(value string) (LegKind, error) {
	switch value {
	case VaultConversion.String():
		return VaultConversion, nil
	case RateProvider.String():
		return RateProvider, nil
	case ExternalFeed.String():
		return ExternalFeed, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrInvalidLegKind, value)
}

// LegSpec describes one price leg as provided by the manager when setting a feed
type LegSpec struct {
	Kind   LegKind
	Source common.Address
}

// ThresholdSpec describes the per-leg administrative override. A zero lower
// threshold disables the override for that leg regardless of the fixed price
type ThresholdSpec struct {
	LowerThresholdInBase *big.Int
	FixedPriceInBase     *big.Int
}

// legConfig is the immutable, fully-derived form of one configured leg
type legConfig struct {
	kind           LegKind
	source         common.Address
	cachedUnit     *big.Int
	cachedDecimals uint32
	shareUnit      *big.Int // vault-conversion legs only: one unit of shares
	lowerThreshold *big.Int
	fixedPrice     *big.Int
}

type legEvaluation struct {
	price  *big.Int
	isLive bool
}

// legEvaluator turns configured legs into prices normalized to the base currency unit.
// Evaluation is side-effect free: it only reads the leg's source.
type legEvaluator struct {
	resolver         SourceResolver
	baseUnit         *big.Int
	heartbeatSeconds uint64
	nowHandler       func() time.Time
}

func newLegEvaluator(resolver SourceResolver, baseUnit *big.Int, heartbeatSeconds uint64) *legEvaluator {
	return &legEvaluator{
		resolver:         resolver,
		baseUnit:         baseUnit,
		heartbeatSeconds: heartbeatSeconds,
		nowHandler:       time.Now,
	}
}

// evaluate computes the leg's normalized price and liveness fact. The threshold
// override is not applied here: it belongs strictly between normalization and
// composition.
func (evaluator *legEvaluator) evaluate(ctx context.Context, leg *legConfig, staleTimeoutSeconds uint64) (legEvaluation, error) {
	switch leg.kind {
	case VaultConversion:
		return evaluator.evaluateVaultConversion(ctx, leg)
	case RateProvider:
		return evaluator.evaluateRateProvider(ctx, leg)
	case ExternalFeed:
		return evaluator.evaluateExternalFeed(ctx, leg, staleTimeoutSeconds)
	}

	return legEvaluation{}, fmt.Errorf("%w: %s", ErrInvalidLegKind, leg.kind)
}

func (evaluator *legEvaluator) evaluateVaultConversion(ctx context.Context, leg *legConfig) (legEvaluation, error) {
	vault, err := evaluator.resolver.VaultSource(leg.source)
	if err != nil {
		return legEvaluation{}, err
	}

	assetsPerShareUnit, err := vault.ConvertToAssets(ctx, leg.shareUnit)
	if err != nil {
		return legEvaluation{}, fmt.Errorf("%w while converting shares on vault %s", err, leg.source.Hex())
	}

	price := mulDiv(assetsPerShareUnit, evaluator.baseUnit, leg.cachedUnit)

	// a paused or insolvent vault still returns a conversion rate, so the only
	// liveness fact this leg can state is that the conversion is non-zero
	return legEvaluation{
		price:  price,
		isLive: price.Sign() > 0,
	}, nil
}

func (evaluator *legEvaluator) evaluateRateProvider(ctx context.Context, leg *legConfig) (legEvaluation, error) {
	rateSource, err := evaluator.resolver.RateSource(leg.source)
	if err != nil {
		return legEvaluation{}, err
	}

	rate, err := rateSource.GetRateSafe(ctx)
	if err != nil {
		return legEvaluation{}, fmt.Errorf("%w while querying rate provider %s", err, leg.source.Hex())
	}

	return legEvaluation{
		price:  mulDiv(rate, evaluator.baseUnit, leg.cachedUnit),
		isLive: rate.Sign() > 0,
	}, nil
}

func (evaluator *legEvaluator) evaluateExternalFeed(ctx context.Context, leg *legConfig, staleTimeoutSeconds uint64) (legEvaluation, error) {
	feed, err := evaluator.resolver.FeedSource(leg.source)
	if err != nil {
		return legEvaluation{}, err
	}

	roundData, err := feed.LatestRoundData(ctx)
	if err != nil {
		return legEvaluation{}, fmt.Errorf("%w while querying feed %s", err, leg.source.Hex())
	}

	answer := roundData.Answer
	if answer == nil || answer.Sign() < 0 {
		answer = big.NewInt(0)
	}

	return legEvaluation{
		price:  mulDiv(answer, evaluator.baseUnit, leg.cachedUnit),
		isLive: answer.Sign() > 0 && evaluator.isFresh(roundData.UpdatedAt, staleTimeoutSeconds),
	}, nil
}

func (evaluator *legEvaluator) isFresh(updatedAt *big.Int, staleTimeoutSeconds uint64) bool {
	if staleTimeoutSeconds == 0 {
		return true
	}
	if updatedAt == nil || !updatedAt.IsInt64() {
		return false
	}

	elapsed := evaluator.nowHandler().Unix() - updatedAt.Int64()
	effectiveTimeout := staleTimeoutSeconds + evaluator.heartbeatSeconds

	return elapsed >= 0 && uint64(elapsed) <= effectiveTimeout
}

// applyThreshold substitutes the administrator-set fixed price once the
// normalized leg price strictly exceeds the configured trigger. Applied after
// normalization, before composition; a zero trigger disables the override.
func applyThreshold(normalizedPrice *big.Int, leg *legConfig) *big.Int {
	if leg.lowerThreshold.Sign() > 0 && normalizedPrice.Cmp(leg.lowerThreshold) > 0 {
		return leg.fixedPrice
	}

	return normalizedPrice
}
