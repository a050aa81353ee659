package composer

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("klv-composite-oracle-go/composer")

const minLegs = 2
const maxLegs = 3
const maxStaleTimeoutSeconds = uint64(30 * 24 * 60 * 60)

// FeedStore is the read surface the composition engine needs from the registry
type FeedStore interface {
	BaseUnit() *big.Int
	Assets() []common.Address
	IsInterfaceNil() bool

	feedConfigFor(asset common.Address) (*feedConfig, uint64)
}

// feedConfig is the immutable configuration of one priced asset. A stored
// instance is never mutated: updates build a complete replacement and swap it,
// so concurrent readers can never observe a torn configuration.
type feedConfig struct {
	legs                []*legConfig
	staleTimeoutSeconds *uint64 // nil means "use the registry global"
}

// ArgsFeedRegistry is the argument DTO for the NewFeedRegistry function
type ArgsFeedRegistry struct {
	Resolver            SourceResolver
	Authorizer          Authorizer
	Notifee             ConfigNotifee
	BaseDecimals        uint32
	StaleTimeoutSeconds uint64
}

// ArgsSetFeed describes one complete feed configuration request
type ArgsSetFeed struct {
	Asset               common.Address
	Legs                []LegSpec
	Thresholds          []ThresholdSpec
	StaleTimeoutSeconds *uint64
}

// ArgsUpdateFeed describes a threshold re-configuration request. Leg source
// addresses never change through an update: re-pointing a leg requires an
// explicit remove followed by a fresh set
type ArgsUpdateFeed struct {
	Asset      common.Address
	Thresholds []ThresholdSpec
}

type feedRegistry struct {
	resolver     SourceResolver
	authorizer   Authorizer
	notifee      ConfigNotifee
	baseUnit     *big.Int
	baseDecimals uint32

	mutConfigs          sync.RWMutex
	configs             map[common.Address]*feedConfig
	staleTimeoutSeconds uint64

	mutAssetLocks sync.Mutex
	assetLocks    map[common.Address]*sync.Mutex
}

// NewFeedRegistry creates a new feed configuration store with its manager-gated admin API
func NewFeedRegistry(args ArgsFeedRegistry) (*feedRegistry, error) {
	err := checkArgsFeedRegistry(args)
	if err != nil {
		return nil, err
	}

	return &feedRegistry{
		resolver:            args.Resolver,
		authorizer:          args.Authorizer,
		notifee:             args.Notifee,
		baseUnit:            pow10(args.BaseDecimals),
		baseDecimals:        args.BaseDecimals,
		configs:             make(map[common.Address]*feedConfig),
		staleTimeoutSeconds: args.StaleTimeoutSeconds,
		assetLocks:          make(map[common.Address]*sync.Mutex),
	}, nil
}

func checkArgsFeedRegistry(args ArgsFeedRegistry) error {
	if check.IfNil(args.Resolver) {
		return ErrNilSourceResolver
	}
	if check.IfNil(args.Authorizer) {
		return ErrNilAuthorizer
	}
	if check.IfNil(args.Notifee) {
		return ErrNilConfigNotifee
	}
	if !isValidDecimals(args.BaseDecimals) {
		return fmt.Errorf("%w: %d", ErrInvalidBaseDecimals, args.BaseDecimals)
	}
	if args.StaleTimeoutSeconds > maxStaleTimeoutSeconds {
		return fmt.Errorf("%w: %d, maximum %d", ErrInvalidStaleTimeout, args.StaleTimeoutSeconds, maxStaleTimeoutSeconds)
	}

	return nil
}

// assetLock returns the mutex serializing mutations on the provided asset.
// Mutations on different assets proceed independently. Entries are kept even
// after a feed is removed: dropping one while a waiter still holds its pointer
// would let a later mutation mint a second mutex for the same asset, and the
// universe of managed assets is small enough that retention costs nothing.
func (registry *feedRegistry) assetLock(asset common.Address) *sync.Mutex {
	registry.mutAssetLocks.Lock()
	defer registry.mutAssetLocks.Unlock()

	lock, found := registry.assetLocks[asset]
	if !found {
		lock = &sync.Mutex{}
		registry.assetLocks[asset] = lock
	}

	return lock
}

// SetFeed validates and stores a complete feed configuration for an asset that
// has none. Every leg source is probed at configuration time: a feed that
// cannot currently report a usable value is rejected outright instead of being
// silently accepted and discovered dead at query time. Nothing is stored on
// any validation failure.
func (registry *feedRegistry) SetFeed(ctx context.Context, capability AuthToken, args ArgsSetFeed) error {
	err := registry.authorizer.Authorize(capability)
	if err != nil {
		return err
	}

	err = checkLegSpecs(args.Legs, args.Thresholds)
	if err != nil {
		return err
	}
	if args.StaleTimeoutSeconds != nil && *args.StaleTimeoutSeconds > maxStaleTimeoutSeconds {
		return fmt.Errorf("%w: %d, maximum %d", ErrInvalidStaleTimeout, *args.StaleTimeoutSeconds, maxStaleTimeoutSeconds)
	}

	lock := registry.assetLock(args.Asset)
	lock.Lock()
	defer lock.Unlock()

	if registry.getConfig(args.Asset) != nil {
		return fmt.Errorf("%w: %s", ErrFeedAlreadySet, args.Asset.Hex())
	}

	legs := make([]*legConfig, 0, len(args.Legs))
	for index, spec := range args.Legs {
		leg, errDerive := registry.deriveLeg(ctx, args.Asset, spec, args.Thresholds[index])
		if errDerive != nil {
			return fmt.Errorf("%w, leg index %d", errDerive, index)
		}

		legs = append(legs, leg)
	}

	registry.putConfig(args.Asset, &feedConfig{
		legs:                legs,
		staleTimeoutSeconds: args.StaleTimeoutSeconds,
	})

	log.Debug("feed set", "asset", args.Asset.Hex(), "num legs", len(legs))
	registry.notifee.FeedSet(newArgsFeedChanged(args.Asset, legs, args.StaleTimeoutSeconds))

	return nil
}

// UpdateFeed re-derives each leg's cached unit from the source's current
// decimals and replaces the per-leg thresholds. A feed whose reported decimals
// drifted since setup fails the update: the drift is a deliberate tripwire
// forcing an explicit re-setup instead of a silent re-scale.
func (registry *feedRegistry) UpdateFeed(ctx context.Context, capability AuthToken, args ArgsUpdateFeed) error {
	err := registry.authorizer.Authorize(capability)
	if err != nil {
		return err
	}

	lock := registry.assetLock(args.Asset)
	lock.Lock()
	defer lock.Unlock()

	existing := registry.getConfig(args.Asset)
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrFeedNotSet, args.Asset.Hex())
	}
	if len(args.Thresholds) != len(existing.legs) {
		return fmt.Errorf("%w, expected %d, got %d", ErrMismatchThresholdsLen, len(existing.legs), len(args.Thresholds))
	}
	err = checkThresholdSpecs(args.Thresholds)
	if err != nil {
		return err
	}

	legs := make([]*legConfig, 0, len(existing.legs))
	for index, oldLeg := range existing.legs {
		spec := LegSpec{Kind: oldLeg.kind, Source: oldLeg.source}

		leg, errDerive := registry.deriveLeg(ctx, args.Asset, spec, args.Thresholds[index])
		if errDerive != nil {
			return fmt.Errorf("%w, leg index %d", errDerive, index)
		}
		if leg.kind == ExternalFeed && leg.cachedDecimals != oldLeg.cachedDecimals {
			return fmt.Errorf("%w, leg index %d, setup %d, current %d",
				ErrFeedDecimalsChanged, index, oldLeg.cachedDecimals, leg.cachedDecimals)
		}

		legs = append(legs, leg)
	}

	registry.putConfig(args.Asset, &feedConfig{
		legs:                legs,
		staleTimeoutSeconds: existing.staleTimeoutSeconds,
	})

	log.Debug("feed updated", "asset", args.Asset.Hex(), "num legs", len(legs))
	registry.notifee.FeedUpdated(newArgsFeedChanged(args.Asset, legs, existing.staleTimeoutSeconds))

	return nil
}

// RemoveFeed deletes the asset's configuration. Removing an asset that has no
// configuration is a no-op, so the call is idempotent.
func (registry *feedRegistry) RemoveFeed(capability AuthToken, asset common.Address) error {
	err := registry.authorizer.Authorize(capability)
	if err != nil {
		return err
	}

	lock := registry.assetLock(asset)
	lock.Lock()
	defer lock.Unlock()

	registry.mutConfigs.Lock()
	_, existed := registry.configs[asset]
	delete(registry.configs, asset)
	registry.mutConfigs.Unlock()

	if existed {
		log.Debug("feed removed", "asset", asset.Hex())
		registry.notifee.FeedRemoved(asset)
	}

	return nil
}

// SetStaleTimeout replaces the registry-global staleness timeout. Zero
// disables staleness checking entirely: an explicit, auditable opt-out.
func (registry *feedRegistry) SetStaleTimeout(capability AuthToken, seconds uint64) error {
	err := registry.authorizer.Authorize(capability)
	if err != nil {
		return err
	}
	if seconds > maxStaleTimeoutSeconds {
		return fmt.Errorf("%w: %d, maximum %d", ErrInvalidStaleTimeout, seconds, maxStaleTimeoutSeconds)
	}

	registry.mutConfigs.Lock()
	oldSeconds := registry.staleTimeoutSeconds
	registry.staleTimeoutSeconds = seconds
	registry.mutConfigs.Unlock()

	log.Debug("stale timeout changed", "old", oldSeconds, "new", seconds)
	registry.notifee.StaleTimeoutChanged(ArgsStaleTimeoutChanged{
		OldTimeoutSeconds: oldSeconds,
		NewTimeoutSeconds: seconds,
	})

	return nil
}

// StaleTimeout returns the registry-global staleness timeout in seconds
func (registry *feedRegistry) StaleTimeout() uint64 {
	registry.mutConfigs.RLock()
	defer registry.mutConfigs.RUnlock()

	return registry.staleTimeoutSeconds
}

// Assets returns the addresses of all configured assets
func (registry *feedRegistry) Assets() []common.Address {
	registry.mutConfigs.RLock()
	defer registry.mutConfigs.RUnlock()

	assets := make([]common.Address, 0, len(registry.configs))
	for asset := range registry.configs {
		assets = append(assets, asset)
	}

	return assets
}

// BaseUnit returns the fixed-point unit all leg prices are normalized into
func (registry *feedRegistry) BaseUnit() *big.Int {
	return registry.baseUnit
}

// feedConfigFor returns the asset's configuration snapshot together with its
// effective staleness timeout, or nil if the asset is unconfigured
func (registry *feedRegistry) feedConfigFor(asset common.Address) (*feedConfig, uint64) {
	registry.mutConfigs.RLock()
	defer registry.mutConfigs.RUnlock()

	config := registry.configs[asset]
	if config == nil {
		return nil, 0
	}

	timeout := registry.staleTimeoutSeconds
	if config.staleTimeoutSeconds != nil {
		timeout = *config.staleTimeoutSeconds
	}

	return config, timeout
}

func (registry *feedRegistry) getConfig(asset common.Address) *feedConfig {
	registry.mutConfigs.RLock()
	defer registry.mutConfigs.RUnlock()

	return registry.configs[asset]
}

func (registry *feedRegistry) putConfig(asset common.Address, config *feedConfig) {
	registry.mutConfigs.Lock()
	registry.configs[asset] = config
	registry.mutConfigs.Unlock()
}

func (registry *feedRegistry) deriveLeg(ctx context.Context, asset common.Address, spec LegSpec, threshold ThresholdSpec) (*legConfig, error) {
	leg := &legConfig{
		kind:           spec.Kind,
		source:         spec.Source,
		lowerThreshold: big.NewInt(0).Set(threshold.LowerThresholdInBase),
		fixedPrice:     big.NewInt(0).Set(threshold.FixedPriceInBase),
	}

	switch spec.Kind {
	case VaultConversion:
		return registry.deriveVaultLeg(ctx, leg)
	case RateProvider:
		return registry.deriveRateProviderLeg(ctx, asset, leg)
	case ExternalFeed:
		return registry.deriveExternalFeedLeg(ctx, leg)
	}

	return nil, fmt.Errorf("%w: %d", ErrInvalidLegKind, uint32(spec.Kind))
}

func (registry *feedRegistry) deriveVaultLeg(ctx context.Context, leg *legConfig) (*legConfig, error) {
	vault, err := registry.resolver.VaultSource(leg.source)
	if err != nil {
		return nil, err
	}

	shareDecimals, err := vault.Decimals(ctx)
	if err != nil {
		return nil, err
	}
	if !isValidDecimals(shareDecimals) {
		return nil, fmt.Errorf("%w: share decimals %d", ErrInvalidUnit, shareDecimals)
	}

	underlying, err := vault.Asset(ctx)
	if err != nil {
		return nil, err
	}

	underlyingToken, err := registry.resolver.TokenSource(underlying)
	if err != nil {
		return nil, err
	}

	underlyingDecimals, err := underlyingToken.Decimals(ctx)
	if err != nil {
		return nil, err
	}
	if !isValidDecimals(underlyingDecimals) {
		return nil, fmt.Errorf("%w: underlying decimals %d", ErrInvalidUnit, underlyingDecimals)
	}

	leg.cachedUnit = pow10(underlyingDecimals)
	leg.cachedDecimals = underlyingDecimals
	leg.shareUnit = pow10(shareDecimals)

	return leg, nil
}

func (registry *feedRegistry) deriveRateProviderLeg(ctx context.Context, asset common.Address, leg *legConfig) (*legConfig, error) {
	token, err := registry.resolver.TokenSource(asset)
	if err != nil {
		return nil, err
	}

	decimals, err := token.Decimals(ctx)
	if err != nil {
		return nil, err
	}
	if !isValidDecimals(decimals) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRateProviderUnit, decimals)
	}

	rateSource, err := registry.resolver.RateSource(leg.source)
	if err != nil {
		return nil, err
	}

	rate, err := rateSource.GetRateSafe(ctx)
	if err != nil {
		return nil, err
	}
	if rate == nil || rate.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrRateProviderReturnedZero, leg.source.Hex())
	}

	leg.cachedUnit = pow10(decimals)
	leg.cachedDecimals = decimals

	return leg, nil
}

func (registry *feedRegistry) deriveExternalFeedLeg(ctx context.Context, leg *legConfig) (*legConfig, error) {
	feed, err := registry.resolver.FeedSource(leg.source)
	if err != nil {
		return nil, err
	}

	decimals, err := feed.Decimals(ctx)
	if err != nil {
		return nil, err
	}
	if !isValidDecimals(decimals) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFeedDecimals, decimals)
	}

	roundData, err := feed.LatestRoundData(ctx)
	if err != nil {
		return nil, err
	}
	if roundData.Answer == nil || roundData.Answer.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrFeedPriceNotPositive, leg.source.Hex())
	}

	leg.cachedUnit = pow10(decimals)
	leg.cachedDecimals = decimals

	return leg, nil
}

func checkLegSpecs(legs []LegSpec, thresholds []ThresholdSpec) error {
	if len(legs) < minLegs || len(legs) > maxLegs {
		return fmt.Errorf("%w: %d, accepted [%d, %d]", ErrInvalidLegsCount, len(legs), minLegs, maxLegs)
	}
	if len(thresholds) != len(legs) {
		return fmt.Errorf("%w, expected %d, got %d", ErrMismatchThresholdsLen, len(legs), len(thresholds))
	}

	emptyAddress := common.Address{}
	for index, leg := range legs {
		if leg.Source == emptyAddress {
			return fmt.Errorf("%w, leg index %d", ErrEmptySourceAddress, index)
		}
	}

	return checkThresholdSpecs(thresholds)
}

func checkThresholdSpecs(thresholds []ThresholdSpec) error {
	for index, threshold := range thresholds {
		if threshold.LowerThresholdInBase == nil || threshold.FixedPriceInBase == nil {
			return fmt.Errorf("%w, threshold index %d", ErrNilThreshold, index)
		}
		if threshold.LowerThresholdInBase.Sign() < 0 || threshold.FixedPriceInBase.Sign() < 0 {
			return fmt.Errorf("%w, threshold index %d", ErrNegativeThreshold, index)
		}
	}

	return nil
}

func newArgsFeedChanged(asset common.Address, legs []*legConfig, staleTimeoutSeconds *uint64) ArgsFeedChanged {
	args := ArgsFeedChanged{
		Asset:               asset,
		Legs:                make([]LegSpec, 0, len(legs)),
		Thresholds:          make([]ThresholdSpec, 0, len(legs)),
		StaleTimeoutSeconds: staleTimeoutSeconds,
	}

	for _, leg := range legs {
		args.Legs = append(args.Legs, LegSpec{Kind: leg.kind, Source: leg.source})
		args.Thresholds = append(args.Thresholds, ThresholdSpec{
			LowerThresholdInBase: big.NewInt(0).Set(leg.lowerThreshold),
			FixedPriceInBase:     big.NewInt(0).Set(leg.fixedPrice),
		})
	}

	return args
}

// IsInterfaceNil returns true if there is no value under the interface
func (registry *feedRegistry) IsInterfaceNil() bool {
	return registry == nil
}
