package composer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// VaultSource is the minimal contract a vault-like share-conversion source must expose
type VaultSource interface {
	Decimals(ctx context.Context) (uint32, error)
	Asset(ctx context.Context) (common.Address, error)
	ConvertToAssets(ctx context.Context, shares *big.Int) (*big.Int, error)
	IsInterfaceNil() bool
}

// TokenSource is the minimal contract a token must expose so its decimals can be read
type TokenSource interface {
	Decimals(ctx context.Context) (uint32, error)
	IsInterfaceNil() bool
}

// RateSource is the minimal contract a generic rate provider must expose. The
// accessor is the "safe" variant: it returns an always-defined unsigned rate
// instead of failing, so a single bad leg cannot halt configuration or queries
type RateSource interface {
	GetRateSafe(ctx context.Context) (*big.Int, error)
	IsInterfaceNil() bool
}

// RoundData holds one aggregator-style feed round
type RoundData struct {
	RoundID         *big.Int
	Answer          *big.Int
	StartedAt       *big.Int
	UpdatedAt       *big.Int
	AnsweredInRound *big.Int
}

// FeedSource is the minimal contract an aggregator-style external price feed must expose
type FeedSource interface {
	Decimals(ctx context.Context) (uint32, error)
	LatestRoundData(ctx context.Context) (RoundData, error)
	IsInterfaceNil() bool
}

// SourceResolver resolves leg source addresses into live source instances
type SourceResolver interface {
	VaultSource(address common.Address) (VaultSource, error)
	TokenSource(address common.Address) (TokenSource, error)
	RateSource(address common.Address) (RateSource, error)
	FeedSource(address common.Address) (FeedSource, error)
	IsInterfaceNil() bool
}

// AuthToken is the opaque manager capability presented on every mutating call
type AuthToken []byte

// Authorizer decides whether a presented capability grants manager access
type Authorizer interface {
	Authorize(capability AuthToken) error
	IsInterfaceNil() bool
}

// ArgsFeedChanged is the argument used when notifying a config notifee about a set or updated feed
type ArgsFeedChanged struct {
	Asset               common.Address
	Legs                []LegSpec
	Thresholds          []ThresholdSpec
	StaleTimeoutSeconds *uint64
}

// ArgsStaleTimeoutChanged is the argument used when notifying a config notifee about a timeout change
type ArgsStaleTimeoutChanged struct {
	OldTimeoutSeconds uint64
	NewTimeoutSeconds uint64
}

// ConfigNotifee defines the behavior of a component able to be notified over feed configuration changes
type ConfigNotifee interface {
	FeedSet(args ArgsFeedChanged)
	FeedUpdated(args ArgsFeedChanged)
	FeedRemoved(asset common.Address)
	StaleTimeoutChanged(args ArgsStaleTimeoutChanged)
	IsInterfaceNil() bool
}

// PriceInfo holds one composed price together with its combined liveness signal
type PriceInfo struct {
	Price   *big.Int
	IsAlive bool
}

// PriceProvider defines the read-only price surface exposed to downstream consumers
type PriceProvider interface {
	GetPriceInfo(ctx context.Context, asset common.Address) (PriceInfo, error)
	GetAssetPrice(ctx context.Context, asset common.Address) (*big.Int, error)
	IsInterfaceNil() bool
}

// ArgsPriceChanged is the argument used when notifying a price notifee about a freshly composed price
type ArgsPriceChanged struct {
	Asset     common.Address
	Price     *big.Int
	IsAlive   bool
	Timestamp int64
}

// PriceNotifee defines the behavior of a component able to be notified over composed price updates
type PriceNotifee interface {
	PricesChanged(ctx context.Context, priceChanges []*ArgsPriceChanged) error
	IsInterfaceNil() bool
}
