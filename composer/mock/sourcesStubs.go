package mock

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/klever-io/klv-composite-oracle-go/composer"
)

// VaultSourceStub -
type VaultSourceStub struct {
	DecimalsCalled        func(ctx context.Context) (uint32, error)
	AssetCalled           func(ctx context.Context) (common.Address, error)
	ConvertToAssetsCalled func(ctx context.Context, shares *big.Int) (*big.Int, error)
}

// Decimals -
func (stub *VaultSourceStub) Decimals(ctx context.Context) (uint32, error) {
	if stub.DecimalsCalled != nil {
		return stub.DecimalsCalled(ctx)
	}

	return 18, nil
}

// Asset -
func (stub *VaultSourceStub) Asset(ctx context.Context) (common.Address, error) {
	if stub.AssetCalled != nil {
		return stub.AssetCalled(ctx)
	}

	return common.Address{}, nil
}

// ConvertToAssets -
func (stub *VaultSourceStub) ConvertToAssets(ctx context.Context, shares *big.Int) (*big.Int, error) {
	if stub.ConvertToAssetsCalled != nil {
		return stub.ConvertToAssetsCalled(ctx, shares)
	}

	return big.NewInt(0).Set(shares), nil
}

// IsInterfaceNil -
func (stub *VaultSourceStub) IsInterfaceNil() bool {
	return stub == nil
}

// TokenSourceStub -
type TokenSourceStub struct {
	DecimalsCalled func(ctx context.Context) (uint32, error)
}

// Decimals -
func (stub *TokenSourceStub) Decimals(ctx context.Context) (uint32, error) {
	if stub.DecimalsCalled != nil {
		return stub.DecimalsCalled(ctx)
	}

	return 18, nil
}

// IsInterfaceNil -
func (stub *TokenSourceStub) IsInterfaceNil() bool {
	return stub == nil
}

// RateSourceStub -
type RateSourceStub struct {
	GetRateSafeCalled func(ctx context.Context) (*big.Int, error)
}

// GetRateSafe -
func (stub *RateSourceStub) GetRateSafe(ctx context.Context) (*big.Int, error) {
	if stub.GetRateSafeCalled != nil {
		return stub.GetRateSafeCalled(ctx)
	}

	return big.NewInt(1), nil
}

// IsInterfaceNil -
func (stub *RateSourceStub) IsInterfaceNil() bool {
	return stub == nil
}

// FeedSourceStub -
type FeedSourceStub struct {
	DecimalsCalled        func(ctx context.Context) (uint32, error)
	LatestRoundDataCalled func(ctx context.Context) (composer.RoundData, error)
}

// Decimals -
func (stub *FeedSourceStub) Decimals(ctx context.Context) (uint32, error) {
	if stub.DecimalsCalled != nil {
		return stub.DecimalsCalled(ctx)
	}

	return 8, nil
}

// LatestRoundData -
func (stub *FeedSourceStub) LatestRoundData(ctx context.Context) (composer.RoundData, error) {
	if stub.LatestRoundDataCalled != nil {
		return stub.LatestRoundDataCalled(ctx)
	}

	return composer.RoundData{
		RoundID:         big.NewInt(1),
		Answer:          big.NewInt(1),
		StartedAt:       big.NewInt(0),
		UpdatedAt:       big.NewInt(0),
		AnsweredInRound: big.NewInt(1),
	}, nil
}

// IsInterfaceNil -
func (stub *FeedSourceStub) IsInterfaceNil() bool {
	return stub == nil
}

// SourceResolverStub -
type SourceResolverStub struct {
	VaultSourceCalled func(address common.Address) (composer.VaultSource, error)
	TokenSourceCalled func(address common.Address) (composer.TokenSource, error)
	RateSourceCalled  func(address common.Address) (composer.RateSource, error)
	FeedSourceCalled  func(address common.Address) (composer.FeedSource, error)
}

// VaultSource -
func (stub *SourceResolverStub) VaultSource(address common.Address) (composer.VaultSource, error) {
	if stub.VaultSourceCalled != nil {
		return stub.VaultSourceCalled(address)
	}

	return &VaultSourceStub{}, nil
}

// TokenSource -
func (stub *SourceResolverStub) TokenSource(address common.Address) (composer.TokenSource, error) {
	if stub.TokenSourceCalled != nil {
		return stub.TokenSourceCalled(address)
	}

	return &TokenSourceStub{}, nil
}

// RateSource -
func (stub *SourceResolverStub) RateSource(address common.Address) (composer.RateSource, error) {
	if stub.RateSourceCalled != nil {
		return stub.RateSourceCalled(address)
	}

	return &RateSourceStub{}, nil
}

// FeedSource -
func (stub *SourceResolverStub) FeedSource(address common.Address) (composer.FeedSource, error) {
	if stub.FeedSourceCalled != nil {
		return stub.FeedSourceCalled(address)
	}

	return &FeedSourceStub{}, nil
}

// IsInterfaceNil -
func (stub *SourceResolverStub) IsInterfaceNil() bool {
	return stub == nil
}
