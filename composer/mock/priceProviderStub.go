package mock

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/klever-io/klv-composite-oracle-go/composer"
)

// PriceProviderStub -
type PriceProviderStub struct {
	GetPriceInfoCalled  func(ctx context.Context, asset common.Address) (composer.PriceInfo, error)
	GetAssetPriceCalled func(ctx context.Context, asset common.Address) (*big.Int, error)
}

// GetPriceInfo -
func (stub *PriceProviderStub) GetPriceInfo(ctx context.Context, asset common.Address) (composer.PriceInfo, error) {
	if stub.GetPriceInfoCalled != nil {
		return stub.GetPriceInfoCalled(ctx, asset)
	}

	return composer.PriceInfo{Price: big.NewInt(0), IsAlive: false}, nil
}

// GetAssetPrice -
func (stub *PriceProviderStub) GetAssetPrice(ctx context.Context, asset common.Address) (*big.Int, error) {
	if stub.GetAssetPriceCalled != nil {
		return stub.GetAssetPriceCalled(ctx, asset)
	}

	return big.NewInt(0), nil
}

// IsInterfaceNil -
func (stub *PriceProviderStub) IsInterfaceNil() bool {
	return stub == nil
}
