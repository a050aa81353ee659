package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/klever-io/klv-composite-oracle-go/composer"
)

// erc20Token reads the decimals of a deployed ERC20 token
type erc20Token struct {
	contractCaller
}

// Decimals returns the token's decimals
func (token *erc20Token) Decimals(ctx context.Context) (uint32, error) {
	return token.callUint8(ctx, "decimals")
}

// IsInterfaceNil returns true if there is no value under the interface
func (token *erc20Token) IsInterfaceNil() bool {
	return token == nil
}

// erc4626Vault reads the share->asset conversion surface of an ERC4626-style vault
type erc4626Vault struct {
	contractCaller
}

// Decimals returns the vault's share decimals
func (vault *erc4626Vault) Decimals(ctx context.Context) (uint32, error) {
	return vault.callUint8(ctx, "decimals")
}

// Asset returns the vault's underlying asset address
func (vault *erc4626Vault) Asset(ctx context.Context) (common.Address, error) {
	results, err := vault.call(ctx, "asset")
	if err != nil {
		return common.Address{}, err
	}

	address, ok := results[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w, method asset on %s", errInvalidCallResult, vault.address.Hex())
	}

	return address, nil
}

// ConvertToAssets returns the asset amount corresponding to the provided share amount
func (vault *erc4626Vault) ConvertToAssets(ctx context.Context, shares *big.Int) (*big.Int, error) {
	return vault.callBigInt(ctx, "convertToAssets", shares)
}

// IsInterfaceNil returns true if there is no value under the interface
func (vault *erc4626Vault) IsInterfaceNil() bool {
	return vault == nil
}

// rateProvider reads an arbitrary-unit rate through the non-reverting accessor
type rateProvider struct {
	contractCaller
}

// GetRateSafe returns the provider's current rate
func (provider *rateProvider) GetRateSafe(ctx context.Context) (*big.Int, error) {
	return provider.callBigInt(ctx, "getRateSafe")
}

// IsInterfaceNil returns true if there is no value under the interface
func (provider *rateProvider) IsInterfaceNil() bool {
	return provider == nil
}

// aggregatorFeed reads an aggregator-style external price feed
type aggregatorFeed struct {
	contractCaller
}

// Decimals returns the feed's decimals
func (feed *aggregatorFeed) Decimals(ctx context.Context) (uint32, error) {
	return feed.callUint8(ctx, "decimals")
}

// LatestRoundData returns the feed's latest round
func (feed *aggregatorFeed) LatestRoundData(ctx context.Context) (composer.RoundData, error) {
	results, err := feed.call(ctx, "latestRoundData")
	if err != nil {
		return composer.RoundData{}, err
	}
	if len(results) != 5 {
		return composer.RoundData{}, fmt.Errorf("%w, method latestRoundData on %s", errInvalidCallResult, feed.address.Hex())
	}

	roundData := composer.RoundData{}
	fields := []**big.Int{
		&roundData.RoundID,
		&roundData.Answer,
		&roundData.StartedAt,
		&roundData.UpdatedAt,
		&roundData.AnsweredInRound,
	}
	for index, result := range results {
		value, ok := result.(*big.Int)
		if !ok {
			return composer.RoundData{}, fmt.Errorf("%w, method latestRoundData on %s", errInvalidCallResult, feed.address.Hex())
		}
		*fields[index] = value
	}

	return roundData, nil
}

// IsInterfaceNil returns true if there is no value under the interface
func (feed *aggregatorFeed) IsInterfaceNil() bool {
	return feed == nil
}
