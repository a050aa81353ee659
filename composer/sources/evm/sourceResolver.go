package evm

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/klever-io/klv-composite-oracle-go/composer"
)

// ArgsSourceResolver is the argument DTO for the NewSourceResolver function
type ArgsSourceResolver struct {
	Backend ContractBackend
}

// sourceResolver turns leg source addresses into live EVM-backed source
// instances sharing one contract backend
type sourceResolver struct {
	backend ContractBackend
	abis    *parsedABIs
}

// NewSourceResolver creates a new EVM source resolver
func NewSourceResolver(args ArgsSourceResolver) (*sourceResolver, error) {
	if args.Backend == nil {
		return nil, errNilContractBackend
	}

	abis, err := parseABIs()
	if err != nil {
		return nil, err
	}

	return &sourceResolver{
		backend: args.Backend,
		abis:    abis,
	}, nil
}

// VaultSource returns an ERC4626-style vault source bound to the provided address
func (resolver *sourceResolver) VaultSource(address common.Address) (composer.VaultSource, error) {
	return &erc4626Vault{
		contractCaller: newContractCaller(resolver.backend, address, resolver.abis.erc4626),
	}, nil
}

// TokenSource returns an ERC20 token source bound to the provided address
func (resolver *sourceResolver) TokenSource(address common.Address) (composer.TokenSource, error) {
	return &erc20Token{
		contractCaller: newContractCaller(resolver.backend, address, resolver.abis.erc20),
	}, nil
}

// RateSource returns a rate-provider source bound to the provided address
func (resolver *sourceResolver) RateSource(address common.Address) (composer.RateSource, error) {
	return &rateProvider{
		contractCaller: newContractCaller(resolver.backend, address, resolver.abis.rateProvider),
	}, nil
}

// FeedSource returns an aggregator-style feed source bound to the provided address
func (resolver *sourceResolver) FeedSource(address common.Address) (composer.FeedSource, error) {
	return &aggregatorFeed{
		contractCaller: newContractCaller(resolver.backend, address, resolver.abis.aggregator),
	}, nil
}

// IsInterfaceNil returns true if there is no value under the interface
func (resolver *sourceResolver) IsInterfaceNil() bool {
	return resolver == nil
}
