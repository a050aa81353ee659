package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIJson = `[
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

const erc4626ABIJson = `[
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"name":"asset","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"name":"convertToAssets","type":"function","stateMutability":"view","inputs":[{"name":"shares","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const rateProviderABIJson = `[
	{"name":"getRateSafe","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

const aggregatorABIJson = `[
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"name":"latestRoundData","type":"function","stateMutability":"view","inputs":[],"outputs":[
		{"name":"roundId","type":"uint80"},
		{"name":"answer","type":"int256"},
		{"name":"startedAt","type":"uint256"},
		{"name":"updatedAt","type":"uint256"},
		{"name":"answeredInRound","type":"uint80"}
	]}
]`

type parsedABIs struct {
	erc20        abi.ABI
	erc4626      abi.ABI
	rateProvider abi.ABI
	aggregator   abi.ABI
}

func parseABIs() (*parsedABIs, error) {
	erc20, err := abi.JSON(strings.NewReader(erc20ABIJson))
	if err != nil {
		return nil, err
	}

	erc4626, err := abi.JSON(strings.NewReader(erc4626ABIJson))
	if err != nil {
		return nil, err
	}

	rateProvider, err := abi.JSON(strings.NewReader(rateProviderABIJson))
	if err != nil {
		return nil, err
	}

	aggregator, err := abi.JSON(strings.NewReader(aggregatorABIJson))
	if err != nil {
		return nil, err
	}

	return &parsedABIs{
		erc20:        erc20,
		erc4626:      erc4626,
		rateProvider: rateProvider,
		aggregator:   aggregator,
	}, nil
}
