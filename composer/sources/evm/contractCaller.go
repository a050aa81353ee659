package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// contractCaller wraps one deployed contract behind a parsed ABI and executes
// read-only calls against it
type contractCaller struct {
	backend  ContractBackend
	address  common.Address
	contract abi.ABI
}

func newContractCaller(backend ContractBackend, address common.Address, contract abi.ABI) contractCaller {
	return contractCaller{
		backend:  backend,
		address:  address,
		contract: contract,
	}
}

func (caller *contractCaller) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := caller.contract.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	callMsg := ethereum.CallMsg{
		To:   &caller.address,
		Data: data,
	}

	output, err := caller.backend.CallContract(ctx, callMsg, nil)
	if err != nil {
		return nil, fmt.Errorf("%w while calling %s on %s", err, method, caller.address.Hex())
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("%w, method %s on %s", errEmptyCallResult, method, caller.address.Hex())
	}

	results, err := caller.contract.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("%w while unpacking %s on %s", err, method, caller.address.Hex())
	}

	return results, nil
}

func (caller *contractCaller) callUint8(ctx context.Context, method string) (uint32, error) {
	results, err := caller.call(ctx, method)
	if err != nil {
		return 0, err
	}

	value, ok := results[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("%w, method %s on %s", errInvalidCallResult, method, caller.address.Hex())
	}

	return uint32(value), nil
}

func (caller *contractCaller) callBigInt(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	results, err := caller.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}

	value, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w, method %s on %s", errInvalidCallResult, method, caller.address.Hex())
	}

	return value, nil
}
