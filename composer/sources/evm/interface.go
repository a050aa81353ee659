package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
)

// ContractBackend is the minimal contract-call surface the sources need.
// *ethclient.Client satisfies it.
type ContractBackend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}
