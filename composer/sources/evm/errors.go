package evm

import "errors"

var (
	errNilContractBackend = errors.New("nil contract backend")
	errEmptyCallResult    = errors.New("empty contract call result")
	errInvalidCallResult  = errors.New("invalid contract call result")
)
