package gin

import "errors"

var (
	errNilPriceProvider   = errors.New("nil price provider")
	errNilFeedAdmin       = errors.New("nil feed admin handler")
	errInvalidAddress     = errors.New("invalid address")
	errInvalidBigInt      = errors.New("invalid big integer value")
	errEmptyRestInterface = errors.New("empty REST API interface")
)
