package composer

import "errors"

var (
	// ErrFeedNotSet signals that no feed configuration exists for the requested asset
	ErrFeedNotSet = errors.New("feed not set for asset")
	// ErrFeedAlreadySet signals that a feed configuration already exists for the asset
	ErrFeedAlreadySet = errors.New("feed already set for asset")
	// ErrPriceIsStale signals that the composed price is not safe to use
	ErrPriceIsStale = errors.New("price is stale")
	// ErrInvalidUnit signals that a vault leg's underlying decimals are outside the accepted range
	ErrInvalidUnit = errors.New("invalid unit")
	// ErrInvalidRateProviderUnit signals that a rate-provider leg's unit decimals are outside the accepted range
	ErrInvalidRateProviderUnit = errors.New("invalid rate provider unit")
	// ErrInvalidFeedDecimals signals that an external feed's decimals are outside the accepted range
	ErrInvalidFeedDecimals = errors.New("invalid feed decimals")
	// ErrFeedPriceNotPositive signals that an external feed reported a non-positive price at configuration time
	ErrFeedPriceNotPositive = errors.New("feed price not positive")
	// ErrRateProviderReturnedZero signals that a rate provider reported a zero rate at configuration time
	ErrRateProviderReturnedZero = errors.New("rate provider returned zero")
	// ErrFeedDecimalsChanged signals that a feed's reported decimals drifted since the feed was configured
	ErrFeedDecimalsChanged = errors.New("feed decimals changed since setup")
	// ErrInvalidStaleTimeout signals a stale timeout outside the accepted bounds
	ErrInvalidStaleTimeout = errors.New("invalid stale timeout")
	// ErrInvalidLegsCount signals that a feed was configured with an unsupported number of legs
	ErrInvalidLegsCount = errors.New("invalid number of legs")
	// ErrInvalidLegKind signals an unknown leg kind
	ErrInvalidLegKind = errors.New("invalid leg kind")
	// ErrEmptySourceAddress signals that a leg was configured with the zero address
	ErrEmptySourceAddress = errors.New("empty leg source address")
	// ErrMismatchThresholdsLen signals that the thresholds slice does not match the legs slice
	ErrMismatchThresholdsLen = errors.New("mismatch between legs and thresholds length")
	// ErrNilThreshold signals that a threshold descriptor holds nil big values
	ErrNilThreshold = errors.New("nil threshold value")
	// ErrNegativeThreshold signals that a threshold descriptor holds a negative big value
	ErrNegativeThreshold = errors.New("negative threshold value")
	// ErrNilSourceResolver signals that a nil source resolver was provided
	ErrNilSourceResolver = errors.New("nil source resolver")
	// ErrNilFeedRegistry signals that a nil feed registry was provided
	ErrNilFeedRegistry = errors.New("nil feed registry")
	// ErrNilAuthorizer signals that a nil authorizer was provided
	ErrNilAuthorizer = errors.New("nil authorizer")
	// ErrNilConfigNotifee signals that a nil config notifee was provided
	ErrNilConfigNotifee = errors.New("nil config notifee")
	// ErrNilPriceComposer signals that a nil price composer was provided
	ErrNilPriceComposer = errors.New("nil price composer")
	// ErrNilPriceNotifee signals that a nil price notifee was provided
	ErrNilPriceNotifee = errors.New("nil price notifee")
	// ErrInvalidBaseDecimals signals that the base currency decimals are outside the accepted range
	ErrInvalidBaseDecimals = errors.New("invalid base currency decimals")
	// ErrUnauthorized signals that the provided capability does not grant manager access
	ErrUnauthorized = errors.New("unauthorized: missing manager capability")
	// ErrEmptyManagerKey signals that an empty manager key was provided
	ErrEmptyManagerKey = errors.New("empty manager key")
)
