package mock

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/klever-io/klv-composite-oracle-go/composer"
)

// ConfigNotifeeStub -
type ConfigNotifeeStub struct {
	FeedSetCalled             func(args composer.ArgsFeedChanged)
	FeedUpdatedCalled         func(args composer.ArgsFeedChanged)
	FeedRemovedCalled         func(asset common.Address)
	StaleTimeoutChangedCalled func(args composer.ArgsStaleTimeoutChanged)
}

// FeedSet -
func (stub *ConfigNotifeeStub) FeedSet(args composer.ArgsFeedChanged) {
	if stub.FeedSetCalled != nil {
		stub.FeedSetCalled(args)
	}
}

// FeedUpdated -
func (stub *ConfigNotifeeStub) FeedUpdated(args composer.ArgsFeedChanged) {
	if stub.FeedUpdatedCalled != nil {
		stub.FeedUpdatedCalled(args)
	}
}

// FeedRemoved -
func (stub *ConfigNotifeeStub) FeedRemoved(asset common.Address) {
	if stub.FeedRemovedCalled != nil {
		stub.FeedRemovedCalled(asset)
	}
}

// StaleTimeoutChanged -
func (stub *ConfigNotifeeStub) StaleTimeoutChanged(args composer.ArgsStaleTimeoutChanged) {
	if stub.StaleTimeoutChangedCalled != nil {
		stub.StaleTimeoutChangedCalled(args)
	}
}

// IsInterfaceNil -
func (stub *ConfigNotifeeStub) IsInterfaceNil() bool {
	return stub == nil
}

// PriceNotifeeStub -
type PriceNotifeeStub struct {
	PricesChangedCalled func(ctx context.Context, priceChanges []*composer.ArgsPriceChanged) error
}

// PricesChanged -
func (stub *PriceNotifeeStub) PricesChanged(ctx context.Context, priceChanges []*composer.ArgsPriceChanged) error {
	if stub.PricesChangedCalled != nil {
		return stub.PricesChangedCalled(ctx, priceChanges)
	}

	return nil
}

// IsInterfaceNil -
func (stub *PriceNotifeeStub) IsInterfaceNil() bool {
	return stub == nil
}

// AuthorizerStub -
type AuthorizerStub struct {
	AuthorizeCalled func(capability composer.AuthToken) error
}

// Authorize -
func (stub *AuthorizerStub) Authorize(capability composer.AuthToken) error {
	if stub.AuthorizeCalled != nil {
		return stub.AuthorizeCalled(capability)
	}

	return nil
}

// IsInterfaceNil -
func (stub *AuthorizerStub) IsInterfaceNil() bool {
	return stub == nil
}
