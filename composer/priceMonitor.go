package composer

import (
	"context"
	"fmt"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
)

// ArgsPriceMonitor is the argument DTO for the NewPriceMonitor function
type ArgsPriceMonitor struct {
	Registry FeedStore
	Composer PriceProvider
	Notifees []PriceNotifee
}

// priceMonitor periodically composes the price of every configured asset and
// pushes the results to the registered notifees. It is driven by a polling
// handler calling Execute.
type priceMonitor struct {
	registry FeedStore
	composer PriceProvider
	notifees []PriceNotifee
}

// NewPriceMonitor will create a new priceMonitor instance
func NewPriceMonitor(args ArgsPriceMonitor) (*priceMonitor, error) {
	err := checkArgsPriceMonitor(args)
	if err != nil {
		return nil, err
	}

	return &priceMonitor{
		registry: args.Registry,
		composer: args.Composer,
		notifees: args.Notifees,
	}, nil
}

func checkArgsPriceMonitor(args ArgsPriceMonitor) error {
	if check.IfNil(args.Registry) {
		return ErrNilFeedRegistry
	}
	if check.IfNil(args.Composer) {
		return ErrNilPriceComposer
	}
	for index, notifee := range args.Notifees {
		if check.IfNil(notifee) {
			return fmt.Errorf("%w, index %d", ErrNilPriceNotifee, index)
		}
	}

	return nil
}

// Execute composes the price of every configured asset and notifies the
// registered notifees. An asset whose legs cannot currently be read is logged
// and skipped so one broken source does not silence the remaining assets.
func (monitor *priceMonitor) Execute(ctx context.Context) error {
	assets := monitor.registry.Assets()
	if len(assets) == 0 {
		return nil
	}

	priceChanges := make([]*ArgsPriceChanged, 0, len(assets))
	for _, asset := range assets {
		info, err := monitor.composer.GetPriceInfo(ctx, asset)
		if err != nil {
			log.Warn("unable to compose price", "asset", asset.Hex(), "error", err.Error())
			continue
		}

		if !info.IsAlive {
			log.Warn("composed price is not live", "asset", asset.Hex(), "price", info.Price.String())
		}

		priceChanges = append(priceChanges, &ArgsPriceChanged{
			Asset:     asset,
			Price:     info.Price,
			IsAlive:   info.IsAlive,
			Timestamp: time.Now().Unix(),
		})
	}

	if len(priceChanges) == 0 {
		return nil
	}

	for _, notifee := range monitor.notifees {
		err := notifee.PricesChanged(ctx, priceChanges)
		if err != nil {
			return err
		}
	}

	return nil
}

// IsInterfaceNil returns true if there is no value under the interface
func (monitor *priceMonitor) IsInterfaceNil() bool {
	return monitor == nil
}
