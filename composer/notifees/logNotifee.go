package notifees

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/multiversx/mx-chain-logger-go"

	"github.com/klever-io/klv-composite-oracle-go/composer"
)

var log = logger.GetOrCreate("klv-composite-oracle-go/composer/notifees")

// logNotifee mirrors every configuration change and every composed price
// update into the structured log, so each mutation of the feed store leaves
// an auditable trace
type logNotifee struct {
}

// NewLogNotifee will create a new logNotifee instance
func NewLogNotifee() *logNotifee {
	return &logNotifee{}
}

// FeedSet logs a freshly stored feed configuration
func (notifee *logNotifee) FeedSet(args composer.ArgsFeedChanged) {
	log.Info("feed set",
		"asset", args.Asset.Hex(),
		"legs", describeLegs(args),
		"stale timeout override", describeTimeout(args.StaleTimeoutSeconds),
	)
}

// FeedUpdated logs a threshold re-configuration
func (notifee *logNotifee) FeedUpdated(args composer.ArgsFeedChanged) {
	log.Info("feed updated",
		"asset", args.Asset.Hex(),
		"legs", describeLegs(args),
		"stale timeout override", describeTimeout(args.StaleTimeoutSeconds),
	)
}

// FeedRemoved logs a deleted feed configuration
func (notifee *logNotifee) FeedRemoved(asset common.Address) {
	log.Info("feed removed", "asset", asset.Hex())
}

// StaleTimeoutChanged logs the old and new engine-global staleness timeout
func (notifee *logNotifee) StaleTimeoutChanged(args composer.ArgsStaleTimeoutChanged) {
	log.Info("stale timeout changed",
		"old seconds", args.OldTimeoutSeconds,
		"new seconds", args.NewTimeoutSeconds,
	)
}

// PricesChanged logs every composed price pushed by the price monitor
func (notifee *logNotifee) PricesChanged(_ context.Context, priceChanges []*composer.ArgsPriceChanged) error {
	for _, priceChange := range priceChanges {
		log.Debug("price composed",
			"asset", priceChange.Asset.Hex(),
			"price", priceChange.Price.String(),
			"is alive", priceChange.IsAlive,
			"timestamp", priceChange.Timestamp,
		)
	}

	return nil
}

func describeLegs(args composer.ArgsFeedChanged) string {
	descriptions := make([]string, 0, len(args.Legs))
	for index, leg := range args.Legs {
		threshold := args.Thresholds[index]
		descriptions = append(descriptions, fmt.Sprintf("%s@%s(threshold=%s, fixed=%s)",
			leg.Kind, leg.Source.Hex(),
			threshold.LowerThresholdInBase.String(), threshold.FixedPriceInBase.String()))
	}

	return strings.Join(descriptions, ", ")
}

func describeTimeout(seconds *uint64) string {
	if seconds == nil {
		return "engine default"
	}

	return fmt.Sprintf("%ds", *seconds)
}

// IsInterfaceNil returns true if there is no value under the interface
func (notifee *logNotifee) IsInterfaceNil() bool {
	return notifee == nil
}
