package gin

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/klever-io/klv-composite-oracle-go/composer"
)

// FeedAdminHandler defines the mutating feed-store surface exposed through the admin endpoints
type FeedAdminHandler interface {
	SetFeed(ctx context.Context, capability composer.AuthToken, args composer.ArgsSetFeed) error
	UpdateFeed(ctx context.Context, capability composer.AuthToken, args composer.ArgsUpdateFeed) error
	RemoveFeed(capability composer.AuthToken, asset common.Address) error
	SetStaleTimeout(capability composer.AuthToken, seconds uint64) error
	StaleTimeout() uint64
	Assets() []common.Address
	IsInterfaceNil() bool
}
