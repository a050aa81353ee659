package composer_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klever-io/klv-composite-oracle-go/composer"
	"github.com/klever-io/klv-composite-oracle-go/composer/mock"
)

var expectedErr = errors.New("expected error")

func createMockArgsFeedRegistry() composer.ArgsFeedRegistry {
	return composer.ArgsFeedRegistry{
		Resolver:            &mock.SourceResolverStub{},
		Authorizer:          &mock.AuthorizerStub{},
		Notifee:             &mock.ConfigNotifeeStub{},
		BaseDecimals:        8,
		StaleTimeoutSeconds: 3600,
	}
}

func createMockArgsSetFeed() composer.ArgsSetFeed {
	return composer.ArgsSetFeed{
		Asset: common.HexToAddress("0x1000000000000000000000000000000000000001"),
		Legs: []composer.LegSpec{
			{
				Kind:   composer.VaultConversion,
				Source: common.HexToAddress("0x2000000000000000000000000000000000000002"),
			},
			{
				Kind:   composer.ExternalFeed,
				Source: common.HexToAddress("0x3000000000000000000000000000000000000003"),
			},
		},
		Thresholds: []composer.ThresholdSpec{
			{
				LowerThresholdInBase: big.NewInt(0),
				FixedPriceInBase:     big.NewInt(0),
			},
			{
				LowerThresholdInBase: big.NewInt(0),
				FixedPriceInBase:     big.NewInt(0),
			},
		},
	}
}

func TestNewFeedRegistry(t *testing.T) {
	t.Parallel()

	t.Run("nil resolver should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Resolver = nil

		registry, err := composer.NewFeedRegistry(args)
		assert.Nil(t, registry)
		assert.Equal(t, composer.ErrNilSourceResolver, err)
	})
	t.Run("nil authorizer should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Authorizer = nil

		registry, err := composer.NewFeedRegistry(args)
		assert.Nil(t, registry)
		assert.Equal(t, composer.ErrNilAuthorizer, err)
	})
	t.Run("nil notifee should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Notifee = nil

		registry, err := composer.NewFeedRegistry(args)
		assert.Nil(t, registry)
		assert.Equal(t, composer.ErrNilConfigNotifee, err)
	})
	t.Run("invalid base decimals should error", func(t *testing.T) {
		t.Parallel()

		for _, decimals := range []uint32{0, 37, 100} {
			args := createMockArgsFeedRegistry()
			args.BaseDecimals = decimals

			registry, err := composer.NewFeedRegistry(args)
			assert.Nil(t, registry)
			assert.True(t, errors.Is(err, composer.ErrInvalidBaseDecimals))
		}
	})
	t.Run("stale timeout over maximum should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.StaleTimeoutSeconds = 30*24*60*60 + 1

		registry, err := composer.NewFeedRegistry(args)
		assert.Nil(t, registry)
		assert.True(t, errors.Is(err, composer.ErrInvalidStaleTimeout))
	})
	t.Run("should work", func(t *testing.T) {
		t.Parallel()

		registry, err := composer.NewFeedRegistry(createMockArgsFeedRegistry())
		assert.Nil(t, err)
		assert.NotNil(t, registry)
		assert.False(t, registry.IsInterfaceNil())
		assert.Equal(t, big.NewInt(100000000), registry.BaseUnit())
		assert.Equal(t, uint64(3600), registry.StaleTimeout())
		assert.Empty(t, registry.Assets())
	})
}

func TestFeedRegistry_SetFeed(t *testing.T) {
	t.Parallel()

	t.Run("unauthorized capability should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Authorizer = &mock.AuthorizerStub{
			AuthorizeCalled: func(capability composer.AuthToken) error {
				return composer.ErrUnauthorized
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		err := registry.SetFeed(context.Background(), nil, createMockArgsSetFeed())
		assert.Equal(t, composer.ErrUnauthorized, err)
		assert.Empty(t, registry.Assets())
	})
	t.Run("too few legs should error", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		argsSet := createMockArgsSetFeed()
		argsSet.Legs = argsSet.Legs[:1]
		argsSet.Thresholds = argsSet.Thresholds[:1]

		err := registry.SetFeed(context.Background(), nil, argsSet)
		assert.True(t, errors.Is(err, composer.ErrInvalidLegsCount))
	})
	t.Run("too many legs should error", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		argsSet := createMockArgsSetFeed()
		extraLeg := argsSet.Legs[1]
		argsSet.Legs = append(argsSet.Legs, extraLeg, extraLeg)
		argsSet.Thresholds = append(argsSet.Thresholds, argsSet.Thresholds[1], argsSet.Thresholds[1])

		err := registry.SetFeed(context.Background(), nil, argsSet)
		assert.True(t, errors.Is(err, composer.ErrInvalidLegsCount))
	})
	t.Run("thresholds length mismatch should error", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		argsSet := createMockArgsSetFeed()
		argsSet.Thresholds = argsSet.Thresholds[:1]

		err := registry.SetFeed(context.Background(), nil, argsSet)
		assert.True(t, errors.Is(err, composer.ErrMismatchThresholdsLen))
	})
	t.Run("empty source address should error", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		argsSet := createMockArgsSetFeed()
		argsSet.Legs[1].Source = common.Address{}

		err := registry.SetFeed(context.Background(), nil, argsSet)
		assert.True(t, errors.Is(err, composer.ErrEmptySourceAddress))
	})
	t.Run("nil threshold value should error", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		argsSet := createMockArgsSetFeed()
		argsSet.Thresholds[0].FixedPriceInBase = nil

		err := registry.SetFeed(context.Background(), nil, argsSet)
		assert.True(t, errors.Is(err, composer.ErrNilThreshold))
	})
	t.Run("negative threshold values should error and store nothing", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		argsSet := createMockArgsSetFeed()
		argsSet.Thresholds[0].LowerThresholdInBase = big.NewInt(-1)

		err := registry.SetFeed(context.Background(), nil, argsSet)
		assert.True(t, errors.Is(err, composer.ErrNegativeThreshold))

		argsSet = createMockArgsSetFeed()
		argsSet.Thresholds[1].FixedPriceInBase = big.NewInt(-100000000)

		err = registry.SetFeed(context.Background(), nil, argsSet)
		assert.True(t, errors.Is(err, composer.ErrNegativeThreshold))
		assert.Empty(t, registry.Assets())
	})
	t.Run("per-feed stale timeout over maximum should error", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		tooLarge := uint64(30*24*60*60 + 1)
		argsSet := createMockArgsSetFeed()
		argsSet.StaleTimeoutSeconds = &tooLarge

		err := registry.SetFeed(context.Background(), nil, argsSet)
		assert.True(t, errors.Is(err, composer.ErrInvalidStaleTimeout))
	})
	t.Run("vault leg with invalid share decimals should error and store nothing", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Resolver = &mock.SourceResolverStub{
			VaultSourceCalled: func(address common.Address) (composer.VaultSource, error) {
				return &mock.VaultSourceStub{
					DecimalsCalled: func(ctx context.Context) (uint32, error) {
						return 0, nil
					},
				}, nil
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		err := registry.SetFeed(context.Background(), nil, createMockArgsSetFeed())
		assert.True(t, errors.Is(err, composer.ErrInvalidUnit))
		assert.Empty(t, registry.Assets())
	})
	t.Run("vault underlying token errors should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Resolver = &mock.SourceResolverStub{
			TokenSourceCalled: func(address common.Address) (composer.TokenSource, error) {
				return nil, expectedErr
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		err := registry.SetFeed(context.Background(), nil, createMockArgsSetFeed())
		assert.True(t, errors.Is(err, expectedErr))
	})
	t.Run("rate provider probe returning zero should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Resolver = &mock.SourceResolverStub{
			RateSourceCalled: func(address common.Address) (composer.RateSource, error) {
				return &mock.RateSourceStub{
					GetRateSafeCalled: func(ctx context.Context) (*big.Int, error) {
						return big.NewInt(0), nil
					},
				}, nil
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		argsSet := createMockArgsSetFeed()
		argsSet.Legs[0].Kind = composer.RateProvider

		err := registry.SetFeed(context.Background(), nil, argsSet)
		assert.True(t, errors.Is(err, composer.ErrRateProviderReturnedZero))
		assert.Empty(t, registry.Assets())
	})
	t.Run("external feed probe returning non-positive answer should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Resolver = &mock.SourceResolverStub{
			FeedSourceCalled: func(address common.Address) (composer.FeedSource, error) {
				return &mock.FeedSourceStub{
					LatestRoundDataCalled: func(ctx context.Context) (composer.RoundData, error) {
						return composer.RoundData{Answer: big.NewInt(-1)}, nil
					},
				}, nil
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		err := registry.SetFeed(context.Background(), nil, createMockArgsSetFeed())
		assert.True(t, errors.Is(err, composer.ErrFeedPriceNotPositive))
	})
	t.Run("setting an already configured asset should error", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		err := registry.SetFeed(context.Background(), nil, createMockArgsSetFeed())
		require.Nil(t, err)

		err = registry.SetFeed(context.Background(), nil, createMockArgsSetFeed())
		assert.True(t, errors.Is(err, composer.ErrFeedAlreadySet))
		assert.Equal(t, 1, len(registry.Assets()))
	})
	t.Run("should work and notify", func(t *testing.T) {
		t.Parallel()

		setEvents := make([]composer.ArgsFeedChanged, 0)
		args := createMockArgsFeedRegistry()
		args.Notifee = &mock.ConfigNotifeeStub{
			FeedSetCalled: func(argsEvent composer.ArgsFeedChanged) {
				setEvents = append(setEvents, argsEvent)
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		perFeedTimeout := uint64(600)
		argsSet := createMockArgsSetFeed()
		argsSet.StaleTimeoutSeconds = &perFeedTimeout
		argsSet.Thresholds[1] = composer.ThresholdSpec{
			LowerThresholdInBase: big.NewInt(100000000),
			FixedPriceInBase:     big.NewInt(100000000),
		}

		err := registry.SetFeed(context.Background(), nil, argsSet)
		require.Nil(t, err)

		assert.Equal(t, []common.Address{argsSet.Asset}, registry.Assets())
		require.Equal(t, 1, len(setEvents))
		assert.Equal(t, argsSet.Asset, setEvents[0].Asset)
		assert.Equal(t, argsSet.Legs, setEvents[0].Legs)
		assert.Equal(t, argsSet.Thresholds, setEvents[0].Thresholds)
		require.NotNil(t, setEvents[0].StaleTimeoutSeconds)
		assert.Equal(t, perFeedTimeout, *setEvents[0].StaleTimeoutSeconds)
	})
}

func TestFeedRegistry_UpdateFeed(t *testing.T) {
	t.Parallel()

	newThresholds := []composer.ThresholdSpec{
		{
			LowerThresholdInBase: big.NewInt(95000000),
			FixedPriceInBase:     big.NewInt(100000000),
		},
		{
			LowerThresholdInBase: big.NewInt(0),
			FixedPriceInBase:     big.NewInt(0),
		},
	}

	t.Run("unauthorized capability should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Authorizer = &mock.AuthorizerStub{
			AuthorizeCalled: func(capability composer.AuthToken) error {
				return composer.ErrUnauthorized
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		err := registry.UpdateFeed(context.Background(), nil, composer.ArgsUpdateFeed{})
		assert.Equal(t, composer.ErrUnauthorized, err)
	})
	t.Run("unknown asset should error", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		err := registry.UpdateFeed(context.Background(), nil, composer.ArgsUpdateFeed{
			Asset:      createMockArgsSetFeed().Asset,
			Thresholds: newThresholds,
		})
		assert.True(t, errors.Is(err, composer.ErrFeedNotSet))
	})
	t.Run("thresholds length mismatch should error", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		argsSet := createMockArgsSetFeed()
		require.Nil(t, registry.SetFeed(context.Background(), nil, argsSet))

		err := registry.UpdateFeed(context.Background(), nil, composer.ArgsUpdateFeed{
			Asset:      argsSet.Asset,
			Thresholds: newThresholds[:1],
		})
		assert.True(t, errors.Is(err, composer.ErrMismatchThresholdsLen))
	})
	t.Run("negative threshold value should error and keep the old config", func(t *testing.T) {
		t.Parallel()

		updatedEvents := 0
		args := createMockArgsFeedRegistry()
		args.Notifee = &mock.ConfigNotifeeStub{
			FeedUpdatedCalled: func(argsEvent composer.ArgsFeedChanged) {
				updatedEvents++
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		argsSet := createMockArgsSetFeed()
		require.Nil(t, registry.SetFeed(context.Background(), nil, argsSet))

		err := registry.UpdateFeed(context.Background(), nil, composer.ArgsUpdateFeed{
			Asset: argsSet.Asset,
			Thresholds: []composer.ThresholdSpec{
				{LowerThresholdInBase: big.NewInt(95000000), FixedPriceInBase: big.NewInt(-1)},
				{LowerThresholdInBase: big.NewInt(0), FixedPriceInBase: big.NewInt(0)},
			},
		})
		assert.True(t, errors.Is(err, composer.ErrNegativeThreshold))
		assert.Equal(t, 0, updatedEvents)
	})
	t.Run("feed decimals drift should error and keep the old config", func(t *testing.T) {
		t.Parallel()

		feedDecimals := uint32(8)
		updatedEvents := 0
		args := createMockArgsFeedRegistry()
		args.Resolver = &mock.SourceResolverStub{
			FeedSourceCalled: func(address common.Address) (composer.FeedSource, error) {
				return &mock.FeedSourceStub{
					DecimalsCalled: func(ctx context.Context) (uint32, error) {
						return feedDecimals, nil
					},
				}, nil
			},
		}
		args.Notifee = &mock.ConfigNotifeeStub{
			FeedUpdatedCalled: func(argsEvent composer.ArgsFeedChanged) {
				updatedEvents++
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		argsSet := createMockArgsSetFeed()
		require.Nil(t, registry.SetFeed(context.Background(), nil, argsSet))

		feedDecimals = 18
		err := registry.UpdateFeed(context.Background(), nil, composer.ArgsUpdateFeed{
			Asset:      argsSet.Asset,
			Thresholds: newThresholds,
		})
		assert.True(t, errors.Is(err, composer.ErrFeedDecimalsChanged))
		assert.Equal(t, 0, updatedEvents)
	})
	t.Run("should work and notify with the new thresholds", func(t *testing.T) {
		t.Parallel()

		updatedEvents := make([]composer.ArgsFeedChanged, 0)
		args := createMockArgsFeedRegistry()
		args.Notifee = &mock.ConfigNotifeeStub{
			FeedUpdatedCalled: func(argsEvent composer.ArgsFeedChanged) {
				updatedEvents = append(updatedEvents, argsEvent)
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		argsSet := createMockArgsSetFeed()
		require.Nil(t, registry.SetFeed(context.Background(), nil, argsSet))

		err := registry.UpdateFeed(context.Background(), nil, composer.ArgsUpdateFeed{
			Asset:      argsSet.Asset,
			Thresholds: newThresholds,
		})
		require.Nil(t, err)

		require.Equal(t, 1, len(updatedEvents))
		assert.Equal(t, argsSet.Asset, updatedEvents[0].Asset)
		assert.Equal(t, argsSet.Legs, updatedEvents[0].Legs)
		assert.Equal(t, newThresholds, updatedEvents[0].Thresholds)
	})
}

func TestFeedRegistry_RemoveFeed(t *testing.T) {
	t.Parallel()

	t.Run("unauthorized capability should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Authorizer = &mock.AuthorizerStub{
			AuthorizeCalled: func(capability composer.AuthToken) error {
				return composer.ErrUnauthorized
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		err := registry.RemoveFeed(nil, common.Address{})
		assert.Equal(t, composer.ErrUnauthorized, err)
	})
	t.Run("removing an unknown asset is a no-op without events", func(t *testing.T) {
		t.Parallel()

		removedEvents := 0
		args := createMockArgsFeedRegistry()
		args.Notifee = &mock.ConfigNotifeeStub{
			FeedRemovedCalled: func(asset common.Address) {
				removedEvents++
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		err := registry.RemoveFeed(nil, createMockArgsSetFeed().Asset)
		assert.Nil(t, err)
		assert.Equal(t, 0, removedEvents)
	})
	t.Run("should remove and notify once", func(t *testing.T) {
		t.Parallel()

		removedEvents := make([]common.Address, 0)
		args := createMockArgsFeedRegistry()
		args.Notifee = &mock.ConfigNotifeeStub{
			FeedRemovedCalled: func(asset common.Address) {
				removedEvents = append(removedEvents, asset)
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		argsSet := createMockArgsSetFeed()
		require.Nil(t, registry.SetFeed(context.Background(), nil, argsSet))
		require.Equal(t, 1, len(registry.Assets()))

		err := registry.RemoveFeed(nil, argsSet.Asset)
		assert.Nil(t, err)
		assert.Empty(t, registry.Assets())
		assert.Equal(t, []common.Address{argsSet.Asset}, removedEvents)

		err = registry.RemoveFeed(nil, argsSet.Asset)
		assert.Nil(t, err)
		assert.Equal(t, 1, len(removedEvents))
	})
	t.Run("a removed asset can be configured again", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		argsSet := createMockArgsSetFeed()
		require.Nil(t, registry.SetFeed(context.Background(), nil, argsSet))
		require.Nil(t, registry.RemoveFeed(nil, argsSet.Asset))

		err := registry.SetFeed(context.Background(), nil, argsSet)
		assert.Nil(t, err)
		assert.Equal(t, 1, len(registry.Assets()))
	})
}

func TestFeedRegistry_SetStaleTimeout(t *testing.T) {
	t.Parallel()

	t.Run("unauthorized capability should error", func(t *testing.T) {
		t.Parallel()

		args := createMockArgsFeedRegistry()
		args.Authorizer = &mock.AuthorizerStub{
			AuthorizeCalled: func(capability composer.AuthToken) error {
				return composer.ErrUnauthorized
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		err := registry.SetStaleTimeout(nil, 60)
		assert.Equal(t, composer.ErrUnauthorized, err)
		assert.Equal(t, uint64(3600), registry.StaleTimeout())
	})
	t.Run("timeout over maximum should error", func(t *testing.T) {
		t.Parallel()

		registry, _ := composer.NewFeedRegistry(createMockArgsFeedRegistry())

		err := registry.SetStaleTimeout(nil, 30*24*60*60+1)
		assert.True(t, errors.Is(err, composer.ErrInvalidStaleTimeout))
		assert.Equal(t, uint64(3600), registry.StaleTimeout())
	})
	t.Run("should work and notify, zero disables checking", func(t *testing.T) {
		t.Parallel()

		timeoutEvents := make([]composer.ArgsStaleTimeoutChanged, 0)
		args := createMockArgsFeedRegistry()
		args.Notifee = &mock.ConfigNotifeeStub{
			StaleTimeoutChangedCalled: func(argsEvent composer.ArgsStaleTimeoutChanged) {
				timeoutEvents = append(timeoutEvents, argsEvent)
			},
		}
		registry, _ := composer.NewFeedRegistry(args)

		err := registry.SetStaleTimeout(nil, 0)
		assert.Nil(t, err)
		assert.Equal(t, uint64(0), registry.StaleTimeout())

		require.Equal(t, 1, len(timeoutEvents))
		assert.Equal(t, uint64(3600), timeoutEvents[0].OldTimeoutSeconds)
		assert.Equal(t, uint64(0), timeoutEvents[0].NewTimeoutSeconds)
	})
}
