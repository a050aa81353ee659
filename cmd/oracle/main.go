package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	chainCore "github.com/multiversx/mx-chain-core-go/core"
	"github.com/multiversx/mx-chain-core-go/core/check"
	chainFactory "github.com/multiversx/mx-chain-go/cmd/node/factory"
	chainCommon "github.com/multiversx/mx-chain-go/common"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/multiversx/mx-chain-logger-go/file"
	"github.com/multiversx/mx-sdk-go/core/polling"
	"github.com/urfave/cli"

	webApi "github.com/klever-io/klv-composite-oracle-go/api/gin"
	"github.com/klever-io/klv-composite-oracle-go/composer"
	"github.com/klever-io/klv-composite-oracle-go/composer/notifees"
	"github.com/klever-io/klv-composite-oracle-go/composer/sources/evm"
	"github.com/klever-io/klv-composite-oracle-go/config"
)

const (
	defaultLogsPath = "logs"
	logFilePrefix   = "klv-composite-oracle"
)

var log = logger.GetOrCreate("compositeOracle/main")

// appVersion should be populated at build time using ldflags
// Usage examples:
// linux/mac:
//
//	go build -i -v -ldflags="-X main.appVersion=$(git describe --tags --long --dirty)"
//
// windows:
//
//	for /f %i in ('git describe --tags --long --dirty') do set VERS=%i
//	go build -i -v -ldflags="-X main.appVersion=%VERS%"
var appVersion = chainCommon.UnVersionedAppString

func main() {
	app := cli.NewApp()
	app.Name = "Composite oracle CLI app"
	app.Usage = "Composite oracle will compose multi-leg prices for assets without a direct feed, expose them " +
		"over a REST API and a websocket stream, and periodically publish them to the registered notifees"
	app.Flags = getFlags()
	machineID := chainCore.GetAnonymizedMachineID(app.Name)
	app.Version = fmt.Sprintf("%s/%s/%s-%s/%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH, machineID)
	app.Authors = []cli.Author{
		{
			Name:  "The Klever Blockchain Team",
			Email: "contact@klever.io",
		},
	}

	app.Action = func(c *cli.Context) error {
		return startOracle(c, app.Version)
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func startOracle(ctx *cli.Context, version string) error {
	flagsConfig := getFlagsConfig(ctx)

	fileLogging, errLogger := attachFileLogger(log, flagsConfig)
	if errLogger != nil {
		return errLogger
	}

	log.Info("starting composite oracle node", "version", version, "pid", os.Getpid())

	err := logger.SetLogLevel(flagsConfig.LogLevel)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flagsConfig.ConfigurationFile)
	if err != nil {
		return err
	}

	if !check.IfNil(fileLogging) {
		logsCfg := cfg.GeneralConfig.Logs
		timeLogLifeSpan := time.Second * time.Duration(logsCfg.LogFileLifeSpanInSec)
		sizeLogLifeSpanInMB := uint64(logsCfg.LogFileLifeSpanInMB)
		err = fileLogging.ChangeFileLifeSpan(timeLogLifeSpan, sizeLogLifeSpanInMB)
		if err != nil {
			return err
		}
	}

	if len(cfg.GeneralConfig.NetworkAddress) == 0 {
		return fmt.Errorf("empty NetworkAddress in config file")
	}

	ethClient, err := ethclient.Dial(cfg.GeneralConfig.NetworkAddress)
	if err != nil {
		return err
	}

	sourceResolver, err := evm.NewSourceResolver(evm.ArgsSourceResolver{
		Backend: ethClient,
	})
	if err != nil {
		return err
	}

	managerKey, err := loadManagerKey(cfg.GeneralConfig.ManagerKeyFile)
	if err != nil {
		return err
	}

	authManager, err := composer.NewAuthManager(composer.ArgsAuthManager{
		ManagerKey: managerKey,
	})
	if err != nil {
		return err
	}

	logNotifee := notifees.NewLogNotifee()

	registry, err := composer.NewFeedRegistry(composer.ArgsFeedRegistry{
		Resolver:            sourceResolver,
		Authorizer:          authManager,
		Notifee:             logNotifee,
		BaseDecimals:        cfg.GeneralConfig.BaseDecimals,
		StaleTimeoutSeconds: cfg.GeneralConfig.StaleTimeoutInSeconds,
	})
	if err != nil {
		return err
	}

	priceComposer, err := composer.NewPriceComposer(composer.ArgsPriceComposer{
		Registry:         registry,
		Resolver:         sourceResolver,
		HeartbeatSeconds: cfg.GeneralConfig.HeartbeatInSeconds,
	})
	if err != nil {
		return err
	}

	err = seedFeeds(registry, managerKey, cfg.Feeds)
	if err != nil {
		return err
	}

	httpServerWrapper, err := webApi.NewWebServerHandler(webApi.ArgsWebServerHandler{
		Provider:         priceComposer,
		Admin:            registry,
		RestApiInterface: flagsConfig.RestApiInterface,
		AllowedOrigins:   cfg.Api.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	priceMonitor, err := composer.NewPriceMonitor(composer.ArgsPriceMonitor{
		Registry: registry,
		Composer: priceComposer,
		Notifees: []composer.PriceNotifee{logNotifee, httpServerWrapper.PriceHub()},
	})
	if err != nil {
		return err
	}

	argsPollingHandler := polling.ArgsPollingHandler{
		Log:              log,
		Name:             "price monitor polling handler",
		PollingInterval:  time.Second * time.Duration(cfg.GeneralConfig.PollIntervalInSeconds),
		PollingWhenError: time.Second * time.Duration(cfg.GeneralConfig.PollIntervalInSeconds),
		Executor:         priceMonitor,
	}

	pollingHandler, err := polling.NewPollingHandler(argsPollingHandler)
	if err != nil {
		return err
	}

	err = httpServerWrapper.StartHttpServer()
	if err != nil {
		return err
	}

	log.Info("starting composite oracle engine")

	err = pollingHandler.StartProcessingLoop()
	if err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	<-sigs

	log.Info("application closing, closing polling handler and web server...")

	err = pollingHandler.Close()
	if err != nil {
		log.Error(err.Error())
	}

	return httpServerWrapper.Close()
}

func loadConfig(filepath string) (config.ComposerConfig, error) {
	cfg := config.ComposerConfig{}
	err := chainCore.LoadTomlFile(&cfg, filepath)
	if err != nil {
		return config.ComposerConfig{}, err
	}

	return cfg, nil
}

func loadManagerKey(filepath string) (composer.AuthToken, error) {
	contents, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("%w while reading the manager key file %s", err, filepath)
	}

	key := strings.TrimSpace(string(contents))
	if len(key) == 0 {
		return nil, fmt.Errorf("empty manager key file %s", filepath)
	}

	return composer.AuthToken(key), nil
}

func seedFeeds(registry webApi.FeedAdminHandler, managerKey composer.AuthToken, feeds []config.FeedConfig) error {
	for _, feed := range feeds {
		args, err := feedConfigToArgs(feed)
		if err != nil {
			return err
		}

		err = registry.SetFeed(context.Background(), managerKey, args)
		if err != nil {
			return fmt.Errorf("%w while seeding the feed for asset %s", err, feed.Asset)
		}

		log.Info("seeded feed", "asset", feed.Asset, "num legs", len(feed.Legs))
	}

	return nil
}

func feedConfigToArgs(feed config.FeedConfig) (composer.ArgsSetFeed, error) {
	if !common.IsHexAddress(feed.Asset) {
		return composer.ArgsSetFeed{}, fmt.Errorf("invalid asset address %s in config file", feed.Asset)
	}

	args := composer.ArgsSetFeed{
		Asset:      common.HexToAddress(feed.Asset),
		Legs:       make([]composer.LegSpec, 0, len(feed.Legs)),
		Thresholds: make([]composer.ThresholdSpec, 0, len(feed.Legs)),
	}
	if feed.StaleTimeoutInSeconds >= 0 {
		timeout := uint64(feed.StaleTimeoutInSeconds)
		args.StaleTimeoutSeconds = &timeout
	}

	for _, leg := range feed.Legs {
		kind, err := composer.ParseLegKind(leg.Kind)
		if err != nil {
			return composer.ArgsSetFeed{}, err
		}
		if !common.IsHexAddress(leg.Source) {
			return composer.ArgsSetFeed{}, fmt.Errorf("invalid leg source address %s in config file", leg.Source)
		}

		lower, err := parseConfigBigInt(leg.LowerThresholdInBase)
		if err != nil {
			return composer.ArgsSetFeed{}, err
		}
		fixed, err := parseConfigBigInt(leg.FixedPriceInBase)
		if err != nil {
			return composer.ArgsSetFeed{}, err
		}

		args.Legs = append(args.Legs, composer.LegSpec{
			Kind:   kind,
			Source: common.HexToAddress(leg.Source),
		})
		args.Thresholds = append(args.Thresholds, composer.ThresholdSpec{
			LowerThresholdInBase: lower,
			FixedPriceInBase:     fixed,
		})
	}

	return args, nil
}

func parseConfigBigInt(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return big.NewInt(0), nil
	}

	parsed, ok := big.NewInt(0).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid big integer value %s in config file", value)
	}

	return parsed, nil
}

// TODO: EN-12835 extract this into core
func attachFileLogger(log logger.Logger, flagsConfig config.ContextFlagsConfig) (chainFactory.FileLoggingHandler, error) {
	var fileLogging chainFactory.FileLoggingHandler
	var err error
	if flagsConfig.SaveLogFile {
		args := file.ArgsFileLogging{
			WorkingDir:      flagsConfig.WorkingDir,
			DefaultLogsPath: defaultLogsPath,
			LogFilePrefix:   logFilePrefix,
		}
		fileLogging, err = file.NewFileLogging(args)
		if err != nil {
			return nil, fmt.Errorf("%w creating a log file", err)
		}
	}

	err = logger.SetDisplayByteSlice(logger.ToHex)
	log.LogIfError(err)
	logger.ToggleLoggerName(flagsConfig.EnableLogName)
	logLevelFlagValue := flagsConfig.LogLevel
	err = logger.SetLogLevel(logLevelFlagValue)
	if err != nil {
		return nil, err
	}

	if flagsConfig.DisableAnsiColor {
		err = logger.RemoveLogObserver(os.Stdout)
		if err != nil {
			return nil, err
		}

		err = logger.AddLogObserver(os.Stdout, &logger.PlainFormatter{})
		if err != nil {
			return nil, err
		}
	}
	log.Trace("logger updated", "level", logLevelFlagValue, "disable ANSI color", flagsConfig.DisableAnsiColor)

	return fileLogging, nil
}
