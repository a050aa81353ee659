package gin

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-contrib/cors"
	ginFramework "github.com/gin-gonic/gin"
	"github.com/multiversx/mx-chain-core-go/core/check"

	"github.com/klever-io/klv-composite-oracle-go/composer"
)

const managerKeyHeader = "X-Manager-Key"

// ArgsWebServerHandler is the argument DTO for the NewWebServerHandler function
type ArgsWebServerHandler struct {
	Provider         composer.PriceProvider
	Admin            FeedAdminHandler
	RestApiInterface string
	AllowedOrigins   []string
}

// webServerHandler exposes the engine's read and admin surfaces over HTTP and
// a websocket price stream
type webServerHandler struct {
	provider   composer.PriceProvider
	admin      FeedAdminHandler
	hub        *wsHub
	httpServer *http.Server
}

// NewWebServerHandler creates the gin web server for the composite oracle
func NewWebServerHandler(args ArgsWebServerHandler) (*webServerHandler, error) {
	err := checkArgsWebServerHandler(args)
	if err != nil {
		return nil, err
	}

	handler := &webServerHandler{
		provider: args.Provider,
		admin:    args.Admin,
		hub:      NewWsHub(),
	}

	ginFramework.SetMode(ginFramework.ReleaseMode)
	engine := ginFramework.Default()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  args.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", managerKeyHeader},
		ExposeHeaders: []string{"Content-Length"},
	}))

	routes := engine.Group("/oracle")
	routes.GET("/price/:asset", handler.getAssetPrice)
	routes.GET("/price-info/:asset", handler.getPriceInfo)
	routes.GET("/feeds", handler.getFeeds)
	routes.POST("/feeds", handler.setFeed)
	routes.PUT("/feeds/:asset", handler.updateFeed)
	routes.DELETE("/feeds/:asset", handler.removeFeed)
	routes.PUT("/stale-timeout", handler.setStaleTimeout)
	routes.GET("/stream", func(c *ginFramework.Context) {
		handler.hub.handleConnection(c.Writer, c.Request)
	})

	handler.httpServer = &http.Server{
		Addr:    args.RestApiInterface,
		Handler: engine,
	}

	return handler, nil
}

func checkArgsWebServerHandler(args ArgsWebServerHandler) error {
	if check.IfNil(args.Provider) {
		return errNilPriceProvider
	}
	if check.IfNil(args.Admin) {
		return errNilFeedAdmin
	}
	if len(args.RestApiInterface) == 0 {
		return errEmptyRestInterface
	}

	return nil
}

// PriceHub returns the websocket hub so the price monitor can push updates into it
func (handler *webServerHandler) PriceHub() composer.PriceNotifee {
	return handler.hub
}

// StartHttpServer starts serving in a separate goroutine
func (handler *webServerHandler) StartHttpServer() error {
	go func() {
		err := handler.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("web server stopped", "error", err.Error())
		}
	}()

	log.Info("web server started", "interface", handler.httpServer.Addr)

	return nil
}

// Close stops the websocket hub and the http server
func (handler *webServerHandler) Close() error {
	handler.hub.close()

	return handler.httpServer.Shutdown(context.Background())
}

type legPayload struct {
	Kind                 string `json:"kind"`
	Source               string `json:"source"`
	LowerThresholdInBase string `json:"lowerThresholdInBase"`
	FixedPriceInBase     string `json:"fixedPriceInBase"`
}

type setFeedPayload struct {
	Asset               string       `json:"asset"`
	Legs                []legPayload `json:"legs"`
	StaleTimeoutSeconds *uint64      `json:"staleTimeoutSeconds,omitempty"`
}

type thresholdPayload struct {
	LowerThresholdInBase string `json:"lowerThresholdInBase"`
	FixedPriceInBase     string `json:"fixedPriceInBase"`
}

type updateFeedPayload struct {
	Thresholds []thresholdPayload `json:"thresholds"`
}

type staleTimeoutPayload struct {
	Seconds uint64 `json:"seconds"`
}

func (handler *webServerHandler) getAssetPrice(c *ginFramework.Context) {
	asset, err := parseAddress(c.Param("asset"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	price, err := handler.provider.GetAssetPrice(c.Request.Context(), asset)
	if err != nil {
		respondError(c, statusCodeFor(err), err)
		return
	}

	c.JSON(http.StatusOK, ginFramework.H{
		"asset": asset.Hex(),
		"price": price.String(),
	})
}

func (handler *webServerHandler) getPriceInfo(c *ginFramework.Context) {
	asset, err := parseAddress(c.Param("asset"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	info, err := handler.provider.GetPriceInfo(c.Request.Context(), asset)
	if err != nil {
		respondError(c, statusCodeFor(err), err)
		return
	}

	c.JSON(http.StatusOK, ginFramework.H{
		"asset":   asset.Hex(),
		"price":   info.Price.String(),
		"isAlive": info.IsAlive,
	})
}

func (handler *webServerHandler) getFeeds(c *ginFramework.Context) {
	assets := handler.admin.Assets()
	hexAssets := make([]string, 0, len(assets))
	for _, asset := range assets {
		hexAssets = append(hexAssets, asset.Hex())
	}

	c.JSON(http.StatusOK, ginFramework.H{
		"assets":              hexAssets,
		"staleTimeoutSeconds": handler.admin.StaleTimeout(),
	})
}

func (handler *webServerHandler) setFeed(c *ginFramework.Context) {
	var payload setFeedPayload
	err := c.ShouldBindJSON(&payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	asset, err := parseAddress(payload.Asset)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	args := composer.ArgsSetFeed{
		Asset:               asset,
		Legs:                make([]composer.LegSpec, 0, len(payload.Legs)),
		Thresholds:          make([]composer.ThresholdSpec, 0, len(payload.Legs)),
		StaleTimeoutSeconds: payload.StaleTimeoutSeconds,
	}
	for _, leg := range payload.Legs {
		kind, errParse := composer.ParseLegKind(leg.Kind)
		if errParse != nil {
			respondError(c, http.StatusBadRequest, errParse)
			return
		}

		source, errParse := parseAddress(leg.Source)
		if errParse != nil {
			respondError(c, http.StatusBadRequest, errParse)
			return
		}

		threshold, errParse := parseThreshold(leg.LowerThresholdInBase, leg.FixedPriceInBase)
		if errParse != nil {
			respondError(c, http.StatusBadRequest, errParse)
			return
		}

		args.Legs = append(args.Legs, composer.LegSpec{Kind: kind, Source: source})
		args.Thresholds = append(args.Thresholds, threshold)
	}

	err = handler.admin.SetFeed(c.Request.Context(), capabilityFrom(c), args)
	if err != nil {
		respondError(c, statusCodeFor(err), err)
		return
	}

	c.JSON(http.StatusOK, ginFramework.H{"asset": asset.Hex()})
}

func (handler *webServerHandler) updateFeed(c *ginFramework.Context) {
	asset, err := parseAddress(c.Param("asset"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	var payload updateFeedPayload
	err = c.ShouldBindJSON(&payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	args := composer.ArgsUpdateFeed{
		Asset:      asset,
		Thresholds: make([]composer.ThresholdSpec, 0, len(payload.Thresholds)),
	}
	for _, threshold := range payload.Thresholds {
		parsed, errParse := parseThreshold(threshold.LowerThresholdInBase, threshold.FixedPriceInBase)
		if errParse != nil {
			respondError(c, http.StatusBadRequest, errParse)
			return
		}

		args.Thresholds = append(args.Thresholds, parsed)
	}

	err = handler.admin.UpdateFeed(c.Request.Context(), capabilityFrom(c), args)
	if err != nil {
		respondError(c, statusCodeFor(err), err)
		return
	}

	c.JSON(http.StatusOK, ginFramework.H{"asset": asset.Hex()})
}

func (handler *webServerHandler) removeFeed(c *ginFramework.Context) {
	asset, err := parseAddress(c.Param("asset"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	err = handler.admin.RemoveFeed(capabilityFrom(c), asset)
	if err != nil {
		respondError(c, statusCodeFor(err), err)
		return
	}

	c.JSON(http.StatusOK, ginFramework.H{"asset": asset.Hex()})
}

func (handler *webServerHandler) setStaleTimeout(c *ginFramework.Context) {
	var payload staleTimeoutPayload
	err := c.ShouldBindJSON(&payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	err = handler.admin.SetStaleTimeout(capabilityFrom(c), payload.Seconds)
	if err != nil {
		respondError(c, statusCodeFor(err), err)
		return
	}

	c.JSON(http.StatusOK, ginFramework.H{"staleTimeoutSeconds": payload.Seconds})
}

func capabilityFrom(c *ginFramework.Context) composer.AuthToken {
	return composer.AuthToken(c.GetHeader(managerKeyHeader))
}

func parseAddress(value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, errInvalidAddress
	}

	return common.HexToAddress(value), nil
}

func parseThreshold(lower string, fixed string) (composer.ThresholdSpec, error) {
	lowerValue, err := parseBigInt(lower)
	if err != nil {
		return composer.ThresholdSpec{}, err
	}

	fixedValue, err := parseBigInt(fixed)
	if err != nil {
		return composer.ThresholdSpec{}, err
	}

	return composer.ThresholdSpec{
		LowerThresholdInBase: lowerValue,
		FixedPriceInBase:     fixedValue,
	}, nil
}

func parseBigInt(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return big.NewInt(0), nil
	}

	parsed, ok := big.NewInt(0).SetString(trimmed, 10)
	if !ok {
		return nil, errInvalidBigInt
	}

	return parsed, nil
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, composer.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, composer.ErrFeedNotSet):
		return http.StatusNotFound
	case errors.Is(err, composer.ErrFeedAlreadySet), errors.Is(err, composer.ErrPriceIsStale):
		return http.StatusConflict
	case errors.Is(err, composer.ErrInvalidUnit),
		errors.Is(err, composer.ErrInvalidRateProviderUnit),
		errors.Is(err, composer.ErrInvalidFeedDecimals),
		errors.Is(err, composer.ErrInvalidStaleTimeout),
		errors.Is(err, composer.ErrInvalidLegsCount),
		errors.Is(err, composer.ErrInvalidLegKind),
		errors.Is(err, composer.ErrEmptySourceAddress),
		errors.Is(err, composer.ErrMismatchThresholdsLen),
		errors.Is(err, composer.ErrNilThreshold),
		errors.Is(err, composer.ErrNegativeThreshold):
		return http.StatusBadRequest
	case errors.Is(err, composer.ErrFeedPriceNotPositive),
		errors.Is(err, composer.ErrRateProviderReturnedZero),
		errors.Is(err, composer.ErrFeedDecimalsChanged):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

func respondError(c *ginFramework.Context, statusCode int, err error) {
	c.JSON(statusCode, ginFramework.H{"error": err.Error()})
}
