package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cryptofeed/docs"
	"cryptofeed/internal/aggregate"
	"cryptofeed/internal/provider"
)

const (
	headerRequestID        = "X-Request-ID"
	headerProviderFailures = "X-Provider-Failures"

	// statusClientClosed is written when the caller went away before the join.
	statusClientClosed = 499

	ctxLogger = "logger"
)

// engine is the part of the aggregator the handlers use.
type engine interface {
	Quotes(ctx context.Context, coin provider.Coin, currencies []provider.Currency) (aggregate.PriceSet, error)
	GasPrice(ctx context.Context, name string) (provider.GasEstimate, error)
}

type routerConfig struct {
	Log            logrus.FieldLogger
	Gatherer       prometheus.Gatherer
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func newRouter(svc engine, cfg routerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(cfg.Log), accessLog(), corsMiddleware(cfg.CORSOrigins))
	r.Use(compress()...)
	if cfg.RequestTimeout > 0 {
		r.Use(requestTimeout(cfg.RequestTimeout))
	}

	h := handlers{svc: svc}
	v1 := r.Group("/api/v1")
	v1.GET("/health", h.health)
	v1.GET("/price/prices", h.prices)
	v1.GET("/gas/prices", h.gas)

	r.GET("/api-docs/openapi.json", apiDoc)
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/api-docs/openapi.json")))

	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

type handlers struct {
	svc engine
}

func apiDoc(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(docs.SwaggerInfo.ReadDoc()))
}

// health godoc
// @Summary  Liveness check
// @Tags     health
// @Produce  plain
// @Success  200  {string}  string  "cryptofeed is running"
// @Router   /health [get]
func (h handlers) health(c *gin.Context) {
	c.String(http.StatusOK, "cryptofeed is running")
}

// prices serves GET /api/v1/price/prices?amount=<decimal>&currency=<code[,code]>&coin=<ticker>.
//
// @Summary  Quotes from every price provider
// @Tags     price
// @Produce  json
// @Param    amount    query     string  false  "amount of coin to price"         default(1)
// @Param    currency  query     string  false  "comma-separated currency codes"  default(USD)
// @Param    coin      query     string  false  "coin ticker"                     default(ETH)
// @Success  200       {array}   provider.Quote
// @Header   200       {string}  X-Provider-Failures  "ids of providers that failed"
// @Failure  400       {object}  errorResponse
// @Failure  502       {object}  errorResponse
// @Failure  504       {object}  errorResponse
// @Router   /price/prices [get]
func (h handlers) prices(c *gin.Context) {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.DefaultQuery("amount", "1")))
	if err != nil || !amount.IsPositive() {
		renderError(c, invalidInput("amount must be a positive decimal"))
		return
	}
	coin, err := provider.ParseCoin(c.DefaultQuery("coin", string(provider.ETH)))
	if err != nil {
		renderError(c, wrapInvalid(err))
		return
	}
	currencies, err := provider.ParseCurrencies(strings.Split(c.DefaultQuery("currency", string(provider.USD)), ","))
	if err != nil {
		renderError(c, wrapInvalid(err))
		return
	}

	set, err := h.svc.Quotes(c.Request.Context(), coin, currencies)
	if err != nil {
		renderError(c, err)
		return
	}

	quotes := set.Flatten()
	for i := range quotes {
		quotes[i] = quotes[i].WithAmount(amount)
	}
	if failed := set.FailedProviders(); len(failed) > 0 {
		ids := make([]string, len(failed))
		for i, id := range failed {
			ids[i] = string(id)
		}
		c.Header(headerProviderFailures, strings.Join(ids, ","))
		for _, f := range set.Failures {
			logger(c).WithFields(logrus.Fields{"provider": f.Provider, "kind": f.Kind}).Info("serving partial price set")
		}
	}
	c.JSON(http.StatusOK, quotes)
}

type gasResponse struct {
	GasPrice provider.GasEstimate `json:"gas_price"`
	Provider provider.ID          `json:"provider" enums:"etherscan,rpc"`
}

// gas serves GET /api/v1/gas/prices?provider=<name>. The response names the
// canonical oracle id, so the alias "alloy" answers as "rpc".
//
// @Summary  Gas price estimate in gwei
// @Tags     gas
// @Produce  json
// @Param    provider  query     string  false  "gas oracle: etherscan, rpc or alloy; empty selects the default"
// @Success  200       {object}  gasResponse
// @Failure  400       {object}  errorResponse
// @Failure  502       {object}  errorResponse
// @Failure  503       {object}  errorResponse
// @Failure  504       {object}  errorResponse
// @Router   /gas/prices [get]
func (h handlers) gas(c *gin.Context) {
	est, err := h.svc.GasPrice(c.Request.Context(), c.Query("provider"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gasResponse{GasPrice: est, Provider: est.Provider})
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind      provider.Kind     `json:"kind" swaggertype:"string" example:"aggregate_failure"`
	Message   string            `json:"message"`
	Providers []providerFailure `json:"providers,omitempty"`
}

type providerFailure struct {
	Provider provider.ID   `json:"provider"`
	Kind     provider.Kind `json:"kind" swaggertype:"string" example:"rate_limited"`
	Message  string        `json:"message"`
}

func renderError(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		c.Writer.Header().Del("Content-Encoding")
		c.Writer.Header().Del("Vary")
		c.AbortWithStatus(statusClientClosed)
		return
	}
	kind := provider.KindOf(err)
	status := statusFor(kind)

	body := errorBody{Kind: kind, Message: err.Error()}
	var agg *provider.AggregateError
	var pe *provider.ProviderError
	switch {
	case errors.As(err, &agg):
		for _, f := range agg.Errors {
			body.Providers = append(body.Providers, providerFailure{Provider: f.Provider, Kind: f.Kind, Message: f.Err.Error()})
		}
		body.Message = "all providers failed"
	case errors.As(err, &pe):
		body.Providers = []providerFailure{{Provider: pe.Provider, Kind: pe.Kind, Message: pe.Err.Error()}}
	}

	entry := logger(c).WithField("kind", kind).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Warn("request failed")
	} else {
		entry.Debug("request rejected")
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: body})
}

func statusFor(kind provider.Kind) int {
	switch kind {
	case provider.KindInvalidInput:
		return http.StatusBadRequest
	case provider.KindUpstreamUnavailable:
		return http.StatusGatewayTimeout
	case provider.KindConfiguration:
		return http.StatusServiceUnavailable
	case provider.KindAggregateFailure,
		provider.KindUpstreamRejected,
		provider.KindRateLimited,
		provider.KindMalformedResponse,
		provider.KindStaleData:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func invalidInput(msg string) error {
	return wrapInvalid(errors.New(msg))
}

func wrapInvalid(err error) error {
	if errors.Is(err, provider.ErrInvalidInput) {
		return err
	}
	return errors.Join(provider.ErrInvalidInput, err)
}
