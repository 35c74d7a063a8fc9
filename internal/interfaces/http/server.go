package httpinterface

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/escrowmarket/marketd/internal/core/application/listing"
	"github.com/escrowmarket/marketd/internal/core/application/operator"
	"github.com/escrowmarket/marketd/internal/core/application/trade"
	"github.com/escrowmarket/marketd/internal/core/ports"
)

// RegistryFactory builds an asset registry gateway from the address of its
// backing contract, used by the admin registry rotation endpoint.
type RegistryFactory func(contractAddress string) (ports.AssetRegistry, error)

// ServerOpts groups the dependencies of the HTTP interface.
type ServerOpts struct {
	ListenAddr      string
	AuthSecret      []byte
	ListingSvc      *listing.Service
	TradeSvc        *trade.Service
	OperatorSvc     *operator.Service
	EventHub        *EventHub
	RegistryFactory RegistryFactory
}

func (o ServerOpts) validate() error {
	if len(o.ListenAddr) <= 0 {
		return fmt.Errorf("missing listen address")
	}
	if len(o.AuthSecret) <= 0 {
		return fmt.Errorf("missing auth secret")
	}
	if o.ListingSvc == nil {
		return fmt.Errorf("missing listing service")
	}
	if o.TradeSvc == nil {
		return fmt.Errorf("missing trade service")
	}
	if o.OperatorSvc == nil {
		return fmt.Errorf("missing operator service")
	}
	if o.EventHub == nil {
		return fmt.Errorf("missing event hub")
	}
	return nil
}

// Server is the HTTP interface of the daemon, exposing the public listing
// and trade surface along with the admin-gated operator surface.
type Server struct {
	listingSvc      *listing.Service
	tradeSvc        *trade.Service
	operatorSvc     *operator.Service
	eventHub        *EventHub
	registryFactory RegistryFactory

	httpServer *http.Server
}

func NewServer(opts ServerOpts) (*Server, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	s := &Server{
		listingSvc:      opts.ListingSvc,
		tradeSvc:        opts.TradeSvc,
		operatorSvc:     opts.OperatorSvc,
		eventHub:        opts.EventHub,
		registryFactory: opts.RegistryFactory,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/v1/events/ws", s.streamEvents)

	public := router.Group("/v1")
	public.GET("/info", s.getInfo)
	public.GET("/listings", s.listListings)
	public.GET("/listings/:assetId", s.getListing)
	public.GET("/listings/:assetId/preview", s.previewPurchase)

	authed := router.Group("/v1", authMiddleware(opts.AuthSecret))
	authed.POST("/listings", s.createListing)
	authed.PUT("/listings/:assetId/price", s.changeListingPrice)
	authed.DELETE("/listings/:assetId", s.removeListing)
	authed.POST("/trades", s.buyListing)

	admin := router.Group("/v1/admin", authMiddleware(opts.AuthSecret))
	admin.PUT("/fee", s.setFeePercentage)
	admin.PUT("/registry", s.setAssetRegistry)
	admin.GET("/sales", s.listSales)
	admin.POST("/webhooks", s.addWebhook)
	admin.GET("/webhooks", s.listWebhooks)
	admin.DELETE("/webhooks/:id", s.removeWebhook)

	s.httpServer = &http.Server{Addr: opts.ListenAddr, Handler: router}
	return s, nil
}

// Handler returns the root handler of the interface.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves the HTTP interface until Stop is called. It blocks.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil &&
		err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
