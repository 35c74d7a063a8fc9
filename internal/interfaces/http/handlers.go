package httpinterface

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) createListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := s.listingSvc.MakeListing(
		c.Request.Context(), callerFromContext(c), req.AssetID, req.Price,
	)
	if err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toListingResponse(*listing))
}

func (s *Server) changeListingPrice(c *gin.Context) {
	var req changePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := s.listingSvc.ChangeListingPrice(
		c.Request.Context(), callerFromContext(c), c.Param("assetId"), req.Price,
	)
	if err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toListingResponse(*listing))
}

func (s *Server) removeListing(c *gin.Context) {
	if err := s.listingSvc.RemoveListing(
		c.Request.Context(), callerFromContext(c), c.Param("assetId"),
	); err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) getListing(c *gin.Context) {
	listing, err := s.listingSvc.GetListing(
		c.Request.Context(), c.Param("assetId"),
	)
	if err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toListingResponse(*listing))
}

func (s *Server) listListings(c *gin.Context) {
	listings, err := s.listingSvc.ListListings(c.Request.Context())
	if err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toListingListResponse(listings))
}

func (s *Server) previewPurchase(c *gin.Context) {
	price, fee, payout, err := s.tradeSvc.PreviewPurchase(
		c.Request.Context(), c.Param("assetId"),
	)
	if err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, previewResponse{price, fee, payout})
}

func (s *Server) buyListing(c *gin.Context) {
	var req buyListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := s.tradeSvc.BuyListing(
		c.Request.Context(), callerFromContext(c), req.AssetID, req.Amount,
	)
	if err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toSaleResponse(*sale))
}

func (s *Server) getInfo(c *gin.Context) {
	info, err := s.operatorSvc.GetInfo(c.Request.Context())
	if err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admin":            info.Admin,
		"exchange_account": info.ExchangeAccount,
		"fee_percentage":   info.FeePercentage,
		"active_listings":  info.ActiveListings,
	})
}

func (s *Server) setFeePercentage(c *gin.Context) {
	var req setFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.operatorSvc.SetFeePercentage(
		c.Request.Context(), callerFromContext(c), req.Percentage,
	); err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) setAssetRegistry(c *gin.Context) {
	var req setRegistryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if s.registryFactory == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "registry rotation is not supported by this backend",
		})
		return
	}

	registry, err := s.registryFactory(req.ContractAddress)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.operatorSvc.SetAssetRegistry(
		c.Request.Context(), callerFromContext(c), registry,
	); err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listSales(c *gin.Context) {
	sales, err := s.operatorSvc.ListSales(
		c.Request.Context(), callerFromContext(c),
	)
	if err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toSaleListResponse(sales))
}

func (s *Server) addWebhook(c *gin.Context) {
	var req addWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := s.operatorSvc.AddWebhook(
		c.Request.Context(), callerFromContext(c),
		req.Topic, req.Endpoint, req.Secret,
	)
	if err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) removeWebhook(c *gin.Context) {
	if err := s.operatorSvc.RemoveWebhook(
		c.Request.Context(), callerFromContext(c), c.Param("id"),
	); err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listWebhooks(c *gin.Context) {
	subs, err := s.operatorSvc.ListWebhooks(
		c.Request.Context(), callerFromContext(c), c.Query("topic"),
	)
	if err != nil {
		c.JSON(errStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toWebhookListResponse(subs))
}
