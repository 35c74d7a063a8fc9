package httpinterface

import (
	"github.com/escrowmarket/marketd/internal/core/domain"
	"github.com/escrowmarket/marketd/internal/core/ports"
)

type createListingRequest struct {
	AssetID string `json:"asset_id" binding:"required"`
	Price   uint64 `json:"price"`
}

type changePriceRequest struct {
	Price uint64 `json:"price"`
}

type buyListingRequest struct {
	AssetID string `json:"asset_id" binding:"required"`
	Amount  uint64 `json:"amount"`
}

type setFeeRequest struct {
	Percentage uint `json:"percentage"`
}

type setRegistryRequest struct {
	ContractAddress string `json:"contract_address" binding:"required"`
}

type addWebhookRequest struct {
	Topic    string `json:"topic" binding:"required"`
	Endpoint string `json:"endpoint" binding:"required"`
	Secret   string `json:"secret"`
}

type listingResponse struct {
	AssetID   string `json:"asset_id"`
	Seller    string `json:"seller"`
	Price     uint64 `json:"price"`
	CreatedAt int64  `json:"created_at"`
}

func toListingResponse(l domain.Listing) listingResponse {
	return listingResponse{l.AssetID, l.Seller, l.Price, l.CreatedAt}
}

func toListingListResponse(listings []domain.Listing) []listingResponse {
	list := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		list = append(list, toListingResponse(l))
	}
	return list
}

type saleResponse struct {
	ID        string `json:"id"`
	AssetID   string `json:"asset_id"`
	Seller    string `json:"seller"`
	Buyer     string `json:"buyer"`
	Price     uint64 `json:"price"`
	Fee       uint64 `json:"fee"`
	Payout    uint64 `json:"payout"`
	SettledAt int64  `json:"settled_at"`
}

func toSaleResponse(s domain.Sale) saleResponse {
	return saleResponse{
		s.ID.String(), s.AssetID, s.Seller, s.Buyer,
		s.Price, s.Fee, s.Payout, s.SettledAt,
	}
}

func toSaleListResponse(sales []domain.Sale) []saleResponse {
	list := make([]saleResponse, 0, len(sales))
	for _, s := range sales {
		list = append(list, toSaleResponse(s))
	}
	return list
}

type webhookResponse struct {
	ID       string `json:"id"`
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secured  bool   `json:"secured"`
}

func toWebhookListResponse(subs []ports.Subscription) []webhookResponse {
	list := make([]webhookResponse, 0, len(subs))
	for _, s := range subs {
		list = append(list, webhookResponse{
			s.Id(), s.Topic(), s.NotifyAt(), s.IsSecured(),
		})
	}
	return list
}

type previewResponse struct {
	Price  uint64 `json:"price"`
	Fee    uint64 `json:"fee"`
	Payout uint64 `json:"payout"`
}
