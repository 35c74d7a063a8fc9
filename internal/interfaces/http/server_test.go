package httpinterface_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"

	"github.com/escrowmarket/marketd/internal/core/application/listing"
	"github.com/escrowmarket/marketd/internal/core/application/operator"
	"github.com/escrowmarket/marketd/internal/core/application/pubsub"
	"github.com/escrowmarket/marketd/internal/core/application/settings"
	"github.com/escrowmarket/marketd/internal/core/application/trade"
	inmemorybank "github.com/escrowmarket/marketd/internal/infrastructure/bank/inmemory"
	webhookpubsub "github.com/escrowmarket/marketd/internal/infrastructure/pubsub"
	inmemoryregistry "github.com/escrowmarket/marketd/internal/infrastructure/registry/inmemory"
	"github.com/escrowmarket/marketd/internal/infrastructure/storage/db/inmemory"
	httpinterface "github.com/escrowmarket/marketd/internal/interfaces/http"
)

const (
	adminID    = "admin"
	exchangeID = "exchange"
	sellerID   = "seller"
	buyerID    = "buyer"
	assetID    = "42"
)

var authSecret = []byte("test-secret")

type testDaemon struct {
	server   *httptest.Server
	registry *inmemoryregistry.Registry
	bank     *inmemorybank.Bank
}

func newTestDaemon(t *testing.T) *testDaemon {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := inmemoryregistry.NewRegistry()
	bank := inmemorybank.NewBank()
	marketSettings, err := settings.NewSettings(adminID, exchangeID, 5, registry)
	require.NoError(t, err)

	pubsubSvc, err := pubsub.NewService(webhookpubsub.NewService())
	require.NoError(t, err)

	repoManager := inmemory.NewRepoManager()
	listingSvc, err := listing.NewService(marketSettings, pubsubSvc, repoManager)
	require.NoError(t, err)
	tradeSvc, err := trade.NewService(marketSettings, pubsubSvc, repoManager, bank)
	require.NoError(t, err)
	operatorSvc, err := operator.NewService(marketSettings, pubsubSvc, repoManager)
	require.NoError(t, err)

	registry.RegisterReceiver(exchangeID, listingSvc)

	srv, err := httpinterface.NewServer(httpinterface.ServerOpts{
		ListenAddr:  ":0",
		AuthSecret:  authSecret,
		ListingSvc:  listingSvc,
		TradeSvc:    tradeSvc,
		OperatorSvc: operatorSvc,
		EventHub:    httpinterface.NewEventHub(),
	})
	require.NoError(t, err)

	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)

	return &testDaemon{server, registry, bank}
}

func (d *testDaemon) do(
	t *testing.T, method, path, caller string, body interface{},
) *http.Response {
	t.Helper()

	var reqBody *bytes.Reader = bytes.NewReader(nil)
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, d.server.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if len(caller) > 0 {
		req.Header.Set("Authorization", "Bearer "+signToken(t, caller))
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func signToken(t *testing.T, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject},
	)
	signed, err := token.SignedString(authSecret)
	require.NoError(t, err)
	return signed
}

func TestListingAndTradeRoundTrip(t *testing.T) {
	d := newTestDaemon(t)
	require.NoError(t, d.registry.MintAsset(sellerID, assetID))
	d.bank.Deposit(buyerID, 100)

	// Create the listing.
	res := d.do(t, http.MethodPost, "/v1/listings", sellerID, map[string]interface{}{
		"asset_id": assetID, "price": 100,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	// Anyone can read it back.
	res = d.do(t, http.MethodGet, "/v1/listings/"+assetID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var listingBody map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&listingBody))
	require.Equal(t, sellerID, listingBody["seller"])
	require.EqualValues(t, 100, listingBody["price"])

	// Preview the purchase.
	res = d.do(t, http.MethodGet, "/v1/listings/"+assetID+"/preview", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var preview map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&preview))
	require.EqualValues(t, 5, preview["fee"])
	require.EqualValues(t, 95, preview["payout"])

	// Buy it.
	res = d.do(t, http.MethodPost, "/v1/trades", buyerID, map[string]interface{}{
		"asset_id": assetID, "amount": 100,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var sale map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&sale))
	require.Equal(t, buyerID, sale["buyer"])
	require.EqualValues(t, 95, sale["payout"])

	// The listing is gone.
	res = d.do(t, http.MethodGet, "/v1/listings/"+assetID, "", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	d := newTestDaemon(t)

	res := d.do(t, http.MethodPost, "/v1/listings", "", map[string]interface{}{
		"asset_id": assetID, "price": 100,
	})
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAdminSurface(t *testing.T) {
	d := newTestDaemon(t)

	// Non-admin callers are refused.
	res := d.do(t, http.MethodPut, "/v1/admin/fee", sellerID, map[string]interface{}{
		"percentage": 10,
	})
	require.Equal(t, http.StatusForbidden, res.StatusCode)

	// Out-of-range fee is a bad request.
	res = d.do(t, http.MethodPut, "/v1/admin/fee", adminID, map[string]interface{}{
		"percentage": 101,
	})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = d.do(t, http.MethodPut, "/v1/admin/fee", adminID, map[string]interface{}{
		"percentage": 10,
	})
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res = d.do(t, http.MethodGet, "/v1/info", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var info map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&info))
	require.EqualValues(t, 10, info["fee_percentage"])
}

func TestBuyErrorMapping(t *testing.T) {
	d := newTestDaemon(t)
	require.NoError(t, d.registry.MintAsset(sellerID, assetID))
	d.bank.Deposit(buyerID, 100)

	res := d.do(t, http.MethodPost, "/v1/listings", sellerID, map[string]interface{}{
		"asset_id": assetID, "price": 100,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	// Wrong amount.
	res = d.do(t, http.MethodPost, "/v1/trades", buyerID, map[string]interface{}{
		"asset_id": assetID, "amount": 99,
	})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Self purchase.
	res = d.do(t, http.MethodPost, "/v1/trades", sellerID, map[string]interface{}{
		"asset_id": assetID, "amount": 100,
	})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Unknown asset.
	res = d.do(t, http.MethodPost, "/v1/trades", buyerID, map[string]interface{}{
		"asset_id": "unknown", "amount": 100,
	})
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}
