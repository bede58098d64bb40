package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukhma0c/cookies-manager/internal/cache"
	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/service"
	"github.com/mukhma0c/cookies-manager/internal/store/memory"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	noop := cache.Noop{}
	costing := service.NewCostingService(st, noop)
	handler := NewHandler(
		service.NewInventoryService(st, noop, costing, nil),
		service.NewStockService(st, noop, nil),
		costing,
		service.NewOrderService(st, noop, costing, nil),
		service.NewReportService(st, 5),
	)

	router := gin.New()
	handler.SetupRoutes(router)
	return router, st
}

func TestPreviewOrderCostEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	ctx := context.Background()

	flour := &models.StockItem{Kind: models.KindIngredient, Name: "flour", DefaultUnit: "g"}
	require.NoError(t, st.CreateStockItem(ctx, flour))
	require.NoError(t, st.CreatePurchase(ctx, &models.Purchase{
		ItemKind: models.KindIngredient, ItemID: flour.ID,
		PurchaseDate: time.Now(), Quantity: 1000,
		TotalCostCents: 4000, UnitCostMillicents: 4000,
	}))

	body, _ := json.Marshal(map[string]interface{}{
		"ingredients": []map[string]interface{}{
			{"id": flour.ID, "amount": 250},
		},
		"packaging":        []map[string]interface{}{},
		"quantity":         24,
		"sale_price_cents": 4800,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/cost-preview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp service.PreviewCostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1000), resp.IngredientCostCents)
	assert.Equal(t, int64(1000), resp.TotalCostCents)
	assert.Equal(t, int64(42), resp.CostPerCookieCents)
	assert.Equal(t, int64(3800), resp.MarginCents)
}

func TestGetStockItemNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/ingredient/42", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidKindRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/widgets", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
