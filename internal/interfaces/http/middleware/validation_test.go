package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boutique/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/orders", func(c *gin.Context) {
		var req dto.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeDetails(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	out := map[string]string{}
	for _, d := range resp.Error.Details {
		out[d.Field] = d.Message
	}
	return out
}

func TestValidation_CheckoutPayload(t *testing.T) {
	router := newValidationRouter()

	t.Run("non cash payment needs a transaction id", func(t *testing.T) {
		w := postJSON(router, `{
			"items": [{"productId": 1, "name": "Ring", "price": 100, "quantity": 1}],
			"shippingAddress": "Dhaka", "customerName": "Rina", "customerPhone": "01700000000",
			"paymentMethod": "bkash"
		}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		details := decodeDetails(t, w)
		assert.Equal(t, "This field is required for the selected payment method", details["transactionId"])
	})

	t.Run("nested item fields are reported by path", func(t *testing.T) {
		w := postJSON(router, `{
			"items": [{"productId": 1, "name": "Ring", "price": 100, "quantity": 0}],
			"shippingAddress": "Dhaka", "customerName": "Rina", "customerPhone": "01700000000",
			"paymentMethod": "cash_on_delivery"
		}`)

		details := decodeDetails(t, w)
		assert.Contains(t, details, "items[0].quantity")
	})

	t.Run("unknown payment method", func(t *testing.T) {
		w := postJSON(router, `{
			"items": [{"productId": 1, "name": "Ring", "price": 100, "quantity": 1}],
			"shippingAddress": "Dhaka", "customerName": "Rina", "customerPhone": "01700000000",
			"paymentMethod": "crypto"
		}`)

		details := decodeDetails(t, w)
		assert.Contains(t, details["paymentMethod"], "Must be one of")
	})

	t.Run("malformed json", func(t *testing.T) {
		w := postJSON(router, `{"items": [`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, decodeDetails(t, w))
	})

	t.Run("valid cash on delivery order", func(t *testing.T) {
		w := postJSON(router, `{
			"items": [{"productId": 1, "name": "Ring", "price": "100.50", "quantity": 2}],
			"shippingAddress": "Dhaka", "customerName": "Rina", "customerPhone": "01700000000",
			"paymentMethod": "cash_on_delivery", "totalAmount": 1
		}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
