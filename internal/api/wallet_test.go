package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/repositories"
	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/services/ledger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter wires the wallet routes against the in-memory store. The redis
// client points at a closed port, so every cache call misses and the handlers
// take their database path.
func newTestRouter(userID int64) (*gin.Engine, *repositories.MemoryWalletRepository) {
	gin.SetMode(gin.TestMode)
	repo := repositories.NewMemoryWalletRepository()
	svc := ledger.NewService(repo, ledger.DefaultMaxRetries)
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID) // Stand-in for the JWT middleware
		c.Next()
	})
	r.POST("/wallet", CreateWalletHandler(svc))
	r.GET("/wallet/balance", GetBalanceHandler(svc, rdb))
	r.POST("/wallet/topup", TopUpHandler(svc, rdb))
	r.POST("/wallet/deduct", DeductHandler(svc, rdb))
	r.GET("/wallet/transactions", HistoryHandler(svc, rdb))
	return r, repo
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getPath(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTopUpAndDeductFlow(t *testing.T) {
	r, _ := newTestRouter(42)

	// Top up 500.00
	w := postJSON(t, r, "/wallet/topup", gin.H{"amount": "500.00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var topup FundResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &topup))
	assert.True(t, topup.Success)
	assert.True(t, topup.Balance.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, "INR", topup.Currency)
	assert.NotEmpty(t, topup.TransactionID, "a reference is generated when none is supplied")

	// Deduct 120.00
	w = postJSON(t, r, "/wallet/deduct", gin.H{"amount": "120.00", "reference_id": "order-2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var deduct FundResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deduct))
	assert.True(t, deduct.Balance.Equal(decimal.RequireFromString("380.00")))
	assert.Equal(t, "order-2", deduct.TransactionID)

	// History shows both entries, newest first
	w = getPath(r, "/wallet/transactions")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Entries []struct {
			Type string `json:"type"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Entries, 2)
	assert.Equal(t, "DEBIT", history.Entries[0].Type)
	assert.Equal(t, "CREDIT", history.Entries[1].Type)
}

func TestDeductBeyondBalance(t *testing.T) {
	r, _ := newTestRouter(7)

	w := postJSON(t, r, "/wallet/topup", gin.H{"amount": "100.00"})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, r, "/wallet/deduct", gin.H{"amount": "100.01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Error     string          `json:"error"`
		Available decimal.Decimal `json:"available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Insufficient balance", resp.Error)
	assert.True(t, resp.Available.Equal(decimal.RequireFromString("100.00")))
}

func TestInvalidFundRequests(t *testing.T) {
	r, _ := newTestRouter(7)

	// Non-positive amount
	w := postJSON(t, r, "/wallet/topup", gin.H{"amount": "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// More than two decimal places
	w = postJSON(t, r, "/wallet/topup", gin.H{"amount": "1.005"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown reference type
	w = postJSON(t, r, "/wallet/topup", gin.H{"amount": "10.00", "reference_type": "GIFT"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBalanceQueryDoesNotCreateWallet(t *testing.T) {
	r, repo := newTestRouter(9)

	w := getPath(r, "/wallet/balance")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Balance  decimal.Decimal `json:"balance"`
		Currency string          `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Balance.IsZero())
	assert.Equal(t, "INR", resp.Currency)

	_, err := repo.Find(t.Context(), 9)
	assert.ErrorIs(t, err, repositories.ErrWalletNotFound)
}

func TestCreateWalletIsIdempotent(t *testing.T) {
	r, _ := newTestRouter(5)

	w := postJSON(t, r, "/wallet", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	var first struct {
		Wallet struct {
			WalletID uint `json:"wallet_id"`
		} `json:"wallet"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = postJSON(t, r, "/wallet", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	var second struct {
		Wallet struct {
			WalletID uint `json:"wallet_id"`
		} `json:"wallet"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.Wallet.WalletID, second.Wallet.WalletID)
}
