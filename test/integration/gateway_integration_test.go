//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/library-circulation/internal/adapters/clients"
	"github.com/jsamuelsen/library-circulation/internal/adapters/clients/acl"
	"github.com/jsamuelsen/library-circulation/internal/adapters/http/middleware"
	"github.com/jsamuelsen/library-circulation/internal/adapters/storage/memory"
	"github.com/jsamuelsen/library-circulation/internal/app"
	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/platform/config"
	"github.com/jsamuelsen/library-circulation/internal/wiring"
)

// fakeGateway is an HTTP payment gateway with a charge ledger.
type fakeGateway struct {
	mu       sync.Mutex
	charges  map[string]decimal.Decimal
	refunded map[string]decimal.Decimal
	keys     []string
	headers  []http.Header

	// failures makes the next n requests answer 503.
	failures atomic.Int32
	// down makes every request answer 500.
	down atomic.Bool
	// declineAbove declines charges above this amount when positive.
	declineAbove decimal.Decimal
}

func newFakeGateway(t *testing.T) (*fakeGateway, *httptest.Server) {
	t.Helper()

	g := &fakeGateway{
		charges:  make(map[string]decimal.Decimal),
		refunded: make(map[string]decimal.Decimal),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		if g.down.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/charges", g.charge)
	mux.HandleFunc("POST /v1/refunds", g.refund)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return g, server
}

func (g *fakeGateway) record(r *http.Request) bool {
	g.mu.Lock()
	g.keys = append(g.keys, r.Header.Get(acl.IdempotencyKeyHeader))
	g.headers = append(g.headers, r.Header.Clone())
	g.mu.Unlock()

	if g.down.Load() {
		return false
	}

	for {
		n := g.failures.Load()
		if n <= 0 {
			return true
		}

		if g.failures.CompareAndSwap(n, n-1) {
			return false
		}
	}
}

func (g *fakeGateway) charge(w http.ResponseWriter, r *http.Request) {
	if !g.record(r) {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	amount := decimal.RequireFromString(req.Amount)
	if g.declineAbove.IsPositive() && amount.GreaterThan(g.declineAbove) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"code":"card_declined","message":"Insufficient funds"}}`))

		return
	}

	id := domain.TransactionIDPrefix + uuid.NewString()

	g.mu.Lock()
	g.charges[id] = amount
	g.mu.Unlock()

	writeJSON(w, map[string]string{"id": id, "status": "approved", "message": "charged"})
}

func (g *fakeGateway) refund(w http.ResponseWriter, r *http.Request) {
	if !g.record(r) {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	var req struct {
		TransactionID string `json:"transaction_id"`
		Amount        string `json:"amount"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	amount := decimal.RequireFromString(req.Amount)

	g.mu.Lock()
	defer g.mu.Unlock()

	charged, ok := g.charges[req.TransactionID]
	if !ok || g.refunded[req.TransactionID].Add(amount).GreaterThan(charged) {
		writeJSON(w, map[string]string{"status": "declined", "message": "Refund exceeds original charge"})
		return
	}

	g.refunded[req.TransactionID] = g.refunded[req.TransactionID].Add(amount)
	writeJSON(w, map[string]string{"id": "rf_" + uuid.NewString(), "status": "approved", "message": "refunded"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func gatewayConfig(baseURL string) (*config.PaymentConfig, *config.ClientConfig) {
	return &config.PaymentConfig{
			Provider: config.PaymentProviderHTTP,
			Name:     "fake-gateway",
			BaseURL:  baseURL,
			APIKey:   "sk_integration",
		}, &config.ClientConfig{
			Timeout: 2 * time.Second,
			Retry: config.RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 10 * time.Millisecond,
				MaxInterval:     50 * time.Millisecond,
				Multiplier:      2,
			},
			CircuitBreaker: config.CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Minute, HalfOpenLimit: 1},
			Transport:      config.TransportConfig{MaxIdleConns: 4, MaxIdleConnsPerHost: 4, IdleConnTimeout: time.Second},
		}
}

// overdueLoan puts one overdue loan of a single-copy book on patron 123456
// and returns the services wired to store.
type overdueLoan struct {
	store       *memory.Store
	bookID      int64
	circulation *app.CirculationService
	payments    *app.PaymentService
}

func newOverdueLoan(t *testing.T) *overdueLoan {
	t.Helper()

	ctx := context.Background()
	borrowedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	now := borrowedAt

	store := memory.New()
	catalog := app.NewCatalogService(app.CatalogServiceConfig{Store: store})
	circulation := app.NewCirculationService(app.CirculationServiceConfig{
		Store: store,
		Clock: func() time.Time { return now },
	})

	id, err := catalog.AddBook(ctx, app.AddBookInput{
		Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", TotalCopies: 1,
	})
	require.NoError(t, err)

	_, err = circulation.Borrow(ctx, "123456", id)
	require.NoError(t, err)

	// 14 day loan plus 10 days late: 7 x 0.50 + 3 x 1.00.
	now = borrowedAt.AddDate(0, 0, 24)

	return &overdueLoan{
		store:       store,
		bookID:      id,
		circulation: circulation,
		payments:    app.NewPaymentService(app.PaymentServiceConfig{Circulation: circulation, Store: store}),
	}
}

func TestHTTPGateway_PayAndRefund(t *testing.T) {
	fake, server := newFakeGateway(t)
	payment, client := gatewayConfig(server.URL)

	gateway, err := wiring.NewGateway(payment, client, nil)
	require.NoError(t, err)

	loan := newOverdueLoan(t)
	ctx := context.Background()

	receipt, err := loan.payments.PayLateFees(ctx, "123456", loan.bookID, gateway)
	require.NoError(t, err)
	assert.True(t, receipt.Amount.Equal(decimal.RequireFromString("6.50")), receipt.Amount.String())
	assert.True(t, domain.IsValidTransactionID(receipt.TransactionID))

	_, err = loan.payments.RefundLateFeePayment(ctx, receipt.TransactionID, decimal.RequireFromString("4.00"), gateway)
	require.NoError(t, err)

	_, err = loan.payments.RefundLateFeePayment(ctx, receipt.TransactionID, decimal.RequireFromString("4.00"), gateway)
	assert.Equal(t, domain.KindRefundFailed, domain.KindOf(err))

	require.NotEmpty(t, fake.headers)
	assert.Equal(t, "Bearer sk_integration", fake.headers[0].Get("Authorization"))
}

func TestHTTPGateway_RetriesKeepIdempotencyKey(t *testing.T) {
	fake, server := newFakeGateway(t)
	fake.failures.Store(2)

	payment, client := gatewayConfig(server.URL)
	gateway, err := wiring.NewGateway(payment, client, nil)
	require.NoError(t, err)

	loan := newOverdueLoan(t)

	_, err = loan.payments.PayLateFees(context.Background(), "123456", loan.bookID, gateway)
	require.NoError(t, err)

	require.Len(t, fake.keys, 3)
	assert.NotEmpty(t, fake.keys[0])
	assert.Equal(t, fake.keys[0], fake.keys[1])
	assert.Equal(t, fake.keys[0], fake.keys[2])
}

func TestHTTPGateway_Declined(t *testing.T) {
	fake, server := newFakeGateway(t)
	fake.declineAbove = decimal.RequireFromString("5.00")

	payment, client := gatewayConfig(server.URL)
	gateway, err := wiring.NewGateway(payment, client, nil)
	require.NoError(t, err)

	loan := newOverdueLoan(t)

	_, err = loan.payments.PayLateFees(context.Background(), "123456", loan.bookID, gateway)
	require.Error(t, err)
	assert.Equal(t, domain.KindPaymentDeclined, domain.KindOf(err))
	assert.Contains(t, domain.Describe(err), "Insufficient funds")
}

func TestHTTPGateway_OutageOpensCircuit(t *testing.T) {
	fake, server := newFakeGateway(t)
	fake.down.Store(true)

	payment, clientCfg := gatewayConfig(server.URL)
	clientCfg.Retry.MaxAttempts = 1

	gateway, err := wiring.NewGateway(payment, clientCfg, nil)
	require.NoError(t, err)

	loan := newOverdueLoan(t)
	ctx := context.Background()

	for range 2 {
		_, err = loan.payments.PayLateFees(ctx, "123456", loan.bookID, gateway)
		assert.Equal(t, domain.KindPaymentGatewayError, domain.KindOf(err))
	}

	calls := len(fake.keys)

	_, err = loan.payments.PayLateFees(ctx, "123456", loan.bookID, gateway)
	assert.Equal(t, domain.KindPaymentGatewayError, domain.KindOf(err))
	assert.Len(t, fake.keys, calls, "open circuit must not reach the gateway")

	require.ErrorIs(t, gateway.Check(ctx), clients.ErrCircuitOpen)

	// The loan is untouched by the failed payments.
	quote, err := loan.circulation.QuoteLateFee(ctx, "123456", loan.bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.FeeOverdue, quote.Status)
}

func TestHTTPGateway_PropagatesRequestIDs(t *testing.T) {
	fake, server := newFakeGateway(t)

	payment, client := gatewayConfig(server.URL)
	gateway, err := wiring.NewGateway(payment, client, nil)
	require.NoError(t, err)

	loan := newOverdueLoan(t)

	ctx := middleware.ContextWithRequestID(context.Background(), "req-integration-1")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-integration-1")

	_, err = loan.payments.PayLateFees(ctx, "123456", loan.bookID, gateway)
	require.NoError(t, err)

	require.Len(t, fake.headers, 1)
	assert.Equal(t, "req-integration-1", fake.headers[0].Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-integration-1", fake.headers[0].Get(middleware.HeaderCorrelationID))
	assert.True(t, strings.HasPrefix(fake.headers[0].Get("Content-Type"), "application/json"))
}
