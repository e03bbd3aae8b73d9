package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.SettlementOutcome("settled", 30)
	m.SettlementOutcome("already_settled", 0)
	m.RequestSubmitted()
	m.AdCreated("sell")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Settlements.WithLabelValues("settled")))
	assert.Equal(t, float64(30), testutil.ToFloat64(m.CreditsSettled))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TradeRequests))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AdsCreated.WithLabelValues("sell")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SettlementOutcome("settled", 1)
		m.RequestSubmitted()
		m.AdCreated("buy")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.SettlementOutcome("settled", 5)
	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "trade_credits_settled_total 5")
}
