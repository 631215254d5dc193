package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"gymledger/internal/config"
	"gymledger/internal/infrastructure/database"
	"gymledger/internal/model"
	"gymledger/pkg/response"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestRouter(t *testing.T) (*gorm.DB, http.Handler) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{
				MembershipEvents: "gymledger.membership.events",
				PaymentEvents:    "gymledger.payment.events",
			},
		},
		Business: config.BusinessConfig{
			SweepBatchSize: 100,
			OutboxMaxRetry: 5,
		},
	}

	return db, SetupRouter(db, nil, cfg)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *response.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func TestHealthEndpoint(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestWalletBalanceDefaultsToZero(t *testing.T) {
	_, router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/wallet/balance?member_id=1", nil)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestCreateMembershipEndToEnd(t *testing.T) {
	db, router := newTestRouter(t)

	plan := &model.MembershipPlan{
		Name:         "http plan",
		Price:        decimalFromString(t, "50.00"),
		DurationDays: 30,
		IsActive:     true,
	}
	require.NoError(t, db.Create(plan).Error)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/membership/create", map[string]interface{}{
		"member_id": 701,
		"plan_id":   plan.ID,
		"source":    "ONLINE",
	})
	require.Equal(t, response.CodeSuccess, resp.Code, "message: %s", resp.Message)

	var m model.Membership
	require.NoError(t, db.Where("member_id = ?", 701).First(&m).Error)
	assert.Equal(t, model.MembershipStatusPendingPayment, m.Status)
	// request_id was generated server-side
	assert.NotEmpty(t, m.RequestID)
}

func TestCreateMembershipValidation(t *testing.T) {
	_, router := newTestRouter(t)

	// missing required fields
	resp := doJSON(t, router, http.MethodPost, "/api/v1/membership/create", map[string]interface{}{
		"member_id": 702,
	})
	assert.Equal(t, response.CodeParamError, resp.Code)

	// bad source value
	resp = doJSON(t, router, http.MethodPost, "/api/v1/membership/create", map[string]interface{}{
		"member_id": 702,
		"plan_id":   1,
		"source":    "PHONE",
	})
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestGetMembershipNotFound(t *testing.T) {
	_, router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/membership/detail?id=99999", nil)
	assert.Equal(t, response.CodeNotFound, resp.Code)
}

func TestFreezeInvalidDateFormat(t *testing.T) {
	_, router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/membership/freeze", map[string]interface{}{
		"membership_id": 1,
		"freeze_start":  "15-01-2026",
	})
	assert.Equal(t, response.CodeParamError, resp.Code)
}
