package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/clubfin-api/internal/config"
	"github.com/sjperalta/clubfin-api/internal/jobs"
	"github.com/sjperalta/clubfin-api/internal/middleware"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/services"
	"github.com/sjperalta/clubfin-api/internal/storage"
	"github.com/sjperalta/clubfin-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const routerSecret = "router-secret"

type apiEnv struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	fx       *testutil.Fixtures
	admin    string
	guardian *models.User
	parent   string
	stranger string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	cfg := &config.Config{
		JWTSecret: routerSecret,
		Billing:   config.BillingConfig{DueDay: 10},
		Location:  time.UTC,
	}
	clock := services.Clock(testutil.FixedClock(testutil.Date(2024, time.March, 5)))
	svcs := services.NewServicesWithClock(repos, repos.Roster, worker, store, cfg, db, clock)

	fx := testutil.NewFixtures(t, db)
	admin := fx.Admin("admin@club.test")
	guardian := fx.Guardian("madre@club.test")
	stranger := fx.Guardian("otro@club.test")
	fx.Link(guardian, fx.Player("Ana", fx.Category("U15")))

	return &apiEnv{
		t:        t,
		db:       db,
		router:   NewRouter(NewHandlers(svcs), cfg),
		fx:       fx,
		admin:    token(t, admin),
		guardian: guardian,
		parent:   token(t, guardian),
		stranger: token(t, stranger),
	}
}

func token(t *testing.T, u *models.User) string {
	t.Helper()
	signed, err := middleware.SignToken(routerSecret, u.ID, u.Email, u.Role, time.Hour)
	require.NoError(t, err)
	return signed
}

func (e *apiEnv) do(method, path, bearer string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) json(method, path, bearer string, payload interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(e.t, err)
		body = bytes.NewReader(raw)
	}
	return e.do(method, path, bearer, body, "application/json")
}

// submit posts a multipart payment with a proof part of the given content type
func (e *apiEnv) submit(invoiceID uint, bearer, partType string, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	if partType != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="proof"; filename="comprobante.png"`)
		header.Set("Content-Type", partType)
		part, err := mw.CreatePart(header)
		require.NoError(e.t, err)
		_, err = part.Write([]byte("\x89PNG fake proof"))
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())
	return e.do(http.MethodPost, fmt.Sprintf("/api/v1/me/invoices/%d/payments", invoiceID), bearer, &buf, mw.FormDataContentType())
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// billMarch creates a club-wide monthly fee through the API and generates March
func (e *apiEnv) billMarch() uint {
	w := e.json(http.MethodPost, "/api/v1/fees", e.admin, map[string]interface{}{
		"fee": map[string]interface{}{"name": "Mensualidad", "amount": "500.00", "period": models.FeePeriodMonthly},
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	feeID := uint(decode(e.t, w)["fee"].(map[string]interface{})["id"].(float64))

	w = e.json(http.MethodPost, fmt.Sprintf("/api/v1/fees/%d/generate", feeID), e.admin, map[string]string{"billing_period": "2024-03"})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	result := decode(e.t, w)["result"].(map[string]interface{})
	require.EqualValues(e.t, 1, result["created"])

	var inv models.Invoice
	require.NoError(e.t, e.db.Where("fee_definition_id = ?", feeID).First(&inv).Error)
	return inv.ID
}

func TestHealthIsPublic(t *testing.T) {
	env := newAPIEnv(t)
	w := env.do(http.MethodGet, "/api/v1/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestPaymentLifecycleOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	invoiceID := env.billMarch()

	w := env.do(http.MethodGet, "/api/v1/me/invoices", env.parent, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	invoices := decode(t, w)["invoices"].([]interface{})
	require.Len(t, invoices, 1)
	assert.Equal(t, "2024-03-10", invoices[0].(map[string]interface{})["due_date"])

	w = env.do(http.MethodGet, fmt.Sprintf("/api/v1/me/invoices/%d", invoiceID), env.stranger, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.submit(invoiceID, env.parent, "image/png", map[string]string{"method": models.PaymentMethodBankTransfer, "reference": "TRX-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	paymentID := uint(body["payment"].(map[string]interface{})["id"].(float64))
	assert.Equal(t, models.InvoiceStatusInReview, body["invoice"].(map[string]interface{})["status"])

	w = env.submit(invoiceID, env.parent, "image/png", map[string]string{"method": models.PaymentMethodCash})
	assert.Equal(t, http.StatusConflict, w.Code)

	approvePath := fmt.Sprintf("/api/v1/payments/%d/approve", paymentID)
	assert.Equal(t, http.StatusForbidden, env.json(http.MethodPost, approvePath, env.parent, nil).Code)

	w = env.json(http.MethodPost, approvePath, env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.PaymentStatusCompleted, decode(t, w)["payment"].(map[string]interface{})["status"])

	assert.Equal(t, http.StatusUnprocessableEntity, env.json(http.MethodPost, approvePath, env.admin, nil).Code)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/v1/me/invoices/%d", invoiceID), env.parent, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.InvoiceStatusPaid, decode(t, w)["invoice"].(map[string]interface{})["status"])

	w = env.do(http.MethodGet, fmt.Sprintf("/api/v1/payments/%d/proof", paymentID), env.parent, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fake proof")

	w = env.do(http.MethodGet, fmt.Sprintf("/api/v1/payments/%d/proof", paymentID), env.stranger, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitRejectsBadUploads(t *testing.T) {
	env := newAPIEnv(t)
	invoiceID := env.billMarch()

	tests := []struct {
		name     string
		partType string
		fields   map[string]string
		want     int
	}{
		{"missing proof", "", map[string]string{"method": models.PaymentMethodCash}, http.StatusBadRequest},
		{"wrong content type", "text/plain", map[string]string{"method": models.PaymentMethodCash}, http.StatusBadRequest},
		{"unknown method", "image/png", map[string]string{"method": "crypto"}, http.StatusBadRequest},
		{"bad amount", "image/png", map[string]string{"method": models.PaymentMethodCash, "amount": "abc"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.submit(invoiceID, env.parent, tt.partType, tt.fields)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAdminOnlyRoutes(t *testing.T) {
	env := newAPIEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/finance/summary"},
		{http.MethodGet, "/api/v1/audits"},
		{http.MethodPost, "/api/v1/fees/generate_recurring"},
		{http.MethodGet, "/api/v1/invoices"},
		{http.MethodPost, "/api/v1/payments/bulk"},
		{http.MethodGet, "/api/v1/jobs/status"},
	}
	for _, p := range paths {
		t.Run(p.path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, env.json(p.method, p.path, "", nil).Code)
			assert.Equal(t, http.StatusForbidden, env.json(p.method, p.path, env.parent, nil).Code)
		})
	}
}

func TestFeeDeleteConflictsOnceBilled(t *testing.T) {
	env := newAPIEnv(t)
	env.billMarch()

	var fee models.FeeDefinition
	require.NoError(t, env.db.First(&fee).Error)
	w := env.json(http.MethodDelete, fmt.Sprintf("/api/v1/fees/%d", fee.ID), env.admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	assert.Equal(t, http.StatusBadRequest, env.json(http.MethodDelete, "/api/v1/fees/abc", env.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.json(http.MethodGet, "/api/v1/fees/9999", env.admin, nil).Code)
}

func TestStatementAccess(t *testing.T) {
	env := newAPIEnv(t)
	env.billMarch()

	w := env.do(http.MethodGet, "/api/v1/me/statement", env.parent, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "Mensualidad")

	w = env.do(http.MethodGet, "/api/v1/me/statement", env.stranger, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Mensualidad")

	path := fmt.Sprintf("/api/v1/guardians/%d/statement", env.guardian.ID)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, path, env.stranger, nil, "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, env.admin, nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, path+"?format=docx", env.admin, nil, "").Code)
}

func TestAssignSkipsAlreadyBilledPlayers(t *testing.T) {
	env := newAPIEnv(t)
	env.billMarch()

	var fee models.FeeDefinition
	require.NoError(t, env.db.First(&fee).Error)
	var category models.Category
	require.NoError(t, env.db.First(&category).Error)

	path := fmt.Sprintf("/api/v1/fees/%d/assign", fee.ID)
	w := env.json(http.MethodPost, path, env.admin, map[string]interface{}{"category_id": category.ID, "due_date": "2024-03-20"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode(t, w)["result"].(map[string]interface{})
	assert.EqualValues(t, 0, result["created"])
	assert.EqualValues(t, 1, result["skipped"])

	assert.Equal(t, http.StatusBadRequest, env.json(http.MethodPost, path, env.admin, map[string]interface{}{}).Code)
}

func TestFinanceExportCSV(t *testing.T) {
	env := newAPIEnv(t)
	env.billMarch()

	w := env.do(http.MethodGet, "/api/v1/finance/export?format=csv&year=2024", env.admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "finance_report_2024_2024-03-05.csv")

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/finance/export?year=20x4", env.admin, nil, "").Code)
}
