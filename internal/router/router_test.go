package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nureesan1/taawoon-sub000/internal/config"
	"github.com/nureesan1/taawoon-sub000/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "taawoon-test"
	cfg.JWT.ExpireHours = 1
	cfg.Security.BcryptCost = 4 // keep hashing fast in tests
	cfg.Backup.Dir = t.TempDir()
	cfg.App.PageSize = 20

	return SetupRouter(cfg, db)
}

// doJSON performs one request against the engine and decodes the unified
// JSON envelope.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope map[string]interface{}
	if strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w.Code, envelope
}

func data(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok, "envelope has no data: %v", envelope)
	return d
}

// register creates a staff account. The bootstrap admin is created with an
// empty token; later accounts need an admin token.
func register(t *testing.T, r *gin.Engine, token, username string) {
	t.Helper()
	status, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", token, gin.H{
		"username":         username,
		"password":         "Password1",
		"confirm_password": "Password1",
	})
	require.Equal(t, http.StatusOK, status)
}

func login(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	status, env := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": "Password1",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := data(t, env)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAPIMemberLifecycle(t *testing.T) {
	r := setupAPI(t)

	// the first registered account becomes the admin
	register(t, r, "", "alice")
	token := login(t, r, "alice")

	// create a member with an installment plan
	status, env := doJSON(t, r, http.MethodPost, "/api/members", token, gin.H{
		"first_name":          "Somchai",
		"last_name":           "Jaidee",
		"citizen_id":          "1-2345-67890-12-3",
		"member_type":         "ordinary",
		"housing_debt":        "5000",
		"monthly_installment": "1500",
		"missed_installments": 2,
	})
	require.Equal(t, http.StatusOK, status)
	member := data(t, env)["member"].(map[string]interface{})
	require.Equal(t, "M-001", member["member_code"])
	require.Equal(t, "1234567890123", member["citizen_id"])
	require.Equal(t, float64(500000), member["housing_debt_satang"])
	memberID := int(member["id"].(float64))

	// record a payment and check its effect on the balances
	status, env = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/members/%d/payments", memberID), token, gin.H{
			"paid_at": "2025-03-10",
			"housing": "1000",
			"shares":  "50",
			"method":  "cash",
		})
	require.Equal(t, http.StatusOK, status)
	payment := data(t, env)["payment"].(map[string]interface{})
	require.Equal(t, float64(105000), payment["total_satang"])
	paymentID := payment["id"].(string)

	status, env = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/members/%d", memberID), token, nil)
	require.Equal(t, http.StatusOK, status)
	member = data(t, env)["member"].(map[string]interface{})
	require.Equal(t, float64(400000), member["housing_debt_satang"])
	require.Equal(t, float64(5000), member["shares_satang"])

	// the payment is mirrored into the society ledger
	status, env = doJSON(t, r, http.MethodGet, "/api/ledger", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(1), data(t, env)["total"])
	summary := data(t, env)["summary"].(map[string]interface{})
	require.Equal(t, "1050.00", summary["income"])

	// yearly statement for the payment's year
	status, env = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/members/%d/statement?year=2025", memberID), token, nil)
	require.Equal(t, http.StatusOK, status)
	d := data(t, env)
	require.Equal(t, "3000.00", d["initial_debt"])
	require.Equal(t, "1000.00", d["total_paid"])
	require.Contains(t, d["total_paid_words"], "baht")
	stmt := d["statement"].(map[string]interface{})
	require.Len(t, stmt["months"], 12)
	require.Equal(t, float64(14), stmt["final_missed"])

	// reversing the payment restores the balances and the ledger
	status, env = doJSON(t, r, http.MethodDelete,
		fmt.Sprintf("/api/members/%d/payments/%s", memberID, paymentID), token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, data(t, env)["reversed"])

	status, env = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/members/%d", memberID), token, nil)
	require.Equal(t, http.StatusOK, status)
	member = data(t, env)["member"].(map[string]interface{})
	require.Equal(t, float64(500000), member["housing_debt_satang"])
	require.Equal(t, float64(0), member["shares_satang"])

	status, env = doJSON(t, r, http.MethodGet, "/api/ledger", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(0), data(t, env)["total"])

	// reversing again is a reported no-op
	status, env = doJSON(t, r, http.MethodDelete,
		fmt.Sprintf("/api/members/%d/payments/%s", memberID, paymentID), token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, data(t, env)["reversed"])
}

func TestAPIBalanceOverrideAndAudit(t *testing.T) {
	r := setupAPI(t)
	register(t, r, "", "alice")
	token := login(t, r, "alice")

	status, env := doJSON(t, r, http.MethodPost, "/api/members", token, gin.H{
		"first_name":   "Somsri",
		"last_name":    "Rakdee",
		"citizen_id":   "1101700203451",
		"member_type":  "associate",
		"housing_debt": "5000",
	})
	require.Equal(t, http.StatusOK, status)
	memberID := int(data(t, env)["member"].(map[string]interface{})["id"].(float64))

	status, env = doJSON(t, r, http.MethodPatch,
		fmt.Sprintf("/api/members/%d/balances", memberID), token, gin.H{
			"housing_debt": "2500",
		})
	require.Equal(t, http.StatusOK, status)
	member := data(t, env)["member"].(map[string]interface{})
	require.Equal(t, float64(250000), member["housing_debt_satang"])

	status, env = doJSON(t, r, http.MethodGet, "/api/logs", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.GreaterOrEqual(t, data(t, env)["total"], float64(1))
}

func TestAPIBulkImportAndExport(t *testing.T) {
	r := setupAPI(t)
	register(t, r, "", "alice")
	token := login(t, r, "alice")

	good := strings.Join([]string{
		"Somsri", "Rakdee", "1101700203451", "0812345678", "99 Moo 4", "1",
		"300", "150", "250000", "0", "0", "1500", "3",
	}, "\t")
	bad := strings.Join([]string{
		"Short", "ID", "123", "", "", "1",
		"0", "0", "0", "0", "0", "0", "0",
	}, "\t")

	status, env := doJSON(t, r, http.MethodPost, "/api/import/members", token, gin.H{
		"data": good + "\n" + bad + "\n",
	})
	require.Equal(t, http.StatusOK, status)
	d := data(t, env)
	require.Equal(t, float64(1), d["imported"])
	require.Equal(t, float64(1), d["rejected"])
	imported := d["members"].([]interface{})
	require.Len(t, imported, 1)
	require.Equal(t, "M-001", imported[0].(map[string]interface{})["member_code"])

	req := httptest.NewRequest(http.MethodGet, "/api/export/csv", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "M-001")
	require.Contains(t, w.Body.String(), "Somsri Rakdee")
}

func TestAPIAccessControl(t *testing.T) {
	r := setupAPI(t)
	register(t, r, "", "alice") // bootstrap admin
	adminToken := login(t, r, "alice")
	register(t, r, adminToken, "bob") // plain staff, created by the admin
	staffToken := login(t, r, "bob")

	// staff can read members
	status, _ := doJSON(t, r, http.MethodGet, "/api/members", staffToken, nil)
	require.Equal(t, http.StatusOK, status)

	// but not touch administrative routes
	status, _ = doJSON(t, r, http.MethodPatch, "/api/members/1/balances", staffToken, gin.H{
		"housing_debt": "0",
	})
	require.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, r, http.MethodGet, "/api/logs", staffToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	// no token at all
	status, _ = doJSON(t, r, http.MethodGet, "/api/members", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)
}

func TestAPIRegistrationLockedAfterBootstrap(t *testing.T) {
	r := setupAPI(t)
	register(t, r, "", "alice") // bootstrap admin
	adminToken := login(t, r, "alice")

	// once an account exists, anonymous registration is rejected
	status, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username":         "mallory",
		"password":         "Password1",
		"confirm_password": "Password1",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "mallory",
		"password": "Password1",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	// a plain staff account cannot create accounts either
	register(t, r, adminToken, "bob")
	staffToken := login(t, r, "bob")
	status, _ = doJSON(t, r, http.MethodPost, "/api/auth/register", staffToken, gin.H{
		"username":         "mallory",
		"password":         "Password1",
		"confirm_password": "Password1",
	})
	require.Equal(t, http.StatusForbidden, status)

	// the admin can
	register(t, r, adminToken, "carol")
	login(t, r, "carol")
}

func TestAPIAuditLogNeverStoresPasswords(t *testing.T) {
	r := setupAPI(t)
	register(t, r, "", "alice")
	token := login(t, r, "alice")

	status, _ := doJSON(t, r, http.MethodPost, "/api/profile/password", token, gin.H{
		"old_password": "Password1",
		"new_password": "SuperSecret9",
	})
	require.Equal(t, http.StatusOK, status)

	// a mutating request on a non-credential route, for contrast
	status, _ = doJSON(t, r, http.MethodPost, "/api/profile", token, gin.H{
		"display_name": "Alice",
	})
	require.Equal(t, http.StatusOK, status)

	status, env := doJSON(t, r, http.MethodGet, "/api/logs", token, nil)
	require.Equal(t, http.StatusOK, status)
	items := data(t, env)["items"].([]interface{})
	require.NotEmpty(t, items)

	var sawPasswordRoute bool
	for _, it := range items {
		entry := it.(map[string]interface{})
		meta, _ := entry["metadata"].(string)
		require.NotContains(t, meta, "Password1")
		require.NotContains(t, meta, "SuperSecret9")
		if entry["path"] == "/api/profile/password" {
			sawPasswordRoute = true
			require.Empty(t, meta)
		}
	}
	require.True(t, sawPasswordRoute, "password change should still be audited")
}

func TestAPILedgerSummary(t *testing.T) {
	r := setupAPI(t)
	register(t, r, "", "alice")
	token := login(t, r, "alice")

	entries := []gin.H{
		{"type": "income", "category": "donation", "amount": "1000"},
		{"type": "income", "category": "fees", "amount": "250.50"},
		{"type": "expense", "category": "maintenance", "amount": "400"},
	}
	for _, e := range entries {
		status, _ := doJSON(t, r, http.MethodPost, "/api/ledger", token, e)
		require.Equal(t, http.StatusOK, status)
	}

	status, env := doJSON(t, r, http.MethodGet, "/api/ledger?page_size=1", token, nil)
	require.Equal(t, http.StatusOK, status)
	d := data(t, env)
	// the summary covers the whole filtered set, not just the page
	require.Len(t, d["items"], 1)
	require.Equal(t, float64(3), d["total"])
	summary := d["summary"].(map[string]interface{})
	require.Equal(t, "1250.50", summary["income"])
	require.Equal(t, "400.00", summary["expense"])
	require.Equal(t, "850.50", summary["balance"])

	// a type filter narrows the summary with it
	status, env = doJSON(t, r, http.MethodGet, "/api/ledger?type=expense", token, nil)
	require.Equal(t, http.StatusOK, status)
	summary = data(t, env)["summary"].(map[string]interface{})
	require.Equal(t, "0.00", summary["income"])
	require.Equal(t, "400.00", summary["expense"])
}
