package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "outlay/internal/http"
	applog "outlay/internal/log"
	"outlay/internal/services"
	"outlay/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := storage.NewMemoryStore()
	logger := applog.New(applog.DefaultConfig())
	accounts := services.NewAccountService(store, store, 0, logger)
	expenses := services.NewExpenseService(store, nil, logger)

	srv := apphttp.NewServer(":0", accounts, expenses, logger)
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(func() {
		ts.Close()
		// Stops the rate limiter's background reaper too.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("server shutdown: %v", err)
		}
	})
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func registerAndLogin(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "pw123456"}

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, ts, http.MethodPost, "/api/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func createExpense(t *testing.T, ts *httptest.Server, token, amount, category, spentOn string) int64 {
	t.Helper()
	resp, raw := doJSON(t, ts, http.MethodPost, "/api/expenses", token, map[string]string{
		"amount":   amount,
		"category": category,
		"spent_on": spentOn,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var out struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.ID
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := ts.Client().Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := doJSON(t, ts, http.MethodPost, "/api/register", "",
		map[string]string{"email": "flow@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reg struct {
		AccountID int64 `json:"account_id"`
	}
	require.NoError(t, json.Unmarshal(raw, &reg))
	assert.NotZero(t, reg.AccountID)

	// Duplicate registration conflicts.
	resp, _ = doJSON(t, ts, http.MethodPost, "/api/register", "",
		map[string]string{"email": "FLOW@example.com", "password": "other"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Wrong password is a 401, not a 404.
	resp, _ = doJSON(t, ts, http.MethodPost, "/api/login", "",
		map[string]string{"email": "flow@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodPost, "/api/login", "",
		map[string]string{"email": "flow@example.com", "password": "pw"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/register", "",
		map[string]string{"email": "", "password": "pw"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/register", strings.NewReader("{not json"))
	require.NoError(t, err)
	badResp, err := ts.Client().Do(req)
	require.NoError(t, err)
	badResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/expenses"},
		{http.MethodGet, "/api/expenses"},
		{http.MethodDelete, "/api/expenses/1"},
		{http.MethodGet, "/api/summary"},
		{http.MethodGet, "/api/profile"},
		{http.MethodGet, "/api/export/csv"},
	}
	for _, p := range paths {
		resp, _ := doJSON(t, ts, p.method, p.path, "", nil)
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", p.method, p.path)
	}

	resp, _ := doJSON(t, ts, http.MethodGet, "/api/expenses", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExpenseLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "life@example.com")

	id := createExpense(t, ts, token, "12.50", "Food", "2025-02-10")
	createExpense(t, ts, token, "7.25", "Food", "2025-02-11")

	resp, raw := doJSON(t, ts, http.MethodGet, "/api/expenses", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Expenses []struct {
			ID      int64  `json:"id"`
			Amount  string `json:"amount"`
			SpentOn string `json:"spent_on"`
		} `json:"expenses"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Expenses, 2)
	assert.Empty(t, list.Warnings)
	assert.Equal(t, "7.25", list.Expenses[0].Amount)
	assert.Equal(t, "12.50", list.Expenses[1].Amount)

	resp, _ = doJSON(t, ts, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = doJSON(t, ts, http.MethodGet, "/api/expenses", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Expenses, 1)
}

func TestCreateExpenseRejectsBadAmount(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "bad@example.com")

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/expenses", token, map[string]string{
		"amount": "twelve", "category": "Food",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, raw := doJSON(t, ts, http.MethodGet, "/api/expenses", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Expenses []json.RawMessage `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Empty(t, list.Expenses)
}

func TestDeleteCrossAccountIs404(t *testing.T) {
	ts := newTestServer(t)
	alice := registerAndLogin(t, ts, "alice@example.com")
	bob := registerAndLogin(t, ts, "bob@example.com")

	id := createExpense(t, ts, alice, "9.99", "Food", "2025-02-10")

	resp, _ := doJSON(t, ts, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Non-numeric ids answer the same way.
	resp, _ = doJSON(t, ts, http.MethodDelete, "/api/expenses/abc", bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Alice's record survived.
	resp, raw := doJSON(t, ts, http.MethodGet, "/api/expenses", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Expenses []json.RawMessage `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Expenses, 1)
}

func TestListIsolationBetweenAccounts(t *testing.T) {
	ts := newTestServer(t)
	alice := registerAndLogin(t, ts, "alice@example.com")
	bob := registerAndLogin(t, ts, "bob@example.com")

	createExpense(t, ts, alice, "1.00", "Food", "2025-02-10")
	createExpense(t, ts, bob, "500.00", "Rent", "2025-02-10")

	resp, raw := doJSON(t, ts, http.MethodGet, "/api/expenses", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Expenses []struct {
			Category string `json:"category"`
		} `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, "Food", list.Expenses[0].Category)
}

func TestListMalformedFilterWarns(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "warn@example.com")
	createExpense(t, ts, token, "3.00", "Food", "2025-02-10")

	resp, raw := doJSON(t, ts, http.MethodGet, "/api/expenses?start=garbage", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Expenses []json.RawMessage `json:"expenses"`
		Warnings []string          `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Expenses, 1)
	require.Len(t, list.Warnings, 1)
	assert.Contains(t, list.Warnings[0], "garbage")
}

func TestSummaryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "sum@example.com")

	createExpense(t, ts, token, "12.50", "Food", "2025-02-10")
	createExpense(t, ts, token, "7.25", "Food", "2025-02-11")
	createExpense(t, ts, token, "30.00", "Rent", "2025-03-01")

	resp, raw := doJSON(t, ts, http.MethodGet, "/api/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		ByCategory []struct {
			Category string `json:"category"`
			Total    string `json:"total"`
		} `json:"by_category"`
		ByMonth []struct {
			Month string `json:"month"`
			Total string `json:"total"`
		} `json:"by_month"`
		GrandTotal  string `json:"grand_total"`
		TopCategory *struct {
			Category string `json:"category"`
		} `json:"top_category"`
		MonthLabels []string  `json:"month_labels"`
		MonthValues []float64 `json:"month_values"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, "49.75", out.GrandTotal)
	require.Len(t, out.ByCategory, 2)
	assert.Equal(t, "Food", out.ByCategory[0].Category)
	assert.Equal(t, "19.75", out.ByCategory[0].Total)
	assert.Equal(t, "Rent", out.ByCategory[1].Category)
	require.Len(t, out.ByMonth, 2)
	assert.Equal(t, "2025-02", out.ByMonth[0].Month)
	require.NotNil(t, out.TopCategory)
	assert.Equal(t, "Rent", out.TopCategory.Category)
	assert.Equal(t, []string{"2025-02", "2025-03"}, out.MonthLabels)
	assert.InDelta(t, 19.75, out.MonthValues[0], 0.0001)
}

func TestExportCSVEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "csv@example.com")
	createExpense(t, ts, token, "12.50", "Food", "2025-02-10")

	resp, raw := doJSON(t, ts, http.MethodGet, "/api/export/csv", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))

	disposition := resp.Header.Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="expenses_`), disposition)
	assert.Contains(t, disposition, time.Now().UTC().Format("20060102"))

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Amount,Category,Description,Spent On", lines[0])
	assert.Equal(t, "12.50,Food,,2025-02-10", lines[1])
}

func TestProfileEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "profile@example.com")

	createExpense(t, ts, token, "10.00", "Food", "2025-02-10")
	createExpense(t, ts, token, "20.00", "Rent", "2025-02-11")

	resp, raw := doJSON(t, ts, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		TotalSpent  string `json:"total_spent"`
		TopCategory *struct {
			Category string `json:"category"`
		} `json:"top_category"`
		Recent []json.RawMessage `json:"recent"`
		Count  int64             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "30.00", out.TotalSpent)
	require.NotNil(t, out.TopCategory)
	assert.Equal(t, "Rent", out.TopCategory.Category)
	assert.Len(t, out.Recent, 2)
	assert.Equal(t, int64(2), out.Count)
}

func TestLogoutRevokesAccess(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "bye@example.com")

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodGet, "/api/expenses", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/login", "",
		map[string]string{"email": "none@example.com", "password": "pw"})
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}
