package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"account_service/internal/config"
	"account_service/internal/db"
	"account_service/internal/service"
	"account_service/internal/store"
	"account_service/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newTestDeps(t *testing.T, rpm int) Deps {
	t.Helper()
	gdb, err := db.Open(&config.Config{DBDriver: config.DriverSQLite, DBName: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, db.SeedAdmin(context.Background(), gdb, "root", "rootpass1"))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	tokens := utils.NewTokenService("test-secret")
	return Deps{
		DB:                gdb,
		Logger:            logger,
		Auth:              service.NewAuthService(gdb, tokens, store.NewMemoryBlacklist()),
		Users:             service.NewUserService(gdb),
		Profiles:          service.NewProfileService(gdb),
		Addresses:         service.NewAddressService(gdb),
		Orders:            service.NewOrderService(gdb),
		LoginRateLimitRPM: rpm,
	}
}

func newTestRouter(t *testing.T, rpm int) *gin.Engine {
	t.Helper()
	r, err := NewRouter(newTestDeps(t, rpm))
	require.NoError(t, err)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func loginForm(r http.Handler, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, r http.Handler, username, password string) string {
	t.Helper()
	rec := loginForm(r, username, password)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func registerUser(t *testing.T, r http.Handler, username, email string) {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/users", gin.H{
		"username": username, "email": email, "password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRegisterLoginMe(t *testing.T) {
	r := newTestRouter(t, 0)

	rec := doJSON(t, r, http.MethodPost, "/users", gin.H{
		"username":   "alice",
		"email":      "alice@x.com",
		"password":   "secret123",
		"first_name": "Alice",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, "alice", created["username"])
	assert.Equal(t, "Alice", created["first_name"])
	assert.NotContains(t, created, "password_hash")

	rec = loginForm(r, "alice", "secret123")
	require.Equal(t, http.StatusOK, rec.Code)
	tokenBody := decode(t, rec)
	assert.NotEmpty(t, tokenBody["access_token"])
	assert.Equal(t, "bearer", tokenBody["token_type"])
	assert.EqualValues(t, 900, tokenBody["expires_in"])

	rec = doJSON(t, r, http.MethodGet, "/users/me", nil, tokenBody["access_token"].(string))
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	assert.Equal(t, "alice", me["username"])
	assert.Equal(t, "alice@x.com", me["email"])

	rec = doJSON(t, r, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestLogin_JSONAndFailures(t *testing.T) {
	r := newTestRouter(t, 0)
	registerUser(t, r, "alice", "alice@x.com")

	rec := doJSON(t, r, http.MethodPost, "/login", gin.H{"username": "alice", "password": "secret123"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = loginForm(r, "alice", "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = loginForm(r, "nobody", "secret123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/login", gin.H{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	r := newTestRouter(t, 2)

	assert.Equal(t, http.StatusUnauthorized, loginForm(r, "x", "y").Code)
	assert.Equal(t, http.StatusUnauthorized, loginForm(r, "x", "y").Code)
	assert.Equal(t, http.StatusTooManyRequests, loginForm(r, "x", "y").Code)
}

func TestLogin_SharesBudgetWithBasicAuth(t *testing.T) {
	r := newTestRouter(t, 2)
	registerUser(t, r, "alice", "alice@x.com")

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.SetBasicAuth("alice", "guess-"+fmt.Sprint(i))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, loginForm(r, "alice", "secret123").Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newTestRouter(t, 0)
	registerUser(t, r, "alice", "alice@x.com")
	token := login(t, r, "alice", "secret123")

	rec := doJSON(t, r, http.MethodGet, "/protected", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Access granted", decode(t, rec)["msg"])

	rec = doJSON(t, r, http.MethodPost, "/logout", gin.H{"access_token": token}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully logged out", decode(t, rec)["msg"])

	// Revoked on every bearer route, not only /protected
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, r, http.MethodGet, "/protected", nil, token).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, r, http.MethodGet, "/users/me", nil, token).Code)

	rec = doJSON(t, r, http.MethodPost, "/logout", gin.H{"access_token": "not-a-token"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A fresh login still works
	fresh := login(t, r, "alice", "secret123")
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/users/me", nil, fresh).Code)
}

func TestBasicAuth(t *testing.T) {
	r := newTestRouter(t, 0)
	registerUser(t, r, "alice", "alice@x.com")

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.SetBasicAuth("alice", "secret123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode(t, rec)["username"])

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.SetBasicAuth("alice", "wrong-password")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Basic", rec.Header().Get("WWW-Authenticate"))
}

func TestRegister_ConflictsAndValidation(t *testing.T) {
	r := newTestRouter(t, 0)
	registerUser(t, r, "alice", "alice@x.com")

	rec := doJSON(t, r, http.MethodPost, "/user", gin.H{
		"username": "ALICE", "email": "other@x.com", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/users", gin.H{
		"username": "bob", "email": "Alice@X.com", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	invalid := []gin.H{
		{"username": "al", "email": "al@x.com", "password": "secret123"},
		{"username": "alexanderthegreat", "email": "al@x.com", "password": "secret123"},
		{"username": "  a  ", "email": "al@x.com", "password": "secret123"},
		{"username": "ali/ce", "email": "al@x.com", "password": "secret123"},
		{"username": "carol", "email": "not-an-email", "password": "secret123"},
		{"username": "carol", "email": "carol@x.com", "password": "short"},
		{"username": "carol", "email": "carol@x.com", "password": "secret123", "phone": "1234567890123456"},
	}
	for i, body := range invalid {
		rec := doJSON(t, r, http.MethodPost, "/users", body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "case %d", i)
	}
}

func TestUserGates(t *testing.T) {
	r := newTestRouter(t, 0)
	registerUser(t, r, "alice", "alice@x.com")
	registerUser(t, r, "bob", "bob@x.com")
	alice := login(t, r, "alice", "secret123")
	root := login(t, r, "root", "rootpass1")

	// Listing is admin only
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, r, http.MethodGet, "/users", nil, alice).Code)
	rec := doJSON(t, r, http.MethodGet, "/users?page=1&page_size=2", nil, root)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.EqualValues(t, 3, page["total"])
	assert.EqualValues(t, 2, page["total_pages"])
	assert.Len(t, page["users"], 2)

	// Self or admin
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/users/alice", nil, alice).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, r, http.MethodGet, "/users/bob", nil, alice).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/users/bob", nil, root).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/users/ghost", nil, root).Code)

	// Only admins change roles
	rec = doJSON(t, r, http.MethodPut, "/users/alice", gin.H{"role": "admin"}, alice)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(t, r, http.MethodPut, "/users/me", gin.H{"role": "admin"}, alice)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(t, r, http.MethodPut, "/users/alice", gin.H{"role": "admin"}, root)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decode(t, rec)["role"])

	// The role is reloaded on every request, so the same token now passes the admin gate
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/users", nil, alice).Code)
}

func TestUpdateMe(t *testing.T) {
	r := newTestRouter(t, 0)
	registerUser(t, r, "alice", "alice@x.com")
	registerUser(t, r, "bob", "bob@x.com")
	token := login(t, r, "alice", "secret123")

	rec := doJSON(t, r, http.MethodPut, "/users/me", gin.H{"email": "bob@x.com"}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPut, "/users/me", gin.H{"email": "new@x.com", "password": "changed123"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new@x.com", decode(t, rec)["email"])

	assert.Equal(t, http.StatusUnauthorized, loginForm(r, "alice", "secret123").Code)
	assert.Equal(t, http.StatusOK, loginForm(r, "alice", "changed123").Code)
}

func TestProfileAddressesOrders(t *testing.T) {
	r := newTestRouter(t, 0)
	registerUser(t, r, "alice", "alice@x.com")
	registerUser(t, r, "bob", "bob@x.com")
	alice := login(t, r, "alice", "secret123")
	bob := login(t, r, "bob", "secret123")

	rec := doJSON(t, r, http.MethodPut, "/users/me/profile", gin.H{"first_name": "Alice", "phone": "555-0100"}, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodPut, "/users/me/profile", gin.H{"last_name": "Liddell"}, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodGet, "/users/me/profile", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode(t, rec)
	assert.Equal(t, "Alice", profile["first_name"])
	assert.Equal(t, "Liddell", profile["last_name"])
	assert.Equal(t, "555-0100", profile["phone"])

	rec = doJSON(t, r, http.MethodPost, "/users/me/addresses", gin.H{
		"address_type": "home", "street": "1 Rabbit Hole", "city": "Oxford", "country": "UK",
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	addressID := decode(t, rec)["id"]

	rec = doJSON(t, r, http.MethodGet, "/users/me/addresses", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["addresses"], 1)

	// Bob cannot delete Alice's address
	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/users/me/addresses/%v", addressID), nil, bob)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, r, http.MethodDelete, "/users/me/addresses/abc", nil, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/users/me/orders", gin.H{"name": "tea set"}, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decode(t, rec)["id"]
	rec = doJSON(t, r, http.MethodGet, "/users/me/orders", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["orders"], 1)
	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/users/me/orders/%v", orderID), nil, alice)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, r, http.MethodGet, "/users/me/orders", nil, alice)
	assert.Len(t, decode(t, rec)["orders"], 0)
}

func TestDeleteMeCascades(t *testing.T) {
	r := newTestRouter(t, 0)
	registerUser(t, r, "alice", "alice@x.com")
	alice := login(t, r, "alice", "secret123")
	root := login(t, r, "root", "rootpass1")

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/users/me/orders", gin.H{"name": "tea"}, alice).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/users/me/addresses", gin.H{
		"address_type": "home", "street": "1 Rabbit Hole", "city": "Oxford", "country": "UK",
	}, alice).Code)

	rec := doJSON(t, r, http.MethodDelete, "/users/me", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/users/alice", nil, root).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, r, http.MethodGet, "/users/me", nil, alice).Code)
	assert.Equal(t, http.StatusUnauthorized, loginForm(r, "alice", "secret123").Code)

	for _, path := range []string{"/admin/orders", "/admin/addresses"} {
		rec := doJSON(t, r, http.MethodGet, path, nil, root)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 0, decode(t, rec)["total"], path)
	}
	rec = doJSON(t, r, http.MethodGet, "/admin/profiles", nil, root)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"]) // Only root's profile remains
}

func TestAdminPanel(t *testing.T) {
	r := newTestRouter(t, 0)
	registerUser(t, r, "alice", "alice@x.com")
	alice := login(t, r, "alice", "secret123")
	root := login(t, r, "root", "rootpass1")
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/users/me/orders", gin.H{"name": "tea"}, alice).Code)

	for _, path := range []string{"/admin/users", "/admin/profiles", "/admin/addresses", "/admin/orders"} {
		assert.Equal(t, http.StatusUnauthorized, doJSON(t, r, http.MethodGet, path, nil, alice).Code, path)
		assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, path, nil, root).Code, path)
	}

	rec := doJSON(t, r, http.MethodGet, "/admin/users", nil, root)
	body := decode(t, rec)
	users := body["users"].([]any)
	require.Len(t, users, 2)
	aliceRow := users[1].(map[string]any)
	assert.Equal(t, "alice", aliceRow["username"])
	assert.EqualValues(t, 1, aliceRow["order_count"])
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, 0)
	rec := doJSON(t, r, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestHealthz_PingsRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	deps := newTestDeps(t, 0)
	deps.Redis = client
	r, err := NewRouter(deps)
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["redis"])

	mr.Close()
	rec = doJSON(t, r, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "unavailable", body["status"])
	assert.Equal(t, "unavailable", body["redis"])
	assert.Equal(t, "ok", body["database"])
}
