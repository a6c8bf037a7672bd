package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cafe-queue/database"
	"github.com/yeremiapane/cafe-queue/kds"
	"github.com/yeremiapane/cafe-queue/middlewares"
	"github.com/yeremiapane/cafe-queue/router"
	"github.com/yeremiapane/cafe-queue/services"
	"github.com/yeremiapane/cafe-queue/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger("error", "text")
	os.Exit(m.Run())
}

// TestEndToEndIntegration menguji flow utama:
// 1. Customer sign in anonim, barista login, barista membuka websocket
// 2. Customer membuat order -> barista menerima event order.created
// 3. Order kedua -> ahead = 1
// 4. Barista menyelesaikan order pertama -> ahead = 0
// 5. Customer cancel order kedua
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	r, hub := setupRouter(t, db)
	srv := httptest.NewServer(r)
	defer srv.Close()

	customer := postJSON(t, srv.URL+"/auth/anonymous", "", nil)["data"].(map[string]interface{})["token"].(string)
	barista := loginTest(t, srv.URL)

	ws := dialKDS(t, srv.URL, barista)
	defer ws.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	first := createOrderTest(t, srv.URL, customer, "Ana")
	event := readEvent(t, ws)
	assert.Equal(t, services.EventOrderCreated, event["event"])
	assert.Equal(t, float64(first), event["data"].(map[string]interface{})["order_id"])

	second := createOrderTest(t, srv.URL, customer, "Budi")
	readEvent(t, ws)
	assert.Equal(t, float64(1), aheadTest(t, srv.URL, second))

	completeOrderTest(t, srv.URL, barista, first)
	event = readEvent(t, ws)
	assert.Equal(t, services.EventOrderStatusChanged, event["event"])
	assert.Equal(t, float64(0), aheadTest(t, srv.URL, second))

	resp := postJSON(t, fmt.Sprintf("%s/orders/%d/cancel", srv.URL, second), customer, nil)
	assert.Equal(t, float64(1), resp["data"].(map[string]interface{})["rows_affected"])
	event = readEvent(t, ws)
	assert.Equal(t, services.EventOrderCancelled, event["event"])
}

func TestPing(t *testing.T) {
	r, _ := setupRouter(t, setupTestDB(t))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestKDSRequiresBarista(t *testing.T) {
	r, _ := setupRouter(t, setupTestDB(t))
	srv := httptest.NewServer(r)
	defer srv.Close()

	customer := postJSON(t, srv.URL+"/auth/anonymous", "", nil)["data"].(map[string]interface{})["token"].(string)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, customer), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// setupTestDB -> migrasi model di SQLite in-memory + seed data
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))
	return db
}

func setupRouter(t *testing.T, db *gorm.DB) (*gin.Engine, *kds.Hub) {
	t.Helper()
	hub := kds.NewHub()
	notifier := services.FanOut{hub}
	auth := services.NewAuthService(db, utils.NewTokenSigner("test-secret", time.Hour), utils.NewMemoryBlacklist())

	_, err := auth.CreateBarista(context.Background(), "Bea", "bea@cafe.test", "s3cret-pass")
	require.NoError(t, err)

	r := router.SetupRouter(router.Deps{
		Auth:         auth,
		Catalog:      services.NewCatalogService(db, notifier),
		Composer:     services.NewOrderComposer(db, notifier),
		Queue:        services.NewOrderQueue(db, notifier),
		Hub:          hub,
		LoginLimiter: middlewares.NewRateLimiter(100),
		CORSOrigin:   "*",
	})
	return r, hub
}

func postJSON(t *testing.T, url, token string, body interface{}) map[string]interface{} {
	t.Helper()
	return sendJSON(t, http.MethodPost, url, token, body, http.StatusOK, http.StatusCreated)
}

func sendJSON(t *testing.T, method, url, token string, body interface{}, want ...int) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Contains(t, want, resp.StatusCode, "%s %s -> %v", method, url, out)
	return out
}

func loginTest(t *testing.T, base string) string {
	t.Helper()
	resp := postJSON(t, base+"/auth/login", "", map[string]interface{}{
		"email":    "bea@cafe.test",
		"password": "s3cret-pass",
	})
	return resp["data"].(map[string]interface{})["token"].(string)
}

func createOrderTest(t *testing.T, base, token, name string) int {
	t.Helper()
	resp := postJSON(t, base+"/orders", token, map[string]interface{}{
		"customer_name": name,
		"items": []map[string]interface{}{
			{"item_id": 7, "quantity": 1, "milk_option_id": 2},
		},
	})
	return int(resp["data"].(map[string]interface{})["order_id"].(float64))
}

func aheadTest(t *testing.T, base string, orderID int) float64 {
	t.Helper()
	resp := sendJSON(t, http.MethodGet, fmt.Sprintf("%s/orders/%d/ahead", base, orderID), "", nil, http.StatusOK)
	return resp["data"].(map[string]interface{})["ahead"].(float64)
}

func completeOrderTest(t *testing.T, base, token string, orderID int) {
	t.Helper()
	sendJSON(t, http.MethodPatch, fmt.Sprintf("%s/barista/orders/%d/status", base, orderID), token,
		map[string]interface{}{"status": "completed"}, http.StatusOK)
}

func wsURL(base, token string) string {
	return "ws" + strings.TrimPrefix(base, "http") + "/ws?token=" + token
}

func dialKDS(t *testing.T, base, token string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(base, token), nil)
	require.NoError(t, err)
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) map[string]interface{} {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg map[string]interface{}
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}
