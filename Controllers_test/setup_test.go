package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cafe-queue/database"
	"github.com/yeremiapane/cafe-queue/services"
	"github.com/yeremiapane/cafe-queue/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Seeded catalog ids, in insertion order of the database defaults.
const (
	americanoID = 1
	espressoID  = 4
	latteID     = 7
	oatID       = 2
	vanillaID   = 5
)

type testEnv struct {
	DB       *gorm.DB
	Auth     *services.AuthService
	Catalog  *services.CatalogService
	Composer *services.OrderComposer
	Queue    *services.OrderQueue
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	return &testEnv{
		DB:       db,
		Auth:     services.NewAuthService(db, utils.NewTokenSigner("test-secret", time.Hour), utils.NewMemoryBlacklist()),
		Catalog:  services.NewCatalogService(db, nil),
		Composer: services.NewOrderComposer(db, nil),
		Queue:    services.NewOrderQueue(db, nil),
	}
}

func (e *testEnv) anonToken(t *testing.T) string {
	t.Helper()
	sess, err := e.Auth.SignInAnonymously(context.Background())
	require.NoError(t, err)
	return sess.Token
}

func (e *testEnv) baristaToken(t *testing.T) string {
	t.Helper()
	_, err := e.Auth.CreateBarista(context.Background(), "Bea", "bea@cafe.test", "s3cret-pass")
	require.NoError(t, err)
	sess, err := e.Auth.SignIn(context.Background(), "bea@cafe.test", "s3cret-pass")
	require.NoError(t, err)
	return sess.Token
}

func doRequest(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
