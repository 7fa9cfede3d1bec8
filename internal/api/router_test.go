package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"game-rental-backend/config"
	"game-rental-backend/internal/model"
	"game-rental-backend/internal/mw"
	"game-rental-backend/internal/rental"
	"game-rental-backend/internal/store"
)

var testAuthConfig = config.AuthConfig{JWTSecret: "test-secret", Issuer: "test"}

// payload is shorthand for ad-hoc JSON request bodies.
type payload = map[string]interface{}

// newTestServer wires a router against a fresh in-memory store, seeded with
// one branch.
func newTestServer(t *testing.T) (*gin.Engine, store.Store, model.Branch) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 1
	cfg.Auth = testAuthConfig

	s := store.NewMemStore(3)
	engine := rental.NewEngine(s, nil)
	router := NewRouter(cfg, s, engine, nil)

	branch, err := s.CreateBranch(context.Background(), model.Branch{Name: "Main Branch", Location: "City Center"})
	require.NoError(t, err)
	return router, s, branch
}

func doJSON(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func employeeToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := mw.MintSessionToken(testAuthConfig, time.Now(), mw.SessionClaims{
		UserID: userID,
		Role:   model.RoleEmployee,
	}, time.Hour)
	require.NoError(t, err)
	return token
}
