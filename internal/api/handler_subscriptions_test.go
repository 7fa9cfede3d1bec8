package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-rental-backend/internal/model"
)

func TestPutSubscriptionRejectsEmptyBody(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doJSON(router, "PUT", "/api/subscriptions", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
}

func TestSubscriptionRoundTrip(t *testing.T) {
	router, s, branch := newTestServer(t)

	game, err := s.CreateGame(context.Background(), model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	endpoint := "https://push.example.com/abc"
	w := doJSON(router, "PUT", "/api/subscriptions", payload{
		"endpoint":         endpoint,
		"p256dh":           "key",
		"auth":             "auth",
		"subscribed_games": []int64{game.ID},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "GET", "/api/subscriptions?endpoint="+endpoint, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		SubscribedGames []int64 `json:"subscribed_games"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int64{game.ID}, resp.SubscribedGames)

	w = doJSON(router, "DELETE", "/api/subscriptions", payload{"endpoint": endpoint}, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, "GET", "/api/subscriptions?endpoint="+endpoint, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetVAPIDPublicKeyUnconfigured(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doJSON(router, "GET", "/api/vapid_public_key", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
