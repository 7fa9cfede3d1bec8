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

func TestRevenueAnalytics(t *testing.T) {
	router, s, branch := newTestServer(t)
	token := employeeToken(t, 7)

	game, err := s.CreateGame(context.Background(), model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	// One completed rental: 3 KSH of revenue today.
	w := doJSON(router, "POST", "/api/rentals", payload{"gameId": game.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(router, "POST", "/api/rentals/1/stop", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/api/analytics/revenue", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var perGame []RevenuePoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &perGame))
	require.Len(t, perGame, 1)
	assert.Equal(t, "Foosball", perGame[0].Name)
	assert.Equal(t, int64(3), perGame[0].Revenue)

	for _, path := range []string{
		"/api/analytics/revenue/daily",
		"/api/analytics/revenue/weekly",
		"/api/analytics/revenue/monthly",
	} {
		w = doJSON(router, "GET", path, nil, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		var points []RevenuePoint
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
		require.Len(t, points, 1, path)
		assert.Equal(t, int64(3), points[0].Revenue, path)
	}

	// Filtering to another employee excludes the rental.
	w = doJSON(router, "GET", "/api/analytics/revenue/daily?employeeId=99", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var filtered []RevenuePoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	assert.Empty(t, filtered)
}
