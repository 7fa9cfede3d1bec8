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

func TestCreateRentalRequiresAuth(t *testing.T) {
	router, s, branch := newTestServer(t)

	game, err := s.CreateGame(context.Background(), model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	w := doJSON(router, "POST", "/api/rentals", payload{"gameId": game.ID}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/api/rentals", payload{"gameId": game.ID}, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRentalLifecycleOverHTTP(t *testing.T) {
	router, s, branch := newTestServer(t)
	token := employeeToken(t, 7)

	game, err := s.CreateGame(context.Background(), model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	// Start
	w := doJSON(router, "POST", "/api/rentals", payload{"gameId": game.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Rental
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, model.RentalActive, created.Status)
	assert.Equal(t, int64(7), created.EmployeeID)

	// The game is no longer available; a second start fails.
	w = doJSON(router, "POST", "/api/rentals", payload{"gameId": game.ID}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Active listing sees it.
	w = doJSON(router, "GET", "/api/rentals/active", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var active []model.Rental
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	require.Len(t, active, 1)

	// Pause, then resume.
	w = doJSON(router, "POST", "/api/rentals/1/pause", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var paused model.Rental
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paused))
	assert.Equal(t, model.RentalPaused, paused.Status)
	assert.NotNil(t, paused.PausedAt)
	assert.Nil(t, paused.EndTime)

	// Paused rentals still show in the active listing.
	w = doJSON(router, "GET", "/api/rentals/active", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	active = active[:0]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	require.Len(t, active, 1)

	w = doJSON(router, "POST", "/api/rentals/1/resume", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Stop: cost is attached and the game frees up.
	w = doJSON(router, "POST", "/api/rentals/1/stop", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var stopped model.Rental
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stopped))
	assert.Equal(t, model.RentalCompleted, stopped.Status)
	require.NotNil(t, stopped.TotalCost)
	assert.Equal(t, int64(3), *stopped.TotalCost, "sub-minute rental bills one minute")

	got, err := s.GetGame(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GameAvailable, got.Status)

	// Terminal state: stopping again is rejected.
	w = doJSON(router, "POST", "/api/rentals/1/stop", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRentalUnknownID(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doJSON(router, "POST", "/api/rentals/999/stop", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "POST", "/api/rentals/999/pause", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActiveRentalsBranchQuery(t *testing.T) {
	router, s, branch := newTestServer(t)
	token := employeeToken(t, 7)

	other, err := s.CreateBranch(context.Background(), model.Branch{Name: "Westside", Location: "Mall"})
	require.NoError(t, err)

	g1, err := s.CreateGame(context.Background(), model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)
	g2, err := s.CreateGame(context.Background(), model.Game{Name: "Darts", BranchID: other.ID})
	require.NoError(t, err)

	w := doJSON(router, "POST", "/api/rentals", payload{"gameId": g1.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(router, "POST", "/api/rentals", payload{"gameId": g2.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "GET", "/api/rentals/active?branch=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var rentals []model.Rental
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rentals))
	require.Len(t, rentals, 1)
	assert.Equal(t, g2.ID, rentals[0].GameID)
}
