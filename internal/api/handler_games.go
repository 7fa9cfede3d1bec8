package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"game-rental-backend/internal/model"
)

// branchFilter parses the optional ?branch= query parameter.
func branchFilter(c *gin.Context) (*int64, bool) {
	raw := c.Query("branch")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid branch ID"})
		return nil, false
	}
	return &id, true
}

// GetGames handles the GET /api/games request.
func (h *Handler) GetGames(c *gin.Context) {
	branchID, ok := branchFilter(c)
	if !ok {
		return
	}

	games, err := h.store.ListGames(c.Request.Context(), branchID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}
	c.JSON(http.StatusOK, games)
}

type createGameRequest struct {
	Name     string           `json:"name" binding:"required"`
	BranchID int64            `json:"branchId" binding:"required"`
	Status   model.GameStatus `json:"status"`
}

// CreateGame handles the POST /api/games request.
func (h *Handler) CreateGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != "" && !model.ValidGameStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game status"})
		return
	}

	game, err := h.store.CreateGame(c.Request.Context(), model.Game{
		Name:     req.Name,
		BranchID: req.BranchID,
		Status:   req.Status,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, game)
}

// GetGameByQR handles the GET /api/games/qr/:code request. Scanning an
// unknown code is a 404, never an error.
func (h *Handler) GetGameByQR(c *gin.Context) {
	game, err := h.store.GetGameByQR(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up game"})
		return
	}
	if game == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "No game matches this QR code"})
		return
	}
	c.JSON(http.StatusOK, game)
}
