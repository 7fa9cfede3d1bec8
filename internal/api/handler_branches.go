package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"game-rental-backend/internal/model"
)

// BranchResponse represents the API response for a single branch, with its
// fleet aggregates attached.
type BranchResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Revenue     int64  `json:"revenue"`
	ActiveGames int    `json:"activeGames"`
	TotalGames  int    `json:"totalGames"`
}

// GetBranches handles the GET /api/branches request.
func (h *Handler) GetBranches(c *gin.Context) {
	ctx := c.Request.Context()

	branches, err := h.store.ListBranches(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve branches"})
		return
	}

	games, err := h.store.ListGames(ctx, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate games"})
		return
	}

	type agg struct {
		revenue     int64
		activeGames int
		totalGames  int
	}
	aggMap := make(map[int64]agg, len(branches))
	for _, g := range games {
		a := aggMap[g.BranchID]
		a.totalGames++
		a.revenue += g.Revenue
		if g.Status == model.GameRented {
			a.activeGames++
		}
		aggMap[g.BranchID] = a
	}

	responses := make([]BranchResponse, 0, len(branches))
	for _, b := range branches {
		a := aggMap[b.ID]
		responses = append(responses, BranchResponse{
			ID: b.ID, Name: b.Name, Location: b.Location,
			Revenue: a.revenue, ActiveGames: a.activeGames, TotalGames: a.totalGames,
		})
	}
	c.JSON(http.StatusOK, responses)
}

type createBranchRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
}

// CreateBranch handles the POST /api/branches request.
func (h *Handler) CreateBranch(c *gin.Context) {
	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	branch, err := h.store.CreateBranch(c.Request.Context(), model.Branch{
		Name:     req.Name,
		Location: req.Location,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, branch)
}
