package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"game-rental-backend/internal/mw"
)

// GetActiveRentals handles the GET /api/rentals/active request. Active and
// paused rentals are both "active" from the storefront's point of view.
func (h *Handler) GetActiveRentals(c *gin.Context) {
	branchID, ok := branchFilter(c)
	if !ok {
		return
	}

	rentals, err := h.store.ListActiveRentals(c.Request.Context(), branchID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rentals"})
		return
	}
	c.JSON(http.StatusOK, rentals)
}

type createRentalRequest struct {
	GameID     int64  `json:"gameId" binding:"required"`
	CustomerID *int64 `json:"customerId"`
}

// CreateRental handles the POST /api/rentals request. The employee comes
// from the session token, never from the body.
func (h *Handler) CreateRental(c *gin.Context) {
	user := mw.SessionUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req createRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rental, err := h.engine.Start(c.Request.Context(), req.GameID, req.CustomerID, user.UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rental)
}

func rentalID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Invalid rental ID"})
		return 0, false
	}
	return id, true
}

// StopRental handles the POST /api/rentals/:id/stop request. The response
// carries the final totalCost.
func (h *Handler) StopRental(c *gin.Context) {
	id, ok := rentalID(c)
	if !ok {
		return
	}

	rental, err := h.engine.Stop(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}

// PauseRental handles the POST /api/rentals/:id/pause request.
func (h *Handler) PauseRental(c *gin.Context) {
	id, ok := rentalID(c)
	if !ok {
		return
	}

	rental, err := h.engine.Pause(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}

// ResumeRental handles the POST /api/rentals/:id/resume request.
func (h *Handler) ResumeRental(c *gin.Context) {
	id, ok := rentalID(c)
	if !ok {
		return
	}

	rental, err := h.engine.Resume(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}
