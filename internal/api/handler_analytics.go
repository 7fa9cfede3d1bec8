package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"game-rental-backend/internal/model"
)

// RevenuePoint is one labelled revenue value in an analytics series.
type RevenuePoint struct {
	Name    string `json:"name"`
	Revenue int64  `json:"revenue"`
}

// GetRevenueByGame handles the GET /api/analytics/revenue request: lifetime
// revenue per game.
func (h *Handler) GetRevenueByGame(c *gin.Context) {
	games, err := h.store.ListGames(c.Request.Context(), nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch revenue data"})
		return
	}

	points := make([]RevenuePoint, 0, len(games))
	for _, g := range games {
		points = append(points, RevenuePoint{Name: g.Name, Revenue: g.Revenue})
	}
	c.JSON(http.StatusOK, points)
}

// GetDailyRevenue handles GET /api/analytics/revenue/daily: one point per
// completed rental since local midnight, optionally filtered to one
// employee via ?employeeId=.
func (h *Handler) GetDailyRevenue(c *gin.Context) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	h.revenueSeries(c, midnight, now, "15:04")
}

// GetWeeklyRevenue handles GET /api/analytics/revenue/weekly: the last 7 days.
func (h *Handler) GetWeeklyRevenue(c *gin.Context) {
	now := time.Now()
	h.revenueSeries(c, now.AddDate(0, 0, -7), now, "Jan 02")
}

// GetMonthlyRevenue handles GET /api/analytics/revenue/monthly: the last 30 days.
func (h *Handler) GetMonthlyRevenue(c *gin.Context) {
	now := time.Now()
	h.revenueSeries(c, now.AddDate(0, 0, -30), now, "Jan 02")
}

func (h *Handler) revenueSeries(c *gin.Context, from, to time.Time, labelFormat string) {
	var employeeID *int64
	if raw := c.Query("employeeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid employee ID"})
			return
		}
		employeeID = &id
	}

	rentals, err := h.store.ListRentalsBetween(c.Request.Context(), from, to)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch revenue data"})
		return
	}

	points := make([]RevenuePoint, 0, len(rentals))
	for _, r := range rentals {
		if r.Status != model.RentalCompleted || r.TotalCost == nil {
			continue
		}
		if employeeID != nil && r.EmployeeID != *employeeID {
			continue
		}
		points = append(points, RevenuePoint{
			Name:    r.StartTime.Format(labelFormat),
			Revenue: *r.TotalCost,
		})
	}
	c.JSON(http.StatusOK, points)
}
