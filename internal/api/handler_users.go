package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"game-rental-backend/internal/model"
)

type createUserRequest struct {
	Email       string     `json:"email" binding:"required,email"`
	Role        model.Role `json:"role" binding:"required"`
	BranchID    *int64     `json:"branchId"`
	DisplayName string     `json:"displayName"`
	Location    string     `json:"location"`
}

// CreateUser handles the POST /api/users request. Employees and admins must
// belong to a branch; customers may omit it.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !model.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}
	if req.Role != model.RoleCustomer && req.BranchID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "branchId is required for employees and admins"})
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), model.User{
		Email:       req.Email,
		Role:        req.Role,
		BranchID:    req.BranchID,
		DisplayName: req.DisplayName,
		Location:    req.Location,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
