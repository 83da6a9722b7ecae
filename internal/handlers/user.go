// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/farmfresh/farm-backend/internal/models"
	"github.com/farmfresh/farm-backend/internal/services"
	"github.com/farmfresh/farm-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GET /users?role=farmer
func (h *UserHandler) ListUsers(c *gin.Context) {
	role := models.Role(c.Query("role"))
	if role != "" && !role.Valid() {
		utils.BadRequestResponse(c, "Invalid role filter", nil)
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	lo, hi := utils.SliceBounds(len(users), params)
	utils.PaginatedResponse(c, utils.CreatePaginationResult(users[lo:hi], int64(len(users)), params))
}

// GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	callerID, _ := utils.GetUserIDFromContext(c)
	callerRole, _ := utils.GetUserRoleFromContext(c)

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), callerID, models.Role(callerRole), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerRole, _ := utils.GetUserRoleFromContext(c)

	if err := h.userService.DeleteUser(c.Request.Context(), models.Role(callerRole), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
