package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.EmployeeID, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	actor := actorFrom(c)

	user, err := h.userService.Get(c.Request.Context(), actor, actor.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /api/auth/change-password
func (h *Handlers) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	actor := actorFrom(c)
	if err := h.authService.ChangePassword(c.Request.Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"changed": true})
}
