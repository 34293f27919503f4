package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quyenpham2020/shinsei-portal/internal/application/service"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

// CreateUser handles POST /api/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var input service.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

// ListApproverUsers handles GET /api/users/approvers
func (h *Handlers) ListApproverUsers(c *gin.Context) {
	users, err := h.userService.ListApprovers(c.Request.Context(), actorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

// GetUser handles GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// UpdateUser handles PUT /api/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var input service.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": id})
}

type systemAccessRequest struct {
	Systems []string `json:"systems"`
}

// SetSystemAccess handles PUT /api/users/:id/systems
func (h *Handlers) SetSystemAccess(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req systemAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if err := h.userService.SetSystemAccess(c.Request.Context(), actorFrom(c), id, req.Systems); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"systems": req.Systems})
}

type bulkSystemAccessRequest struct {
	Updates []service.SystemAccessUpdate `json:"updates"`
}

// BulkSetSystemAccess handles POST /api/users/system-access/bulk
func (h *Handlers) BulkSetSystemAccess(c *gin.Context) {
	var req bulkSystemAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if len(req.Updates) == 0 {
		badRequest(c, "updates is required")
		return
	}

	results := h.userService.BulkSetSystemAccess(c.Request.Context(), actorFrom(c), req.Updates)
	respond(c, http.StatusOK, results)
}

// ListDepartments handles GET /api/departments
func (h *Handlers) ListDepartments(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active_only", "false"))

	depts, err := h.masterService.ListDepartments(c.Request.Context(), activeOnly)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, depts)
}

// CreateDepartment handles POST /api/departments
func (h *Handlers) CreateDepartment(c *gin.Context) {
	var dept entity.Department
	if err := c.ShouldBindJSON(&dept); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.masterService.CreateDepartment(c.Request.Context(), actorFrom(c), &dept)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

// UpdateDepartment handles PUT /api/departments/:id
func (h *Handlers) UpdateDepartment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var dept entity.Department
	if err := c.ShouldBindJSON(&dept); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	dept.ID = id

	updated, err := h.masterService.UpdateDepartment(c.Request.Context(), actorFrom(c), &dept)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

// DeleteDepartment handles DELETE /api/departments/:id
func (h *Handlers) DeleteDepartment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.masterService.DeleteDepartment(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": id})
}

// ListTeams handles GET /api/teams
func (h *Handlers) ListTeams(c *gin.Context) {
	teams, err := h.masterService.ListTeams(c.Request.Context(), actorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, teams)
}

// GetTeam handles GET /api/teams/:id; includes members
func (h *Handlers) GetTeam(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	team, err := h.masterService.GetTeam(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, team)
}

// CreateTeam handles POST /api/teams
func (h *Handlers) CreateTeam(c *gin.Context) {
	var team entity.Team
	if err := c.ShouldBindJSON(&team); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.masterService.CreateTeam(c.Request.Context(), actorFrom(c), &team)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

// UpdateTeam handles PUT /api/teams/:id
func (h *Handlers) UpdateTeam(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var team entity.Team
	if err := c.ShouldBindJSON(&team); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	team.ID = id

	updated, err := h.masterService.UpdateTeam(c.Request.Context(), actorFrom(c), &team)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

// DeleteTeam handles DELETE /api/teams/:id
func (h *Handlers) DeleteTeam(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.masterService.DeleteTeam(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": id})
}

// ListApplicationTypes handles GET /api/application-types
func (h *Handlers) ListApplicationTypes(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))

	types, err := h.masterService.ListApplicationTypes(c.Request.Context(), includeInactive)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, types)
}

// CreateApplicationType handles POST /api/application-types
func (h *Handlers) CreateApplicationType(c *gin.Context) {
	var typ entity.ApplicationType
	if err := c.ShouldBindJSON(&typ); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.masterService.CreateApplicationType(c.Request.Context(), actorFrom(c), &typ)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

// UpdateApplicationType handles PUT /api/application-types/:id
func (h *Handlers) UpdateApplicationType(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var typ entity.ApplicationType
	if err := c.ShouldBindJSON(&typ); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	typ.ID = id

	updated, err := h.masterService.UpdateApplicationType(c.Request.Context(), actorFrom(c), &typ)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

// DeleteApplicationType handles DELETE /api/application-types/:id
func (h *Handlers) DeleteApplicationType(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.masterService.DeleteApplicationType(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": id})
}

// ListApproverAssignments handles GET /api/approvers
func (h *Handlers) ListApproverAssignments(c *gin.Context) {
	userID, _ := strconv.ParseInt(c.Query("user_id"), 10, 64)
	departmentID, _ := strconv.ParseInt(c.Query("department_id"), 10, 64)

	assignments, err := h.masterService.ListApprovers(c.Request.Context(), userID, departmentID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, assignments)
}

// CreateApproverAssignment handles POST /api/approvers
func (h *Handlers) CreateApproverAssignment(c *gin.Context) {
	var a entity.ApproverAssignment
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.masterService.CreateApprover(c.Request.Context(), actorFrom(c), &a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

// UpdateApproverAssignment handles PUT /api/approvers/:id
func (h *Handlers) UpdateApproverAssignment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var a entity.ApproverAssignment
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	a.ID = id

	updated, err := h.masterService.UpdateApprover(c.Request.Context(), actorFrom(c), &a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

// DeleteApproverAssignment handles DELETE /api/approvers/:id
func (h *Handlers) DeleteApproverAssignment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.masterService.DeleteApprover(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": id})
}
