package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quyenpham2020/shinsei-portal/internal/application/service"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	authService        service.AuthService
	applicationService service.ApplicationService
	reportService      service.WeeklyReportService
	userService        service.UserService
	masterService      service.MasterDataService
	favoriteService    service.FavoriteService
	attachmentService  service.AttachmentService
	auditService       service.AuditService
	logger             Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		authService:        services.Auth,
		applicationService: services.Application,
		reportService:      services.WeeklyReport,
		userService:        services.User,
		masterService:      services.MasterData,
		favoriteService:    services.Favorite,
		attachmentService:  services.Attachment,
		auditService:       services.Audit,
		logger:             logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respond(c, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// CreateApplication handles POST /api/applications
func (h *Handlers) CreateApplication(c *gin.Context) {
	var input service.CreateApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	app, err := h.applicationService.Create(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, app)
}

// ListApplications handles GET /api/applications
func (h *Handlers) ListApplications(c *gin.Context) {
	filter := entity.ApplicationFilter{
		Status:     workflow.State(c.Query("status")),
		TypeCode:   c.Query("type"),
		Department: c.Query("department"),
		Search:     c.Query("search"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		SortBy:     c.Query("sort_by"),
		SortDesc:   c.Query("sort_order") == "desc",
	}

	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	list, err := h.applicationService.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, list)
}

// GetApplication handles GET /api/applications/:id
func (h *Handlers) GetApplication(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	app, err := h.applicationService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, app)
}

// UpdateApplication handles PUT /api/applications/:id
func (h *Handlers) UpdateApplication(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var input service.UpdateApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	app, err := h.applicationService.Update(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, app)
}

// DeleteApplication handles DELETE /api/applications/:id
func (h *Handlers) DeleteApplication(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.applicationService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": id})
}

// SubmitApplication handles POST /api/applications/:id/submit
func (h *Handlers) SubmitApplication(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	app, err := h.applicationService.Submit(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, app)
}

// ApproveApplication handles POST /api/applications/:id/approve
func (h *Handlers) ApproveApplication(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	app, err := h.applicationService.Approve(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, app)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// RejectApplication handles POST /api/applications/:id/reject
func (h *Handlers) RejectApplication(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	app, err := h.applicationService.Reject(c.Request.Context(), actorFrom(c), id, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, app)
}

type bulkRequest struct {
	IDs    []int64 `json:"ids"`
	Reason string  `json:"reason"`
}

// BulkApprove handles POST /api/applications/bulk-approve
func (h *Handlers) BulkApprove(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		badRequest(c, "ids is required")
		return
	}

	results := h.applicationService.BulkApprove(c.Request.Context(), actorFrom(c), req.IDs)
	respond(c, http.StatusOK, results)
}

// BulkReject handles POST /api/applications/bulk-reject
func (h *Handlers) BulkReject(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		badRequest(c, "ids is required")
		return
	}

	results := h.applicationService.BulkReject(c.Request.Context(), actorFrom(c), req.IDs, req.Reason)
	respond(c, http.StatusOK, results)
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment handles POST /api/applications/:id/comments
func (h *Handlers) AddComment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	comment, err := h.applicationService.AddComment(c.Request.Context(), actorFrom(c), id, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, comment)
}

// ListComments handles GET /api/applications/:id/comments
func (h *Handlers) ListComments(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	// Visibility check rides on Get; comments come back joined.
	app, err := h.applicationService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, app.Comments)
}

// AddAttachment handles POST /api/applications/:id/attachments
func (h *Handlers) AddAttachment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var input service.AttachmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	att, err := h.attachmentService.Add(c.Request.Context(), actorFrom(c), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, att)
}

// ListAttachments handles GET /api/applications/:id/attachments
func (h *Handlers) ListAttachments(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	atts, err := h.attachmentService.List(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, atts)
}

// DeleteAttachment handles DELETE /api/attachments/:id
func (h *Handlers) DeleteAttachment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": id})
}

// AuditTrail handles GET /api/applications/:id/audit
func (h *Handlers) AuditTrail(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	records, err := h.auditService.Trail(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, records)
}

// ToggleFavorite handles POST /api/applications/:id/favorite
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	favorited, err := h.favoriteService.Toggle(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"favorited": favorited})
}

// ListFavorites handles GET /api/favorites
func (h *Handlers) ListFavorites(c *gin.Context) {
	apps, err := h.favoriteService.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, apps)
}
