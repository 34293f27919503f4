package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/application/service"
)

// UpsertWeeklyReport handles POST /api/weekly-reports. Writing twice for
// the same week updates the existing report in place.
func (h *Handlers) UpsertWeeklyReport(c *gin.Context) {
	var input service.WeeklyReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	report, err := h.reportService.Upsert(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, report)
}

// MyWeeklyReports handles GET /api/weekly-reports/mine
func (h *Handlers) MyWeeklyReports(c *gin.Context) {
	reports, err := h.reportService.MyReports(c.Request.Context(), actorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, reports)
}

// ListWeeklyReports handles GET /api/weekly-reports
func (h *Handlers) ListWeeklyReports(c *gin.Context) {
	filter := port.WeeklyReportFilter{
		WeekFrom: c.Query("week_from"),
		WeekTo:   c.Query("week_to"),
	}
	if depts := c.Query("departments"); depts != "" {
		filter.Departments = strings.Split(depts, ",")
	}
	if ids := c.Query("user_ids"); ids != "" {
		for _, raw := range strings.Split(ids, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				badRequest(c, "invalid user_ids")
				return
			}
			filter.UserIDs = append(filter.UserIDs, id)
		}
	}

	reports, err := h.reportService.ListAll(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, reports)
}

// PendingWeeklyReports handles GET /api/weekly-reports/pending; lists
// users who have not filed for the week
func (h *Handlers) PendingWeeklyReports(c *gin.Context) {
	users, err := h.reportService.PendingUsers(c.Request.Context(), actorFrom(c), c.Query("week_start"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

// GetWeeklyReport handles GET /api/weekly-reports/:id
func (h *Handlers) GetWeeklyReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	report, err := h.reportService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, report)
}

// DeleteWeeklyReport handles DELETE /api/weekly-reports/:id
func (h *Handlers) DeleteWeeklyReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": id})
}
