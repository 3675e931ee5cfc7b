package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/SscSPs/mymoney_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type schedulerHandler struct {
	schedulerService portssvc.SchedulerSvcFacade
}

func newSchedulerHandler(ss portssvc.SchedulerSvcFacade) *schedulerHandler {
	return &schedulerHandler{schedulerService: ss}
}

// registerSchedulerRoutes registers the account-scoped and the direct scheduler routes.
func registerSchedulerRoutes(rg *gin.RouterGroup, schedulerService portssvc.SchedulerSvcFacade) {
	h := newSchedulerHandler(schedulerService)

	rg.POST("/accounts/:id/schedulers", h.createScheduler)
	rg.GET("/accounts/:id/schedulers", h.listSchedulers)
	rg.GET("/accounts/:id/scheduler-summaries", h.getSummaries)

	schedulers := rg.Group("/schedulers")
	{
		schedulers.GET("/:schedulerID", h.getScheduler)
		schedulers.PUT("/:schedulerID", h.updateScheduler)
		schedulers.DELETE("/:schedulerID", h.deleteScheduler)
		schedulers.POST("/:schedulerID/clone", h.cloneScheduler)
		schedulers.POST("/:schedulerID/reset", h.resetScheduler)
	}
}

// createScheduler godoc
// @Summary Create a scheduler
// @Description Creates a recurring transaction template on an account. It starts in the waiting state.
// @Tags schedulers
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   scheduler body dto.CreateSchedulerRequest true "Scheduler details"
// @Success 201 {object} dto.SchedulerResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to create scheduler"
// @Security BearerAuth
// @Router /accounts/{id}/schedulers [post]
func (h *schedulerHandler) createScheduler(c *gin.Context) {
	var req dto.CreateSchedulerRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	s, err := h.schedulerService.CreateScheduler(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create scheduler")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Scheduler created", slog.String("scheduler_id", s.SchedulerID))
	c.JSON(http.StatusCreated, dto.ToSchedulerResponse(s))
}

// listSchedulers godoc
// @Summary List an account's schedulers
// @Tags schedulers
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListSchedulersResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to list schedulers"
// @Security BearerAuth
// @Router /accounts/{id}/schedulers [get]
func (h *schedulerHandler) listSchedulers(c *gin.Context) {
	var params dto.ListSchedulersParams
	if !bindQuery(c, &params) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ss, err := h.schedulerService.ListSchedulersByAccount(c.Request.Context(), c.Param("id"), userID, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to list schedulers")
		return
	}
	c.JSON(http.StatusOK, dto.ListSchedulersResponse{Schedulers: dto.ToSchedulerResponses(ss)})
}

// getSummaries godoc
// @Summary Scheduler summaries
// @Description Totals of the active schedulers per type, with what was already cloned in the current week or month
// @Tags schedulers
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.SchedulerSummariesResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to compute summaries"
// @Security BearerAuth
// @Router /accounts/{id}/scheduler-summaries [get]
func (h *schedulerHandler) getSummaries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summaries, err := h.schedulerService.GetSchedulerSummaries(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to compute summaries")
		return
	}
	c.JSON(http.StatusOK, dto.SchedulerSummariesResponse{Summaries: summaries})
}

// getScheduler godoc
// @Summary Get a scheduler
// @Tags schedulers
// @Produce  json
// @Param   schedulerID path string true "Scheduler ID"
// @Success 200 {object} dto.SchedulerResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Scheduler not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve scheduler"
// @Security BearerAuth
// @Router /schedulers/{schedulerID} [get]
func (h *schedulerHandler) getScheduler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	s, err := h.schedulerService.GetSchedulerByID(c.Request.Context(), c.Param("schedulerID"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve scheduler")
		return
	}
	c.JSON(http.StatusOK, dto.ToSchedulerResponse(s))
}

// updateScheduler godoc
// @Summary Update a scheduler
// @Description Updates the template fields. The state and last action are never changed here.
// @Tags schedulers
// @Accept  json
// @Produce  json
// @Param   schedulerID path string true "Scheduler ID"
// @Param   scheduler body dto.UpdateSchedulerRequest true "Fields to update"
// @Success 200 {object} dto.SchedulerResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Scheduler not found"
// @Failure 500 {object} ErrorResponse "Failed to update scheduler"
// @Security BearerAuth
// @Router /schedulers/{schedulerID} [put]
func (h *schedulerHandler) updateScheduler(c *gin.Context) {
	var req dto.UpdateSchedulerRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	s, err := h.schedulerService.UpdateScheduler(c.Request.Context(), c.Param("schedulerID"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update scheduler")
		return
	}
	c.JSON(http.StatusOK, dto.ToSchedulerResponse(s))
}

// deleteScheduler godoc
// @Summary Delete a scheduler
// @Description Deletes a scheduler. Transactions it already produced are kept.
// @Tags schedulers
// @Param   schedulerID path string true "Scheduler ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Scheduler not found"
// @Failure 500 {object} ErrorResponse "Failed to delete scheduler"
// @Security BearerAuth
// @Router /schedulers/{schedulerID} [delete]
func (h *schedulerHandler) deleteScheduler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.schedulerService.DeleteScheduler(c.Request.Context(), c.Param("schedulerID"), userID); err != nil {
		respondError(c, err, "Failed to delete scheduler")
		return
	}
	c.Status(http.StatusNoContent)
}

// cloneScheduler godoc
// @Summary Clone a scheduler now
// @Description Produces the next transaction of the scheduler immediately and advances it. Failed schedulers are skipped.
// @Tags schedulers
// @Produce  json
// @Param   schedulerID path string true "Scheduler ID"
// @Success 200 {object} dto.CloneResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Scheduler not found"
// @Failure 500 {object} ErrorResponse "Failed to clone scheduler"
// @Security BearerAuth
// @Router /schedulers/{schedulerID}/clone [post]
func (h *schedulerHandler) cloneScheduler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	schedulerID := c.Param("schedulerID")
	res, err := h.schedulerService.CloneScheduler(c.Request.Context(), schedulerID, userID)
	if err != nil {
		respondError(c, err, "Failed to clone scheduler")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Scheduler cloned",
		slog.String("scheduler_id", schedulerID), slog.String("outcome", string(res.Outcome)))
	c.JSON(http.StatusOK, dto.ToCloneResponse(res))
}

// resetScheduler godoc
// @Summary Reset a failed scheduler
// @Description Puts a failed scheduler back into the waiting state
// @Tags schedulers
// @Produce  json
// @Param   schedulerID path string true "Scheduler ID"
// @Success 200 {object} dto.SchedulerResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Scheduler not found"
// @Failure 409 {object} ErrorResponse "Scheduler is not failed"
// @Failure 500 {object} ErrorResponse "Failed to reset scheduler"
// @Security BearerAuth
// @Router /schedulers/{schedulerID}/reset [post]
func (h *schedulerHandler) resetScheduler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	s, err := h.schedulerService.ResetScheduler(c.Request.Context(), c.Param("schedulerID"), userID)
	if err != nil {
		respondError(c, err, "Failed to reset scheduler")
		return
	}
	c.JSON(http.StatusOK, dto.ToSchedulerResponse(s))
}
