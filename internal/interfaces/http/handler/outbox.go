package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mfgops/backend/internal/application/event"
)

// OutboxHandler exposes dead-lettered propagation events to workspace owners
type OutboxHandler struct {
	BaseHandler
	outboxService *event.OutboxService
}

func NewOutboxHandler(outboxService *event.OutboxService) *OutboxHandler {
	return &OutboxHandler{outboxService: outboxService}
}

// DeadLetters handles GET /admin/outbox/dead
// @Summary      List dead-lettered events
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Page size" maximum(100)
// @Success      200 {object} dto.Response{data=[]event.OutboxEntryDTO,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/outbox/dead [get]
func (h *OutboxHandler) DeadLetters(c *gin.Context) {
	var filter event.OutboxFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	result, err := h.outboxService.GetDeadLetterEntries(c.Request.Context(), h.session(c).TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Retry handles POST /admin/outbox/:id/retry. Only DEAD entries can be
// requeued.
// @Summary      Requeue a dead-lettered event
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Outbox entry ID" format(uuid)
// @Success      200 {object} dto.Response{data=event.OutboxEntryDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/outbox/{id}/retry [post]
func (h *OutboxHandler) Retry(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.outboxService.RetryDeadEntry(c.Request.Context(), h.session(c).TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}
