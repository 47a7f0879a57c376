package handlers

import (
	"net/http"

	"github.com/binhtph/quiz-app/internal/services"
	"github.com/binhtph/quiz-app/internal/utils"
	"github.com/gin-gonic/gin"
)

// SessionHandler drives server-hosted exam sessions. Every mutating call
// answers with the updated session snapshot.
type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// @Router /exams/{id}/sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Starting session", "exam_id", id)

	var req services.StartSessionRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	snap, err := h.sessionService.Start(h.requestContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, snap)
}

// @Router /sessions/{sid} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sid := ParseStringIDParam(c, "sid")
	if sid == "" {
		return
	}

	snap, err := h.sessionService.Get(h.requestContext(c), sid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// @Router /sessions/{sid}/answers/{qid} [put]
func (h *SessionHandler) Answer(c *gin.Context) {
	sid := ParseStringIDParam(c, "sid")
	if sid == "" {
		return
	}
	qid := ParseUintParam(c, "qid")
	if qid == 0 {
		return
	}

	var req services.AnswerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	snap, err := h.sessionService.Answer(h.requestContext(c), sid, qid, req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// EditAnswer toggles an option, pairs or unpairs a match, or moves a
// drag and drop item
// @Router /sessions/{sid}/answers/{qid} [patch]
func (h *SessionHandler) EditAnswer(c *gin.Context) {
	sid := ParseStringIDParam(c, "sid")
	if sid == "" {
		return
	}
	qid := ParseUintParam(c, "qid")
	if qid == 0 {
		return
	}

	var req services.EditAnswerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	snap, err := h.sessionService.EditAnswer(h.requestContext(c), sid, qid, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// @Router /sessions/{sid}/marks/{index} [post]
func (h *SessionHandler) ToggleMark(c *gin.Context) {
	sid := ParseStringIDParam(c, "sid")
	if sid == "" {
		return
	}
	index, ok := ParseIntParam(c, "index")
	if !ok {
		return
	}

	snap, err := h.sessionService.ToggleMark(h.requestContext(c), sid, index)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// @Router /sessions/{sid}/jump/{index} [post]
func (h *SessionHandler) Jump(c *gin.Context) {
	sid := ParseStringIDParam(c, "sid")
	if sid == "" {
		return
	}
	index, ok := ParseIntParam(c, "index")
	if !ok {
		return
	}

	snap, err := h.sessionService.Jump(h.requestContext(c), sid, index)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// Next advances; the response step tells a move from revealed feedback or
// completion
// @Router /sessions/{sid}/next [post]
func (h *SessionHandler) Next(c *gin.Context) {
	sid := ParseStringIDParam(c, "sid")
	if sid == "" {
		return
	}

	resp, err := h.sessionService.Next(h.requestContext(c), sid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Router /sessions/{sid}/back [post]
func (h *SessionHandler) Back(c *gin.Context) {
	sid := ParseStringIDParam(c, "sid")
	if sid == "" {
		return
	}

	snap, err := h.sessionService.Back(h.requestContext(c), sid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// @Router /sessions/{sid} [delete]
func (h *SessionHandler) Abandon(c *gin.Context) {
	sid := ParseStringIDParam(c, "sid")
	if sid == "" {
		return
	}

	if err := h.sessionService.Abandon(h.requestContext(c), sid); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
