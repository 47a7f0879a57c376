package handlers

import (
	"fmt"
	"net/http"

	"github.com/binhtph/quiz-app/internal/services"
	"github.com/binhtph/quiz-app/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
	exportService services.ExportService
}

func NewResultHandler(resultService services.ResultService, exportService services.ExportService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
		exportService: exportService,
	}
}

// SubmitResult grades a finished attempt and stores it
// @Router /exams/{id}/submit [post]
func (h *ResultHandler) SubmitResult(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Submitting result", "exam_id", id)

	var req services.SubmitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.resultService.Submit(h.requestContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Router /exams/{id}/leaderboard [get]
func (h *ResultHandler) GetLeaderboard(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	entries, err := h.resultService.Leaderboard(h.requestContext(c), id, parseIntQuery(c, "limit", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// @Router /exams/{id}/history/{userName} [get]
func (h *ResultHandler) GetExamHistory(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}
	userName := ParseStringIDParam(c, "userName")
	if userName == "" {
		return
	}

	resp, err := h.resultService.ExamHistory(h.requestContext(c), id, userName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Router /history/user/{userName} [get]
func (h *ResultHandler) GetUserHistory(c *gin.Context) {
	userName := ParseStringIDParam(c, "userName")
	if userName == "" {
		return
	}

	resp, err := h.resultService.UserHistory(h.requestContext(c), userName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RenameUser moves all results from old_name to new_name
// @Router /results/rename [post]
func (h *ResultHandler) RenameUser(c *gin.Context) {
	var req services.RenameRequest
	if !h.BindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Renaming user", "old_name", req.OldName, "new_name", req.NewName)

	resp, err := h.resultService.Rename(h.requestContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Router /exams/{id}/results/export [get]
func (h *ResultHandler) ExportResults(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	buf, filename, err := h.exportService.ExportResults(h.requestContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
