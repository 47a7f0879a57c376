package handlers

import (
	"net/http"

	"github.com/binhtph/quiz-app/internal/services"
	"github.com/binhtph/quiz-app/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// ListExams returns every exam with its question count and top three scores
// @Router /exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	h.LogRequest(c, "Listing exams")

	resp, err := h.examService.List(h.requestContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	exam, err := h.examService.Get(h.requestContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// CreateExam creates an exam; a missing pin_code falls back to the default PIN
// @Router /exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	h.LogRequest(c, "Creating exam")

	var req services.CreateExamRequest
	if !h.BindJSON(c, &req) {
		return
	}

	exam, err := h.examService.Create(h.requestContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

// UpdateExam applies a partial update. The current PIN goes in the body as
// "pin" or in the X-Exam-PIN header.
// @Router /exams/{id} [put]
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating exam", "exam_id", id)

	var req services.UpdateExamRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.PIN == "" {
		req.PIN = c.GetHeader(pinHeader)
	}

	exam, err := h.examService.Update(h.requestContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// @Router /exams/{id} [delete]
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting exam", "exam_id", id)

	if err := h.examService.Delete(h.requestContext(c), id, readPIN(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Exam deleted"})
}

// @Router /exams/{id}/verify-pin [post]
func (h *ExamHandler) VerifyPIN(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	resp, err := h.examService.VerifyPIN(h.requestContext(c), id, readPIN(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetQuestions returns the exam's questions; ?learn=1 includes answers
// @Router /exams/{id}/questions [get]
func (h *ExamHandler) GetQuestions(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	questions, err := h.examService.FetchQuestions(h.requestContext(c), id, parseBoolQuery(c, "learn"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// @Router /exams/{id}/questions/edit [get]
func (h *ExamHandler) EditQuestions(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	questions, err := h.examService.EditQuestions(h.requestContext(c), id, readPIN(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// @Router /exams/{id}/questions [delete]
func (h *ExamHandler) DeleteAllQuestions(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting all questions", "exam_id", id)

	deleted, err := h.examService.DeleteAllQuestions(h.requestContext(c), id, readPIN(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted_count": deleted})
}
