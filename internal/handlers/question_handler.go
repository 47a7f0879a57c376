package handlers

import (
	"net/http"

	"github.com/binhtph/quiz-app/internal/services"
	"github.com/binhtph/quiz-app/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestion creates a question in an exam
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var req services.QuestionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	question, err := h.questionService.Create(h.requestContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating question", "question_id", id)

	var req services.QuestionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	question, err := h.questionService.Update(h.requestContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.questionService.Delete(h.requestContext(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Question deleted"})
}

// ReorderQuestions applies {orders: [{id, order_num}]} in one transaction
// @Router /questions/reorder [post]
func (h *QuestionHandler) ReorderQuestions(c *gin.Context) {
	var req services.ReorderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.questionService.Reorder(h.requestContext(c), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
