package handlers

import (
	"net/http"

	"github.com/binhtph/quiz-app/internal/metrics"
	"github.com/binhtph/quiz-app/internal/services"
	"github.com/binhtph/quiz-app/internal/utils"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	PinRateLimitPerMin int
	GitCommit          string
	GitCommitFull      string
}

type HandlerManager struct {
	examHandler     *ExamHandler
	questionHandler *QuestionHandler
	resultHandler   *ResultHandler
	sessionHandler  *SessionHandler
	eventHandler    *EventHandler
	metrics         *metrics.Metrics
	config          RouterConfig
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	subscriber RecordSubscriber,
	m *metrics.Metrics,
	logger utils.Logger,
	config RouterConfig,
) *HandlerManager {
	return &HandlerManager{
		examHandler:     NewExamHandler(serviceManager.Exam(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), logger),
		resultHandler:   NewResultHandler(serviceManager.Result(), serviceManager.Export(), logger),
		sessionHandler:  NewSessionHandler(serviceManager.Session(), logger),
		eventHandler:    NewEventHandler(subscriber, m, logger),
		metrics:         m,
		config:          config,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	if hm.metrics != nil {
		router.GET("/metrics", hm.metrics.PrometheusHandler())
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/version", hm.Version)
		v1.GET("/events", hm.eventHandler.Stream)

		// Exam routes
		exams := v1.Group("/exams")
		{
			exams.GET("", hm.examHandler.ListExams)
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.PUT("/:id", hm.examHandler.UpdateExam)
			exams.DELETE("/:id", hm.examHandler.DeleteExam)
			exams.POST("/:id/verify-pin", RateLimitMiddleware(hm.config.PinRateLimitPerMin, hm.metrics), hm.examHandler.VerifyPIN)

			// Question listing and bulk management
			exams.GET("/:id/questions", hm.examHandler.GetQuestions)
			exams.GET("/:id/questions/edit", hm.examHandler.EditQuestions)
			exams.DELETE("/:id/questions", hm.examHandler.DeleteAllQuestions)

			// Results
			exams.POST("/:id/submit", hm.resultHandler.SubmitResult)
			exams.GET("/:id/leaderboard", hm.resultHandler.GetLeaderboard)
			exams.GET("/:id/history/:userName", hm.resultHandler.GetExamHistory)
			exams.GET("/:id/results/export", hm.resultHandler.ExportResults)

			// Sessions
			exams.POST("/:id/sessions", hm.sessionHandler.StartSession)
		}

		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.POST("/reorder", hm.questionHandler.ReorderQuestions)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		v1.GET("/history/user/:userName", hm.resultHandler.GetUserHistory)
		v1.POST("/results/rename", hm.resultHandler.RenameUser)

		// Session routes
		sessions := v1.Group("/sessions")
		{
			sessions.GET("/:sid", hm.sessionHandler.GetSession)
			sessions.DELETE("/:sid", hm.sessionHandler.Abandon)
			sessions.PUT("/:sid/answers/:qid", hm.sessionHandler.Answer)
			sessions.PATCH("/:sid/answers/:qid", hm.sessionHandler.EditAnswer)
			sessions.POST("/:sid/marks/:index", hm.sessionHandler.ToggleMark)
			sessions.POST("/:sid/jump/:index", hm.sessionHandler.Jump)
			sessions.POST("/:sid/next", hm.sessionHandler.Next)
			sessions.POST("/:sid/back", hm.sessionHandler.Back)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-app",
	})
}

// Version reports the build commit, taken from GIT_COMMIT at startup.
func (hm *HandlerManager) Version(c *gin.Context) {
	short := hm.config.GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	c.JSON(http.StatusOK, gin.H{
		"commit":      short,
		"commit_full": hm.config.GitCommitFull,
	})
}
