package services

import (
	"log/slog"
	"time"

	"github.com/binhtph/quiz-app/internal/cache"
	"github.com/binhtph/quiz-app/internal/events"
	"github.com/binhtph/quiz-app/internal/metrics"
	"github.com/binhtph/quiz-app/internal/repositories"
	"github.com/binhtph/quiz-app/internal/session"
	"github.com/binhtph/quiz-app/internal/validator"
)

type ServiceManager interface {
	Exam() ExamService
	Question() QuestionService
	Result() ResultService
	Export() ExportService
	Session() SessionService
}

type ManagerConfig struct {
	DefaultPIN          string
	LeaderboardLimit    int
	LeaderboardCacheTTL time.Duration
}

type serviceManager struct {
	exam     ExamService
	question QuestionService
	result   ResultService
	export   ExportService
	session  SessionService
}

// NewServiceManager wires every service over one repository. Exam sessions
// submit through the result service so both paths grade and record alike.
func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	sessions *session.Manager,
	logger *slog.Logger,
	v *validator.Validator,
	m *metrics.Metrics,
	config ManagerConfig,
) ServiceManager {
	notifier := NewRecordNotifier(publisher, logger)
	result := NewResultService(repo, cacheService, notifier, logger, v, m, ResultServiceConfig{
		LeaderboardLimit: config.LeaderboardLimit,
		CacheTTL:         config.LeaderboardCacheTTL,
	})

	return &serviceManager{
		exam:     NewExamService(repo, cacheService, logger, v, m, config.DefaultPIN),
		question: NewQuestionService(repo, logger, v),
		result:   result,
		export:   NewExportService(repo, logger),
		session:  NewSessionService(repo, sessions, result.Submitter(), logger, v, m),
	}
}

func (sm *serviceManager) Exam() ExamService         { return sm.exam }
func (sm *serviceManager) Question() QuestionService { return sm.question }
func (sm *serviceManager) Result() ResultService     { return sm.result }
func (sm *serviceManager) Export() ExportService     { return sm.export }
func (sm *serviceManager) Session() SessionService   { return sm.session }
