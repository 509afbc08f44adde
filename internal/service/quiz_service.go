package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/config"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/repository"
	"github.com/zeroclasses/zero-backend/internal/response"
)

// Quiz errors.
var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrInvalidQuestion = errors.New("question correct index out of range")
)

// recentResultsLimit bounds the caller's own result history.
const recentResultsLimit = 50

// QuizService handles quiz authoring, the definition cache and results.
type QuizService struct {
	cfg     *config.Config
	repo    *repository.QuizRepository
	results *repository.QuizResultRepository
	courses *CourseService
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	cfg *config.Config,
	repo *repository.QuizRepository,
	results *repository.QuizResultRepository,
	courses *CourseService,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		cfg:     cfg,
		repo:    repo,
		results: results,
		courses: courses,
		rdb:     rdb,
		log:     log.With().Str("component", "quiz_service").Logger(),
	}
}

// ListByCourse returns quiz summaries for a course the actor can view.
func (s *QuizService) ListByCourse(ctx context.Context, actor Actor, courseID uuid.UUID) ([]model.QuizSummary, error) {
	if err := s.courses.CanView(ctx, actor, courseID); err != nil {
		return nil, err
	}
	return s.repo.ListByCourse(ctx, courseID)
}

// Get returns the full quiz for course staff.
func (s *QuizService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.courses.CanManage(ctx, actor, quiz.CourseID); err != nil {
		return nil, err
	}
	return quiz, nil
}

// GetForStudent returns the quiz without its answer key for an enrolled student.
func (s *QuizService) GetForStudent(ctx context.Context, actor Actor, id uuid.UUID) (*model.QuizForStudent, error) {
	quiz, err := s.GetForAttempt(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.courses.CanView(ctx, actor, quiz.CourseID); err != nil {
		return nil, err
	}
	view := quiz.ForStudent()
	return &view, nil
}

// Create adds a quiz to a course.
func (s *QuizService) Create(ctx context.Context, actor Actor, courseID uuid.UUID, req model.SaveQuizRequest) (*model.Quiz, error) {
	if err := s.courses.CanManage(ctx, actor, courseID); err != nil {
		return nil, err
	}
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}
	quiz := &model.Quiz{
		CourseID:  courseID,
		Title:     req.Title,
		TimeLimit: req.TimeLimit,
		Questions: questions,
		CreatedBy: actor.Name,
	}
	if err := s.repo.Create(ctx, quiz); err != nil {
		return nil, err
	}
	s.log.Info().Str("quiz_id", quiz.ID.String()).Int("questions", len(questions)).Msg("Quiz created")
	return quiz, nil
}

// Update replaces a quiz's title, time limit and questions. Attempts already
// running keep the version they started with.
func (s *QuizService) Update(ctx context.Context, actor Actor, id uuid.UUID, req model.SaveQuizRequest) (*model.Quiz, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}
	quiz := &model.Quiz{
		ID:           id,
		Title:        req.Title,
		TimeLimit:    req.TimeLimit,
		Questions:    questions,
		LastEditedBy: actor.Name,
	}
	if err := s.repo.Replace(ctx, quiz); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, id)
	return quiz, nil
}

// Delete removes a quiz and its results.
func (s *QuizService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrQuizNotFound
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func buildQuestions(in []model.QuestionInput) ([]model.Question, error) {
	out := make([]model.Question, len(in))
	for i, q := range in {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("question %d: %w", i, ErrInvalidQuestion)
		}
		out[i] = model.Question{
			Text:         q.Text,
			Options:      append([]string(nil), q.Options...),
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		}
	}
	return out, nil
}

func (s *QuizService) load(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// ─── Definition cache ──────────────────────────────────────────────────

// GetForAttempt returns the full quiz, answer key included, reading through
// the Redis cache.
func (s *QuizService) GetForAttempt(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	key := config.CacheKey.QuizPayloadKey(id.String())

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var quiz model.Quiz
		if err := json.Unmarshal(data, &quiz); err == nil {
			return &quiz, nil
		}
		s.log.Warn().Str("quiz_id", id.String()).Msg("Corrupt cached quiz, reloading")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("quiz_id", id.String()).Msg("Quiz cache read failed")
	}

	quiz, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(quiz)
	if err != nil {
		return nil, fmt.Errorf("marshal quiz: %w", err)
	}
	if err := s.rdb.Set(ctx, key, payload, s.cfg.QuizCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", id.String()).Msg("Quiz cache write failed")
	}
	return quiz, nil
}

func (s *QuizService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.rdb.Del(ctx, config.CacheKey.QuizPayloadKey(id.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", id.String()).Msg("Quiz cache invalidation failed")
	}
}

// ─── Results ───────────────────────────────────────────────────────────

// MyResults returns the caller's most recent results.
func (s *QuizService) MyResults(ctx context.Context, actor Actor) ([]repository.QuizResultWithTitle, error) {
	return s.results.ListByStudent(ctx, actor.ID, recentResultsLimit)
}

// QuizResults returns every result of a quiz for course staff.
func (s *QuizService) QuizResults(ctx context.Context, actor Actor, quizID uuid.UUID, page, perPage int) ([]repository.QuizResultWithStudent, *response.Pagination, error) {
	if _, err := s.Get(ctx, actor, quizID); err != nil {
		return nil, nil, err
	}
	page, perPage = normalizePage(page, perPage)
	results, total, err := s.results.ListByQuizPaginated(ctx, quizID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	return results, response.NewPagination(page, perPage, total), nil
}
