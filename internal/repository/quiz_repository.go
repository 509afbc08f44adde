package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zeroclasses/zero-backend/internal/model"
)

// QuizRepository handles quizzes and their ordered questions.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// GetByID retrieves a quiz with its questions in order.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, title, time_limit_minutes, created_by, last_edited_by, updated_at
		 FROM quizzes WHERE id = $1`, id,
	).Scan(&q.ID, &q.CourseID, &q.Title, &q.TimeLimit, &q.CreatedBy, &q.LastEditedBy, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, text, options, correct_index, explanation
		 FROM quiz_questions WHERE quiz_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	q.Questions = []model.Question{}
	for rows.Next() {
		var question model.Question
		if err := rows.Scan(&question.ID, &question.Text, &question.Options,
			&question.CorrectIndex, &question.Explanation); err != nil {
			return nil, err
		}
		q.Questions = append(q.Questions, question)
	}
	return q, rows.Err()
}

// ListByCourse returns quiz summaries for a course.
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.QuizSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.course_id, q.title, q.time_limit_minutes, q.created_by, q.last_edited_by, q.updated_at,
		        (SELECT COUNT(*) FROM quiz_questions qq WHERE qq.quiz_id = q.id)
		 FROM quizzes q
		 WHERE q.course_id = $1
		 ORDER BY q.created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := []model.QuizSummary{}
	for rows.Next() {
		var s model.QuizSummary
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Title, &s.TimeLimit, &s.CreatedBy,
			&s.LastEditedBy, &s.UpdatedAt, &s.QuestionCount); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, s)
	}
	return quizzes, rows.Err()
}

// Create inserts a quiz and its questions in one transaction.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO quizzes (course_id, title, time_limit_minutes, created_by, last_edited_by)
			 VALUES ($1, $2, $3, $4, $4)
			 RETURNING id, last_edited_by, updated_at`,
			q.CourseID, q.Title, q.TimeLimit, q.CreatedBy,
		).Scan(&q.ID, &q.LastEditedBy, &q.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		return copyQuestions(ctx, tx, q)
	})
}

// Replace overwrites the title, time limit and full question list of a quiz.
func (r *QuizRepository) Replace(ctx context.Context, q *model.Quiz) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE quizzes SET title = $1, time_limit_minutes = $2, last_edited_by = $3, updated_at = NOW()
			 WHERE id = $4
			 RETURNING course_id, created_by, updated_at`,
			q.Title, q.TimeLimit, q.LastEditedBy, q.ID,
		).Scan(&q.CourseID, &q.CreatedBy, &q.UpdatedAt)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM quiz_questions WHERE quiz_id = $1`, q.ID); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		return copyQuestions(ctx, tx, q)
	})
}

// copyQuestions assigns fresh IDs and bulk-inserts q.Questions in order.
func copyQuestions(ctx context.Context, tx pgx.Tx, q *model.Quiz) error {
	for i := range q.Questions {
		q.Questions[i].ID = uuid.New()
	}
	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"quiz_questions"},
		[]string{"id", "quiz_id", "position", "text", "options", "correct_index", "explanation"},
		pgx.CopyFromSlice(len(q.Questions), func(i int) ([]interface{}, error) {
			question := q.Questions[i]
			return []interface{}{
				question.ID, q.ID, i, question.Text, question.Options,
				question.CorrectIndex, question.Explanation,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy questions: %w", err)
	}
	return nil
}

// Delete removes a quiz, its questions and its results.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
