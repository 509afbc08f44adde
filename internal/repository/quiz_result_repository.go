package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zeroclasses/zero-backend/internal/model"
)

// QuizResultWithTitle is a result joined with its quiz for history views.
type QuizResultWithTitle struct {
	model.QuizResult
	QuizTitle string `json:"quiz_title"`
}

// QuizResultWithStudent is a result joined with the student for staff views.
type QuizResultWithStudent struct {
	model.QuizResult
	StudentName string `json:"student_name"`
}

// QuizResultRepository stores submitted quiz results.
type QuizResultRepository struct {
	pool *pgxpool.Pool
}

// NewQuizResultRepository creates a new QuizResultRepository.
func NewQuizResultRepository(pool *pgxpool.Pool) *QuizResultRepository {
	return &QuizResultRepository{pool: pool}
}

// Create inserts a result. Inserting the same result ID twice is a no-op, so
// retries after an ambiguous failure never double-count.
func (r *QuizResultRepository) Create(ctx context.Context, res model.QuizResult) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_results (id, quiz_id, student_id, score, total, auto_submitted, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		res.ID, res.QuizID, res.StudentID, res.Score, res.Total, res.AutoSubmitted, res.SubmittedAt)
	return err
}

// ListByStudent returns a student's results, newest first.
func (r *QuizResultRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]QuizResultWithTitle, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.quiz_id, r.student_id, r.score, r.total, r.submitted_at, r.auto_submitted, q.title
		 FROM quiz_results r
		 JOIN quizzes q ON q.id = r.quiz_id
		 WHERE r.student_id = $1
		 ORDER BY r.submitted_at DESC
		 LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []QuizResultWithTitle{}
	for rows.Next() {
		var res QuizResultWithTitle
		if err := rows.Scan(&res.ID, &res.QuizID, &res.StudentID, &res.Score, &res.Total,
			&res.SubmittedAt, &res.AutoSubmitted, &res.QuizTitle); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ListByQuizPaginated returns every result for a quiz, best score first.
func (r *QuizResultRepository) ListByQuizPaginated(ctx context.Context, quizID uuid.UUID, limit, offset int) ([]QuizResultWithStudent, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_results WHERE quiz_id = $1`, quizID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.quiz_id, r.student_id, r.score, r.total, r.submitted_at, r.auto_submitted, u.name
		 FROM quiz_results r
		 JOIN users u ON u.id = r.student_id
		 WHERE r.quiz_id = $1
		 ORDER BY r.score DESC, r.submitted_at
		 LIMIT $2 OFFSET $3`, quizID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []QuizResultWithStudent{}
	for rows.Next() {
		var res QuizResultWithStudent
		if err := rows.Scan(&res.ID, &res.QuizID, &res.StudentID, &res.Score, &res.Total,
			&res.SubmittedAt, &res.AutoSubmitted, &res.StudentName); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// CountSince returns how many results were submitted after since.
func (r *QuizResultRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_results WHERE submitted_at >= $1`, since).Scan(&n)
	return n, err
}

// CreateBatch inserts many results in one statement. Rows whose ID already
// exists are skipped.
func (r *QuizResultRepository) CreateBatch(ctx context.Context, batch []model.QuizResult) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, n)
	quizIDs := make([]uuid.UUID, n)
	studentIDs := make([]uuid.UUID, n)
	scores := make([]int32, n)
	totals := make([]int32, n)
	autos := make([]bool, n)
	submittedAts := make([]time.Time, n)
	for i, res := range batch {
		ids[i] = res.ID
		quizIDs[i] = res.QuizID
		studentIDs[i] = res.StudentID
		scores[i] = int32(res.Score)
		totals[i] = int32(res.Total)
		autos[i] = res.AutoSubmitted
		submittedAts[i] = res.SubmittedAt
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_results (id, quiz_id, student_id, score, total, auto_submitted, submitted_at)
		 SELECT * FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::uuid[],
			$4::int[],
			$5::int[],
			$6::bool[],
			$7::timestamptz[]
		 )
		 ON CONFLICT (id) DO NOTHING`,
		ids, quizIDs, studentIDs, scores, totals, autos, submittedAts)
	return err
}
