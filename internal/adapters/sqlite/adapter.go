// Package sqlite provides a SQLite-backed implementation of the survey
// repository port.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/moodfuse-labs/moodfuse/internal/core/domain"
)

// Adapter implements the survey repository port for SQLite.
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection and runs the schema migration.
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Save upserts a survey document, including the optional fusion outcome.
func (a *Adapter) Save(ctx context.Context, s domain.Survey) error {
	var (
		surveyDominant, expressionDominant, totalDominant sql.NullString
		anger, sad, neutral, happy, surprise              sql.NullFloat64
		frameCount                                        sql.NullInt64
	)
	if out := s.Outcome; out != nil {
		surveyDominant = sql.NullString{String: out.SurveyDominant.String(), Valid: true}
		expressionDominant = sql.NullString{String: out.ExpressionDominant.String(), Valid: true}
		totalDominant = sql.NullString{String: out.TotalDominant.String(), Valid: true}
		anger = sql.NullFloat64{Float64: out.TotalScores[domain.Anger], Valid: true}
		sad = sql.NullFloat64{Float64: out.TotalScores[domain.Sad], Valid: true}
		neutral = sql.NullFloat64{Float64: out.TotalScores[domain.Neutral], Valid: true}
		happy = sql.NullFloat64{Float64: out.TotalScores[domain.Happy], Valid: true}
		surprise = sql.NullFloat64{Float64: out.TotalScores[domain.Surprise], Valid: true}
		frameCount = sql.NullInt64{Int64: int64(out.FrameCount), Valid: true}
	}

	query := `
		INSERT INTO surveys (
			id, user_id, date, name, age,
			question1, question2, question3, question4,
			question5, question6, question7, question8,
			is_viewed,
			survey_dominant, expression_dominant, total_dominant,
			total_anger, total_sad, total_neutral, total_happy, total_surprise,
			frame_count, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id=excluded.user_id,
			date=excluded.date,
			name=excluded.name,
			age=excluded.age,
			question1=excluded.question1,
			question2=excluded.question2,
			question3=excluded.question3,
			question4=excluded.question4,
			question5=excluded.question5,
			question6=excluded.question6,
			question7=excluded.question7,
			question8=excluded.question8,
			is_viewed=excluded.is_viewed,
			survey_dominant=excluded.survey_dominant,
			expression_dominant=excluded.expression_dominant,
			total_dominant=excluded.total_dominant,
			total_anger=excluded.total_anger,
			total_sad=excluded.total_sad,
			total_neutral=excluded.total_neutral,
			total_happy=excluded.total_happy,
			total_surprise=excluded.total_surprise,
			frame_count=excluded.frame_count;
	`
	if _, err := a.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Date, s.Name, s.Age,
		s.Answers[1], s.Answers[2], s.Answers[3], s.Answers[4],
		s.Answers[5], s.Answers[6], s.Answers[7], s.Answers[8],
		s.IsViewed,
		surveyDominant, expressionDominant, totalDominant,
		anger, sad, neutral, happy, surprise,
		frameCount, s.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to save survey: %w", err)
	}
	return nil
}

func (a *Adapter) GetByID(ctx context.Context, id string) (domain.Survey, error) {
	row := a.db.QueryRowContext(ctx, selectColumns+" FROM surveys WHERE id = ?", id)
	s, err := scanSurvey(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Survey{}, domain.ErrNotFound
		}
		return domain.Survey{}, fmt.Errorf("failed to load survey: %w", err)
	}
	return s, nil
}

// List returns one page of surveys, newest first, plus the total count.
func (a *Adapter) List(ctx context.Context, page, limit int) ([]domain.Survey, int, error) {
	var total int
	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM surveys").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count surveys: %w", err)
	}

	offset := (page - 1) * limit
	rows, err := a.db.QueryContext(ctx,
		selectColumns+" FROM surveys ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list surveys: %w", err)
	}
	defer rows.Close()

	surveys := []domain.Survey{}
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan survey: %w", err)
		}
		surveys = append(surveys, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate surveys: %w", err)
	}
	return surveys, total, nil
}

func (a *Adapter) MarkViewed(ctx context.Context, id string, viewed bool) error {
	res, err := a.db.ExecContext(ctx, "UPDATE surveys SET is_viewed = ? WHERE id = ?", viewed, id)
	if err != nil {
		return fmt.Errorf("failed to update survey: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update survey: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (a *Adapter) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, "DELETE FROM surveys WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const selectColumns = `
	SELECT id, user_id, date, name, age,
		question1, question2, question3, question4,
		question5, question6, question7, question8,
		is_viewed,
		survey_dominant, expression_dominant, total_dominant,
		IFNULL(total_anger, 0), IFNULL(total_sad, 0), IFNULL(total_neutral, 0),
		IFNULL(total_happy, 0), IFNULL(total_surprise, 0),
		IFNULL(frame_count, 0), created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSurvey(row rowScanner) (domain.Survey, error) {
	var (
		s                                                 domain.Survey
		q                                                 [domain.QuestionCount]int
		surveyDominant, expressionDominant, totalDominant sql.NullString
		scores                                            domain.EmotionVector
		frameCount                                        int
		createdAt                                         time.Time
	)
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Date, &s.Name, &s.Age,
		&q[0], &q[1], &q[2], &q[3], &q[4], &q[5], &q[6], &q[7],
		&s.IsViewed,
		&surveyDominant, &expressionDominant, &totalDominant,
		&scores[domain.Anger], &scores[domain.Sad], &scores[domain.Neutral],
		&scores[domain.Happy], &scores[domain.Surprise],
		&frameCount, &createdAt,
	); err != nil {
		return domain.Survey{}, err
	}

	s.Answers = domain.Answers{}
	for i, score := range q {
		s.Answers[i+1] = score
	}
	s.CreatedAt = createdAt

	if totalDominant.Valid {
		out := &domain.FusionOutcome{
			TotalScores: scores,
			FrameCount:  frameCount,
		}
		out.SurveyDominant, _ = domain.ParseChannel(surveyDominant.String)
		out.ExpressionDominant, _ = domain.ParseChannel(expressionDominant.String)
		out.TotalDominant, _ = domain.ParseChannel(totalDominant.String)
		s.Outcome = out
	}
	return s, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS surveys (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		question1 INTEGER NOT NULL,
		question2 INTEGER NOT NULL,
		question3 INTEGER NOT NULL,
		question4 INTEGER NOT NULL,
		question5 INTEGER NOT NULL,
		question6 INTEGER NOT NULL,
		question7 INTEGER NOT NULL,
		question8 INTEGER NOT NULL,
		is_viewed INTEGER NOT NULL DEFAULT 0,
		survey_dominant TEXT,
		expression_dominant TEXT,
		total_dominant TEXT,
		total_anger REAL,
		total_sad REAL,
		total_neutral REAL,
		total_happy REAL,
		total_surprise REAL,
		frame_count INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_surveys_user_id ON surveys(user_id);
	CREATE INDEX IF NOT EXISTS idx_surveys_date ON surveys(date);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}
	return nil
}
