package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domerrors "github.com/newspick/newspick-linebot-go/internal/errors"
)

// Questionnaire step indexes. Steps for one run are contiguous and
// strictly increasing starting at StepLanguage.
const (
	StepLanguage = 0
	StepCountry  = 1
	StepCategory = 2
)

// Answer is one step/answer row of a questionnaire run.
// Answer == "" marks the step currently awaiting the user's input.
type Answer struct {
	ID        int64
	UserID    string
	Step      int
	Answer    string
	CreatedAt int64
}

// Progress describes the outcome of advancing a questionnaire run.
type Progress struct {
	AnsweredStep int  // the step that was just closed
	Completed    bool // true when the final step was answered

	// Collected answers, populated only when Completed is true.
	Language string
	Country  string
	Category string
}

// StartRun discards all prior rows for the user and opens step 0.
// Repeating the trigger phrase mid-run restarts the questionnaire.
func (db *DB) StartRun(ctx context.Context, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin start run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("reset answers: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO answers (user_id, step, answer, created_at) VALUES (?, ?, '', ?)`,
		userID, StepLanguage, time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("open step 0: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit start run: %w", err)
	}
	return nil
}

// OpenStep returns the step currently awaiting the user's answer.
// Returns ErrNoOpenStep when the user has no run in progress.
func (db *DB) OpenStep(ctx context.Context, userID string) (int, error) {
	var step int
	err := db.conn.QueryRowContext(ctx,
		`SELECT step FROM answers WHERE user_id = ? AND answer = ''`, userID,
	).Scan(&step)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domerrors.ErrNoOpenStep
	}
	if err != nil {
		return 0, fmt.Errorf("query open step: %w", err)
	}
	return step, nil
}

// AdvanceRun closes the user's open step with the given answer and, in
// the same transaction, either opens the next step or collects the full
// answer set when the final step was just closed.
//
// The close-and-advance pair is atomic: of two racing deliveries for the
// same open step, exactly one succeeds and the other observes
// ErrNoOpenStep.
func (db *DB) AdvanceRun(ctx context.Context, userID, answer string) (*Progress, error) {
	if answer == "" {
		return nil, fmt.Errorf("advance run: %w: empty answer", domerrors.ErrInvalidInput)
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin advance run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Write-first so the transaction takes the write lock immediately;
	// of two racing deliveries the loser blocks here, then matches zero
	// rows once the winner has closed the step.
	var step int
	err = tx.QueryRowContext(ctx,
		`UPDATE answers SET answer = ? WHERE user_id = ? AND answer = '' RETURNING step`,
		answer, userID,
	).Scan(&step)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domerrors.ErrNoOpenStep
	}
	if err != nil {
		return nil, fmt.Errorf("store answer: %w", err)
	}

	progress := &Progress{AnsweredStep: step}

	if step < StepCategory {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answers (user_id, step, answer, created_at) VALUES (?, ?, '', ?)`,
			userID, step+1, time.Now().Unix(),
		); err != nil {
			return nil, fmt.Errorf("open step %d: %w", step+1, err)
		}
	} else {
		progress.Completed = true
		rows, err := tx.QueryContext(ctx,
			`SELECT step, answer FROM answers WHERE user_id = ? ORDER BY step`, userID,
		)
		if err != nil {
			return nil, fmt.Errorf("collect answers: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var s int
			var a string
			if err := rows.Scan(&s, &a); err != nil {
				return nil, fmt.Errorf("scan answer: %w", err)
			}
			switch s {
			case StepLanguage:
				progress.Language = a
			case StepCountry:
				progress.Country = a
			case StepCategory:
				progress.Category = a
			}
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate answers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit advance run: %w", err)
	}

	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "AdvanceRun",
			"duration_ms", duration.Milliseconds(),
			"user_id", userID)
	}

	return progress, nil
}

// Answers returns all rows for a user ordered by step. Used by tests and
// the readiness probe.
func (db *DB) Answers(ctx context.Context, userID string) ([]Answer, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, step, answer, created_at FROM answers WHERE user_id = ? ORDER BY step`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.UserID, &a.Step, &a.Answer, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan answer row: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// DeleteStaleRuns removes every row of users whose open step is older
// than maxAge. Those runs were abandoned mid-questionnaire and would
// otherwise swallow the next trigger-free selection forever.
func (db *DB) DeleteStaleRuns(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM answers WHERE user_id IN (
			SELECT user_id FROM answers WHERE answer = '' AND created_at < ?
		)`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale runs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted rows: %w", err)
	}
	return deleted, nil
}

// CountAnswers returns the total number of answer rows.
func (db *DB) CountAnswers(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM answers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return count, nil
}
