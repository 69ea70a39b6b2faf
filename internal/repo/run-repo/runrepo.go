package runrepo

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

// Save appends one audit row per processor invocation. Outcomes are stored as
// structured JSON, not a formatted string, so the admin UI can render them.
func (r *Repository) Save(ctx context.Context, summary *domain.RunSummary) error {
	outcomes, err := json.Marshal(summary.Outcomes)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO contribution_runs (id, run_date, total_processed, success_count, failure_count, skipped_count, total_collected, outcomes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err = r.db.Exec(ctx, query,
		summary.ID, summary.RunDate, summary.TotalProcessed, summary.SuccessCount,
		summary.FailureCount, summary.SkippedCount, summary.TotalCollected, outcomes,
	)
	if err != nil {
		zap.L().Error("failed to save run summary", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	query := `
        SELECT id, run_date, total_processed, success_count, failure_count, skipped_count, total_collected, outcomes, created_at
        FROM contribution_runs
        ORDER BY created_at DESC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		zap.L().Error("failed to list run summaries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.RunSummary
	for rows.Next() {
		var summary domain.RunSummary
		var outcomes []byte
		err := rows.Scan(
			&summary.ID, &summary.RunDate, &summary.TotalProcessed, &summary.SuccessCount,
			&summary.FailureCount, &summary.SkippedCount, &summary.TotalCollected,
			&outcomes, &summary.CreatedAt,
		)
		if err != nil {
			zap.L().Error("can't scan run summary row", zap.Error(err))
			return nil, err
		}
		if err := json.Unmarshal(outcomes, &summary.Outcomes); err != nil {
			zap.L().Error("can't decode run outcomes", zap.Error(err))
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
