package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/patto-app/patto-api/internal/models"
)

// StatsRepository serves the operator dashboard's aggregate queries.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// AdminStats fetches the six summary counts in a single round trip.
func (r *StatsRepository) AdminStats(ctx context.Context, today time.Time) (*models.AdminStats, error) {
	query := `SELECT
(SELECT COUNT(*) FROM facilities) AS total_facilities,
(SELECT COUNT(*) FROM profiles) AS total_users,
(SELECT COUNT(*) FROM children) AS total_children,
(SELECT COUNT(*) FROM daily_records) AS total_records,
(SELECT COUNT(*) FROM daily_records WHERE date = $1) AS records_today,
(SELECT COUNT(DISTINCT facility_id) FROM daily_records WHERE date = $1) AS facilities_with_activity_today`
	var stats models.AdminStats
	if err := r.db.GetContext(ctx, &stats, query, today); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return &stats, nil
}

// FacilityBreakdown counts records per facility in a date range,
// descending.
func (r *StatsRepository) FacilityBreakdown(ctx context.Context, rng models.BreakdownRange) ([]models.FacilityRecordCount, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if rng.From != nil {
		where = append(where, fmt.Sprintf("dr.date >= $%d", len(args)+1))
		args = append(args, *rng.From)
	}
	if rng.To != nil {
		where = append(where, fmt.Sprintf("dr.date <= $%d", len(args)+1))
		args = append(args, *rng.To)
	}
	query := fmt.Sprintf(`SELECT dr.facility_id, f.name AS facility_name, COUNT(*) AS record_count
FROM daily_records dr
JOIN facilities f ON f.id = dr.facility_id
WHERE %s
GROUP BY dr.facility_id, f.name
ORDER BY record_count DESC`, strings.Join(where, " AND "))
	var rows []models.FacilityRecordCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("facility breakdown: %w", err)
	}
	return rows, nil
}
