package postgres

import (
	"context"
	"fmt"

	"softwareprosweb/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MetricsStore struct {
	pool *pgxpool.Pool
}

func NewMetricsStore(pool *pgxpool.Pool) *MetricsStore {
	return &MetricsStore{pool: pool}
}

func (s *MetricsStore) ListMetrics(ctx context.Context) ([]domain.InvestorMetric, error) {
	const q = `
		SELECT series, quarter, value
		FROM investor_metrics
		ORDER BY series, quarter
	`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list investor metrics: %w", err)
	}
	defer rows.Close()

	var metrics []domain.InvestorMetric
	for rows.Next() {
		var m domain.InvestorMetric
		if err := rows.Scan(&m.Series, &m.Quarter, &m.Value); err != nil {
			return nil, fmt.Errorf("list investor metrics: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list investor metrics: %w", err)
	}
	return metrics, nil
}
