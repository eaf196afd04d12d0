package service

import (
	"context"
	"sort"

	"softwareprosweb/internal/domain"
)

type MetricsStore interface {
	ListMetrics(ctx context.Context) ([]domain.InvestorMetric, error)
}

// MetricSeries is a chart-ready series for the investor relations page;
// rendering stays client-side.
type MetricSeries struct {
	Name   string        `json:"name"`
	Points []MetricPoint `json:"points"`
}

type MetricPoint struct {
	Quarter string  `json:"quarter"`
	Value   float64 `json:"value"`
}

type InvestorService struct {
	Metrics MetricsStore
}

func (s *InvestorService) ChartSeries(ctx context.Context) ([]MetricSeries, error) {
	metrics, err := s.Metrics.ListMetrics(ctx)
	if err != nil {
		return nil, err
	}

	bySeries := map[string][]MetricPoint{}
	for _, m := range metrics {
		bySeries[m.Series] = append(bySeries[m.Series], MetricPoint{Quarter: m.Quarter, Value: m.Value})
	}

	names := make([]string, 0, len(bySeries))
	for name := range bySeries {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]MetricSeries, 0, len(names))
	for _, name := range names {
		points := bySeries[name]
		sort.Slice(points, func(i, j int) bool { return points[i].Quarter < points[j].Quarter })
		series = append(series, MetricSeries{Name: name, Points: points})
	}
	return series, nil
}
