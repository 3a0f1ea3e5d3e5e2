package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/novadent/novadent_backend/pkg/store"
)

var ErrValidation = errors.New("invalid analytics parameter")

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Result is whatever JSON the aggregation procedure returned; the shapes
// differ per chart and the API never inspects them.
type Result = json.RawMessage

// Service fronts the analytics_* stored procedures. Every method is a
// pass-through; the only logic here is input coercion.
type Service interface {
	PatientsByYear(ctx context.Context, db *store.Session, year string) (Result, error)
	PatientsByMonth(ctx context.Context, db *store.Session, year string) (Result, error)
	PatientsByGender(ctx context.Context, db *store.Session) (Result, error)
	PatientsByAgeGroup(ctx context.Context, db *store.Session) (Result, error)
	VisitsByYear(ctx context.Context, db *store.Session, year string) (Result, error)
	VisitsByMonth(ctx context.Context, db *store.Session, year string) (Result, error)
	RevenueRolling(ctx context.Context, db *store.Session, end, tz string) (Result, error)
	CollectionsRate(ctx context.Context, db *store.Session, year string) (Result, error)
}

type analyticsService struct{}

func New() Service {
	return &analyticsService{}
}

func (s *analyticsService) PatientsByYear(ctx context.Context, db *store.Session, year string) (Result, error) {
	return s.byYear(ctx, db, "analytics_patients_by_year", year)
}

func (s *analyticsService) PatientsByMonth(ctx context.Context, db *store.Session, year string) (Result, error) {
	return s.byYear(ctx, db, "analytics_patients_by_month", year)
}

func (s *analyticsService) PatientsByGender(ctx context.Context, db *store.Session) (Result, error) {
	return s.call(ctx, db, "analytics_patients_by_gender", nil)
}

func (s *analyticsService) PatientsByAgeGroup(ctx context.Context, db *store.Session) (Result, error) {
	return s.call(ctx, db, "analytics_patients_by_age_group", nil)
}

func (s *analyticsService) VisitsByYear(ctx context.Context, db *store.Session, year string) (Result, error) {
	return s.byYear(ctx, db, "analytics_visits_by_year", year)
}

func (s *analyticsService) VisitsByMonth(ctx context.Context, db *store.Session, year string) (Result, error) {
	return s.byYear(ctx, db, "analytics_visits_by_month", year)
}

func (s *analyticsService) RevenueRolling(ctx context.Context, db *store.Session, end, tz string) (Result, error) {
	end = strings.TrimSpace(end)
	if end != "" && !dateRe.MatchString(end) {
		return nil, fmt.Errorf("%w: end must be YYYY-MM-DD, got %q", ErrValidation, end)
	}
	args := map[string]any{}
	if end != "" {
		args["p_end"] = end
	}
	if tz != "" {
		// IANA zone names go through as-is; the procedure resolves them.
		args["p_tz"] = tz
	}
	return s.call(ctx, db, "analytics_revenue_rolling_12m", args)
}

func (s *analyticsService) CollectionsRate(ctx context.Context, db *store.Session, year string) (Result, error) {
	return s.byYear(ctx, db, "analytics_collections_rate", year)
}

func (s *analyticsService) byYear(ctx context.Context, db *store.Session, fn, year string) (Result, error) {
	y, err := parseYear(year)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, db, fn, map[string]any{"p_year": y})
}

func (s *analyticsService) call(ctx context.Context, db *store.Session, fn string, args map[string]any) (Result, error) {
	if args == nil {
		args = map[string]any{}
	}
	var raw json.RawMessage
	if err := db.RPC(ctx, fn, args, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return raw, nil
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: year must be numeric, got %q", ErrValidation, s)
	}
	if y < 1900 || y > 2200 {
		return 0, fmt.Errorf("%w: year %d out of range", ErrValidation, y)
	}
	return y, nil
}
