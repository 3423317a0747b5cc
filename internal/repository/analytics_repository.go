package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campushub/campus-portal-api/internal/models"
)

// AnalyticsRepository computes read-side aggregates over the two workflow
// collections. It never mutates workflow state.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// AchievementStatusCounts returns the per-status breakdown of achievements.
func (r *AnalyticsRepository) AchievementStatusCounts(ctx context.Context) (*models.StatusCounts, error) {
	const query = `SELECT COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'Pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'Approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'Rejected') AS rejected
		FROM achievements`
	var counts models.StatusCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("achievement status counts: %w", err)
	}
	return &counts, nil
}

// AchievementTrend buckets terminal decisions by review month. The review
// timestamp is the event time of the auditable fact; submission time is
// deliberately not used.
func (r *AnalyticsRepository) AchievementTrend(ctx context.Context, months int) ([]models.TrendPoint, error) {
	if months <= 0 {
		months = 12
	}
	const query = `SELECT to_char(date_trunc('month', reviewed_at), 'YYYY-MM') AS month,
		COUNT(*) FILTER (WHERE status = 'Approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'Rejected') AS rejected
		FROM achievements
		WHERE reviewed_at IS NOT NULL AND reviewed_at >= date_trunc('month', now()) - ($1 || ' months')::interval
		GROUP BY 1 ORDER BY 1`
	var points []models.TrendPoint
	if err := r.db.SelectContext(ctx, &points, query, months); err != nil {
		return nil, fmt.Errorf("achievement trend: %w", err)
	}
	return points, nil
}

// ReviewerActivity aggregates decisions per reviewer identity.
func (r *AnalyticsRepository) ReviewerActivity(ctx context.Context) ([]models.ReviewerActivity, error) {
	const query = `SELECT verified_by AS reviewer_id, verified_by_role AS reviewer_role,
		COUNT(*) FILTER (WHERE status = 'Approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'Rejected') AS rejected,
		MAX(reviewed_at) AS last_review_at
		FROM achievements
		WHERE verified_by IS NOT NULL
		GROUP BY verified_by, verified_by_role
		ORDER BY MAX(reviewed_at) DESC`
	var activity []models.ReviewerActivity
	if err := r.db.SelectContext(ctx, &activity, query); err != nil {
		return nil, fmt.Errorf("reviewer activity: %w", err)
	}
	return activity, nil
}

// InstituteRequestStatusCounts mirrors the status breakdown for the parallel
// institute-approval workflow.
func (r *AnalyticsRepository) InstituteRequestStatusCounts(ctx context.Context) (*models.StatusCounts, error) {
	const query = `SELECT COUNT(*) AS total,
		COUNT(*) FILTER (WHERE approval_status = 'Pending') AS pending,
		COUNT(*) FILTER (WHERE approval_status = 'Approved') AS approved,
		COUNT(*) FILTER (WHERE approval_status = 'Rejected') AS rejected
		FROM institutes`
	var counts models.StatusCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("institute request status counts: %w", err)
	}
	return &counts, nil
}

// InstituteRequestTrend buckets institute decisions by review month.
func (r *AnalyticsRepository) InstituteRequestTrend(ctx context.Context, months int) ([]models.TrendPoint, error) {
	if months <= 0 {
		months = 12
	}
	const query = `SELECT to_char(date_trunc('month', reviewed_at), 'YYYY-MM') AS month,
		COUNT(*) FILTER (WHERE approval_status = 'Approved') AS approved,
		COUNT(*) FILTER (WHERE approval_status = 'Rejected') AS rejected
		FROM institutes
		WHERE reviewed_at IS NOT NULL AND reviewed_at >= date_trunc('month', now()) - ($1 || ' months')::interval
		GROUP BY 1 ORDER BY 1`
	var points []models.TrendPoint
	if err := r.db.SelectContext(ctx, &points, query, months); err != nil {
		return nil, fmt.Errorf("institute request trend: %w", err)
	}
	return points, nil
}

// ReviewHistory returns the decision log attributed to one reviewer, newest
// first, for the export endpoint.
func (r *AnalyticsRepository) ReviewHistory(ctx context.Context, reviewerID string) ([]models.ReviewHistoryEntry, error) {
	const query = `SELECT a.id AS achievement_id, a.student_id, s.full_name AS student_name, a.title, a.status, a.reviewed_at,
		CASE WHEN a.status = 'Rejected' THEN a.rejection_comment ELSE a.review_comment END AS comment
		FROM achievements a
		JOIN students s ON s.id = a.student_id
		WHERE a.verified_by = $1 AND a.reviewed_at IS NOT NULL
		ORDER BY a.reviewed_at DESC`
	var entries []models.ReviewHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, reviewerID); err != nil {
		return nil, fmt.Errorf("review history: %w", err)
	}
	return entries, nil
}
