package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/campus-portal-api/internal/models"
	appErrors "github.com/campushub/campus-portal-api/pkg/errors"
	"github.com/campushub/campus-portal-api/pkg/export"
)

type analyticsRepository interface {
	AchievementStatusCounts(ctx context.Context) (*models.StatusCounts, error)
	AchievementTrend(ctx context.Context, months int) ([]models.TrendPoint, error)
	ReviewerActivity(ctx context.Context) ([]models.ReviewerActivity, error)
	InstituteRequestStatusCounts(ctx context.Context) (*models.StatusCounts, error)
	InstituteRequestTrend(ctx context.Context, months int) ([]models.TrendPoint, error)
	ReviewHistory(ctx context.Context, reviewerID string) ([]models.ReviewHistoryEntry, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const (
	cacheKeyAchievements      = "analytics:achievements"
	cacheKeyReviewers         = "analytics:reviewers"
	cacheKeyInstituteRequests = "analytics:institute_requests"
)

// AnalyticsService serves read-optimised projections over the two workflow
// collections, cache-first with a short TTL. Projections may lag writes by at
// most the TTL; the workflow tables stay the source of truth.
type AnalyticsService struct {
	repo     analyticsRepository
	cache    cacheStore
	metrics  *MetricsService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo analyticsRepository, cache cacheStore, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &AnalyticsService{
		repo:     repo,
		cache:    cache,
		metrics:  metrics,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// AchievementOverview returns the achievement projection. The boolean reports
// whether the payload came from cache.
func (s *AnalyticsService) AchievementOverview(ctx context.Context, months int) (*models.AchievementAnalytics, bool, error) {
	cacheKey := fmt.Sprintf("%s:%d", cacheKeyAchievements, months)
	var cached models.AchievementAnalytics
	if s.lookupCache(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	counts, err := s.repo.AchievementStatusCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute achievement counts")
	}
	trend, err := s.repo.AchievementTrend(ctx, months)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute achievement trend")
	}
	s.metrics.ObserveDBQuery("analytics_achievements", time.Since(start))

	result := &models.AchievementAnalytics{
		Counts:      *counts,
		Trend:       trend,
		GeneratedAt: time.Now().UTC(),
	}
	s.storeCache(ctx, cacheKey, result)
	return result, false, nil
}

// Reviewers returns per-reviewer decision activity.
func (s *AnalyticsService) Reviewers(ctx context.Context) ([]models.ReviewerActivity, bool, error) {
	var cached []models.ReviewerActivity
	if s.lookupCache(ctx, cacheKeyReviewers, &cached) {
		return cached, true, nil
	}

	start := time.Now()
	activity, err := s.repo.ReviewerActivity(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute reviewer activity")
	}
	s.metrics.ObserveDBQuery("analytics_reviewers", time.Since(start))

	s.storeCache(ctx, cacheKeyReviewers, activity)
	return activity, false, nil
}

// InstituteRequests returns the institute-approval projection.
func (s *AnalyticsService) InstituteRequests(ctx context.Context, months int) (*models.InstituteRequestAnalytics, bool, error) {
	cacheKey := fmt.Sprintf("%s:%d", cacheKeyInstituteRequests, months)
	var cached models.InstituteRequestAnalytics
	if s.lookupCache(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	counts, err := s.repo.InstituteRequestStatusCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute institute request counts")
	}
	trend, err := s.repo.InstituteRequestTrend(ctx, months)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute institute request trend")
	}
	s.metrics.ObserveDBQuery("analytics_institute_requests", time.Since(start))

	result := &models.InstituteRequestAnalytics{
		Counts:      *counts,
		Trend:       trend,
		GeneratedAt: time.Now().UTC(),
	}
	s.storeCache(ctx, cacheKey, result)
	return result, false, nil
}

// ReviewHistoryExport renders a reviewer's decision log as CSV or PDF.
// Reviewers export their own history; superadmins may export anyone's.
func (s *AnalyticsService) ReviewHistoryExport(ctx context.Context, claims *models.JWTClaims, reviewerID, format string) ([]byte, string, string, error) {
	if claims == nil {
		return nil, "", "", appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleSuperAdmin && claims.PrincipalID != reviewerID {
		return nil, "", "", appErrors.ErrForbidden
	}

	entries, err := s.repo.ReviewHistory(ctx, reviewerID)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review history")
	}

	headers := []string{"Achievement", "Student", "Title", "Decision", "Reviewed At", "Comment"}
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]string{
			"Achievement": e.AchievementID,
			"Student":     e.StudentName,
			"Title":       e.Title,
			"Decision":    string(e.Status),
			"Reviewed At": e.ReviewedAt.Format(time.RFC3339),
			"Comment":     e.Comment,
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}

	switch strings.ToLower(format) {
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", "review-history.csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Review History")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", "review-history.pdf", nil
	}
	return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
}

// System returns the process instrumentation snapshot.
func (s *AnalyticsService) System() models.SystemMetrics {
	return s.metrics.Snapshot()
}

// Invalidate drops every cached projection. Called after workflow writes when
// dashboards must not lag the decision.
func (s *AnalyticsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "analytics:*"); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}

func (s *AnalyticsService) lookupCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	start := time.Now()
	err := s.cache.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("analytics cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

func (s *AnalyticsService) storeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	start := time.Now()
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("analytics cache store failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.metrics.ObserveCacheWrite(time.Since(start))
}
