package models

import "time"

// StatusCounts is the per-status breakdown of a workflow collection.
type StatusCounts struct {
	Total    int `db:"total" json:"total"`
	Pending  int `db:"pending" json:"pending"`
	Approved int `db:"approved" json:"approved"`
	Rejected int `db:"rejected" json:"rejected"`
}

// ReviewerActivity aggregates terminal decisions attributed to one reviewer.
type ReviewerActivity struct {
	ReviewerID   string     `db:"reviewer_id" json:"reviewer_id"`
	ReviewerRole Role       `db:"reviewer_role" json:"reviewer_role"`
	Approved     int        `db:"approved" json:"approved"`
	Rejected     int        `db:"rejected" json:"rejected"`
	LastReviewAt *time.Time `db:"last_review_at" json:"last_review_at,omitempty"`
}

// TrendPoint is one month of terminal decisions. Buckets are keyed on the
// review timestamp, not submission: the auditable fact is the decision.
type TrendPoint struct {
	Month    string `db:"month" json:"month"`
	Approved int    `db:"approved" json:"approved"`
	Rejected int    `db:"rejected" json:"rejected"`
}

// AchievementAnalytics bundles the achievement projection for dashboards.
type AchievementAnalytics struct {
	Counts      StatusCounts `json:"counts"`
	Trend       []TrendPoint `json:"trend"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// InstituteRequestAnalytics mirrors the projection for the parallel
// institute-approval workflow.
type InstituteRequestAnalytics struct {
	Counts      StatusCounts `json:"counts"`
	Trend       []TrendPoint `json:"trend"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ReviewHistoryEntry is one row of a reviewer's decision log, used by the
// export endpoint.
type ReviewHistoryEntry struct {
	AchievementID string       `db:"achievement_id" json:"achievement_id"`
	StudentID     string       `db:"student_id" json:"student_id"`
	StudentName   string       `db:"student_name" json:"student_name"`
	Title         string       `db:"title" json:"title"`
	Status        ReviewStatus `db:"status" json:"status"`
	ReviewedAt    time.Time    `db:"reviewed_at" json:"reviewed_at"`
	Comment       string       `db:"comment" json:"comment"`
}

// SystemMetrics is a lightweight snapshot of process health exposed through
// the analytics surface.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
