package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/campus-portal-api/internal/models"
)

// AchievementRepository provides database access for the achievement
// workflow. Status changes go through Review exclusively.
type AchievementRepository struct {
	db *sqlx.DB
}

// NewAchievementRepository creates a new instance of AchievementRepository.
func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

const achievementColumns = `id, student_id, title, type, description, organization, completed_at, file_url, status, review_comment, rejection_comment, submitted_at, reviewed_at, verified_by, verified_by_role`

// Create inserts a new achievement. Submissions always start Pending.
func (r *AchievementRepository) Create(ctx context.Context, a *models.Achievement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now().UTC()
	}
	a.Status = models.ReviewPending

	const query = `INSERT INTO achievements (id, student_id, title, type, description, organization, completed_at, file_url, status, review_comment, rejection_comment, submitted_at) VALUES (:id, :student_id, :title, :type, :description, :organization, :completed_at, :file_url, :status, :review_comment, :rejection_comment, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create achievement: %w", err)
	}
	return nil
}

// FindByID returns an achievement by identifier.
func (r *AchievementRepository) FindByID(ctx context.Context, id string) (*models.Achievement, error) {
	query := fmt.Sprintf(`SELECT %s FROM achievements WHERE id = $1 LIMIT 1`, achievementColumns)
	var a models.Achievement
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find achievement by id: %w", err)
	}
	return &a, nil
}

// ListByStudent returns all achievements owned by a student, newest first.
func (r *AchievementRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Achievement, error) {
	query := fmt.Sprintf(`SELECT %s FROM achievements WHERE student_id = $1 ORDER BY submitted_at DESC`, achievementColumns)
	var achievements []models.Achievement
	if err := r.db.SelectContext(ctx, &achievements, query, studentID); err != nil {
		return nil, fmt.Errorf("list achievements by student: %w", err)
	}
	return achievements, nil
}

// Review applies a terminal decision with a conditional write: the update
// only lands while the row is still Pending, so two racing reviewers resolve
// to exactly one winner. Returns the number of rows affected.
func (r *AchievementRepository) Review(ctx context.Context, id string, status models.ReviewStatus, reviewComment, rejectionComment string, reviewedAt time.Time, reviewerID string, reviewerRole models.Role) (int64, error) {
	const query = `UPDATE achievements
		SET status = $2, review_comment = $3, rejection_comment = $4, reviewed_at = $5, verified_by = $6, verified_by_role = $7
		WHERE id = $1 AND status = 'Pending'`
	res, err := r.db.ExecContext(ctx, query, id, status, reviewComment, rejectionComment, reviewedAt, reviewerID, reviewerRole)
	if err != nil {
		return 0, fmt.Errorf("review achievement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("review achievement rows affected: %w", err)
	}
	return affected, nil
}

// DeletePending removes a still-pending achievement owned by the student.
// Reviewed achievements are part of the audit trail and cannot be removed.
func (r *AchievementRepository) DeletePending(ctx context.Context, id, studentID string) (int64, error) {
	const query = `DELETE FROM achievements WHERE id = $1 AND student_id = $2 AND status = 'Pending'`
	res, err := r.db.ExecContext(ctx, query, id, studentID)
	if err != nil {
		return 0, fmt.Errorf("delete pending achievement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete pending achievement rows affected: %w", err)
	}
	return affected, nil
}
