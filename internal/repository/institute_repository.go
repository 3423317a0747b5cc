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

// InstituteRepository backs the institute registration approval workflow.
type InstituteRepository struct {
	db *sqlx.DB
}

// NewInstituteRepository creates a new instance of InstituteRepository.
func NewInstituteRepository(db *sqlx.DB) *InstituteRepository {
	return &InstituteRepository{db: db}
}

// EmailExists reports whether an institute with the email is already present,
// in any approval state.
func (r *InstituteRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM institutes WHERE LOWER(email) = LOWER($1))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check institute email: %w", err)
	}
	return exists, nil
}

// CreateRequest inserts a Pending, Inactive institute record.
func (r *InstituteRepository) CreateRequest(ctx context.Context, inst *models.Institute) error {
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = now
	}
	inst.UpdatedAt = now
	inst.ApprovalStatus = models.ReviewPending
	inst.Status = models.StatusInactive

	const query = `INSERT INTO institutes (id, name, code, email, password_hash, contact_number, website, head_name, head_email, approval_status, review_comment, status, created_at, updated_at) VALUES (:id, :name, :code, :email, :password_hash, :contact_number, :website, :head_name, :head_email, :approval_status, :review_comment, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, inst); err != nil {
		return fmt.Errorf("create institute request: %w", err)
	}
	return nil
}

// FindByID returns the full institute record.
func (r *InstituteRepository) FindByID(ctx context.Context, id string) (*models.Institute, error) {
	const query = `SELECT id, name, code, email, password_hash, contact_number, website, head_name, head_email, approval_status, review_comment, reviewed_by, reviewed_at, status, created_at, updated_at FROM institutes WHERE id = $1 LIMIT 1`
	var inst models.Institute
	if err := r.db.GetContext(ctx, &inst, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find institute by id: %w", err)
	}
	return &inst, nil
}

// ListRequests returns registration requests for the review queue with total
// count, optionally filtered by approval status.
func (r *InstituteRepository) ListRequests(ctx context.Context, filter models.InstituteRequestFilter) ([]models.InstituteRequestItem, int, error) {
	baseQuery := `FROM institutes WHERE 1=1`
	var args []interface{}

	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND approval_status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT id, name, code, email, head_name, approval_status, review_comment, reviewed_by, reviewed_at, created_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	var items []models.InstituteRequestItem
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list institute requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count institute requests: %w", err)
	}

	return items, total, nil
}

// Approve activates a pending institute, storing its generated credential
// hash. The conditional write guards against concurrent decisions.
func (r *InstituteRepository) Approve(ctx context.Context, id, passwordHash, comment, reviewerID string, reviewedAt time.Time) (int64, error) {
	const query = `UPDATE institutes
		SET approval_status = 'Approved', status = 'Active', password_hash = $2, review_comment = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $5
		WHERE id = $1 AND approval_status = 'Pending'`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, comment, reviewerID, reviewedAt)
	if err != nil {
		return 0, fmt.Errorf("approve institute: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("approve institute rows affected: %w", err)
	}
	return affected, nil
}

// Reject marks a pending institute as rejected with the mandatory rationale.
func (r *InstituteRepository) Reject(ctx context.Context, id, comment, reviewerID string, reviewedAt time.Time) (int64, error) {
	const query = `UPDATE institutes
		SET approval_status = 'Rejected', status = 'Inactive', review_comment = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $4
		WHERE id = $1 AND approval_status = 'Pending'`
	res, err := r.db.ExecContext(ctx, query, id, comment, reviewerID, reviewedAt)
	if err != nil {
		return 0, fmt.Errorf("reject institute: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reject institute rows affected: %w", err)
	}
	return affected, nil
}
