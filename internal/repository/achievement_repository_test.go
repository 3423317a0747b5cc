package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campus-portal-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAchievementRepositoryCreateForcesPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectExec("INSERT INTO achievements").
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := &models.Achievement{
		StudentID: "stu-1",
		Title:     "Hackathon winner",
		Type:      models.AchievementHackathon,
		Status:    models.ReviewApproved, // caller-supplied status is ignored
	}
	err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, models.ReviewPending, a.Status)
	assert.False(t, a.SubmittedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "title", "type", "description", "organization", "completed_at", "file_url", "status", "review_comment", "rejection_comment", "submitted_at", "reviewed_at", "verified_by", "verified_by_role"}).
		AddRow("ach-1", "stu-1", "Hackathon winner", "Hackathon", "", "", nil, "", "Pending", "", "", now, nil, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM achievements WHERE id = \\$1").
		WithArgs("ach-1").
		WillReturnRows(rows)

	a, err := repo.FindByID(context.Background(), "ach-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", a.StudentID)
	assert.Equal(t, models.ReviewPending, a.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM achievements WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementRepositoryReviewConditionalOnPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	reviewedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'Pending'")).
		WithArgs("ach-1", models.ReviewApproved, "ok", "", reviewedAt, "fac-1", models.RoleFaculty).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Review(context.Background(), "ach-1", models.ReviewApproved, "ok", "", reviewedAt, "fac-1", models.RoleFaculty)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementRepositoryReviewLosesRace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	reviewedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'Pending'")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Review(context.Background(), "ach-1", models.ReviewRejected, "no", "no", reviewedAt, "fac-1", models.RoleFaculty)
	require.NoError(t, err)
	assert.Zero(t, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementRepositoryDeletePendingOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM achievements WHERE id = $1 AND student_id = $2 AND status = 'Pending'")).
		WithArgs("ach-1", "stu-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.DeletePending(context.Background(), "ach-1", "stu-1")
	require.NoError(t, err)
	assert.Zero(t, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}
