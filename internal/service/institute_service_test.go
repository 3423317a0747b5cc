package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/campus-portal-api/internal/models"
	appErrors "github.com/campushub/campus-portal-api/pkg/errors"
)

type mockInstituteRepo struct {
	mu         sync.Mutex
	institutes map[string]*models.Institute
}

func newMockInstituteRepo(seed ...*models.Institute) *mockInstituteRepo {
	repo := &mockInstituteRepo{institutes: make(map[string]*models.Institute)}
	for _, inst := range seed {
		repo.institutes[inst.ID] = inst
	}
	return repo
}

func (m *mockInstituteRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inst := range m.institutes {
		if inst.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockInstituteRepo) CreateRequest(ctx context.Context, inst *models.Institute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst.ID = "generated"
	inst.ApprovalStatus = models.ReviewPending
	inst.Status = models.StatusInactive
	m.institutes[inst.ID] = inst
	return nil
}

func (m *mockInstituteRepo) FindByID(ctx context.Context, id string) (*models.Institute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.institutes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *inst
	return &clone, nil
}

func (m *mockInstituteRepo) ListRequests(ctx context.Context, filter models.InstituteRequestFilter) ([]models.InstituteRequestItem, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.InstituteRequestItem
	for _, inst := range m.institutes {
		if filter.Status != nil && inst.ApprovalStatus != *filter.Status {
			continue
		}
		items = append(items, models.InstituteRequestItem{ID: inst.ID, Name: inst.Name, ApprovalStatus: inst.ApprovalStatus})
	}
	return items, len(items), nil
}

func (m *mockInstituteRepo) Approve(ctx context.Context, id, passwordHash, comment, reviewerID string, reviewedAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.institutes[id]
	if !ok || inst.ApprovalStatus != models.ReviewPending {
		return 0, nil
	}
	inst.ApprovalStatus = models.ReviewApproved
	inst.Status = models.StatusActive
	inst.PasswordHash = passwordHash
	inst.ReviewComment = comment
	inst.ReviewedBy = &reviewerID
	inst.ReviewedAt = &reviewedAt
	return 1, nil
}

func (m *mockInstituteRepo) Reject(ctx context.Context, id, comment, reviewerID string, reviewedAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.institutes[id]
	if !ok || inst.ApprovalStatus != models.ReviewPending {
		return 0, nil
	}
	inst.ApprovalStatus = models.ReviewRejected
	inst.Status = models.StatusInactive
	inst.ReviewComment = comment
	inst.ReviewedBy = &reviewerID
	inst.ReviewedAt = &reviewedAt
	return 1, nil
}

func pendingInstitute(id string) *models.Institute {
	return &models.Institute{
		ID:             id,
		Name:           "Tech Institute",
		Code:           "TECH",
		Email:          "admin@tech.example.com",
		ApprovalStatus: models.ReviewPending,
		Status:         models.StatusInactive,
	}
}

func newTestInstituteService(repo *mockInstituteRepo) (*InstituteService, *mockAuditWriter, *mockNotifier) {
	audit := &mockAuditWriter{}
	mailer := &mockNotifier{}
	svc := NewInstituteService(repo, audit, mailer, validator.New(), zap.NewNop())
	return svc, audit, mailer
}

func TestSubmitRequest(t *testing.T) {
	repo := newMockInstituteRepo()
	svc, _, _ := newTestInstituteService(repo)

	inst, err := svc.SubmitRequest(context.Background(), models.InstituteRegistrationRequest{
		Name:      "Tech Institute",
		Code:      "TECH1",
		Email:     "Admin@Tech.Example.Com",
		HeadName:  "Dr. Rao",
		HeadEmail: "rao@tech.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPending, inst.ApprovalStatus)
	assert.Equal(t, models.StatusInactive, inst.Status)
	assert.Equal(t, "admin@tech.example.com", inst.Email)
	assert.Empty(t, inst.PasswordHash)
}

func TestSubmitRequestDuplicateEmail(t *testing.T) {
	repo := newMockInstituteRepo(pendingInstitute("i1"))
	svc, _, _ := newTestInstituteService(repo)

	_, err := svc.SubmitRequest(context.Background(), models.InstituteRegistrationRequest{
		Name:      "Tech Institute Clone",
		Code:      "TECH2",
		Email:     "admin@tech.example.com",
		HeadName:  "Dr. Rao",
		HeadEmail: "rao@tech.example.com",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErrors.FromError(err).Code)
}

func TestApproveGeneratesCredentialAndNotifies(t *testing.T) {
	repo := newMockInstituteRepo(pendingInstitute("i1"))
	svc, audit, mailer := newTestInstituteService(repo)

	inst, err := svc.Approve(context.Background(), claimsFor(models.RoleSuperAdmin, "sa1"), "i1", models.InstituteRequestDecision{})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, inst.ApprovalStatus)
	assert.Equal(t, models.StatusActive, inst.Status)
	assert.NotEmpty(t, inst.PasswordHash)

	// The stored hash must verify against some generated password, never the
	// empty string.
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(inst.PasswordHash), []byte("")))

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionInstituteReview, audit.logs[0].Action)

	assert.Eventually(t, func() bool {
		mailer.mu.Lock()
		defer mailer.mu.Unlock()
		return len(mailer.sent) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestApproveNonSuperadminForbidden(t *testing.T) {
	repo := newMockInstituteRepo(pendingInstitute("i1"))
	svc, _, _ := newTestInstituteService(repo)

	for _, role := range []models.Role{models.RoleInstitute, models.RoleCollege, models.RoleDepartment, models.RoleFaculty, models.RoleStudent} {
		_, err := svc.Approve(context.Background(), claimsFor(role, "x"), "i1", models.InstituteRequestDecision{})
		require.Error(t, err, role)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	}
}

func TestApproveAlreadyReviewed(t *testing.T) {
	approved := pendingInstitute("i1")
	approved.ApprovalStatus = models.ReviewApproved
	repo := newMockInstituteRepo(approved)
	svc, _, _ := newTestInstituteService(repo)

	_, err := svc.Approve(context.Background(), claimsFor(models.RoleSuperAdmin, "sa1"), "i1", models.InstituteRequestDecision{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyReviewed.Code, appErrors.FromError(err).Code)
}

func TestApproveUnknownInstitute(t *testing.T) {
	svc, _, _ := newTestInstituteService(newMockInstituteRepo())

	_, err := svc.Approve(context.Background(), claimsFor(models.RoleSuperAdmin, "sa1"), "missing", models.InstituteRequestDecision{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRejectRequiresComment(t *testing.T) {
	repo := newMockInstituteRepo(pendingInstitute("i1"))
	svc, _, _ := newTestInstituteService(repo)

	_, err := svc.Reject(context.Background(), claimsFor(models.RoleSuperAdmin, "sa1"), "i1", models.InstituteRequestDecision{Comment: "  "})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCommentRequired.Code, appErrors.FromError(err).Code)

	stored, err := repo.FindByID(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPending, stored.ApprovalStatus)
}

func TestRejectStoresComment(t *testing.T) {
	repo := newMockInstituteRepo(pendingInstitute("i1"))
	svc, _, _ := newTestInstituteService(repo)

	inst, err := svc.Reject(context.Background(), claimsFor(models.RoleSuperAdmin, "sa1"), "i1", models.InstituteRequestDecision{Comment: "incomplete paperwork"})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewRejected, inst.ApprovalStatus)
	assert.Equal(t, models.StatusInactive, inst.Status)
	assert.Equal(t, "incomplete paperwork", inst.ReviewComment)
}

func TestConcurrentDecisionsOneWinner(t *testing.T) {
	repo := newMockInstituteRepo(pendingInstitute("i1"))
	svc, _, _ := newTestInstituteService(repo)
	claims := claimsFor(models.RoleSuperAdmin, "sa1")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Approve(context.Background(), claims, "i1", models.InstituteRequestDecision{})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Reject(context.Background(), claims, "i1", models.InstituteRequestDecision{Comment: "no"})
	}()
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.Equal(t, appErrors.ErrAlreadyReviewed.Code, appErrors.FromError(err).Code)
		}
	}
	assert.Equal(t, 1, failures)

	stored, err := repo.FindByID(context.Background(), "i1")
	require.NoError(t, err)
	assert.True(t, stored.ApprovalStatus.Terminal())
}

func TestListFiltersByStatus(t *testing.T) {
	approved := pendingInstitute("i2")
	approved.Email = "other@tech.example.com"
	approved.ApprovalStatus = models.ReviewApproved
	repo := newMockInstituteRepo(pendingInstitute("i1"), approved)
	svc, _, _ := newTestInstituteService(repo)

	status := models.ReviewPending
	items, pagination, err := svc.List(context.Background(), models.InstituteRequestFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "i1", items[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
}
