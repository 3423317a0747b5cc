package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/campus-portal-api/internal/models"
	appErrors "github.com/campushub/campus-portal-api/pkg/errors"
)

type achievementRepository interface {
	Create(ctx context.Context, a *models.Achievement) error
	FindByID(ctx context.Context, id string) (*models.Achievement, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Achievement, error)
	Review(ctx context.Context, id string, status models.ReviewStatus, reviewComment, rejectionComment string, reviewedAt time.Time, reviewerID string, reviewerRole models.Role) (int64, error)
	DeletePending(ctx context.Context, id, studentID string) (int64, error)
}

type studentReader interface {
	GetStudent(ctx context.Context, id string) (*models.Student, error)
}

type reviewAuthorizer interface {
	CanAccessStudent(ctx context.Context, claims *models.JWTClaims, studentID string) error
	CanReviewStudent(ctx context.Context, claims *models.JWTClaims, studentID string) error
}

type notifier interface {
	Send(to []string, subject, html string) error
}

// AchievementService drives the Pending → Approved/Rejected workflow over
// student achievements.
type AchievementService struct {
	repo      achievementRepository
	students  studentReader
	authz     reviewAuthorizer
	audit     auditWriter
	mailer    notifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAchievementService constructs an AchievementService instance.
func NewAchievementService(repo achievementRepository, students studentReader, authz reviewAuthorizer, audit auditWriter, mailer notifier, validate *validator.Validate, logger *zap.Logger) *AchievementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AchievementService{repo: repo, students: students, authz: authz, audit: audit, mailer: mailer, validator: validate, logger: logger}
}

// Submit creates a Pending achievement owned by the calling student. Only the
// owner can submit for itself; the status is not caller-controlled.
func (s *AchievementService) Submit(ctx context.Context, claims *models.JWTClaims, req models.SubmitAchievementRequest) (*models.Achievement, error) {
	if claims == nil || claims.Role != models.RoleStudent {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid achievement payload")
	}

	achievementType := models.AchievementType(req.Type)
	if !achievementType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown achievement type")
	}

	achievement := &models.Achievement{
		StudentID:    claims.PrincipalID,
		Title:        req.Title,
		Type:         achievementType,
		Description:  req.Description,
		Organization: req.Organization,
		CompletedAt:  req.CompletedAt,
		FileURL:      req.FileURL,
	}

	if err := s.repo.Create(ctx, achievement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create achievement")
	}

	s.recordAudit(ctx, claims, models.AuditActionAchievementNew, achievement.ID, map[string]interface{}{
		"title": achievement.Title,
		"type":  achievement.Type,
	})

	return achievement, nil
}

// Review applies a terminal decision to a pending achievement. The status
// precondition and the update are a single conditional write, so concurrent
// reviewers on the same achievement resolve to one winner and one
// ALREADY_REVIEWED failure.
func (s *AchievementService) Review(ctx context.Context, claims *models.JWTClaims, achievementID string, req models.ReviewRequest) (*models.Achievement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	decision := models.ReviewStatus(req.Status)
	comment := strings.TrimSpace(req.Comment)
	if decision == models.ReviewRejected && comment == "" {
		return nil, appErrors.ErrCommentRequired
	}

	achievement, err := s.repo.FindByID(ctx, achievementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievement")
	}

	if err := s.authz.CanReviewStudent(ctx, claims, achievement.StudentID); err != nil {
		return nil, err
	}

	if achievement.Status != models.ReviewPending {
		return nil, appErrors.ErrAlreadyReviewed
	}

	rejectionComment := ""
	if decision == models.ReviewRejected {
		rejectionComment = comment
	}

	reviewedAt := time.Now().UTC()
	affected, err := s.repo.Review(ctx, achievementID, decision, comment, rejectionComment, reviewedAt, claims.PrincipalID, claims.Role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply review")
	}
	if affected == 0 {
		// Lost the race against another reviewer.
		return nil, appErrors.ErrAlreadyReviewed
	}

	achievement.Status = decision
	achievement.ReviewComment = comment
	achievement.RejectionComment = rejectionComment
	achievement.ReviewedAt = &reviewedAt
	achievement.VerifiedBy = &claims.PrincipalID
	role := claims.Role
	achievement.VerifiedByRole = &role

	s.recordAudit(ctx, claims, models.AuditActionAchievementCheck, achievement.ID, map[string]interface{}{
		"student_id": achievement.StudentID,
		"decision":   decision,
		"comment":    comment,
	})

	s.notifyStudent(achievement)

	return achievement, nil
}

// Get returns an achievement visible to the caller.
func (s *AchievementService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Achievement, error) {
	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievement")
	}
	if err := s.authz.CanAccessStudent(ctx, claims, achievement.StudentID); err != nil {
		return nil, err
	}
	return achievement, nil
}

// ListByStudent returns a student's achievements to the student itself or a
// supervisory principal.
func (s *AchievementService) ListByStudent(ctx context.Context, claims *models.JWTClaims, studentID string) ([]models.Achievement, error) {
	if err := s.authz.CanAccessStudent(ctx, claims, studentID); err != nil {
		return nil, err
	}
	achievements, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list achievements")
	}
	return achievements, nil
}

// Delete removes a still-pending achievement. Owner-only; reviewed
// achievements are immutable audit history.
func (s *AchievementService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if claims == nil || claims.Role != models.RoleStudent {
		return appErrors.ErrForbidden
	}

	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievement")
	}
	if achievement.StudentID != claims.PrincipalID {
		return appErrors.ErrForbidden
	}

	affected, err := s.repo.DeletePending(ctx, id, claims.PrincipalID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete achievement")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrConflict, "only pending achievements can be deleted")
	}
	return nil
}

func (s *AchievementService) recordAudit(ctx context.Context, claims *models.JWTClaims, action, resourceID string, values map[string]interface{}) {
	payload, _ := json.Marshal(values)
	if err := s.audit.Create(ctx, &models.AuditLog{
		ActorID:    &claims.PrincipalID,
		ActorRole:  string(claims.Role),
		Action:     action,
		Resource:   "achievement",
		ResourceID: &resourceID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record achievement audit log", zap.Error(err))
	}
}

// notifyStudent mails the decision to the owner. Delivery is best-effort and
// never blocks or fails the review.
func (s *AchievementService) notifyStudent(achievement *models.Achievement) {
	if s.mailer == nil {
		return
	}
	a := *achievement
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		student, err := s.students.GetStudent(ctx, a.StudentID)
		if err != nil {
			s.logger.Warn("failed to load student for review notification", zap.Error(err))
			return
		}
		subject := fmt.Sprintf("Your achievement %q was %s", a.Title, strings.ToLower(string(a.Status)))
		body := fmt.Sprintf("<p>Hi %s,</p><p>Your achievement <strong>%s</strong> has been %s.</p>", student.FullName, a.Title, strings.ToLower(string(a.Status)))
		if a.Status == models.ReviewRejected && a.RejectionComment != "" {
			body += fmt.Sprintf("<p>Reviewer comment: %s</p>", a.RejectionComment)
		}
		if err := s.mailer.Send([]string{student.Email}, subject, body); err != nil {
			s.logger.Warn("failed to send review notification", zap.Error(err))
		}
	}()
}
