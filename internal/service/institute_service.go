package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/campus-portal-api/internal/models"
	appErrors "github.com/campushub/campus-portal-api/pkg/errors"
)

type instituteRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateRequest(ctx context.Context, inst *models.Institute) error
	FindByID(ctx context.Context, id string) (*models.Institute, error)
	ListRequests(ctx context.Context, filter models.InstituteRequestFilter) ([]models.InstituteRequestItem, int, error)
	Approve(ctx context.Context, id, passwordHash, comment, reviewerID string, reviewedAt time.Time) (int64, error)
	Reject(ctx context.Context, id, comment, reviewerID string, reviewedAt time.Time) (int64, error)
}

// InstituteService drives the registration approval workflow, the parallel
// twin of the achievement workflow: institutes register Pending and a
// superadmin decision activates or rejects them.
type InstituteService struct {
	repo      instituteRepository
	audit     auditWriter
	mailer    notifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstituteService constructs an InstituteService instance.
func NewInstituteService(repo instituteRepository, audit auditWriter, mailer notifier, validate *validator.Validate, logger *zap.Logger) *InstituteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InstituteService{repo: repo, audit: audit, mailer: mailer, validator: validate, logger: logger}
}

// SubmitRequest files a public registration request. The record starts
// Pending and Inactive with no usable credential; a password is generated
// only on approval.
func (s *InstituteService) SubmitRequest(ctx context.Context, req models.InstituteRegistrationRequest) (*models.Institute, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration email")
	}
	if exists {
		return nil, appErrors.ErrDuplicateEmail
	}

	inst := &models.Institute{
		Name:          req.Name,
		Code:          strings.ToUpper(req.Code),
		Email:         strings.ToLower(req.Email),
		ContactNumber: req.ContactNumber,
		Website:       req.Website,
		HeadName:      req.HeadName,
		HeadEmail:     strings.ToLower(req.HeadEmail),
	}

	if err := s.repo.CreateRequest(ctx, inst); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration request")
	}

	return inst, nil
}

// List returns the review queue for superadmins.
func (s *InstituteService) List(ctx context.Context, filter models.InstituteRequestFilter) ([]models.InstituteRequestItem, *models.Pagination, error) {
	items, total, err := s.repo.ListRequests(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registration requests")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return items, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Approve activates a pending institute: a fresh credential is generated,
// hashed and mailed to the registrant. The conditional write keeps the
// decision single-shot under concurrency.
func (s *InstituteService) Approve(ctx context.Context, claims *models.JWTClaims, id string, req models.InstituteRequestDecision) (*models.Institute, error) {
	if claims == nil || claims.Role != models.RoleSuperAdmin {
		return nil, appErrors.ErrForbidden
	}

	password, err := generatePassword()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate credential")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash credential")
	}

	reviewedAt := time.Now().UTC()
	affected, err := s.repo.Approve(ctx, id, string(hash), strings.TrimSpace(req.Comment), claims.PrincipalID, reviewedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve institute")
	}
	if affected == 0 {
		return s.decisionConflict(ctx, id)
	}

	s.recordAudit(ctx, claims, id, map[string]interface{}{"decision": models.ReviewApproved})

	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload institute")
	}

	s.notifyDecision(inst, password)

	return inst, nil
}

// Reject declines a pending institute. The rationale is mandatory.
func (s *InstituteService) Reject(ctx context.Context, claims *models.JWTClaims, id string, req models.InstituteRequestDecision) (*models.Institute, error) {
	if claims == nil || claims.Role != models.RoleSuperAdmin {
		return nil, appErrors.ErrForbidden
	}

	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, appErrors.ErrCommentRequired
	}

	reviewedAt := time.Now().UTC()
	affected, err := s.repo.Reject(ctx, id, comment, claims.PrincipalID, reviewedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject institute")
	}
	if affected == 0 {
		return s.decisionConflict(ctx, id)
	}

	s.recordAudit(ctx, claims, id, map[string]interface{}{"decision": models.ReviewRejected, "comment": comment})

	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload institute")
	}

	s.notifyDecision(inst, "")

	return inst, nil
}

// decisionConflict distinguishes a missing request from one already decided.
func (s *InstituteService) decisionConflict(ctx context.Context, id string) (*models.Institute, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institute")
	}
	return nil, appErrors.ErrAlreadyReviewed
}

func (s *InstituteService) recordAudit(ctx context.Context, claims *models.JWTClaims, resourceID string, values map[string]interface{}) {
	payload, _ := json.Marshal(values)
	if err := s.audit.Create(ctx, &models.AuditLog{
		ActorID:    &claims.PrincipalID,
		ActorRole:  string(claims.Role),
		Action:     models.AuditActionInstituteReview,
		Resource:   "institute_request",
		ResourceID: &resourceID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record institute audit log", zap.Error(err))
	}
}

// notifyDecision mails the outcome to the registrant; approval mail carries
// the generated credential. Best-effort.
func (s *InstituteService) notifyDecision(inst *models.Institute, password string) {
	if s.mailer == nil {
		return
	}
	i := *inst
	go func() {
		var subject, body string
		if i.ApprovalStatus == models.ReviewApproved {
			subject = fmt.Sprintf("Welcome aboard, %s", i.Name)
			body = fmt.Sprintf("<p>Your institute registration has been approved.</p><p>Login: %s<br>Password: %s</p><p>Please change the password after your first login.</p>", i.Email, password)
		} else {
			subject = fmt.Sprintf("Registration update for %s", i.Name)
			body = fmt.Sprintf("<p>Your institute registration was not approved.</p><p>Reason: %s</p>", i.ReviewComment)
		}
		if err := s.mailer.Send([]string{i.Email}, subject, body); err != nil {
			s.logger.Warn("failed to send institute decision mail", zap.Error(err))
		}
	}()
}

func generatePassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
