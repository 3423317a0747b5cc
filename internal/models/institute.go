package models

import "time"

// InstituteRegistrationRequest is the public payload creating a Pending
// institute. No credentials are taken here; a password is generated and
// mailed on approval.
type InstituteRegistrationRequest struct {
	Name          string `json:"name" validate:"required"`
	Code          string `json:"code" validate:"required,alphanum"`
	Email         string `json:"email" validate:"required,email"`
	ContactNumber string `json:"contact_number"`
	Website       string `json:"website" validate:"omitempty,url"`
	HeadName      string `json:"head_name" validate:"required"`
	HeadEmail     string `json:"head_email" validate:"required,email"`
}

// InstituteRequestDecision is the superadmin review payload. Comment is
// mandatory for rejections.
type InstituteRequestDecision struct {
	Comment string `json:"comment"`
}

// InstituteRequestItem is the list/detail projection for the superadmin
// review queue.
type InstituteRequestItem struct {
	ID             string       `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	Code           string       `db:"code" json:"code"`
	Email          string       `db:"email" json:"email"`
	HeadName       string       `db:"head_name" json:"head_name"`
	ApprovalStatus ReviewStatus `db:"approval_status" json:"approval_status"`
	ReviewComment  string       `db:"review_comment" json:"review_comment,omitempty"`
	ReviewedBy     *string      `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time   `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

// InstituteRequestFilter captures list criteria for the review queue.
type InstituteRequestFilter struct {
	Status   *ReviewStatus
	Page     int
	PageSize int
}
