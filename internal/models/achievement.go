package models

import "time"

// AchievementType is the closed set of recognised achievement categories.
type AchievementType string

const (
	AchievementWorkshop         AchievementType = "Workshop"
	AchievementConference       AchievementType = "Conference"
	AchievementHackathon        AchievementType = "Hackathon"
	AchievementInternship       AchievementType = "Internship"
	AchievementCourse           AchievementType = "Course"
	AchievementCompetition      AchievementType = "Competition"
	AchievementCommunityService AchievementType = "CommunityService"
	AchievementLeadership       AchievementType = "Leadership"
	AchievementClubs            AchievementType = "Clubs"
	AchievementVolunteering     AchievementType = "Volunteering"
	AchievementOthers           AchievementType = "Others"
)

// Valid reports whether the type is a known category.
func (t AchievementType) Valid() bool {
	switch t {
	case AchievementWorkshop, AchievementConference, AchievementHackathon,
		AchievementInternship, AchievementCourse, AchievementCompetition,
		AchievementCommunityService, AchievementLeadership, AchievementClubs,
		AchievementVolunteering, AchievementOthers:
		return true
	}
	return false
}

// Achievement is a first-class entity owned by exactly one student. Status is
// only ever mutated by the review operation, which stamps the reviewer
// attribution fields on leaving Pending.
type Achievement struct {
	ID               string          `db:"id" json:"id"`
	StudentID        string          `db:"student_id" json:"student_id"`
	Title            string          `db:"title" json:"title"`
	Type             AchievementType `db:"type" json:"type"`
	Description      string          `db:"description" json:"description"`
	Organization     string          `db:"organization" json:"organization"`
	CompletedAt      *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	FileURL          string          `db:"file_url" json:"file_url,omitempty"`
	Status           ReviewStatus    `db:"status" json:"status"`
	ReviewComment    string          `db:"review_comment" json:"review_comment,omitempty"`
	RejectionComment string          `db:"rejection_comment" json:"rejection_comment,omitempty"`
	SubmittedAt      time.Time       `db:"submitted_at" json:"submitted_at"`
	ReviewedAt       *time.Time      `db:"reviewed_at" json:"reviewed_at,omitempty"`
	VerifiedBy       *string         `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedByRole   *Role           `db:"verified_by_role" json:"verified_by_role,omitempty"`
}

// SubmitAchievementRequest is the student-facing creation payload.
type SubmitAchievementRequest struct {
	Title        string     `json:"title" validate:"required"`
	Type         string     `json:"type" validate:"required"`
	Description  string     `json:"description"`
	Organization string     `json:"organization"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	FileURL      string     `json:"file_url" validate:"omitempty,url"`
}

// ReviewRequest carries a reviewer's decision on a pending achievement.
type ReviewRequest struct {
	Status  string `json:"status" validate:"required,oneof=Approved Rejected"`
	Comment string `json:"comment"`
}
