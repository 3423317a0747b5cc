package models

// ReviewStatus is the shared shape of the two approval workflows: achievement
// review and institute registration review. Pending is the only non-terminal
// state; Approved and Rejected are final and must never be re-reviewed.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "Pending"
	ReviewApproved ReviewStatus = "Approved"
	ReviewRejected ReviewStatus = "Rejected"
)

// Valid reports whether the value is a known review status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// Terminal reports whether the status ends the workflow.
func (s ReviewStatus) Terminal() bool {
	return s == ReviewApproved || s == ReviewRejected
}
