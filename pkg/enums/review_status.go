package enums

import "fmt"

// ReviewStatus is the moderation state of a product review.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

var validReviewStatuses = []ReviewStatus{
	ReviewStatusPending,
	ReviewStatusApproved,
	ReviewStatusRejected,
}

func (r ReviewStatus) String() string {
	return string(r)
}

func (r ReviewStatus) IsValid() bool {
	for _, candidate := range validReviewStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseReviewStatus(value string) (ReviewStatus, error) {
	for _, candidate := range validReviewStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid review status %q", value)
}
