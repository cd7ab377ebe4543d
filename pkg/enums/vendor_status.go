package enums

import "fmt"

// VendorStatus tracks the moderation lifecycle of a vendor profile.
type VendorStatus string

const (
	VendorStatusPending   VendorStatus = "pending"
	VendorStatusActive    VendorStatus = "active"
	VendorStatusBlocked   VendorStatus = "blocked"
	VendorStatusSuspended VendorStatus = "suspended"
)

var validVendorStatuses = []VendorStatus{
	VendorStatusPending,
	VendorStatusActive,
	VendorStatusBlocked,
	VendorStatusSuspended,
}

func (v VendorStatus) String() string {
	return string(v)
}

func (v VendorStatus) IsValid() bool {
	for _, candidate := range validVendorStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVendorStatus converts raw input into a VendorStatus.
func ParseVendorStatus(value string) (VendorStatus, error) {
	for _, candidate := range validVendorStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor status %q", value)
}
