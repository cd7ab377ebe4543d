package enums

import "fmt"

// DeliveryOption selects the flat shipping rate applied to an order.
type DeliveryOption string

const (
	DeliveryOptionStandard DeliveryOption = "standard"
	DeliveryOptionExpress  DeliveryOption = "express"
)

var validDeliveryOptions = []DeliveryOption{DeliveryOptionStandard, DeliveryOptionExpress}

func (d DeliveryOption) String() string {
	return string(d)
}

func (d DeliveryOption) IsValid() bool {
	for _, candidate := range validDeliveryOptions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryOption converts raw input into a DeliveryOption, defaulting to standard.
func ParseDeliveryOption(value string) (DeliveryOption, error) {
	if value == "" {
		return DeliveryOptionStandard, nil
	}
	for _, candidate := range validDeliveryOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery option %q", value)
}
