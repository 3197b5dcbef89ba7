package enums

import (
	"fmt"
	"strings"
)

// ProductStatus is the listing state of a product.
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusLive       ProductStatus = "live"
	ProductStatusOutOfStock ProductStatus = "out of stock"
	ProductStatusInactive   ProductStatus = "inactive"
)

// Products created through the add flow start active; the edit flow falls back to live.
const (
	DefaultProductStatusOnCreate = ProductStatusActive
	DefaultProductStatusOnUpdate = ProductStatusLive
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusLive,
	ProductStatusOutOfStock,
	ProductStatusInactive,
}

// String implements fmt.Stringer.
func (p ProductStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductStatus.
func (p ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(value), " "))
	if normalized == "out_of_stock" || normalized == "out-of-stock" {
		return ProductStatusOutOfStock, nil
	}
	for _, candidate := range validProductStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}
