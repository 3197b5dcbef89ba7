package products

import (
	"strings"

	"github.com/angelmondragon/giftstore-backend/pkg/enums"
)

// Product is the persisted record in products.json. Price is stored as a JSON
// number.
type Product struct {
	ID          string              `json:"productId"`
	StoreID     string              `json:"storeId"`
	ProductName string              `json:"productName"`
	Description string              `json:"description"`
	Price       float64             `json:"price"`
	Includes    []string            `json:"includes"`
	Images      []string            `json:"images"`
	Status      enums.ProductStatus `json:"status"`
}

// CreateProductDTO carries the fields of a new product record.
type CreateProductDTO struct {
	StoreID     string
	ProductName string
	Description string
	Price       float64
	Includes    []string
	Images      []string
	Status      enums.ProductStatus
}

// ToModel builds the record; the ID is assigned by the repository.
func (dto CreateProductDTO) ToModel() Product {
	status := dto.Status
	if status == "" {
		status = enums.DefaultProductStatusOnCreate
	}
	return Product{
		StoreID:     dto.StoreID,
		ProductName: dto.ProductName,
		Description: dto.Description,
		Price:       dto.Price,
		Includes:    normalizeIncludes(dto.Includes),
		Images:      nonNil(dto.Images),
		Status:      status,
	}
}

// normalizeIncludes keeps the list verbatim but never returns nil, so the
// field is always written as an array.
func normalizeIncludes(values []string) []string {
	return nonNil(values)
}

// stripBlank drops entries that are empty after trimming.
func stripBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string{}, values...)
}

// normalized fills list fields that older files may have written as null.
func (p Product) normalized() Product {
	p.Includes = nonNil(p.Includes)
	p.Images = nonNil(p.Images)
	return p
}
