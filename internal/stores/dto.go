package stores

import (
	"strings"

	"github.com/angelmondragon/giftstore-backend/pkg/enums"
)

// Store is the persisted record in stores.json.
type Store struct {
	ID              string            `json:"storeId"`
	StoreName       string            `json:"storeName"`
	Location        string            `json:"location"`
	Email           string            `json:"email"`
	Password        string            `json:"password"`
	TP              string            `json:"tp"`
	Status          enums.StoreStatus `json:"status"`
	Description     string            `json:"description"`
	Propic          string            `json:"propic"`
	BackgroundImage string            `json:"backgroundImage"`
}

// StoreDTO is the public representation of a store. The password never
// leaves the service.
type StoreDTO struct {
	ID              string            `json:"storeId"`
	StoreName       string            `json:"storeName"`
	Location        string            `json:"location"`
	Email           string            `json:"email"`
	TP              string            `json:"tp"`
	Status          enums.StoreStatus `json:"status"`
	Description     string            `json:"description"`
	Propic          string            `json:"propic"`
	BackgroundImage string            `json:"backgroundImage"`
}

// FromModel maps the persisted record to its public form.
func FromModel(s *Store) *StoreDTO {
	if s == nil {
		return nil
	}
	return &StoreDTO{
		ID:              s.ID,
		StoreName:       s.StoreName,
		Location:        s.Location,
		Email:           s.Email,
		TP:              s.TP,
		Status:          s.Status,
		Description:     s.Description,
		Propic:          s.Propic,
		BackgroundImage: s.BackgroundImage,
	}
}

// FromModels maps a slice of records, never returning nil.
func FromModels(records []Store) []StoreDTO {
	out := make([]StoreDTO, 0, len(records))
	for i := range records {
		out = append(out, *FromModel(&records[i]))
	}
	return out
}

// CreateStoreDTO carries the fields of a new store record.
type CreateStoreDTO struct {
	StoreName       string
	Location        string
	Email           string
	Password        string
	TP              string
	Status          enums.StoreStatus
	Description     string
	Propic          string
	BackgroundImage string
}

// ToModel builds the record; the ID is assigned by the repository.
func (dto CreateStoreDTO) ToModel() Store {
	status := dto.Status
	if status == "" {
		status = enums.DefaultStoreStatus
	}
	return Store{
		StoreName:       dto.StoreName,
		Location:        dto.Location,
		Email:           strings.TrimSpace(dto.Email),
		Password:        dto.Password,
		TP:              dto.TP,
		Status:          status,
		Description:     dto.Description,
		Propic:          dto.Propic,
		BackgroundImage: dto.BackgroundImage,
	}
}

// Images returns the upload file names referenced by the record.
func (s Store) Images() []string {
	var names []string
	for _, name := range []string{s.Propic, s.BackgroundImage} {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
