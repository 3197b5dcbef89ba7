package stores

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/angelmondragon/giftstore-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/giftstore-backend/pkg/errors"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
)

const (
	fieldPropic          = "propic"
	fieldBackgroundImage = "backgroundImage"
)

type storeRepository interface {
	List(ctx context.Context) ([]Store, error)
	FindByID(ctx context.Context, id string) (*Store, error)
	Create(ctx context.Context, dto CreateStoreDTO) (*Store, error)
	Update(ctx context.Context, id string, mutate func(*Store) error) (*Store, error)
}

type uploader interface {
	SaveAll(ctx context.Context, field string, files []*multipart.FileHeader) ([]string, error)
	Remove(ctx context.Context, names ...string) error
}

// Service exposes store operations.
type Service interface {
	Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error)
	List(ctx context.Context) ([]StoreDTO, error)
	GetByID(ctx context.Context, id string) (*StoreDTO, error)
	ChangeStatus(ctx context.Context, id, status string) (*StoreDTO, error)
	UpdateDetails(ctx context.Context, input UpdateStoreInput) (*StoreDTO, error)
	Login(ctx context.Context, email, password string) (*StoreDTO, error)
}

type service struct {
	repo   storeRepository
	assets uploader
	logg   *logger.Logger
}

// NewService builds a store service with the provided repository and asset storage.
func NewService(repo storeRepository, assets uploader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if assets == nil {
		return nil, fmt.Errorf("store asset storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, assets: assets, logg: logg}, nil
}

// CreateStoreInput is the multipart payload of /createStore.
type CreateStoreInput struct {
	StoreName       string
	Location        string
	Email           string
	Password        string
	TP              string
	Status          string
	Description     string
	Propic          *multipart.FileHeader
	BackgroundImage *multipart.FileHeader
}

// UpdateStoreInput captures a partial detail update. Empty values keep the
// stored field.
type UpdateStoreInput struct {
	StoreID     string
	StoreName   string
	Location    string
	Email       string
	TP          string
	Description string
}

func (s *service) Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error) {
	status := enums.DefaultStoreStatus
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := enums.ParseStoreStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store status")
		}
		status = parsed
	}

	propic, err := s.saveOne(ctx, fieldPropic, input.Propic)
	if err != nil {
		return nil, err
	}
	background, err := s.saveOne(ctx, fieldBackgroundImage, input.BackgroundImage)
	if err != nil {
		s.rollback(ctx, propic)
		return nil, err
	}

	store, err := s.repo.Create(ctx, CreateStoreDTO{
		StoreName:       input.StoreName,
		Location:        input.Location,
		Email:           input.Email,
		Password:        input.Password,
		TP:              input.TP,
		Status:          status,
		Description:     input.Description,
		Propic:          propic,
		BackgroundImage: background,
	})
	if err != nil {
		s.rollback(ctx, propic, background)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
	}

	s.logg.Info(s.logg.WithStoreID(ctx, store.ID), "store.created")
	return FromModel(store), nil
}

func (s *service) List(ctx context.Context) ([]StoreDTO, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}
	return FromModels(records), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*StoreDTO, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Store ID is required")
	}
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) ChangeStatus(ctx context.Context, id, status string) (*StoreDTO, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(status) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Store ID and status are required")
	}
	parsed, err := enums.ParseStoreStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store status")
	}

	store, err := s.repo.Update(ctx, id, func(rec *Store) error {
		rec.Status = parsed
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, "update store status")
	}

	logCtx := s.logg.WithFields(s.logg.WithStoreID(ctx, store.ID), map[string]any{"status": parsed.String()})
	s.logg.Info(logCtx, "store.status_changed")
	return FromModel(store), nil
}

func (s *service) UpdateDetails(ctx context.Context, input UpdateStoreInput) (*StoreDTO, error) {
	id := strings.TrimSpace(input.StoreID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Store ID is required")
	}

	store, err := s.repo.Update(ctx, id, func(rec *Store) error {
		overwrite(&rec.StoreName, input.StoreName)
		overwrite(&rec.Location, input.Location)
		overwrite(&rec.Email, input.Email)
		overwrite(&rec.TP, input.TP)
		overwrite(&rec.Description, input.Description)
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, "update store")
	}

	s.logg.Info(s.logg.WithStoreID(ctx, store.ID), "store.updated")
	return FromModel(store), nil
}

// Login checks the store credentials. It issues no session; callers only
// learn which store the credentials belong to.
func (s *service) Login(ctx context.Context, email, password string) (*StoreDTO, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email and password are required")
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}
	for i := range records {
		rec := &records[i]
		if !strings.EqualFold(strings.TrimSpace(rec.Email), email) {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(rec.Password), []byte(password)) == 1 {
			s.logg.Info(s.logg.WithStoreID(ctx, rec.ID), "store.login")
			return FromModel(rec), nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid email or password")
}

func (s *service) saveOne(ctx context.Context, field string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}
	names, err := s.assets.SaveAll(ctx, field, []*multipart.FileHeader{fh})
	if err != nil {
		return "", err
	}
	return names[0], nil
}

func (s *service) rollback(ctx context.Context, names ...string) {
	if err := s.assets.Remove(ctx, names...); err != nil {
		s.logg.Error(ctx, "store.upload_rollback_failed", err)
	}
}

func overwrite(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Store not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
