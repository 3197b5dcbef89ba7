package products

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/giftstore-backend/internal/media"
	"github.com/angelmondragon/giftstore-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/giftstore-backend/pkg/errors"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
)

const fieldImages = "images"

type productRepository interface {
	List(ctx context.Context) ([]Product, error)
	ListByStore(ctx context.Context, storeID string) ([]Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, dto CreateProductDTO) (*Product, error)
	Update(ctx context.Context, id string, mutate func(*Product) error) (*Product, *Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
}

type uploader interface {
	SaveAll(ctx context.Context, field string, files []*multipart.FileHeader) ([]string, error)
	Remove(ctx context.Context, names ...string) error
}

// Service exposes product management operations.
type Service interface {
	Add(ctx context.Context, input AddProductInput) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	ListByStore(ctx context.Context, storeID string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	UpdateStatus(ctx context.Context, id, status string) (*Product, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, input UpdateProductInput) (*Product, error)
}

type service struct {
	repo      productRepository
	assets    uploader
	logg      *logger.Logger
	maxImages int
}

// NewService builds a product service. maxImages caps uploads per request.
func NewService(repo productRepository, assets uploader, logg *logger.Logger, maxImages int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if assets == nil {
		return nil, fmt.Errorf("product asset storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxImages <= 0 {
		return nil, fmt.Errorf("max images must be positive")
	}
	return &service{repo: repo, assets: assets, logg: logg, maxImages: maxImages}, nil
}

// AddProductInput is the multipart payload of /addProduct.
type AddProductInput struct {
	StoreID     string
	ProductName string
	Description string
	Price       string
	Includes    []string
	Images      []*multipart.FileHeader
}

// UpdateProductInput is the multipart payload of /updateProduct. Images
// replace the stored list only when at least one file is supplied.
type UpdateProductInput struct {
	ProductID   string
	ProductName string
	Description string
	Price       string
	Status      string
	Includes    []string
	Images      []*multipart.FileHeader
}

func (s *service) Add(ctx context.Context, input AddProductInput) (*Product, error) {
	storeID := strings.TrimSpace(input.StoreID)
	if storeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Store ID is required")
	}
	price, err := parsePrice(input.Price)
	if err != nil {
		return nil, err
	}
	if err := s.checkImageCount(input.Images); err != nil {
		return nil, err
	}

	images, err := s.assets.SaveAll(ctx, fieldImages, input.Images)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.Create(ctx, CreateProductDTO{
		StoreID:     storeID,
		ProductName: input.ProductName,
		Description: input.Description,
		Price:       price,
		Includes:    input.Includes,
		Images:      images,
		Status:      enums.DefaultProductStatusOnCreate,
	})
	if err != nil {
		s.removeFiles(ctx, "product.upload_rollback_failed", images)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}

	logCtx := s.logg.WithStoreID(s.logg.WithProductID(ctx, product.ID), storeID)
	s.logg.Info(logCtx, "product.created")
	return product, nil
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return records, nil
}

func (s *service) ListByStore(ctx context.Context, storeID string) ([]Product, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Store ID is required")
	}
	records, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list store products")
	}
	return records, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product ID is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "load product")
	}
	return product, nil
}

func (s *service) UpdateStatus(ctx context.Context, id, status string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(status) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product ID and status are required")
	}
	parsed, err := enums.ParseProductStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product status")
	}

	_, product, err := s.repo.Update(ctx, id, func(rec *Product) error {
		rec.Status = parsed
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, "update product status")
	}

	logCtx := s.logg.WithFields(s.logg.WithProductID(ctx, id), map[string]any{"status": parsed.String()})
	s.logg.Info(logCtx, "product.status_changed")
	return product, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Product ID is required")
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoError(err, "delete product")
	}

	logCtx := s.logg.WithProductID(ctx, id)
	s.removeFiles(logCtx, "product.image_cleanup_failed", removed.Images)
	s.logg.Info(logCtx, "product.deleted")
	return nil
}

func (s *service) Update(ctx context.Context, input UpdateProductInput) (*Product, error) {
	id := strings.TrimSpace(input.ProductID)
	if id == "" || strings.TrimSpace(input.ProductName) == "" ||
		strings.TrimSpace(input.Description) == "" || strings.TrimSpace(input.Price) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields")
	}
	price, err := parsePrice(input.Price)
	if err != nil {
		return nil, err
	}
	status := enums.DefaultProductStatusOnUpdate
	if strings.TrimSpace(input.Status) != "" {
		if status, err = enums.ParseProductStatus(input.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product status")
		}
	}
	if err := s.checkImageCount(input.Images); err != nil {
		return nil, err
	}

	var uploaded []string
	if len(input.Images) > 0 {
		if uploaded, err = s.assets.SaveAll(ctx, fieldImages, input.Images); err != nil {
			return nil, err
		}
	}

	before, after, err := s.repo.Update(ctx, id, func(rec *Product) error {
		rec.ProductName = input.ProductName
		rec.Description = input.Description
		rec.Price = price
		rec.Status = status
		rec.Includes = stripBlank(input.Includes)
		if len(uploaded) > 0 {
			rec.Images = uploaded
		}
		return nil
	})
	if err != nil {
		s.removeFiles(ctx, "product.upload_rollback_failed", uploaded)
		return nil, mapRepoError(err, "update product")
	}

	logCtx := s.logg.WithProductID(ctx, id)
	if len(uploaded) > 0 {
		s.removeFiles(logCtx, "product.image_cleanup_failed", media.Stale(before.Images, after.Images))
	}
	s.logg.Info(logCtx, "product.updated")
	return after, nil
}

func (s *service) checkImageCount(files []*multipart.FileHeader) error {
	if len(files) > s.maxImages {
		return pkgerrors.New(pkgerrors.CodeValidation, "Too many images").
			WithDetails(map[string]any{"max": s.maxImages, "received": len(files)})
	}
	return nil
}

func (s *service) removeFiles(ctx context.Context, event string, names []string) {
	if len(names) == 0 {
		return
	}
	if err := s.assets.Remove(ctx, names...); err != nil {
		s.logg.Error(ctx, event, err)
	}
}

// parsePrice accepts a non-negative decimal string and returns it as the
// float persisted in products.json.
func parsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Price is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Price must be a number")
	}
	if d.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Price must not be negative")
	}
	return d.InexactFloat64(), nil
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
