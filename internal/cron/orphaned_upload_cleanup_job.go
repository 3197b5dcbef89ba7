package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/giftstore-backend/internal/media"
	"github.com/angelmondragon/giftstore-backend/internal/products"
	"github.com/angelmondragon/giftstore-backend/internal/stores"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
)

const defaultOrphanMaxAge = 24 * time.Hour

type OrphanedUploadCleanupJobParams struct {
	Logger        *logger.Logger
	Stores        storeLister
	Products      productLister
	StoreAssets   uploadDir
	ProductAssets uploadDir
	MaxAge        time.Duration
}

type storeLister interface {
	List(ctx context.Context) ([]stores.Store, error)
}

type productLister interface {
	List(ctx context.Context) ([]products.Product, error)
}

type uploadDir interface {
	List(ctx context.Context) ([]media.File, error)
	Remove(ctx context.Context, names ...string) error
}

// NewOrphanedUploadCleanupJob removes uploads that no store or product
// references. Files younger than MaxAge are left alone so an upload whose
// record is still being written is never swept.
func NewOrphanedUploadCleanupJob(params OrphanedUploadCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.StoreAssets == nil || params.ProductAssets == nil {
		return nil, fmt.Errorf("upload storage required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultOrphanMaxAge
	}
	return &orphanedUploadCleanupJob{
		logg:          params.Logger,
		stores:        params.Stores,
		products:      params.Products,
		storeAssets:   params.StoreAssets,
		productAssets: params.ProductAssets,
		maxAge:        maxAge,
		now:           time.Now,
	}, nil
}

type orphanedUploadCleanupJob struct {
	logg          *logger.Logger
	stores        storeLister
	products      productLister
	storeAssets   uploadDir
	productAssets uploadDir
	maxAge        time.Duration
	now           func() time.Time
}

func (j *orphanedUploadCleanupJob) Name() string { return "orphaned-upload-cleanup" }

func (j *orphanedUploadCleanupJob) Run(ctx context.Context) error {
	storeRecords, err := j.stores.List(ctx)
	if err != nil {
		return fmt.Errorf("list stores: %w", err)
	}
	productRecords, err := j.products.List(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	storeRefs := make(map[string]struct{})
	for _, st := range storeRecords {
		for _, name := range st.Images() {
			storeRefs[name] = struct{}{}
		}
	}
	productRefs := make(map[string]struct{})
	for _, p := range productRecords {
		for _, name := range p.Images {
			productRefs[name] = struct{}{}
		}
	}

	cutoff := j.now().Add(-j.maxAge)
	storeRemoved, storeErr := j.sweep(ctx, j.storeAssets, storeRefs, cutoff)
	productRemoved, productErr := j.sweep(ctx, j.productAssets, productRefs, cutoff)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":           cutoff.UTC(),
		"store_removed":    storeRemoved,
		"product_removed":  productRemoved,
		"stores_scanned":   len(storeRecords),
		"products_scanned": len(productRecords),
	})
	j.logg.Info(logCtx, "orphaned upload cleanup complete")
	return multierr.Combine(storeErr, productErr)
}

func (j *orphanedUploadCleanupJob) sweep(ctx context.Context, dir uploadDir, refs map[string]struct{}, cutoff time.Time) (int, error) {
	files, err := dir.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list uploads: %w", err)
	}
	var orphans []string
	for _, f := range files {
		if _, ok := refs[f.Name]; ok {
			continue
		}
		if f.ModTime.After(cutoff) {
			continue
		}
		orphans = append(orphans, f.Name)
	}
	if len(orphans) == 0 {
		return 0, nil
	}
	if err := dir.Remove(ctx, orphans...); err != nil {
		return 0, fmt.Errorf("remove orphaned uploads: %w", err)
	}
	return len(orphans), nil
}
