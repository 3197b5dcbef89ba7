package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/giftstore-backend/internal/notifications"
	"github.com/angelmondragon/giftstore-backend/internal/products"
	"github.com/angelmondragon/giftstore-backend/internal/stores"
	"github.com/angelmondragon/giftstore-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/giftstore-backend/pkg/errors"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
	"github.com/angelmondragon/giftstore-backend/pkg/mailer"
)

const defaultQuantity = 1

type productLookup interface {
	FindByID(ctx context.Context, id string) (*products.Product, error)
}

type storeLookup interface {
	FindByID(ctx context.Context, id string) (*stores.Store, error)
}

type orderRepository interface {
	Append(ctx context.Context, order Order) error
	List(ctx context.Context, storeID string) ([]Order, error)
	Update(ctx context.Context, id string, mutate func(*Order) error) (*Order, error)
}

// Service runs the order-to-email flow and the order log built on it.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)
	ListByStore(ctx context.Context, storeID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*Order, error)
}

type service struct {
	products productLookup
	stores   storeLookup
	repo     orderRepository
	composer *notifications.Composer
	mail     mailer.Sender
	logg     *logger.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires the order flow.
func NewService(productsRepo productLookup, storesRepo storeLookup, repo orderRepository, mail mailer.Sender, logg *logger.Logger) (Service, error) {
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if storesRepo == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		products: productsRepo,
		stores:   storesRepo,
		repo:     repo,
		composer: notifications.NewComposer(),
		mail:     mail,
		logg:     logg,
		now:      time.Now,
		newID:    func() string { return ulid.Make().String() },
	}, nil
}

// PlaceOrder notifies the product's store by email and then logs the order.
// A failed send is reported to the caller and nothing is recorded.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	productID := strings.TrimSpace(input.ProductID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product ID is required")
	}
	ctx = s.logg.WithProductID(ctx, productID)

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	store, err := s.stores.FindByID(ctx, product.StoreID)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	ctx = s.logg.WithStoreID(ctx, store.ID)

	now := s.now().UTC()
	quantity := parseQuantity(input.Quantity.String())
	order := Order{
		ID:              s.newID(),
		ProductID:       product.ID,
		StoreID:         store.ID,
		ProductName:     firstNonEmpty(product.ProductName, input.ProductName),
		StoreName:       firstNonEmpty(store.StoreName, input.StoreName),
		Quantity:        quantity,
		TotalAmount:     orderTotal(input.TotalAmount.String(), product.Price, quantity),
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(input.CustomerPhone.String()),
		CustomerAddress: strings.TrimSpace(input.CustomerAddress),
		Status:          enums.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	ctx = s.logg.WithOrderID(ctx, order.ID)

	msg, err := s.composer.OrderPlacedMessage(store.Email, notifications.OrderPlaced{
		OrderID:         order.ID,
		StoreName:       order.StoreName,
		ProductName:     order.ProductName,
		Quantity:        order.Quantity,
		Total:           order.TotalAmount,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		CustomerPhone:   order.CustomerPhone,
		CustomerAddress: order.CustomerAddress,
		PlacedAt:        now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotification, err, "compose order email")
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotification, err, "send order email")
	}

	if err := s.repo.Append(ctx, order); err != nil {
		// The email is out; acknowledge without an order ID.
		s.logg.Error(ctx, "order.record_failed", err)
		order.ID = ""
		return &order, nil
	}

	s.logg.Info(ctx, "order.placed")
	return &order, nil
}

func (s *service) ListByStore(ctx context.Context, storeID string) ([]Order, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Store ID is required")
	}
	records, err := s.repo.List(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list store orders")
	}
	return records, nil
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	records, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return records, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*Order, error) {
	id := strings.TrimSpace(input.OrderID)
	if id == "" || strings.TrimSpace(input.Status) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Order ID and status are required")
	}
	status, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}

	order, err := s.repo.Update(ctx, id, func(rec *Order) error {
		if rec.Status.IsTerminal() && rec.Status != status {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "Order is already %s", rec.Status)
		}
		rec.Status = status
		rec.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}

	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, id), map[string]any{"status": status.String()})
	s.logg.Info(logCtx, "order.status_changed")
	return order, nil
}

func parseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return defaultQuantity
	}
	return n
}

// orderTotal prefers the client's total when it is a number and falls back to
// price times quantity. Totals are rendered with two decimals.
func orderTotal(clientTotal string, price float64, quantity int) string {
	if d, err := decimal.NewFromString(strings.TrimSpace(clientTotal)); err == nil && !d.IsNegative() {
		return d.StringFixed(2)
	}
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).StringFixed(2)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
