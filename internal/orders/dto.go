package orders

import (
	"time"

	"github.com/angelmondragon/giftstore-backend/pkg/enums"
	"github.com/angelmondragon/giftstore-backend/pkg/types"
)

// Order is a record in orders.json. It is written once the store has been
// notified and keeps a snapshot of what the email said.
type Order struct {
	ID              string            `json:"orderId"`
	ProductID       string            `json:"productId"`
	StoreID         string            `json:"storeId"`
	ProductName     string            `json:"productName"`
	StoreName       string            `json:"storeName"`
	Quantity        int               `json:"quantity"`
	TotalAmount     string            `json:"totalAmount"`
	CustomerName    string            `json:"customerName"`
	CustomerEmail   string            `json:"customerEmail"`
	CustomerPhone   string            `json:"customerPhone"`
	CustomerAddress string            `json:"customerAddress"`
	Status          enums.OrderStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// PlaceOrderInput is the JSON body of /orderProduct. storeEmail, productName,
// storeName and totalAmount are display hints; the stored records win for
// addressing.
type PlaceOrderInput struct {
	ProductID       string           `json:"productId" validate:"max=64"`
	Quantity        types.FlexString `json:"quantity" validate:"max=16"`
	CustomerName    string           `json:"customerName" validate:"max=200"`
	CustomerEmail   string           `json:"customerEmail" validate:"omitempty,email,max=254"`
	CustomerPhone   types.FlexString `json:"customerPhone" validate:"max=32"`
	CustomerAddress string           `json:"customerAddress" validate:"max=1000"`
	StoreEmail      string           `json:"storeEmail" validate:"max=254"`
	ProductName     string           `json:"productName" validate:"max=200"`
	StoreName       string           `json:"storeName" validate:"max=200"`
	TotalAmount     types.FlexString `json:"totalAmount" validate:"max=32"`
}

// UpdateStatusInput is the JSON body of /updateOrderStatus.
type UpdateStatusInput struct {
	OrderID string `json:"orderId" validate:"max=64"`
	Status  string `json:"status" validate:"max=32"`
}
