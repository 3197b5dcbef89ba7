// Package notifications renders the emails sent to store owners.
package notifications

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/angelmondragon/giftstore-backend/pkg/mailer"
)

// OrderPlaced is the data rendered into a new-order email.
type OrderPlaced struct {
	OrderID         string
	StoreName       string
	ProductName     string
	Quantity        int
	Total           string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	PlacedAt        time.Time
}

// Composer turns notification data into mail messages.
type Composer struct {
	orderPlaced *template.Template
}

func NewComposer() *Composer {
	return &Composer{orderPlaced: orderPlacedTmpl}
}

// OrderPlacedMessage addresses the order summary to the store's email. Replies
// go to the customer when they left an address.
func (c *Composer) OrderPlacedMessage(to string, data OrderPlaced) (mailer.Message, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return mailer.Message{}, errors.New("store email is required")
	}
	var body bytes.Buffer
	if err := c.orderPlaced.Execute(&body, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render order email: %w", err)
	}
	return mailer.Message{
		To:      to,
		ReplyTo: strings.TrimSpace(data.CustomerEmail),
		Subject: "New Order: " + data.ProductName,
		HTML:    body.String(),
	}, nil
}
