package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Address struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Line1   string `json:"line1,omitempty"`
	City    string `json:"city,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

type OrderItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// Order cuma field yang relevan buat notifikasi; sisanya payload tampilan.
type Order struct {
	ID              string          `json:"id"`
	Status          Status          `json:"status"`                // lihat status.go
	AcceptedAt      *time.Time      `json:"accepted_at,omitempty"` // hanya saat status accepted
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Items           []OrderItem     `json:"items,omitempty"`
	PaymentStatus   string          `json:"payment_status,omitempty"`
	DeliveryAddress Address         `json:"delivery_address"`
	CreatedAt       time.Time       `json:"created_at"`
	OTP             string          `json:"otp,omitempty"` // dari backend saat packed
	RejectReason    string          `json:"reject_reason,omitempty"`
}

// Clone copies the order so callers can't mutate state held by the service.
func (o Order) Clone() Order {
	c := o
	if o.AcceptedAt != nil {
		t := *o.AcceptedAt
		c.AcceptedAt = &t
	}
	if o.Items != nil {
		c.Items = append([]OrderItem(nil), o.Items...)
	}
	return c
}

type Action string

const (
	ActionAccept       Action = "accept"
	ActionReject       Action = "reject"
	ActionPack         Action = "pack"
	ActionVerifyReturn Action = "verify_return"
	ActionAcceptReturn Action = "accept_return"
)

// Decision = satu aksi operator, dicatat ke journal / broker.
type Decision struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	MerchantID string    `json:"merchant_id"`
	Action     Action    `json:"action"`
	Reason     string    `json:"reason,omitempty"`
	OTP        string    `json:"otp,omitempty"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}
