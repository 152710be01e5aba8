package entity

import "time"

const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Address, Coupon and Payment are record-keeping rows of the relational model.
// Only their shape is defined; discount and payment processing live elsewhere.
type Address struct {
	ID         string
	UserID     string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
	IsDefault  bool
	CreatedAt  time.Time
}

type Coupon struct {
	Code          string
	DiscountType  string
	DiscountValue float64
	ValidFrom     time.Time
	ValidUntil    time.Time
	UsageLimit    int
	TimesUsed     int
	IsActive      bool
}

type Payment struct {
	ID        string
	UserID    string
	CartID    string
	Amount    float64
	Currency  string
	Status    string
	Provider  string
	CreatedAt time.Time
}
