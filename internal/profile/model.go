package profile

import "time"

// Role values shared by accounts, profiles and message senders.
const (
	RoleResident = "resident"
	RoleAdmin    = "admin"
)

// Status is the payment state of a profile or a billing-period record.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
)

// Valid reports whether s is one of the three known payment states.
func (s Status) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusOverdue:
		return true
	}
	return false
}

// Profile is the resident-facing aggregate of billing, service and WiFi
// attributes for one account, including the message thread and payment
// history. Messages are ordered oldest-first, history newest-first.
type Profile struct {
	ID              string        `json:"id"`
	Username        string        `json:"username"`
	Alias           string        `json:"alias"`
	Role            string        `json:"role"`
	PaymentStatus   Status        `json:"paymentStatus"`
	NextPaymentDate string        `json:"nextPaymentDate"`
	InternetSpeed   int           `json:"internetSpeed"`
	WifiSSID        string        `json:"wifiSSID"`
	WifiPass        string        `json:"wifiPass"`
	Messages        []Message     `json:"messages"`
	PaymentHistory  []HistoryItem `json:"paymentHistory"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Message is one entry in a resident's two-party thread with staff.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	From      string    `json:"from"` // RoleResident or RoleAdmin
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"timestamp"`
}

// HistoryItem is one historical billing-period entry. Date holds whatever the
// operator typed into the date field (ISO), Amount is a formatted currency
// string, both kept verbatim for display.
type HistoryItem struct {
	ID        string    `json:"id"`
	Period    string    `json:"period"`
	Date      string    `json:"date"`
	Amount    string    `json:"amount"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"timestamp"`
}

// Updates is a partial profile update; nil fields are left untouched.
type Updates struct {
	Alias           *string
	PaymentStatus   *Status
	NextPaymentDate *string
	InternetSpeed   *int
	WifiSSID        *string
	WifiPass        *string
}

// IsZero reports whether the update would change nothing.
func (u Updates) IsZero() bool {
	return u.Alias == nil && u.PaymentStatus == nil && u.NextPaymentDate == nil &&
		u.InternetSpeed == nil && u.WifiSSID == nil && u.WifiPass == nil
}
