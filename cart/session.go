package cart

import (
	"time"

	"github.com/Kariqs/goutam-store/models"
	"github.com/google/uuid"
)

const (
	LangEnglish = "en"
	LangHindi   = "hi"
)

// NoticeAccountDisabled is left on a session that was signed out because its
// account was disabled.
const NoticeAccountDisabled = "account_disabled"

// PendingCheckout is a gateway payment that was started but not yet confirmed
// or cancelled. Items and Total are the cart as it was charged; the paid
// order is built from them, not from the cart at confirm time.
type PendingCheckout struct {
	Provider        string             `json:"provider"`
	OrderID         string             `json:"orderId"`
	ProviderOrderID string             `json:"providerOrderId"`
	Amount          int64              `json:"amount"`
	Currency        string             `json:"currency"`
	Items           []models.OrderItem `json:"items"`
	Total           float64            `json:"total"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// Session is the server-side state of one browser.
type Session struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId,omitempty"`
	Authenticated bool             `json:"authenticated"`
	Role          models.Role      `json:"role,omitempty"`
	Language      string           `json:"language"`
	Cart          Cart             `json:"cart"`
	Pending       *PendingCheckout `json:"pending,omitempty"`
	Notice        string           `json:"notice,omitempty"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func NewSessionID() string { return uuid.NewString() }

func NewSession(id string) *Session {
	if id == "" {
		id = NewSessionID()
	}
	return &Session{ID: id, Language: LangEnglish}
}

func (s *Session) Login(userID string, role models.Role) {
	s.UserID = userID
	s.Role = role
	s.Authenticated = true
	s.Notice = ""
}

// Logout drops the identity, the pending checkout and the cart. Language is kept.
func (s *Session) Logout() {
	s.UserID = ""
	s.Role = ""
	s.Authenticated = false
	s.Pending = nil
	s.Cart.Clear()
}

func (s *Session) ToggleLanguage() string {
	if s.Language == LangHindi {
		s.Language = LangEnglish
	} else {
		s.Language = LangHindi
	}
	return s.Language
}

func (s *Session) SetLanguage(lang string) bool {
	if lang != LangEnglish && lang != LangHindi {
		return false
	}
	s.Language = lang
	return true
}

func (s *Session) IsAdmin() bool { return s.Authenticated && s.Role == models.RoleAdmin }
