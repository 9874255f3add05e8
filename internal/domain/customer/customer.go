package customer

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joyhomes/service-booking/internal/common/domain"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,12}$`)

// Customer is the read copy of a CRM customer. Sales staff may register
// walk-in customers directly from the booking screen.
type Customer struct {
	id         uuid.UUID
	fullName   string
	phone      string
	email      string
	idNumber   string
	assignedTo *uuid.UUID
	version    int64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewCustomer creates a customer with validated contact data.
func NewCustomer(fullName, phone, email, idNumber string, assignedTo *uuid.UUID) (*Customer, error) {
	c := &Customer{id: uuid.New(), assignedTo: assignedTo, version: 1}
	if err := c.apply(fullName, phone, email, idNumber); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c.createdAt = now
	c.updatedAt = now
	return c, nil
}

// Reconstruct rebuilds a Customer from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	fullName, phone, email, idNumber string,
	assignedTo *uuid.UUID,
	version int64,
	createdAt, updatedAt time.Time,
) *Customer {
	return &Customer{
		id:         id,
		fullName:   fullName,
		phone:      phone,
		email:      email,
		idNumber:   idNumber,
		assignedTo: assignedTo,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (c *Customer) ID() uuid.UUID          { return c.id }
func (c *Customer) FullName() string       { return c.fullName }
func (c *Customer) Phone() string          { return c.phone }
func (c *Customer) Email() string          { return c.email }
func (c *Customer) IDNumber() string       { return c.idNumber }
func (c *Customer) AssignedTo() *uuid.UUID { return c.assignedTo }
func (c *Customer) Version() int64         { return c.version }
func (c *Customer) CreatedAt() time.Time   { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time   { return c.updatedAt }

// IsAssignedTo checks if the customer is handled by the given sales agent.
func (c *Customer) IsAssignedTo(userID uuid.UUID) bool {
	return c.assignedTo != nil && *c.assignedTo == userID
}

// Update applies partial updates. Empty values leave the field unchanged.
func (c *Customer) Update(fullName, phone, email, idNumber string) error {
	next := *c
	if fullName == "" {
		fullName = c.fullName
	}
	if phone == "" {
		phone = c.phone
	}
	if email == "" {
		email = c.email
	}
	if idNumber == "" {
		idNumber = c.idNumber
	}
	if err := next.apply(fullName, phone, email, idNumber); err != nil {
		return err
	}
	next.version++
	next.updatedAt = time.Now().UTC()
	*c = next
	return nil
}

func (c *Customer) apply(fullName, phone, email, idNumber string) error {
	var issues []domain.FieldIssue
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		issues = append(issues, domain.FieldIssue{Field: "fullName", Message: "Họ tên là bắt buộc"})
	}
	phone = NormalizePhone(phone)
	if !phonePattern.MatchString(phone) {
		issues = append(issues, domain.FieldIssue{Field: "phone", Message: "Số điện thoại không hợp lệ"})
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && !strings.Contains(email, "@") {
		issues = append(issues, domain.FieldIssue{Field: "email", Message: "Email không hợp lệ"})
	}
	if len(issues) > 0 {
		return domain.NewFieldValidationError("Dữ liệu khách hàng không hợp lệ", issues)
	}
	c.fullName = fullName
	c.phone = phone
	c.email = email
	c.idNumber = strings.TrimSpace(idNumber)
	return nil
}

// NormalizePhone strips separators so that lookups by phone are stable.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", ".", "", "-", "").Replace(strings.TrimSpace(phone))
}
