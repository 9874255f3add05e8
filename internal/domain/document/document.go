package document

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joyhomes/service-booking/internal/common/domain"
)

// DocumentType represents the kind of attachment.
type DocumentType string

const (
	TypeContract DocumentType = "CONTRACT"
	TypeReceipt  DocumentType = "RECEIPT"
	TypeIDCard   DocumentType = "ID_CARD"
	TypeOther    DocumentType = "OTHER"
)

// IsValid returns true if the document type is recognized.
func (t DocumentType) IsValid() bool {
	switch t {
	case TypeContract, TypeReceipt, TypeIDCard, TypeOther:
		return true
	}
	return false
}

// BookingDocument is a scanned contract, receipt or ID attached to a booking.
type BookingDocument struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	uploadedBy uuid.UUID
	docType    DocumentType
	url        string
	caption    string
	createdAt  time.Time
}

// NewBookingDocument creates a new booking document.
func NewBookingDocument(bookingID, uploadedBy uuid.UUID, docType DocumentType, rawURL, caption string) (*BookingDocument, error) {
	if !docType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("Loại tài liệu không hợp lệ: %s", docType))
	}
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if rawURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.NewValidationError("Đường dẫn tài liệu không hợp lệ")
	}

	return &BookingDocument{
		id:         uuid.New(),
		bookingID:  bookingID,
		uploadedBy: uploadedBy,
		docType:    docType,
		url:        rawURL,
		caption:    strings.TrimSpace(caption),
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a BookingDocument from persistence.
func Reconstruct(id, bookingID, uploadedBy uuid.UUID, docType DocumentType, rawURL, caption string, createdAt time.Time) *BookingDocument {
	return &BookingDocument{
		id:         id,
		bookingID:  bookingID,
		uploadedBy: uploadedBy,
		docType:    docType,
		url:        rawURL,
		caption:    caption,
		createdAt:  createdAt,
	}
}

// Getters.
func (d *BookingDocument) ID() uuid.UUID         { return d.id }
func (d *BookingDocument) BookingID() uuid.UUID  { return d.bookingID }
func (d *BookingDocument) UploadedBy() uuid.UUID { return d.uploadedBy }
func (d *BookingDocument) Type() DocumentType    { return d.docType }
func (d *BookingDocument) URL() string           { return d.url }
func (d *BookingDocument) Caption() string       { return d.caption }
func (d *BookingDocument) CreatedAt() time.Time  { return d.createdAt }
