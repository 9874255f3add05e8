package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	documentDomain "github.com/joyhomes/service-booking/internal/domain/document"
)

// UploadDocumentRequest holds the data to attach a document.
type UploadDocumentRequest struct {
	Type    string `json:"type" binding:"required"`
	URL     string `json:"url" binding:"required,max=1000"`
	Caption string `json:"caption" binding:"max=255"`
}

// DocumentService handles booking document use cases.
type DocumentService struct {
	uow    UnitOfWork
	logger *zap.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(uow UnitOfWork, logger *zap.Logger) *DocumentService {
	return &DocumentService{uow: uow, logger: logger}
}

// UploadDocument attaches a document to a booking visible to the caller.
func (s *DocumentService) UploadDocument(ctx context.Context, actor Actor, bookingID uuid.UUID, req UploadDocumentRequest) (*DocumentDTO, error) {
	st := s.uow.Stores()
	bk, err := st.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, bk); err != nil {
		return nil, err
	}

	doc, err := documentDomain.NewBookingDocument(bk.ID(), actor.UserID, documentDomain.DocumentType(req.Type), req.URL, req.Caption)
	if err != nil {
		return nil, err
	}
	if err := st.Documents.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document uploaded",
		zap.String("booking_id", bookingID.String()),
		zap.String("type", req.Type),
	)
	dto := toDocumentDTO(doc)
	return &dto, nil
}

// GetBookingDocuments returns all documents of a booking visible to the caller.
func (s *DocumentService) GetBookingDocuments(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]DocumentDTO, error) {
	st := s.uow.Stores()
	bk, err := st.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, bk); err != nil {
		return nil, err
	}

	docs, err := st.Documents.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dtos := make([]DocumentDTO, len(docs))
	for i, d := range docs {
		dtos[i] = toDocumentDTO(d)
	}
	return dtos, nil
}
