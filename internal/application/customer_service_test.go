package application_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joyhomes/service-booking/internal/application"
	"github.com/joyhomes/service-booking/internal/common/auth"
	"github.com/joyhomes/service-booking/internal/common/domain"
	propertyDomain "github.com/joyhomes/service-booking/internal/domain/property"
)

func TestCustomerService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := application.NewCustomerService(e.uow, zap.NewNop())

	created, err := svc.CreateCustomer(ctx, e.sales, application.CreateCustomerRequest{
		FullName: "Hoàng Minh", Phone: "0988 111 222", AssignedTo: &e.manager.UserID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.AssignedTo)
	assert.Equal(t, e.sales.UserID, *created.AssignedTo, "sales cannot hand customers to others")
	assert.Equal(t, "0988111222", created.Phone)

	_, err = svc.CreateCustomer(ctx, e.manager, application.CreateCustomerRequest{FullName: "Trùng", Phone: "0988111222"})
	assert.True(t, domain.HasCode(err, domain.CodeConflict))

	other := application.Actor{UserID: uuid.New(), Role: auth.RoleSales}
	_, err = svc.GetCustomer(ctx, other, created.ID)
	assert.True(t, domain.HasCode(err, domain.CodeForbidden))

	page, err := svc.ListCustomers(ctx, other, "", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	page, err = svc.ListCustomers(ctx, e.manager, "minh", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	updated, err := svc.UpdateCustomer(ctx, e.sales, created.ID, application.UpdateCustomerRequest{Email: "minh@joyhomes.vn"})
	require.NoError(t, err)
	assert.Equal(t, "minh@joyhomes.vn", updated.Email)
	assert.Equal(t, int64(2), updated.Version)

	second, err := svc.CreateCustomer(ctx, e.manager, application.CreateCustomerRequest{FullName: "Lý Hoa", Phone: "0977000111"})
	require.NoError(t, err)
	_, err = svc.UpdateCustomer(ctx, e.manager, second.ID, application.UpdateCustomerRequest{Phone: "0988111222"})
	assert.True(t, domain.HasCode(err, domain.CodeConflict))
}

func TestDocumentService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := application.NewDocumentService(e.uow, zap.NewNop())
	bk := e.create(t, e.sales, e.property(t, e.project(t, nil), "RS-2001", propertyDomain.StatusAvailable), e.customer(t, "0909000099"))

	doc, err := svc.UploadDocument(ctx, e.sales, bk.ID, application.UploadDocumentRequest{
		Type: "CONTRACT", URL: "https://files.joyhomes.vn/hd.pdf", Caption: "Hợp đồng đặt cọc",
	})
	require.NoError(t, err)
	assert.Equal(t, "CONTRACT", doc.Type)

	_, err = svc.UploadDocument(ctx, e.sales, bk.ID, application.UploadDocumentRequest{Type: "SELFIE", URL: "https://x.vn/a.jpg"})
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	outsider := application.Actor{UserID: uuid.New(), Role: auth.RoleSales}
	_, err = svc.GetBookingDocuments(ctx, outsider, bk.ID)
	assert.True(t, domain.HasCode(err, domain.CodeForbidden))

	docs, err := svc.GetBookingDocuments(ctx, e.manager, bk.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, e.sales.UserID, docs[0].UploadedBy)
}
