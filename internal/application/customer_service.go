package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joyhomes/service-booking/internal/common/auth"
	"github.com/joyhomes/service-booking/internal/common/domain"
	customerDomain "github.com/joyhomes/service-booking/internal/domain/customer"
)

// CreateCustomerRequest holds the data to register a customer.
type CreateCustomerRequest struct {
	FullName   string     `json:"fullName" binding:"required,max=150"`
	Phone      string     `json:"phone" binding:"required,max=20"`
	Email      string     `json:"email" binding:"omitempty,email,max=150"`
	IDNumber   string     `json:"idNumber" binding:"max=20"`
	AssignedTo *uuid.UUID `json:"assignedTo"`
}

// UpdateCustomerRequest holds a partial customer update.
type UpdateCustomerRequest struct {
	FullName string `json:"fullName" binding:"max=150"`
	Phone    string `json:"phone" binding:"max=20"`
	Email    string `json:"email" binding:"omitempty,email,max=150"`
	IDNumber string `json:"idNumber" binding:"max=20"`
}

// CustomerService handles customer use cases.
type CustomerService struct {
	uow    UnitOfWork
	logger *zap.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(uow UnitOfWork, logger *zap.Logger) *CustomerService {
	return &CustomerService{uow: uow, logger: logger}
}

// CreateCustomer registers a customer. SALES callers become the assigned agent.
func (s *CustomerService) CreateCustomer(ctx context.Context, actor Actor, req CreateCustomerRequest) (*CustomerDTO, error) {
	assignedTo := req.AssignedTo
	if !auth.Can(actor.Role, auth.PermCustomerViewAll) || assignedTo == nil {
		self := actor.UserID
		assignedTo = &self
	}

	c, err := customerDomain.NewCustomer(req.FullName, req.Phone, req.Email, req.IDNumber, assignedTo)
	if err != nil {
		return nil, err
	}

	st := s.uow.Stores()
	taken, err := st.Customers.ExistsByPhone(ctx, c.Phone(), nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewConflictError(fmt.Sprintf("Số điện thoại %s đã được đăng ký", c.Phone()))
	}
	if err := st.Customers.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("customer created",
		zap.String("customer_id", c.ID().String()),
		zap.String("created_by", actor.UserID.String()),
	)
	dto := toCustomerDTO(c)
	return &dto, nil
}

// GetCustomer returns a customer visible to the caller.
func (s *CustomerService) GetCustomer(ctx context.Context, actor Actor, id uuid.UUID) (*CustomerDTO, error) {
	c, err := s.uow.Stores().Customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureCanSeeCustomer(actor, c); err != nil {
		return nil, err
	}
	dto := toCustomerDTO(c)
	return &dto, nil
}

// ListCustomers returns a page of customers; SALES only see their own.
func (s *CustomerService) ListCustomers(ctx context.Context, actor Actor, search string, page, limit int) (*domain.PaginatedResult[CustomerDTO], error) {
	page, limit = normalizePage(page, limit)
	filter := customerDomain.ListFilter{Search: search, Page: page, Limit: limit}
	if !auth.Can(actor.Role, auth.PermCustomerViewAll) {
		self := actor.UserID
		filter.AssignedTo = &self
	}

	customers, total, err := s.uow.Stores().Customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UpdateCustomer applies a partial update with a phone uniqueness check.
func (s *CustomerService) UpdateCustomer(ctx context.Context, actor Actor, id uuid.UUID, req UpdateCustomerRequest) (*CustomerDTO, error) {
	var updated *customerDomain.Customer
	err := s.uow.Within(ctx, func(st Stores) error {
		c, err := st.Customers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureCanSeeCustomer(actor, c); err != nil {
			return err
		}
		if err := c.Update(req.FullName, req.Phone, req.Email, req.IDNumber); err != nil {
			return err
		}
		custID := c.ID()
		taken, err := st.Customers.ExistsByPhone(ctx, c.Phone(), &custID)
		if err != nil {
			return err
		}
		if taken {
			return domain.NewConflictError(fmt.Sprintf("Số điện thoại %s đã được đăng ký", c.Phone()))
		}
		if err := st.Customers.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toCustomerDTO(updated)
	return &dto, nil
}

func ensureCanSeeCustomer(actor Actor, c *customerDomain.Customer) error {
	if auth.Can(actor.Role, auth.PermCustomerViewAll) || c.IsAssignedTo(actor.UserID) {
		return nil
	}
	return domain.NewForbiddenError("Bạn không có quyền truy cập khách hàng này")
}
