package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/expresskart/expresskart-backend/internal/orders"
	"github.com/expresskart/expresskart-backend/internal/products"
	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/internal/users"
	"github.com/expresskart/expresskart-backend/internal/vendors"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

// Service backs the admin moderation endpoints.
type Service interface {
	Stats(ctx context.Context) (*StatsDTO, error)
	ListUsers(ctx context.Context, role string, params pagination.Params) ([]users.UserDTO, types.PaginationMeta, error)
	SetUserStatus(ctx context.Context, adminID, userID uuid.UUID, req UserStatusRequest) (*users.UserDTO, error)
	ListVendors(ctx context.Context, status string, params pagination.Params) ([]vendors.VendorDTO, types.PaginationMeta, error)
}

type ServiceParams struct {
	Users    *users.Repository
	Vendors  *vendors.Repository
	Products *products.Repository
	Orders   orders.Repository
	Vendor   vendors.Service
}

type service struct {
	users    *users.Repository
	vendors  *vendors.Repository
	products *products.Repository
	orders   orders.Repository
	vendor   vendors.Service
}

func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil || params.Vendors == nil || params.Products == nil || params.Orders == nil {
		return nil, fmt.Errorf("admin repositories required")
	}
	if params.Vendor == nil {
		return nil, fmt.Errorf("vendors service required")
	}
	return &service{
		users:    params.Users,
		vendors:  params.Vendors,
		products: params.Products,
		orders:   params.Orders,
		vendor:   params.Vendor,
	}, nil
}

func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	byVendorStatus, err := s.vendors.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vendors")
	}
	activeProducts, err := s.products.CountActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	byOrderStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	revenue, err := s.orders.DeliveredRevenue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	return &StatsDTO{
		Users:    UserStats{Total: sum(byRole), ByRole: byRole},
		Vendors:  VendorStats{Total: sum(byVendorStatus), ByStatus: byVendorStatus},
		Products: ProductStats{Active: activeProducts},
		Orders:   OrderStats{Total: sum(byOrderStatus), ByStatus: byOrderStatus},
		Revenue:  revenue,
	}, nil
}

func (s *service) ListUsers(ctx context.Context, role string, params pagination.Params) ([]users.UserDTO, types.PaginationMeta, error) {
	filter := users.ListFilter{}
	if role = strings.TrimSpace(role); role != "" {
		parsed, err := enums.ParseRole(strings.ToLower(role))
		if err != nil {
			return nil, types.PaginationMeta{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
		}
		filter.Role = parsed
	}
	rows, total, err := s.users.List(ctx, params, filter)
	if err != nil {
		return nil, types.PaginationMeta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]users.UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *users.FromModel(&rows[i]))
	}
	return out, pagination.Meta(params, total), nil
}

// SetUserStatus activates or deactivates an account. Admins cannot
// deactivate themselves.
func (s *service) SetUserStatus(ctx context.Context, adminID, userID uuid.UUID, req UserStatusRequest) (*users.UserDTO, error) {
	if req.IsActive == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "isActive is required")
	}
	if adminID == userID && !*req.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "admins cannot deactivate their own account")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, repo.LookupError(err, "user not found", "load user")
	}
	if err := s.users.SetActive(ctx, userID, *req.IsActive); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user status")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, repo.LookupError(err, "user not found", "load user")
	}
	return users.FromModel(user), nil
}

// ListVendors includes every status unless status narrows it.
func (s *service) ListVendors(ctx context.Context, status string, params pagination.Params) ([]vendors.VendorDTO, types.PaginationMeta, error) {
	q := vendors.ListQuery{}
	if status = strings.TrimSpace(status); status != "" {
		parsed, err := enums.ParseVendorStatus(strings.ToLower(status))
		if err != nil {
			return nil, types.PaginationMeta{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		q.Status = parsed
	}
	return s.vendor.List(ctx, q, params)
}

func sum[K comparable](counts map[K]int64) int64 {
	var total int64
	for _, n := range counts {
		total += n
	}
	return total
}
