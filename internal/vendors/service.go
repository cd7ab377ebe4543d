package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/pkg/db"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// UsersRepository is the slice of the users store the vendor flow needs.
type UsersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role enums.Role) error
}

// Service drives the vendor profile lifecycle.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateVendorRequest) (*VendorDTO, error)
	List(ctx context.Context, q ListQuery, params pagination.Params) ([]VendorDTO, types.PaginationMeta, error)
	Get(ctx context.Context, vendorID uuid.UUID) (*VendorDTO, error)
	Me(ctx context.Context, userID uuid.UUID) (*VendorDTO, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateVendorRequest) (*VendorDTO, error)
	Verify(ctx context.Context, adminID, vendorID uuid.UUID, req VerifyRequest) (*VendorDTO, error)
	SetStatus(ctx context.Context, vendorID uuid.UUID, status enums.VendorStatus) (*VendorDTO, error)
	// ActiveForUser returns the caller's vendor profile and requires it to be active.
	ActiveForUser(ctx context.Context, userID uuid.UUID) (*models.Vendor, error)
}

type service struct {
	repo      *Repository
	users     UsersRepository
	usersInTx func(tx *gorm.DB) UsersRepository
	tx        txRunner
	now       func() time.Time
}

// NewService wires the vendor service. usersInTx binds the users repository to
// the transaction that creates the profile so role promotion commits with it.
func NewService(repository *Repository, usersRepo UsersRepository, usersInTx func(tx *gorm.DB) UsersRepository, tx txRunner) (Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("vendors repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if usersInTx == nil {
		usersInTx = func(*gorm.DB) UsersRepository { return usersRepo }
	}
	return &service{repo: repository, users: usersRepo, usersInTx: usersInTx, tx: tx, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateVendorRequest) (*VendorDTO, error) {
	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "businessName is required")
	}
	address := req.Address.Normalize()
	if !address.IsComplete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address requires line1, city, state and postalCode")
	}
	if err := req.BusinessHours.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var created *models.Vendor
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		users := s.usersInTx(tx)
		vendors := s.repo.WithTx(tx)

		user, err := users.FindByID(ctx, userID)
		if err != nil {
			return repo.LookupError(err, "user not found", "load user")
		}
		if user.Role == enums.RoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot own a vendor profile")
		}
		exists, err := vendors.ExistsForUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vendor profile")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "vendor profile already exists")
		}

		vendor := &models.Vendor{
			UserID:        userID,
			BusinessName:  name,
			Description:   trimPtr(req.Description),
			Email:         strings.ToLower(strings.TrimSpace(req.Email)),
			Phone:         strings.TrimSpace(req.Phone),
			Address:       address,
			BusinessHours: req.BusinessHours,
			Categories:    normalizeCategories(req.Categories),
			Status:        enums.VendorStatusPending,
		}
		if err := vendors.Create(ctx, vendor); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "vendor profile already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor")
		}
		if user.Role != enums.RoleVendor {
			if err := users.SetRole(ctx, userID, enums.RoleVendor); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote user to vendor")
			}
		}
		created = vendor
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) List(ctx context.Context, q ListQuery, params pagination.Params) ([]VendorDTO, types.PaginationMeta, error) {
	rows, total, err := s.repo.List(ctx, params, q)
	if err != nil {
		return nil, types.PaginationMeta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors")
	}
	out := make([]VendorDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, pagination.Meta(params, total), nil
}

func (s *service) Get(ctx context.Context, vendorID uuid.UUID) (*VendorDTO, error) {
	vendor, err := s.repo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, repo.LookupError(err, "vendor not found", "load vendor")
	}
	count, err := s.repo.CountActiveProducts(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vendor products")
	}
	dto := FromModel(vendor)
	dto.ProductCount = &count
	return dto, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*VendorDTO, error) {
	vendor, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, repo.LookupError(err, "vendor profile not found", "load vendor")
	}
	return s.Get(ctx, vendor.ID)
}

func (s *service) UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateVendorRequest) (*VendorDTO, error) {
	vendor, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, repo.LookupError(err, "vendor profile not found", "load vendor")
	}
	expected := vendor.Version
	if req.Version != nil {
		if *req.Version != vendor.Version {
			return nil, versionConflict(vendor.Version)
		}
		expected = *req.Version
	}

	if req.BusinessName != nil {
		name := strings.TrimSpace(*req.BusinessName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "businessName cannot be empty")
		}
		vendor.BusinessName = name
	}
	if req.Description != nil {
		vendor.Description = trimPtr(req.Description)
	}
	if req.Email != nil {
		vendor.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		vendor.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		addr := req.Address.Normalize()
		if !addr.IsComplete() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "address requires line1, city, state and postalCode")
		}
		vendor.Address = addr
	}
	if req.BusinessHours != nil {
		if err := req.BusinessHours.Validate(); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		vendor.BusinessHours = *req.BusinessHours
	}
	if req.Categories != nil {
		vendor.Categories = normalizeCategories(*req.Categories)
	}

	ok, err := s.repo.UpdateProfile(ctx, vendor, expected)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor")
	}
	if !ok {
		return nil, versionConflict(expected)
	}
	return s.Get(ctx, vendor.ID)
}

// Verify records the admin decision. A positive decision on a pending vendor
// activates it; a rejection leaves the status untouched.
func (s *service) Verify(ctx context.Context, adminID, vendorID uuid.UUID, req VerifyRequest) (*VendorDTO, error) {
	vendor, err := s.repo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, repo.LookupError(err, "vendor not found", "load vendor")
	}
	now := s.now().UTC()
	columns := map[string]any{
		"is_verified":        req.IsVerified,
		"verified_by":        adminID,
		"verified_at":        now,
		"verification_notes": trimPtr(req.Notes),
	}
	if req.IsVerified && vendor.Status == enums.VendorStatusPending {
		columns["status"] = enums.VendorStatusActive
	}
	if err := s.repo.UpdateColumns(ctx, vendorID, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify vendor")
	}
	return s.Get(ctx, vendorID)
}

func (s *service) SetStatus(ctx context.Context, vendorID uuid.UUID, status enums.VendorStatus) (*VendorDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor status")
	}
	if _, err := s.repo.FindByID(ctx, vendorID); err != nil {
		return nil, repo.LookupError(err, "vendor not found", "load vendor")
	}
	if err := s.repo.UpdateColumns(ctx, vendorID, map[string]any{"status": status}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor status")
	}
	return s.Get(ctx, vendorID)
}

func (s *service) ActiveForUser(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	if vendor.Status != enums.VendorStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile is not active")
	}
	return vendor, nil
}

func versionConflict(current int) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "vendor profile was modified concurrently").
		WithDetails(map[string]any{"currentVersion": current})
}
