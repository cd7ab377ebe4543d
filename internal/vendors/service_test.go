package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/users"
	"github.com/expresskart/expresskart-backend/pkg/db"
	"github.com/expresskart/expresskart-backend/pkg/db/dbtest"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	usersRepo := users.NewRepository(conn)
	svc, err := NewService(
		NewRepository(conn),
		usersRepo,
		func(tx *gorm.DB) UsersRepository { return usersRepo.WithTx(tx) },
		db.FromGorm(conn),
	)
	require.NoError(t, err)
	return svc, conn
}

func createRequest() CreateVendorRequest {
	return CreateVendorRequest{
		BusinessName: "  Fresh Mart ",
		Email:        "Owner@FreshMart.test",
		Phone:        "9876543210",
		Address:      types.Address{Line1: "4 Station Rd", City: "Pune", State: "MH", PostalCode: "411001"},
		Categories:   []string{"Grocery", "grocery ", "Dairy"},
	}
}

func TestCreatePromotesUserAndStartsPending(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, conn, enums.RoleUser)

	dto, err := svc.Create(ctx, user.ID, createRequest())
	require.NoError(t, err)
	require.Equal(t, "Fresh Mart", dto.BusinessName)
	require.Equal(t, "owner@freshmart.test", dto.Email)
	require.Equal(t, enums.VendorStatusPending, dto.Status)
	require.False(t, dto.Verification.IsVerified)
	require.Equal(t, []string{"grocery", "dairy"}, dto.Categories)
	require.Equal(t, "India", dto.Address.Country)

	var stored models.User
	require.NoError(t, conn.First(&stored, "id = ?", user.ID).Error)
	require.Equal(t, enums.RoleVendor, stored.Role)

	_, err = svc.Create(ctx, user.ID, createRequest())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestCreateRejectsAdminAndIncompleteAddress(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := dbtest.SeedUser(t, conn, enums.RoleAdmin)
	_, err := svc.Create(ctx, admin.ID, createRequest())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	user := dbtest.SeedUser(t, conn, enums.RoleUser)
	req := createRequest()
	req.Address.City = " "
	_, err = svc.Create(ctx, user.ID, req)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var stored models.User
	require.NoError(t, conn.First(&stored, "id = ?", user.ID).Error)
	require.Equal(t, enums.RoleUser, stored.Role, "failed create must not promote")
}

func TestVerifyActivatesPendingVendor(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	admin := dbtest.SeedUser(t, conn, enums.RoleAdmin)
	vendor := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusPending)

	notes := "documents checked"
	dto, err := svc.Verify(ctx, admin.ID, vendor.ID, VerifyRequest{IsVerified: true, Notes: &notes})
	require.NoError(t, err)
	require.Equal(t, enums.VendorStatusActive, dto.Status)
	require.True(t, dto.Verification.IsVerified)
	require.Equal(t, admin.ID, *dto.Verification.VerifiedBy)
	require.Equal(t, 2, dto.Version)

	other := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusPending)
	dto, err = svc.Verify(ctx, admin.ID, other.ID, VerifyRequest{IsVerified: false})
	require.NoError(t, err)
	require.Equal(t, enums.VendorStatusPending, dto.Status)
	require.False(t, dto.Verification.IsVerified)

	_, err = svc.Verify(ctx, admin.ID, uuid.New(), VerifyRequest{IsVerified: true})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateMeChecksVersion(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)

	name := "Renamed Store"
	v1 := 1
	dto, err := svc.UpdateMe(ctx, vendor.UserID, UpdateVendorRequest{BusinessName: &name, Version: &v1})
	require.NoError(t, err)
	require.Equal(t, "Renamed Store", dto.BusinessName)
	require.Equal(t, 2, dto.Version)
	require.Equal(t, vendor.Address.City, dto.Address.City)

	stale := "Stale Write"
	_, err = svc.UpdateMe(ctx, vendor.UserID, UpdateVendorRequest{BusinessName: &stale, Version: &v1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.UpdateMe(ctx, uuid.New(), UpdateVendorRequest{BusinessName: &name})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetDerivesProductCount(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)
	dbtest.SeedProduct(t, conn, vendor.ID, "10")
	hidden := dbtest.SeedProduct(t, conn, vendor.ID, "20")
	require.NoError(t, conn.Model(hidden).Update("is_active", false).Error)

	dto, err := svc.Get(ctx, vendor.ID)
	require.NoError(t, err)
	require.NotNil(t, dto.ProductCount)
	require.EqualValues(t, 1, *dto.ProductCount)
}

func TestListFiltersByStatusCityAndSearch(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	active := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)
	dbtest.SeedVendor(t, conn, nil, enums.VendorStatusPending)

	rows, meta, err := svc.List(ctx, ListQuery{Status: enums.VendorStatusActive, City: "pune"}, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, active.ID, rows[0].ID)
	require.EqualValues(t, 1, meta.TotalItems)

	rows, _, err = svc.List(ctx, ListQuery{City: "mumbai"}, pagination.Params{})
	require.NoError(t, err)
	require.Empty(t, rows)

	rows, _, err = svc.List(ctx, ListQuery{Search: active.BusinessName[5:]}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestSetStatusAndActiveForUser(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)

	got, err := svc.ActiveForUser(ctx, vendor.UserID)
	require.NoError(t, err)
	require.Equal(t, vendor.ID, got.ID)

	dto, err := svc.SetStatus(ctx, vendor.ID, enums.VendorStatusSuspended)
	require.NoError(t, err)
	require.Equal(t, enums.VendorStatusSuspended, dto.Status)

	_, err = svc.ActiveForUser(ctx, vendor.UserID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.SetStatus(ctx, vendor.ID, enums.VendorStatus("closed"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.ActiveForUser(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}
