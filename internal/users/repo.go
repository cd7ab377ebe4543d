package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
)

// Repository exposes user, address book and wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Role enums.Role
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminExists reports whether any user currently holds the admin role.
func (r *Repository) AdminExists(ctx context.Context) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", enums.RoleAdmin).Count(&n).Error
	return n > 0, err
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateProfile applies the non-nil profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *Repository) SetRole(ctx context.Context, id uuid.UUID, role enums.Role) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role).Error
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", active).Error
}

// List returns a newest-first page of users and the total matching count.
func (r *Repository) List(ctx context.Context, params pagination.Params, filter ListFilter) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := params.Normalize()
	var rows []models.User
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&rows).Error
	return rows, total, err
}

// CountByRole groups users by role.
func (r *Repository) CountByRole(ctx context.Context) (map[enums.Role]int64, error) {
	var rows []struct {
		Role  enums.Role
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.Role]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}

func (r *Repository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	var rows []models.UserAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CountAddresses(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UserAddress{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *Repository) CreateAddress(ctx context.Context, addr *models.UserAddress) error {
	return r.db.WithContext(ctx).Create(addr).Error
}

// ClearDefaultAddress unsets the default flag on every address of the user.
func (r *Repository) ClearDefaultAddress(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.UserAddress{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

// DeleteAddress removes one address owned by the user and reports whether a row went away.
func (r *Repository) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).Delete(&models.UserAddress{})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var rows []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// AddWishlist inserts the pair once; repeats are ignored.
func (r *Repository) AddWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}}, DoNothing: true}).
		Create(&item).Error
}

func (r *Repository) RemoveWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
}

// ProductExists reports whether the product row is present, active or not.
func (r *Repository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).Count(&n).Error
	return n > 0, err
}
