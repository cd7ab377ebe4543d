package reviews

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/products"
	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/pkg/db"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

const uniqueReviewConstraint = "reviews_user_product_key"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages product reviews. Every write recomputes the affected
// product and vendor ratings in the same transaction.
type Service interface {
	Create(ctx context.Context, userID, productID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]ReviewDTO, types.PaginationMeta, error)
	Update(ctx context.Context, userID, reviewID uuid.UUID, req UpdateReviewRequest) (*ReviewDTO, error)
	Delete(ctx context.Context, userID uuid.UUID, role enums.Role, reviewID uuid.UUID) error
	Moderate(ctx context.Context, reviewID uuid.UUID, req ModerateRequest) (*ReviewDTO, error)
}

type ServiceParams struct {
	Reviews           *Repository
	Products          *products.Repository
	Aggregator        *Aggregator
	Tx                txRunner
	RequireModeration bool
}

type service struct {
	reviews           *Repository
	products          *products.Repository
	aggregator        *Aggregator
	tx                txRunner
	requireModeration bool
}

func NewService(params ServiceParams) (Service, error) {
	if params.Reviews == nil || params.Products == nil {
		return nil, fmt.Errorf("reviews and products repositories required")
	}
	if params.Aggregator == nil {
		return nil, fmt.Errorf("rating aggregator required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		reviews:           params.Reviews,
		products:          params.Products,
		aggregator:        params.Aggregator,
		tx:                params.Tx,
		requireModeration: params.RequireModeration,
	}, nil
}

func (s *service) Create(ctx context.Context, userID, productID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}

	status := enums.ReviewStatusApproved
	if s.requireModeration {
		status = enums.ReviewStatusPending
	}
	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Title:     trimmed(req.Title),
		Comment:   comment,
		Status:    status,
		IsActive:  true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.products.WithTx(tx).FindByID(ctx, productID)
		if err != nil {
			return repo.LookupError(err, "product not found", "load product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		review.VendorID = product.VendorID

		reviews := s.reviews.WithTx(tx)
		exists, err := reviews.ExistsForUser(ctx, userID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "you have already reviewed this product")
		}
		if err := reviews.Create(ctx, review); err != nil {
			if db.IsUniqueViolation(err, uniqueReviewConstraint) || db.IsUniqueViolation(err, "reviews.user_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "you have already reviewed this product")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}
		return s.recompute(ctx, tx, review)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, review.ID)
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]ReviewDTO, types.PaginationMeta, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, types.PaginationMeta{}, repo.LookupError(err, "product not found", "load product")
	}
	rows, total, err := s.reviews.ListVisible(ctx, productID, params)
	if err != nil {
		return nil, types.PaginationMeta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, pagination.Meta(params, total), nil
}

// Update is limited to the review author.
func (s *service) Update(ctx context.Context, userID, reviewID uuid.UUID, req UpdateReviewRequest) (*ReviewDTO, error) {
	if req.Rating != nil {
		if err := validateRating(*req.Rating); err != nil {
			return nil, err
		}
	}
	if req.Comment != nil && strings.TrimSpace(*req.Comment) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment cannot be empty")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reviews := s.reviews.WithTx(tx)
		review, err := reviews.FindByID(ctx, reviewID)
		if err != nil {
			return repo.LookupError(err, "review not found", "load review")
		}
		if review.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the author can edit this review")
		}
		if req.Rating != nil {
			review.Rating = *req.Rating
		}
		if req.Title != nil {
			review.Title = trimmed(req.Title)
		}
		if req.Comment != nil {
			review.Comment = strings.TrimSpace(*req.Comment)
		}
		review.UpdatedAt = time.Now().UTC()
		if err := reviews.SaveContent(ctx, review); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
		}
		return s.recompute(ctx, tx, review)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, reviewID)
}

// Delete is allowed for the author and for admins.
func (s *service) Delete(ctx context.Context, userID uuid.UUID, role enums.Role, reviewID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reviews := s.reviews.WithTx(tx)
		review, err := reviews.FindByID(ctx, reviewID)
		if err != nil {
			return repo.LookupError(err, "review not found", "load review")
		}
		if review.UserID != userID && role != enums.RoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the author or an admin can delete this review")
		}
		if err := reviews.Delete(ctx, reviewID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
		}
		return s.recompute(ctx, tx, review)
	})
}

func (s *service) Moderate(ctx context.Context, reviewID uuid.UUID, req ModerateRequest) (*ReviewDTO, error) {
	status, err := enums.ParseReviewStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil || status == enums.ReviewStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved or rejected")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reviews := s.reviews.WithTx(tx)
		review, err := reviews.FindByID(ctx, reviewID)
		if err != nil {
			return repo.LookupError(err, "review not found", "load review")
		}
		if err := reviews.SetStatus(ctx, reviewID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review status")
		}
		return s.recompute(ctx, tx, review)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, reviewID)
}

func (s *service) recompute(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	if err := s.aggregator.Recompute(ctx, tx, review.ProductID, review.VendorID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute ratings")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*ReviewDTO, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, repo.LookupError(err, "review not found", "load review")
	}
	dto := FromModel(review)
	return &dto, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
