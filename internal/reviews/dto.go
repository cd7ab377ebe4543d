package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
)

type CreateReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Title   *string `json:"title" validate:"omitempty,max=120"`
	Comment string  `json:"comment" validate:"required,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title   *string `json:"title" validate:"omitempty,max=120"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

type ModerateRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type AuthorDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ReviewDTO struct {
	ID        uuid.UUID          `json:"id"`
	ProductID uuid.UUID          `json:"productId"`
	VendorID  uuid.UUID          `json:"vendorId"`
	Author    AuthorDTO          `json:"author"`
	Rating    int                `json:"rating"`
	Title     *string            `json:"title,omitempty"`
	Comment   string             `json:"comment"`
	Status    enums.ReviewStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func FromModel(r *models.Review) ReviewDTO {
	dto := ReviewDTO{
		ID:        r.ID,
		ProductID: r.ProductID,
		VendorID:  r.VendorID,
		Author:    AuthorDTO{ID: r.UserID},
		Rating:    r.Rating,
		Title:     r.Title,
		Comment:   r.Comment,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.User != nil {
		dto.Author.Name = r.User.Name
	}
	return dto
}
