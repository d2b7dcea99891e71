package types

import (
	"github.com/shopspring/decimal"
)

// RegisterRequest represents the request body for account creation
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=5"`
	Name     string `json:"name"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateMeRequest represents a partial update of the authenticated user
type UpdateMeRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password" binding:"omitempty,min=5"`
}

// CreateRecipeRequest represents the request body for creating a recipe and
// for full (PUT) updates. Owner is never part of the payload; it always
// comes from the authenticated caller.
//
// TimeMinutes and Price are pointers so that binding can distinguish a
// missing field from a legitimate zero value.
type CreateRecipeRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	TimeMinutes *int             `json:"time_minutes" binding:"required,gte=0"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Link        string           `json:"link"`
	Tags        *[]string        `json:"tags"`
	Ingredients *[]string        `json:"ingredients"`
}

// FullUpdate converts a full-replace payload into the shared update form
// with every scalar field set, so PUT overwrites optional fields with
// their defaults when they are omitted.
func (r *CreateRecipeRequest) FullUpdate() *UpdateRecipeRequest {
	return &UpdateRecipeRequest{
		Title:       &r.Title,
		Description: &r.Description,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        &r.Link,
		Tags:        r.Tags,
		Ingredients: r.Ingredients,
	}
}

// UpdateRecipeRequest represents a partial (PATCH) update. Nil fields are
// left untouched; a non-nil empty Tags/Ingredients slice clears the
// relation set.
type UpdateRecipeRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	TimeMinutes *int             `json:"time_minutes" binding:"omitempty,gte=0"`
	Price       *decimal.Decimal `json:"price"`
	Link        *string          `json:"link"`
	Tags        *[]string        `json:"tags"`
	Ingredients *[]string        `json:"ingredients"`
}

// UpdateAttributeRequest renames a tag or ingredient
type UpdateAttributeRequest struct {
	Name string `json:"name" binding:"required"`
}

// RecipeSummary is the list shape: scalar fields only, no description and
// no relation sets.
type RecipeSummary struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
	Image       string          `json:"image"`
}
