package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/platewise/recipe-api/internal/models"
	"github.com/platewise/recipe-api/internal/types"
)

var (
	ErrNegativePrice      = errors.New("price must not be negative")
	ErrMissingRecipeField = errors.New("time_minutes and price are required")
)

// RecipeService handles owner-scoped recipe operations. Every lookup
// filters on the requesting user; a recipe owned by someone else is
// indistinguishable from a missing one (gorm.ErrRecordNotFound).
type RecipeService struct {
	db    *gorm.DB
	store FileStore
}

func NewRecipeService(db *gorm.DB, store FileStore) *RecipeService {
	return &RecipeService{
		db:    db,
		store: store,
	}
}

// List returns the caller's recipes, newest first. Relation sets are not
// loaded; the list shape only carries scalar fields.
func (s *RecipeService) List(ctx context.Context, userID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// Get returns one of the caller's recipes with tags and ingredients loaded.
func (s *RecipeService) Get(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients").
		Where("user_id = ?", userID).
		First(&recipe, id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Create stores a new recipe owned by the caller. Supplied tag and
// ingredient names are resolved against the owner's registry and bound;
// the whole write happens in one transaction.
func (s *RecipeService) Create(ctx context.Context, userID uint, in *types.CreateRecipeRequest) (*models.Recipe, error) {
	// Binding enforces these on the HTTP path; direct callers get a
	// validation error rather than a nil dereference.
	if in.TimeMinutes == nil || in.Price == nil {
		return nil, ErrMissingRecipeField
	}
	if in.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	recipe := models.Recipe{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		TimeMinutes: *in.TimeMinutes,
		Price:       *in.Price,
		Link:        in.Link,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if in.Tags != nil {
			tags, err := resolveTags(tx, userID, *in.Tags)
			if err != nil {
				return err
			}
			if len(tags) > 0 {
				if err := tx.Model(&recipe).Association("Tags").Append(&tags); err != nil {
					return err
				}
			}
		}
		if in.Ingredients != nil {
			ings, err := resolveIngredients(tx, userID, *in.Ingredients)
			if err != nil {
				return err
			}
			if len(ings) > 0 {
				if err := tx.Model(&recipe).Association("Ingredients").Append(&ings); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, recipe.ID)
}

// Update applies a partial update: nil fields stay untouched, a non-nil
// empty Tags/Ingredients slice clears the relation set. Full (PUT) updates
// go through the same path with every scalar field set. The ownership
// check, scalar writes and relation rebind share one transaction.
func (s *RecipeService) Update(ctx context.Context, userID, id uint, in *types.UpdateRecipeRequest) (*models.Recipe, error) {
	if in.Price != nil && in.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		err := tx.Preload("Tags").Preload("Ingredients").
			Where("user_id = ?", userID).
			First(&recipe, id).Error
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.TimeMinutes != nil {
			updates["time_minutes"] = *in.TimeMinutes
		}
		if in.Price != nil {
			updates["price"] = *in.Price
		}
		if in.Link != nil {
			updates["link"] = *in.Link
		}
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return err
			}
		}

		if in.Tags != nil {
			target, err := resolveTags(tx, userID, *in.Tags)
			if err != nil {
				return err
			}
			if err := reconcileTags(tx, &recipe, target); err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			target, err := resolveIngredients(tx, userID, *in.Ingredients)
			if err != nil {
				return err
			}
			if err := reconcileIngredients(tx, &recipe, target); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, id)
}

// reconcileTags swaps the recipe's bound tag set for the target set with
// explicit bind/unbind operations: tags missing from the current set are
// appended, previously bound tags absent from the target are detached.
// The tag rows themselves are never deleted here.
func reconcileTags(tx *gorm.DB, recipe *models.Recipe, target []models.Tag) error {
	current := make(map[uint]models.Tag, len(recipe.Tags))
	for _, t := range recipe.Tags {
		current[t.ID] = t
	}

	want := make(map[uint]struct{}, len(target))
	var add []models.Tag
	for _, t := range target {
		want[t.ID] = struct{}{}
		if _, bound := current[t.ID]; !bound {
			add = append(add, t)
		}
	}

	var remove []models.Tag
	for id, t := range current {
		if _, keep := want[id]; !keep {
			remove = append(remove, t)
		}
	}

	assoc := tx.Model(recipe).Association("Tags")
	if len(add) > 0 {
		if err := assoc.Append(&add); err != nil {
			return err
		}
	}
	if len(remove) > 0 {
		if err := assoc.Delete(&remove); err != nil {
			return err
		}
	}
	return nil
}

// reconcileIngredients mirrors reconcileTags for ingredients.
func reconcileIngredients(tx *gorm.DB, recipe *models.Recipe, target []models.Ingredient) error {
	current := make(map[uint]models.Ingredient, len(recipe.Ingredients))
	for _, i := range recipe.Ingredients {
		current[i.ID] = i
	}

	want := make(map[uint]struct{}, len(target))
	var add []models.Ingredient
	for _, i := range target {
		want[i.ID] = struct{}{}
		if _, bound := current[i.ID]; !bound {
			add = append(add, i)
		}
	}

	var remove []models.Ingredient
	for id, i := range current {
		if _, keep := want[id]; !keep {
			remove = append(remove, i)
		}
	}

	assoc := tx.Model(recipe).Association("Ingredients")
	if len(add) > 0 {
		if err := assoc.Append(&add); err != nil {
			return err
		}
	}
	if len(remove) > 0 {
		if err := assoc.Delete(&remove); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes one of the caller's recipes together with its join rows
// and, if present, the stored image file. File removal is explicit
// cleanup, not a storage cascade.
func (s *RecipeService) Delete(ctx context.Context, userID, id uint) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&recipe, id).Error; err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipe.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_ingredients WHERE recipe_id = ?", recipe.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return err
	}

	if recipe.ImagePath != "" {
		// The row is already gone; an orphaned file must not turn a
		// committed delete into an error.
		if err := s.store.Delete(ctx, recipe.ImagePath); err != nil {
			log.Printf("failed to remove image %s for deleted recipe %d: %v", recipe.ImagePath, recipe.ID, err)
		}
	}
	return nil
}

// UploadImage validates and stores an image attachment for one of the
// caller's recipes. A non-image payload is rejected before anything is
// written, leaving a previously stored image untouched. Replacing an image
// discards the old file after the new one is saved and recorded.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id uint, filename string, data []byte) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&recipe, id).Error; err != nil {
		return nil, err
	}

	mime, err := DetectImage(data)
	if err != nil {
		return nil, err
	}

	key := RecipeImageKey(filename, mime)
	if err := s.store.Save(ctx, key, data, mime.String()); err != nil {
		return nil, err
	}

	previous := recipe.ImagePath
	recipe.ImagePath = key
	if err := s.db.WithContext(ctx).Model(&recipe).Update("image_path", key).Error; err != nil {
		return nil, err
	}

	if previous != "" && previous != key {
		if err := s.store.Delete(ctx, previous); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, userID, recipe.ID)
}
