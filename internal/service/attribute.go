package service

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/platewise/recipe-api/internal/models"
)

var ErrEmptyAttributeName = errors.New("tag and ingredient names must not be empty")

// AttributeService manages the per-user tag and ingredient registries.
// Entities are created lazily by the recipe write path; the HTTP surface
// only lists, renames and deletes them.
type AttributeService struct {
	db *gorm.DB
}

func NewAttributeService(db *gorm.DB) *AttributeService {
	return &AttributeService{db: db}
}

// resolveTags returns one Tag per distinct name, reusing the owner's
// existing row on an exact name match and creating the row otherwise.
// Repeated names within a batch resolve to the same entity. Runs on the
// caller's handle so it can take part in a surrounding transaction.
func resolveTags(tx *gorm.DB, userID uint, names []string) ([]models.Tag, error) {
	resolved := make([]models.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return nil, ErrEmptyAttributeName
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		var tag models.Tag
		err := tx.Where("user_id = ? AND name = ?", userID, name).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name, UserID: userID}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag)
			if res.Error != nil {
				return nil, res.Error
			}
			if res.RowsAffected == 0 {
				// Lost the lookup-or-create race: the unique index on
				// (user_id, name) swallowed the insert, so the rival's
				// row exists and is the one to bind.
				if err := tx.Where("user_id = ? AND name = ?", userID, name).First(&tag).Error; err != nil {
					return nil, err
				}
			}
		} else if err != nil {
			return nil, err
		}
		resolved = append(resolved, tag)
	}
	return resolved, nil
}

// resolveIngredients mirrors resolveTags for the ingredient namespace.
func resolveIngredients(tx *gorm.DB, userID uint, names []string) ([]models.Ingredient, error) {
	resolved := make([]models.Ingredient, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return nil, ErrEmptyAttributeName
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		var ing models.Ingredient
		err := tx.Where("user_id = ? AND name = ?", userID, name).First(&ing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ing = models.Ingredient{Name: name, UserID: userID}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ing)
			if res.Error != nil {
				return nil, res.Error
			}
			if res.RowsAffected == 0 {
				if err := tx.Where("user_id = ? AND name = ?", userID, name).First(&ing).Error; err != nil {
					return nil, err
				}
			}
		} else if err != nil {
			return nil, err
		}
		resolved = append(resolved, ing)
	}
	return resolved, nil
}

// ResolveOrCreateTag looks up the owner's tag by exact name, creating it if
// absent.
func (s *AttributeService) ResolveOrCreateTag(ctx context.Context, userID uint, name string) (*models.Tag, error) {
	tags, err := resolveTags(s.db.WithContext(ctx), userID, []string{name})
	if err != nil {
		return nil, err
	}
	return &tags[0], nil
}

// ResolveOrCreateIngredient looks up the owner's ingredient by exact name,
// creating it if absent.
func (s *AttributeService) ResolveOrCreateIngredient(ctx context.Context, userID uint, name string) (*models.Ingredient, error) {
	ings, err := resolveIngredients(s.db.WithContext(ctx), userID, []string{name})
	if err != nil {
		return nil, err
	}
	return &ings[0], nil
}

// ListTags returns the owner's tags, newest first. With assignedOnly set,
// only tags bound to at least one of the owner's recipes are returned; the
// IN-subquery keeps the result deduplicated.
func (s *AttributeService) ListTags(ctx context.Context, userID uint, assignedOnly bool) ([]models.Tag, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if assignedOnly {
		sub := s.db.Table("recipe_tags").
			Select("recipe_tags.tag_id").
			Joins("JOIN recipes ON recipes.id = recipe_tags.recipe_id").
			Where("recipes.user_id = ?", userID)
		query = query.Where("id IN (?)", sub)
	}

	var tags []models.Tag
	if err := query.Order("id DESC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ListIngredients mirrors ListTags for ingredients.
func (s *AttributeService) ListIngredients(ctx context.Context, userID uint, assignedOnly bool) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if assignedOnly {
		sub := s.db.Table("recipe_ingredients").
			Select("recipe_ingredients.ingredient_id").
			Joins("JOIN recipes ON recipes.id = recipe_ingredients.recipe_id").
			Where("recipes.user_id = ?", userID)
		query = query.Where("id IN (?)", sub)
	}

	var ingredients []models.Ingredient
	if err := query.Order("id DESC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// UpdateTag renames the owner's tag. A tag owned by someone else reports
// gorm.ErrRecordNotFound, same as a missing one.
func (s *AttributeService) UpdateTag(ctx context.Context, userID, id uint, name string) (*models.Tag, error) {
	if name == "" {
		return nil, ErrEmptyAttributeName
	}

	var tag models.Tag
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&tag, id).Error; err != nil {
		return nil, err
	}

	tag.Name = name
	if err := s.db.WithContext(ctx).Save(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// UpdateIngredient renames the owner's ingredient.
func (s *AttributeService) UpdateIngredient(ctx context.Context, userID, id uint, name string) (*models.Ingredient, error) {
	if name == "" {
		return nil, ErrEmptyAttributeName
	}

	var ing models.Ingredient
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&ing, id).Error; err != nil {
		return nil, err
	}

	ing.Name = name
	if err := s.db.WithContext(ctx).Save(&ing).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

// DeleteTag removes the owner's tag and any bindings to their recipes.
func (s *AttributeService) DeleteTag(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.Where("user_id = ?", userID).First(&tag, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

// DeleteIngredient removes the owner's ingredient and any bindings.
func (s *AttributeService) DeleteIngredient(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ing models.Ingredient
		if err := tx.Where("user_id = ?", userID).First(&ing, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_ingredients WHERE ingredient_id = ?", ing.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&ing).Error
	})
}
