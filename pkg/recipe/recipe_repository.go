package recipe

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"Pantry-Service/domain"
	"Pantry-Service/entities"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		GetRecipeByID(ctx context.Context, userID, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, userID string, page, limit int) ([]*entities.Recipe, int64, error)
		MarkRecipeCooked(ctx context.Context, userID, id string, at time.Time) (int, error)
		DeleteRecipe(ctx context.Context, userID, id string) error
		AddRecipeHistory(ctx context.Context, history *entities.RecipeHistory) error
		GetRecipeHistory(ctx context.Context, userID string, page, limit int) ([]*entities.RecipeHistory, int64, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, userID, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, userID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).Model(&entities.Recipe{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

// MarkRecipeCooked increments times_cooked in place and returns the new
// count. The read happens in the same transaction, while the row is locked.
func (r *recipeRepository) MarkRecipeCooked(ctx context.Context, userID, id string, at time.Time) (int, error) {
	var timesCooked []int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Recipe{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(map[string]interface{}{
				"times_cooked":   gorm.Expr("times_cooked + ?", 1),
				"last_cooked_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrRecipeNotFound
		}

		return tx.Model(&entities.Recipe{}).
			Where("id = ? AND user_id = ?", id, userID).
			Pluck("times_cooked", &timesCooked).Error
	})
	if err != nil {
		return 0, err
	}
	if len(timesCooked) == 0 {
		return 0, domain.ErrRecipeNotFound
	}
	return timesCooked[0], nil
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrRecipeNotFound
		}
		return tx.Where("recipe_id = ?", id).Delete(&entities.RecipeHistory{}).Error
	})
}

func (r *recipeRepository) AddRecipeHistory(ctx context.Context, history *entities.RecipeHistory) error {
	if history.ID == uuid.Nil {
		history.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *recipeRepository) GetRecipeHistory(ctx context.Context, userID string, page, limit int) ([]*entities.RecipeHistory, int64, error) {
	var history []*entities.RecipeHistory
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).Model(&entities.RecipeHistory{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Preload("Recipe").
		Where("user_id = ?", userID).
		Order("cooked_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&history).Error; err != nil {
		return nil, 0, err
	}

	return history, count, nil
}
