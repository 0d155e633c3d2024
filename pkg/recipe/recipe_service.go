package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"Pantry-Service/domain"
	"Pantry-Service/entities"
	"Pantry-Service/pkg/inference"
	"Pantry-Service/pkg/matcher"
)

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeDetail, error)
		GetRecipeDetail(ctx context.Context, recipeID string, userID string) (domain.RecipeDetail, error)
		GetRecipes(ctx context.Context, page, limit int, userID string) ([]domain.Recipe, int64, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		GetRecipeRecommendations(ctx context.Context, req domain.RecipeRecommendationRequest, userID string) (domain.RecipeRecommendationResponse, error)
		CheckInventory(ctx context.Context, req domain.CheckInventoryRequest, userID string) (domain.CheckInventoryResponse, error)
		EmailShoppingList(ctx context.Context, req domain.EmailShoppingListRequest, userID string) error
		MarkAsCooked(ctx context.Context, recipeID string, req domain.MarkAsCookedRequest, userID string) (domain.MarkAsCookedResponse, error)
		GetRecipeHistory(ctx context.Context, page, limit int, userID string) (domain.RecipeHistoryResponse, error)
	}

	// Suggester produces recipe ideas for a set of pantry items.
	Suggester interface {
		SuggestRecipes(ctx context.Context, items []inference.PantryItem, prefs inference.Preferences) ([]domain.GeneratedRecipe, error)
	}

	Mailer interface {
		SendMail(toEmail string, subject string, body string) error
	}

	recipeService struct {
		recipeRepository RecipeRepository
		stock            StockStore
		deductor         *Deductor
		suggester        Suggester
		mailer           Mailer
		now              func() time.Time
		logger           *zap.Logger
	}
)

func NewRecipeService(recipeRepository RecipeRepository, stock StockStore, suggester Suggester, mailer Mailer, logger *zap.Logger) RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &recipeService{
		recipeRepository: recipeRepository,
		stock:            stock,
		deductor:         NewDeductor(stock, logger.Named("deductor")),
		suggester:        suggester,
		mailer:           mailer,
		now:              time.Now,
		logger:           logger,
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeDetail, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeDetail{}, domain.ErrParseUUID
	}

	recipe, err := newRecipeEntity(userUUID, domain.GeneratedRecipe{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		PrepTimeMinutes: req.PrepTimeMinutes,
		CookTimeMinutes: req.CookTimeMinutes,
		Servings:        req.Servings,
		DifficultyLevel: req.DifficultyLevel,
		CuisineType:     req.CuisineType,
		Ingredients:     req.Ingredients,
		Instructions:    req.Instructions,
	}, false)
	if err != nil {
		return domain.RecipeDetail{}, err
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe); err != nil {
		return domain.RecipeDetail{}, err
	}

	return toDetail(recipe)
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, userID string) (domain.RecipeDetail, error) {
	recipe, err := s.getOwned(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	return toDetail(recipe)
}

func (s *recipeService) GetRecipes(ctx context.Context, page, limit int, userID string) ([]domain.Recipe, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.Recipe, 0, len(recipes))
	for _, recipe := range recipes {
		response = append(response, toRecipe(recipe))
	}
	return response, count, nil
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	if _, err := uuid.Parse(recipeID); err != nil {
		return domain.ErrParseUUID
	}
	return s.recipeRepository.DeleteRecipe(ctx, userID, recipeID)
}

func (s *recipeService) GetRecipeRecommendations(ctx context.Context, req domain.RecipeRecommendationRequest, userID string) (domain.RecipeRecommendationResponse, error) {
	empty := domain.RecipeRecommendationResponse{Recipes: []domain.Recipe{}}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return empty, domain.ErrParseUUID
	}

	stock, err := s.stock.GetActiveStockItems(ctx, userID)
	if err != nil {
		return empty, err
	}

	today := domain.CalendarDay(s.now())
	soon := today.AddDate(0, 0, domain.ExpiringSoonDays)

	items := make([]inference.PantryItem, 0, len(stock))
	expiring := 0
	for _, item := range stock {
		if item.Quantity <= 0 {
			continue
		}

		pantryItem := inference.PantryItem{Name: item.Name, Quantity: item.Quantity, Unit: item.Unit}
		isExpiring := false
		if item.ExpiryDate != nil {
			expiry := domain.CalendarDay(*item.ExpiryDate)
			days := int(expiry.Sub(today).Hours() / 24)
			pantryItem.ExpiryDate = expiry.Format(domain.DateLayout)
			pantryItem.DaysUntilExpiry = &days
			isExpiring = !expiry.Before(today) && !expiry.After(soon)
		}
		if isExpiring {
			expiring++
		}
		if req.IncludeExpiringOnly && !isExpiring {
			continue
		}
		items = append(items, pantryItem)
	}

	if len(items) == 0 {
		return empty, domain.ErrNoIngredients
	}
	if s.suggester == nil {
		return empty, domain.ErrInferenceNotConfigured
	}

	generated, err := s.suggester.SuggestRecipes(ctx, items, inference.Preferences{
		CuisineType:     req.CuisineType,
		DifficultyLevel: req.DifficultyLevel,
		MaxPrepMinutes:  req.PreparationTime,
	})
	if err != nil {
		s.logger.Error("recipe suggestion failed", zap.String("user_id", userID), zap.Error(err))
		return empty, fmt.Errorf("%w: %v", domain.ErrGeminiAPIFailed, err)
	}

	recipes := make([]domain.Recipe, 0, len(generated))
	for _, g := range generated {
		recipe, err := newRecipeEntity(userUUID, g, true)
		if err != nil {
			s.logger.Warn("skipping generated recipe", zap.String("title", g.Title), zap.Error(err))
			continue
		}
		if err := s.recipeRepository.CreateRecipe(ctx, recipe); err != nil {
			return empty, err
		}
		recipes = append(recipes, toRecipe(recipe))
	}

	return domain.RecipeRecommendationResponse{
		Recipes:       recipes,
		TotalRecipes:  len(recipes),
		ExpiringItems: expiring,
	}, nil
}

func (s *recipeService) CheckInventory(ctx context.Context, req domain.CheckInventoryRequest, userID string) (domain.CheckInventoryResponse, error) {
	if len(req.Recipes) == 0 {
		return domain.CheckInventoryResponse{}, fmt.Errorf("%w: recipes must not be empty", domain.ErrValidation)
	}

	recipes := make([]*entities.Recipe, 0, len(req.Recipes))
	demands := make([]Demand, 0, len(req.Recipes))
	for _, rs := range req.Recipes {
		if rs.Servings < 0 {
			return domain.CheckInventoryResponse{}, domain.ErrInvalidServings
		}
		recipe, err := s.getOwned(ctx, rs.RecipeID, userID)
		if err != nil {
			return domain.CheckInventoryResponse{}, err
		}
		ingredients, err := ingredientsOf(recipe)
		if err != nil {
			return domain.CheckInventoryResponse{}, err
		}
		recipes = append(recipes, recipe)
		demands = append(demands, Demand{
			Ingredients: ingredients,
			Ratio:       ServingsRatio(rs.Servings, float64(recipe.Servings)),
		})
	}

	results, err := s.deductor.Check(ctx, userID, demands)
	if err != nil {
		return domain.CheckInventoryResponse{}, err
	}

	response := domain.CheckInventoryResponse{
		Recipes:        make([]domain.RecipeAvailability, 0, len(recipes)),
		TotalShortages: []domain.Shortage{},
	}
	totals := make(map[string]int)
	sums := make([]decimal.Decimal, 0)

	for i, recipe := range recipes {
		availability := domain.RecipeAvailability{
			RecipeID:    recipe.ID.String(),
			RecipeName:  recipe.Title,
			Ingredients: make([]domain.IngredientStatus, 0, len(results[i])),
		}

		for _, out := range results[i] {
			availability.Ingredients = append(availability.Ingredients, toIngredientStatus(out))

			if !out.Shortage.IsPositive() {
				continue
			}
			key := matcher.NormalizeName(out.Name)
			idx, seen := totals[key]
			if !seen {
				idx = len(sums)
				totals[key] = idx
				sums = append(sums, decimal.Zero)
				response.TotalShortages = append(response.TotalShortages, domain.Shortage{Name: out.Name, Unit: out.Unit})
			}
			sums[idx] = sums[idx].Add(out.Shortage)
		}

		response.Recipes = append(response.Recipes, availability)
	}

	for i := range response.TotalShortages {
		response.TotalShortages[i].Quantity = round1(sums[i])
	}
	response.HasShortages = len(response.TotalShortages) > 0

	return response, nil
}

func (s *recipeService) EmailShoppingList(ctx context.Context, req domain.EmailShoppingListRequest, userID string) error {
	if s.mailer == nil {
		return domain.ErrMailerUnavailable
	}

	check, err := s.CheckInventory(ctx, req.CheckInventoryRequest, userID)
	if err != nil {
		return err
	}
	if !check.HasShortages {
		return domain.ErrNoShortages
	}

	body, err := renderShoppingList(check)
	if err != nil {
		return err
	}

	if err := s.mailer.SendMail(req.Email, shoppingListSubject, body); err != nil {
		s.logger.Error("failed to send shopping list", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *recipeService) MarkAsCooked(ctx context.Context, recipeID string, req domain.MarkAsCookedRequest, userID string) (domain.MarkAsCookedResponse, error) {
	if req.ServingsCooked < 0 {
		return domain.MarkAsCookedResponse{}, domain.ErrInvalidServings
	}

	recipe, err := s.getOwned(ctx, recipeID, userID)
	if err != nil {
		return domain.MarkAsCookedResponse{}, err
	}

	servings := req.ServingsCooked
	if servings == 0 {
		servings = float64(recipe.Servings)
	}

	ingredients, err := ingredientsOf(recipe)
	if err != nil {
		return domain.MarkAsCookedResponse{}, err
	}

	res, err := s.deductor.Commit(ctx, userID, Demand{
		Ingredients: ingredients,
		Ratio:       ServingsRatio(req.ServingsCooked, float64(recipe.Servings)),
	})
	if err != nil {
		return domain.MarkAsCookedResponse{}, err
	}

	now := s.now()
	timesCooked, err := s.recipeRepository.MarkRecipeCooked(ctx, userID, recipe.ID.String(), now)
	if err != nil {
		s.logger.Error("failed to update cooking counters",
			zap.String("recipe_id", recipeID),
			zap.Strings("deducted", res.Deducted),
			zap.Error(err),
		)
		return domain.MarkAsCookedResponse{}, err
	}

	history := &entities.RecipeHistory{
		UserID:         recipe.UserID,
		RecipeID:       recipe.ID,
		ServingsCooked: servings,
		DeductedCount:  len(res.Deducted),
		MissingCount:   len(res.NotFound),
		CookedAt:       now,
	}
	if err := s.recipeRepository.AddRecipeHistory(ctx, history); err != nil {
		s.logger.Warn("failed to record cooking history", zap.String("recipe_id", recipeID), zap.Error(err))
	}

	return domain.MarkAsCookedResponse{
		TimesCooked: timesCooked,
		InventoryUpdated: domain.InventoryUpdate{
			Deducted: res.Deducted,
			NotFound: res.NotFound,
		},
		Errors: res.Errors,
	}, nil
}

func (s *recipeService) GetRecipeHistory(ctx context.Context, page, limit int, userID string) (domain.RecipeHistoryResponse, error) {
	history, count, err := s.recipeRepository.GetRecipeHistory(ctx, userID, page, limit)
	if err != nil {
		return domain.RecipeHistoryResponse{}, err
	}

	entries := make([]domain.RecipeHistoryEntry, 0, len(history))
	for _, h := range history {
		entry := domain.RecipeHistoryEntry{
			RecipeID:       h.RecipeID.String(),
			ServingsCooked: h.ServingsCooked,
			DeductedCount:  h.DeductedCount,
			MissingCount:   h.MissingCount,
			CookedAt:       h.CookedAt,
		}
		if h.Recipe != nil {
			entry.RecipeTitle = h.Recipe.Title
		}
		entries = append(entries, entry)
	}

	return domain.RecipeHistoryResponse{History: entries, Total: int(count)}, nil
}

func (s *recipeService) getOwned(ctx context.Context, recipeID, userID string) (*entities.Recipe, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return nil, domain.ErrParseUUID
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return recipe, nil
}

func newRecipeEntity(userID uuid.UUID, g domain.GeneratedRecipe, generated bool) (*entities.Recipe, error) {
	if g.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if g.Servings <= 0 {
		g.Servings = 1
	}
	if g.Ingredients == nil {
		g.Ingredients = []domain.IngredientRequirement{}
	}
	if g.Instructions == nil {
		g.Instructions = []string{}
	}

	ingredients, err := json.Marshal(g.Ingredients)
	if err != nil {
		return nil, err
	}
	instructions, err := json.Marshal(g.Instructions)
	if err != nil {
		return nil, err
	}

	return &entities.Recipe{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           g.Title,
		Description:     g.Description,
		PrepTimeMinutes: g.PrepTimeMinutes,
		CookTimeMinutes: g.CookTimeMinutes,
		Servings:        g.Servings,
		DifficultyLevel: g.DifficultyLevel,
		CuisineType:     g.CuisineType,
		Ingredients:     datatypes.JSON(ingredients),
		Instructions:    datatypes.JSON(instructions),
		IsGenerated:     generated,
	}, nil
}

func ingredientsOf(recipe *entities.Recipe) ([]domain.IngredientRequirement, error) {
	ingredients := []domain.IngredientRequirement{}
	if len(recipe.Ingredients) == 0 {
		return ingredients, nil
	}
	if err := json.Unmarshal(recipe.Ingredients, &ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients of recipe %s: %w", recipe.ID, err)
	}
	return ingredients, nil
}

func instructionsOf(recipe *entities.Recipe) ([]string, error) {
	instructions := []string{}
	if len(recipe.Instructions) == 0 {
		return instructions, nil
	}
	if err := json.Unmarshal(recipe.Instructions, &instructions); err != nil {
		return nil, fmt.Errorf("decode instructions of recipe %s: %w", recipe.ID, err)
	}
	return instructions, nil
}

func toRecipe(recipe *entities.Recipe) domain.Recipe {
	return domain.Recipe{
		ID:              recipe.ID.String(),
		Title:           recipe.Title,
		Description:     recipe.Description,
		ImageURL:        recipe.ImageURL,
		PrepTimeMinutes: recipe.PrepTimeMinutes,
		CookTimeMinutes: recipe.CookTimeMinutes,
		Servings:        recipe.Servings,
		DifficultyLevel: recipe.DifficultyLevel,
		CuisineType:     recipe.CuisineType,
		IsGenerated:     recipe.IsGenerated,
		TimesCooked:     recipe.TimesCooked,
		LastCookedAt:    recipe.LastCookedAt,
		CreatedAt:       recipe.CreatedAt,
	}
}

func toDetail(recipe *entities.Recipe) (domain.RecipeDetail, error) {
	ingredients, err := ingredientsOf(recipe)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	instructions, err := instructionsOf(recipe)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	return domain.RecipeDetail{
		Recipe:       toRecipe(recipe),
		Ingredients:  ingredients,
		Instructions: instructions,
	}, nil
}

func toIngredientStatus(out Outcome) domain.IngredientStatus {
	status := domain.IngredientStatus{
		Name:         out.Name,
		RequiredQty:  round1(out.Required),
		AvailableQty: round1(out.Available),
		Unit:         out.Unit,
		Status:       out.Status,
		Shortage:     round1(out.Shortage),
	}
	if out.Item != nil {
		status.MatchedItem = out.Item.Name
	}
	return status
}
