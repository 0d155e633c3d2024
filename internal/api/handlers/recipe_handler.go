package handlers

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"Pantry-Service/domain"
	"Pantry-Service/internal/api/presenters"
	"Pantry-Service/pkg/recipe"
)

type (
	RecipeHandler interface {
		CreateRecipe(c *fiber.Ctx) error
		GetRecipes(c *fiber.Ctx) error
		GetRecipeDetail(c *fiber.Ctx) error
		DeleteRecipe(c *fiber.Ctx) error
		GetRecipeRecommendations(c *fiber.Ctx) error
		CheckInventory(c *fiber.Ctx) error
		EmailShoppingList(c *fiber.Ctx) error
		MarkAsCooked(c *fiber.Ctx) error
		GetRecipeHistory(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService recipe.RecipeService
		validator     *validator.Validate
		logger        *zap.Logger
	}
)

func NewRecipeHandler(recipeService recipe.RecipeService, validator *validator.Validate, logger *zap.Logger) RecipeHandler {
	return &recipeHandler{
		recipeService: recipeService,
		validator:     validator,
		logger:        logger,
	}
}

func pageParams(c *fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	return page, limit
}

func (h *recipeHandler) CreateRecipe(c *fiber.Ctx) error {
	userID := userIDOf(c)
	req := new(domain.CreateRecipeRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSaveRecipe, err)
	}

	res, err := h.recipeService.CreateRecipe(c.Context(), *req, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedSaveRecipe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSaveRecipe)
}

func (h *recipeHandler) GetRecipes(c *fiber.Ctx) error {
	userID := userIDOf(c)
	page, limit := pageParams(c)

	recipes, count, err := h.recipeService.GetRecipes(c.Context(), page, limit, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedGetRecipes, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"recipes":    recipes,
		"pagination": domain.NewPagination(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) GetRecipeDetail(c *fiber.Ctx) error {
	userID := userIDOf(c)
	recipeID := c.Params("id")

	res, err := h.recipeService.GetRecipeDetail(c.Context(), recipeID, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedGetRecipeDetail, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipeDetail)
}

func (h *recipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	userID := userIDOf(c)
	recipeID := c.Params("id")

	if err := h.recipeService.DeleteRecipe(c.Context(), recipeID, userID); err != nil {
		return failure(c, h.logger, domain.MessageFailedDeleteRecipe, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteRecipe)
}

func (h *recipeHandler) GetRecipeRecommendations(c *fiber.Ctx) error {
	userID := userIDOf(c)
	req := new(domain.RecipeRecommendationRequest)

	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	}

	res, err := h.recipeService.GetRecipeRecommendations(c.Context(), *req, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoIngredients) {
			return presenters.SuccessResponse(c, domain.RecipeRecommendationResponse{
				Recipes: []domain.Recipe{},
			}, fiber.StatusOK, domain.MessageNoIngredientsForSuggestion)
		}
		return failure(c, h.logger, domain.MessageFailedGetRecipes, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) CheckInventory(c *fiber.Ctx) error {
	userID := userIDOf(c)
	req := new(domain.CheckInventoryRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCheckInventory, err)
	}

	res, err := h.recipeService.CheckInventory(c.Context(), *req, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedCheckInventory, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessCheckInventory)
}

func (h *recipeHandler) EmailShoppingList(c *fiber.Ctx) error {
	userID := userIDOf(c)
	req := new(domain.EmailShoppingListRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedEmailShoppingList, err)
	}

	if err := h.recipeService.EmailShoppingList(c.Context(), *req, userID); err != nil {
		return failure(c, h.logger, domain.MessageFailedEmailShoppingList, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessEmailShoppingList)
}

func (h *recipeHandler) MarkAsCooked(c *fiber.Ctx) error {
	userID := userIDOf(c)
	recipeID := c.Params("id")
	req := new(domain.MarkAsCookedRequest)

	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedMarkAsCooked, err)
	}

	res, err := h.recipeService.MarkAsCooked(c.Context(), recipeID, *req, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedMarkAsCooked, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessMarkAsCooked)
}

func (h *recipeHandler) GetRecipeHistory(c *fiber.Ctx) error {
	userID := userIDOf(c)
	page, limit := pageParams(c)

	res, err := h.recipeService.GetRecipeHistory(c.Context(), page, limit, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedGetHistory, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetHistory)
}
