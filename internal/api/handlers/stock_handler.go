package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"Pantry-Service/domain"
	"Pantry-Service/internal/api/presenters"
	"Pantry-Service/pkg/stock"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type (
	StockHandler interface {
		AddStockItem(c *fiber.Ctx) error
		UpdateStockItem(c *fiber.Ctx) error
		DeleteStockItem(c *fiber.Ctx) error
		GetStockItems(c *fiber.Ctx) error
		GetStockItemDetails(c *fiber.Ctx) error
		ConsumeStockItem(c *fiber.Ctx) error
		GetDashboardStats(c *fiber.Ctx) error
		ExportStockItems(c *fiber.Ctx) error
		Reconcile(c *fiber.Ctx) error
	}

	stockHandler struct {
		stockService stock.StockService
		validator    *validator.Validate
		logger       *zap.Logger
	}
)

func NewStockHandler(stockService stock.StockService, validator *validator.Validate, logger *zap.Logger) StockHandler {
	return &stockHandler{
		stockService: stockService,
		validator:    validator,
		logger:       logger,
	}
}

func (h *stockHandler) AddStockItem(c *fiber.Ctx) error {
	userID := userIDOf(c)
	req := new(domain.AddStockItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddStockItem, err)
	}

	res, err := h.stockService.AddStockItem(c.Context(), *req, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedAddStockItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddStockItem)
}

func (h *stockHandler) UpdateStockItem(c *fiber.Ctx) error {
	userID := userIDOf(c)
	itemID := c.Params("id")
	req := new(domain.UpdateStockItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateStockItem, err)
	}

	res, err := h.stockService.UpdateStockItem(c.Context(), itemID, *req, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedUpdateStockItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateStockItem)
}

func (h *stockHandler) DeleteStockItem(c *fiber.Ctx) error {
	userID := userIDOf(c)
	itemID := c.Params("id")

	if err := h.stockService.DeleteStockItem(c.Context(), itemID, userID); err != nil {
		return failure(c, h.logger, domain.MessageFailedDeleteStockItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteStockItem)
}

func (h *stockHandler) GetStockItems(c *fiber.Ctx) error {
	userID := userIDOf(c)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	filter := domain.ListStockFilter{
		Location:  c.Query("location"),
		Category:  c.Query("category"),
		Freshness: c.Query("freshness"),
		Page:      page,
		Limit:     limit,
	}

	items, count, err := h.stockService.GetStockItems(c.Context(), userID, filter)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedGetStockItems, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"items":      items,
		"pagination": domain.NewPagination(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetStockItems)
}

func (h *stockHandler) GetStockItemDetails(c *fiber.Ctx) error {
	userID := userIDOf(c)
	itemID := c.Params("id")

	res, err := h.stockService.GetStockItemByID(c.Context(), itemID, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedGetStockItems, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetStockItems)
}

func (h *stockHandler) ConsumeStockItem(c *fiber.Ctx) error {
	userID := userIDOf(c)
	itemID := c.Params("id")
	req := new(domain.ConsumeStockItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConsumeStockItem, err)
	}

	if err := h.stockService.ConsumeStockItem(c.Context(), itemID, *req, userID); err != nil {
		return failure(c, h.logger, domain.MessageFailedConsumeStockItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessConsumeStockItem)
}

func (h *stockHandler) GetDashboardStats(c *fiber.Ctx) error {
	userID := userIDOf(c)

	stats, err := h.stockService.GetDashboardStats(c.Context(), userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedGetDashboardStats, err)
	}

	return presenters.SuccessResponse(c, stats, fiber.StatusOK, domain.MessageSuccessGetDashboardStats)
}

func (h *stockHandler) ExportStockItems(c *fiber.Ctx) error {
	userID := userIDOf(c)

	file, err := h.stockService.ExportStockItems(c.Context(), userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedExportStock, err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment(fmt.Sprintf("inventory-%s.xlsx", time.Now().Format(domain.DateLayout)))
	return c.Send(file)
}

func (h *stockHandler) Reconcile(c *fiber.Ctx) error {
	userID := userIDOf(c)
	req := new(domain.ReconcileRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedReconcile, err)
	}

	res, err := h.stockService.Reconcile(c.Context(), *req, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedReconcile, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessReconcile)
}
