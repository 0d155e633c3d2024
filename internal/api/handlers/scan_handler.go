package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"Pantry-Service/domain"
	"Pantry-Service/internal/api/presenters"
	"Pantry-Service/pkg/scan"
)

type (
	ScanHandler interface {
		UploadScan(c *fiber.Ctx) error
		GetScan(c *fiber.Ctx) error
	}

	scanHandler struct {
		scanService scan.ScanService
		validator   *validator.Validate
		logger      *zap.Logger
	}
)

func NewScanHandler(scanService scan.ScanService, validator *validator.Validate, logger *zap.Logger) ScanHandler {
	return &scanHandler{
		scanService: scanService,
		validator:   validator,
		logger:      logger,
	}
}

func (h *scanHandler) UploadScan(c *fiber.Ctx) error {
	userID := userIDOf(c)

	image, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	req := domain.UploadScanRequest{
		Image:    image,
		Kind:     c.FormValue("kind", domain.ScanKindShelf),
		Location: c.FormValue("location"),
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadScan, err)
	}

	res, err := h.scanService.UploadScan(c.Context(), req, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedUploadScan, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessUploadScan)
}

func (h *scanHandler) GetScan(c *fiber.Ctx) error {
	userID := userIDOf(c)
	scanID := c.Params("id")

	res, err := h.scanService.GetScan(c.Context(), scanID, userID)
	if err != nil {
		return failure(c, h.logger, domain.MessageFailedGetScan, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetScan)
}
