package domain

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"
)

const (
	ScanKindShelf   = "shelf"
	ScanKindReceipt = "receipt"
	ScanKindMeal    = "meal"

	ScanStatusPending   = "Pending"
	ScanStatusProcessed = "Processed"
	ScanStatusFailed    = "Failed"
	ScanStatusApplied   = "Applied"
)

var (
	MessageSuccessUploadScan = "scan processed successfully"
	MessageSuccessGetScan    = "scan retrieved successfully"

	MessageFailedUploadScan = "failed to process scan"
	MessageFailedGetScan    = "failed to retrieve scan"

	ErrScanNotFound           = fmt.Errorf("scan %w", ErrNotFound)
	ErrInvalidImageFormat     = fmt.Errorf("%w: invalid image format", ErrValidation)
	ErrInferenceFailed        = errors.New("inference processing failed")
	ErrInferenceNotConfigured = errors.New("inference service is not configured")
)

type (
	UploadScanRequest struct {
		Image    *multipart.FileHeader `json:"image" form:"image" validate:"required"`
		Kind     string                `json:"kind" form:"kind" validate:"required,oneof=shelf receipt meal"`
		Location string                `json:"location" form:"location" validate:"omitempty,oneof=fridge freezer pantry"`
	}

	ScanResponse struct {
		ID        string          `json:"id"`
		Kind      string          `json:"kind"`
		Location  string          `json:"location,omitempty"`
		ImageURL  string          `json:"image_url"`
		Status    string          `json:"status"`
		Items     []ReconcileItem `json:"items"`
		CreatedAt time.Time       `json:"created_at"`
	}
)
