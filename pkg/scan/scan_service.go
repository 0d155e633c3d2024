package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Pantry-Service/domain"
	"Pantry-Service/entities"
	"Pantry-Service/internal/utils/storage"
)

const scanFolder = "scans"

type (
	ScanService interface {
		UploadScan(ctx context.Context, req domain.UploadScanRequest, userID string) (domain.ScanResponse, error)
		GetScan(ctx context.Context, id string, userID string) (domain.ScanResponse, error)
	}

	// Detector turns a photo into candidate stock items.
	Detector interface {
		DetectItems(ctx context.Context, image []byte, mimeType, kind string) ([]domain.ReconcileItem, string, error)
	}

	scanService struct {
		scanRepository ScanRepository
		s3             storage.AwsS3
		detector       Detector
		logger         *zap.Logger
	}
)

func NewScanService(scanRepository ScanRepository, s3 storage.AwsS3, detector Detector, logger *zap.Logger) ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &scanService{
		scanRepository: scanRepository,
		s3:             s3,
		detector:       detector,
		logger:         logger,
	}
}

func (s *scanService) UploadScan(ctx context.Context, req domain.UploadScanRequest, userID string) (domain.ScanResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ScanResponse{}, domain.ErrParseUUID
	}

	contentType, err := storage.CheckContentType(req.Image, storage.AllowImage...)
	if err != nil {
		return domain.ScanResponse{}, err
	}
	if s.detector == nil {
		return domain.ScanResponse{}, domain.ErrInferenceNotConfigured
	}

	image, err := readAll(req)
	if err != nil {
		return domain.ScanResponse{}, err
	}

	scan := &entities.Scan{
		ID:       uuid.New(),
		UserID:   userUUID,
		Kind:     req.Kind,
		Location: req.Location,
		Status:   domain.ScanStatusPending,
	}

	var objectKey string
	if s.s3 != nil {
		objectKey, err = s.s3.UploadFile(fmt.Sprintf("%s-%s", req.Kind, scan.ID.String()), req.Image, scanFolder, storage.AllowImage...)
		if err != nil {
			return domain.ScanResponse{}, err
		}
		scan.ImageURL = s.s3.GetPublicLinkKey(objectKey)
	}

	if err := s.scanRepository.CreateScan(ctx, scan); err != nil {
		if objectKey != "" {
			_ = s.s3.DeleteFile(objectKey)
		}
		return domain.ScanResponse{}, err
	}

	started := time.Now()
	items, raw, err := s.detector.DetectItems(ctx, image, contentType, req.Kind)
	if err != nil {
		s.logger.Error("scan inference failed",
			zap.String("scan_id", scan.ID.String()),
			zap.String("kind", req.Kind),
			zap.Duration("elapsed", time.Since(started)),
			zap.String("raw", raw),
			zap.Error(err),
		)
		scan.Status = domain.ScanStatusFailed
		scan.RawResults = err.Error()
		if uerr := s.scanRepository.UpdateScan(ctx, scan); uerr != nil {
			s.logger.Error("failed to mark scan as failed", zap.String("scan_id", scan.ID.String()), zap.Error(uerr))
		}
		return domain.ScanResponse{}, domain.ErrInferenceFailed
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		return domain.ScanResponse{}, err
	}
	scan.Status = domain.ScanStatusProcessed
	scan.RawResults = string(encoded)
	scan.ItemCount = len(items)
	if err := s.scanRepository.UpdateScan(ctx, scan); err != nil {
		return domain.ScanResponse{}, err
	}

	s.logger.Info("scan processed",
		zap.String("scan_id", scan.ID.String()),
		zap.String("kind", req.Kind),
		zap.Int("items", len(items)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return toResponse(scan, items), nil
}

func (s *scanService) GetScan(ctx context.Context, id string, userID string) (domain.ScanResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ScanResponse{}, domain.ErrParseUUID
	}

	scan, err := s.scanRepository.GetScanByID(ctx, userID, id)
	if err != nil {
		return domain.ScanResponse{}, err
	}

	items := []domain.ReconcileItem{}
	if scan.Status == domain.ScanStatusProcessed || scan.Status == domain.ScanStatusApplied {
		if err := json.Unmarshal([]byte(scan.RawResults), &items); err != nil {
			s.logger.Warn("stored scan results are unreadable", zap.String("scan_id", id), zap.Error(err))
		}
	}

	return toResponse(scan, items), nil
}

func readAll(req domain.UploadScanRequest) ([]byte, error) {
	file, err := req.Image.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func toResponse(scan *entities.Scan, items []domain.ReconcileItem) domain.ScanResponse {
	if items == nil {
		items = []domain.ReconcileItem{}
	}
	return domain.ScanResponse{
		ID:        scan.ID.String(),
		Kind:      scan.Kind,
		Location:  scan.Location,
		ImageURL:  scan.ImageURL,
		Status:    scan.Status,
		Items:     items,
		CreatedAt: scan.CreatedAt,
	}
}
