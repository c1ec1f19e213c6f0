package service

import (
	"context"
	"runtime"

	"docscan-gateway/internal/domain"
	"docscan-gateway/internal/imaging"

	"golang.org/x/sync/errgroup"
)

// ImageService applies page edits to files held in a scan session. Edits
// produce replacement bytes which are committed back through the store, so
// the session always reflects the latest snapshot.
type ImageService struct {
	store  *ScanStore
	logger domain.Logger
}

// NewImageService creates a new image edit service
func NewImageService(store *ScanStore, logger domain.Logger) *ImageService {
	return &ImageService{
		store:  store,
		logger: logger,
	}
}

// CropFile crops one pending file with the given rectangle, rotation angle
// and zoom, replacing its contents in place. The file keeps its id and name.
func (s *ImageService) CropFile(scanID, fileID string, rect imaging.Rect, rotationDeg, zoom float64) error {
	scan, err := s.store.Get(scanID)
	if err != nil {
		return err
	}
	file, ok := scan.FileByID(fileID)
	if !ok {
		return domain.ErrFileNotFound
	}

	cropped, err := imaging.Crop(file.Data, rect, rotationDeg, zoom)
	if err != nil {
		return err
	}

	s.logger.Debug("Cropped pending file", "scan_id", scanID, "file", file.Name)
	return s.store.ReplaceFileData(scanID, fileID, "image/jpeg", cropped)
}

// RotateFile turns one pending file by a ±90 degree increment.
func (s *ImageService) RotateFile(scanID, fileID string, angleDeg int) error {
	scan, err := s.store.Get(scanID)
	if err != nil {
		return err
	}
	file, ok := scan.FileByID(fileID)
	if !ok {
		return domain.ErrFileNotFound
	}

	rotated, err := imaging.Rotate(file.Data, angleDeg)
	if err != nil {
		return err
	}

	return s.store.ReplaceFileData(scanID, fileID, "image/jpeg", rotated)
}

// RotateAll turns every page in the session by the same increment. Pages are
// rendered concurrently; results are committed only if every page succeeds.
func (s *ImageService) RotateAll(ctx context.Context, scanID string, angleDeg int) error {
	scan, err := s.store.Get(scanID)
	if err != nil {
		return err
	}

	rotated := make([][]byte, len(scan.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range scan.Files {
		i := i
		g.Go(func() error {
			// Skip remaining pages once a sibling failed or the caller
			// cancelled.
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := imaging.Rotate(scan.Files[i].Data, angleDeg)
			if err != nil {
				return err
			}
			rotated[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range scan.Files {
		if err := s.store.ReplaceFileData(scanID, scan.Files[i].ID, "image/jpeg", rotated[i]); err != nil {
			return err
		}
	}
	return nil
}
