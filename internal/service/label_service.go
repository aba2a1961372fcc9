package service

import (
	"context"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/rs/zerolog"

	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/storage"
)

// ContainerStore is the slice of ContainerRepository the label flow needs.
type ContainerStore interface {
	GetByID(ctx context.Context, id, companyID string) (models.Container, error)
	SetQRObjectKey(ctx context.Context, id, companyID, objectKey string) error
}

// LabelService renders and caches container QR labels in the object store.
type LabelService struct {
	containers ContainerStore
	store      *storage.ObjectStore
	log        zerolog.Logger
}

func NewLabelService(containers ContainerStore, store *storage.ObjectStore, log zerolog.Logger) *LabelService {
	return &LabelService{containers: containers, store: store, log: log}
}

// GetLabel returns the QR label PNG for a container in the caller's company,
// generating and persisting it on first request.
func (s *LabelService) GetLabel(ctx context.Context, containerID, companyID string) ([]byte, error) {
	container, err := s.containers.GetByID(ctx, containerID, companyID)
	if err != nil {
		return nil, err
	}

	if container.QRObjectKey != nil {
		png, err := s.store.GetLabel(ctx, *container.QRObjectKey)
		if err == nil {
			return png, nil
		}
		// Object missing or store hiccup: regenerate below.
		s.log.Warn().Err(err).Str("container_id", containerID).Msg("stored label unreadable, regenerating")
	}

	png, err := qrcode.Encode(fmt.Sprintf("container:%s", container.ID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	key := fmt.Sprintf("labels/%s.png", container.ID)
	if err := s.store.PutLabel(ctx, key, png); err != nil {
		return nil, err
	}
	if err := s.containers.SetQRObjectKey(ctx, containerID, companyID, key); err != nil {
		return nil, err
	}
	return png, nil
}
