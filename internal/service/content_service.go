package service

import (
	"classroomlive/internal/model"
	"classroomlive/internal/repository"
	"classroomlive/internal/storage"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ShareInput is the payload for sharing content from a seat. File is
// nil for link/code/notes shares.
type ShareInput struct {
	ContentType model.ContentType
	Link        string
	Description string
	Filename    string
	File        io.Reader
}

// ContentService records immutable shared-content artifacts and hands
// uploads to the blob store.
type ContentService struct {
	contents  repository.ContentRepo
	seats     repository.SeatRepo
	guard     *AccessGuard
	blobs     storage.BlobStore
	publisher Publisher
}

func NewContentService(
	contents repository.ContentRepo,
	seats repository.SeatRepo,
	guard *AccessGuard,
	blobs storage.BlobStore,
) *ContentService {
	return &ContentService{
		contents: contents,
		seats:    seats,
		guard:    guard,
		blobs:    blobs,
	}
}

func (s *ContentService) SetPublisher(p Publisher) {
	s.publisher = p
}

// Share validates and persists a SharedContent record for the seat.
// Link shares need a link; binary kinds need an upload or a link.
func (s *ContentService) Share(ctx context.Context, userID, seatID string, input ShareInput) (*model.SharedContent, error) {
	seat, err := s.seats.GetByID(ctx, seatID)
	if err != nil {
		return nil, fmt.Errorf("get seat: %w", err)
	}
	if seat == nil {
		return nil, fmt.Errorf("%w: seat %s", ErrNotFound, seatID)
	}
	if seat.StudentID != userID {
		return nil, fmt.Errorf("%w: you can only share content from your own seat", ErrUnauthorized)
	}

	if !model.ValidContentType(input.ContentType) {
		return nil, fmt.Errorf("%w: invalid content type %q", ErrInvalidInput, input.ContentType)
	}
	switch input.ContentType {
	case model.ContentLink:
		if input.Link == "" {
			return nil, fmt.Errorf("%w: link is required for link content", ErrInvalidInput)
		}
	case model.ContentScreenshot, model.ContentDocument:
		if input.File == nil && input.Link == "" {
			return nil, fmt.Errorf("%w: a file or link is required for this content type", ErrInvalidInput)
		}
	}

	content := &model.SharedContent{
		ID:          uuid.New().String(),
		SeatID:      seat.ID,
		ClassroomID: seat.ClassroomID,
		StudentID:   seat.StudentID,
		ContentType: input.ContentType,
		Link:        input.Link,
		Description: input.Description,
		SharedAt:    time.Now(),
	}

	if input.File != nil {
		url, err := s.blobs.Save(ctx, input.Filename, input.File)
		if err != nil {
			return nil, fmt.Errorf("store upload: %w", err)
		}
		content.FileURL = url
	}

	if err := s.contents.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishToClassroom(seat.ClassroomID, MsgContentShare, model.ContentShareEvent{
			SeatID:      seat.ID,
			ContentID:   content.ID,
			ContentType: content.ContentType,
			Link:        content.Link,
			Description: content.Description,
		})
	}

	return content, nil
}

// Detail fetches a shared-content record for any classroom participant.
func (s *ContentService) Detail(ctx context.Context, userID, contentID string) (*model.SharedContent, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	if content == nil {
		return nil, fmt.Errorf("%w: content %s", ErrNotFound, contentID)
	}
	if !s.guard.CanJoin(ctx, userID, content.ClassroomID) {
		return nil, fmt.Errorf("%w: access denied", ErrUnauthorized)
	}
	return content, nil
}
