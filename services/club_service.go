package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
	"github.com/courtside/league-system/storage"
)

type ClubService interface {
	Create(ctx context.Context, actor *models.User, name string) (*models.Club, error)
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	UploadEmblem(ctx context.Context, actor *models.User, clubID int, contentType string, reader io.Reader) (*models.Club, error)
}

type clubService struct {
	clubRepo repositories.ClubRepository
	uploader storage.FileUploader
}

func NewClubService(clubRepo repositories.ClubRepository, uploader storage.FileUploader) ClubService {
	return &clubService{clubRepo: clubRepo, uploader: uploader}
}

func (s *clubService) Create(ctx context.Context, actor *models.User, name string) (*models.Club, error) {
	if actor == nil || actor.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	if name == "" {
		return nil, fmt.Errorf("%w: club name is required", ErrValidationFailed)
	}
	club := &models.Club{Name: name}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		return nil, err
	}
	return club, nil
}

func (s *clubService) GetByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	s.populateEmblemURL(club)
	return club, nil
}

func (s *clubService) List(ctx context.Context) ([]*models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, club := range clubs {
		s.populateEmblemURL(club)
	}
	return clubs, nil
}

func (s *clubService) UploadEmblem(ctx context.Context, actor *models.User, clubID int, contentType string, reader io.Reader) (*models.Club, error) {
	club, err := s.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	allowed := actor != nil && (actor.Role == models.RoleAdmin ||
		(actor.Role == models.RoleClubAdmin && actor.ClubID != nil && *actor.ClubID == clubID))
	if !allowed {
		return nil, ErrForbiddenOperation
	}

	key := "clubs/" + strconv.Itoa(clubID) + "_" + strconv.FormatInt(time.Now().Unix(), 10)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload emblem: %w", err)
	}
	if club.EmblemKey != nil {
		_ = s.uploader.Delete(ctx, *club.EmblemKey)
	}
	if err := s.clubRepo.UpdateEmblemKey(ctx, clubID, &key); err != nil {
		return nil, err
	}
	club.EmblemKey = &key
	s.populateEmblemURL(club)
	return club, nil
}

func (s *clubService) populateEmblemURL(club *models.Club) {
	if club.EmblemKey != nil {
		url := s.uploader.GetPublicURL(*club.EmblemKey)
		club.EmblemURL = &url
	}
}
