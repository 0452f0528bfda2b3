package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrClientNotFound 客戶不存在
	ErrClientNotFound = errors.New("client not found")
)

type ClientRepo struct {
	db *DbDao
}

func NewClientRepo(db *DbDao) *ClientRepo {
	return &ClientRepo{db: db}
}

func (s *ClientRepo) CreateClient(ctx context.Context, client *model.Client) error {
	return s.db.WithContext(ctx).Create(client).Error
}

func (s *ClientRepo) GetClientByID(ctx context.Context, id string) (*model.Client, error) {
	var client model.Client
	err := s.db.WithContext(ctx).First(&client, "client_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientRepo) GetClientByEmail(ctx context.Context, email string) (*model.Client, error) {
	var client model.Client
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientRepo) UpdateClient(ctx context.Context, client *model.Client) error {
	return s.db.WithContext(ctx).Save(client).Error
}

func (s *ClientRepo) DeleteClient(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("client_id = ?", id).Delete(&model.Client{}).Error
}
