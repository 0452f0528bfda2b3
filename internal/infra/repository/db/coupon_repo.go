package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrCouponNotFound 折扣碼不存在或已停用
	ErrCouponNotFound = errors.New("coupon not found")
)

type CouponRepo struct {
	db *DbDao
}

func NewCouponRepo(db *DbDao) *CouponRepo {
	return &CouponRepo{db: db}
}

func (s *CouponRepo) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	return s.db.WithContext(ctx).Create(coupon).Error
}

func (s *CouponRepo) GetCouponByID(ctx context.Context, id string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := s.db.WithContext(ctx).First(&coupon, "coupon_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetActiveCouponByCode 折扣碼比對不分大小寫，只回傳啟用中的
func (s *CouponRepo) GetActiveCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := s.db.WithContext(ctx).
		Where("LOWER(code) = LOWER(?) AND active = true", code).
		First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (s *CouponRepo) UpdateCoupon(ctx context.Context, coupon *model.Coupon) error {
	return s.db.WithContext(ctx).Save(coupon).Error
}
