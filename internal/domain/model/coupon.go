package model

type Coupon struct {
	CouponID        string `gorm:"primaryKey;type:varchar(36)" json:"coupon_id"`
	Code            string `gorm:"not null;type:varchar(50);unique" json:"code"`
	DiscountPercent int    `gorm:"not null;type:int" json:"discount_percent"` // 0 ~ 100
	Active          bool   `gorm:"not null;default:true" json:"active"`
	BaseModel
}
