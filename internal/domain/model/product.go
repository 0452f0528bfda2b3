package model

import (
	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypeBike      ProductType = "BIKE"      // 電動自行車
	ProductTypeComponent ProductType = "COMPONENT" // 零件
	ProductTypeAccessory ProductType = "ACCESSORY" // 配件
	ProductTypeService   ProductType = "SERVICE"   // 工時/服務，不佔庫存
	ProductTypeKit       ProductType = "KIT"       // 改裝套件
)

type Product struct {
	ProductID     string          `gorm:"primaryKey;type:varchar(36)" json:"product_id"`
	Sku           string          `gorm:"type:varchar(50);unique" json:"sku"`
	Name          string          `gorm:"not null;type:varchar(150)" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	ProductType   ProductType     `gorm:"not null;type:varchar(20);default:'COMPONENT'" json:"product_type"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(10,2)" json:"cost_price"`
	SellingPrice  decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"selling_price"`
	Stock         int             `gorm:"not null;type:int;default:0" json:"stock"`
	MinStockAlert int             `gorm:"not null;type:int;default:2" json:"min_stock_alert"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	OrderItems    []OrderItem     `gorm:"foreignKey:ProductID" json:"-"`
	BaseModel
}

// IsService 服務類商品不做任何庫存增減
func (p *Product) IsService() bool {
	return p.ProductType == ProductTypeService
}

func (p *Product) IsInStock() bool {
	return p.Stock > 0
}
