package model

type Client struct {
	ClientID string `gorm:"primaryKey;type:varchar(36)" json:"client_id"`
	Name     string `gorm:"not null;type:varchar(100)" json:"name"`
	Email    string `gorm:"not null;type:varchar(100);unique" json:"email"`
	TaxID    string `gorm:"type:varchar(14)" json:"tax_id"` // CPF
	Phone    string `gorm:"type:varchar(20)" json:"phone"`
	Address  string `gorm:"type:varchar(255)" json:"address"`
	City     string `gorm:"type:varchar(100)" json:"city"`
	State    string `gorm:"type:varchar(2)" json:"state"`
	ZipCode  string `gorm:"type:varchar(9)" json:"zip_code"`
	Orders   []Order `gorm:"foreignKey:ClientID" json:"-"`
	BaseModel
}

// IsComplete 結帳前檢查客戶資料是否齊全
func (c *Client) IsComplete() bool {
	required := []string{c.TaxID, c.Phone, c.Address, c.City, c.State, c.ZipCode}
	for _, v := range required {
		if v == "" {
			return false
		}
	}
	return true
}

// MissingFields 回傳缺少的欄位名稱，用於引導用戶補齊資料
func (c *Client) MissingFields() []string {
	var missing []string
	fields := map[string]string{
		"tax_id":   c.TaxID,
		"phone":    c.Phone,
		"address":  c.Address,
		"city":     c.City,
		"state":    c.State,
		"zip_code": c.ZipCode,
	}
	for name, v := range fields {
		if v == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
