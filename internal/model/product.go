package model

type Product struct {
	BaseModel
	SKU         string `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Barcode     string `gorm:"type:varchar(100)" json:"barcode"`
	Unit        string `gorm:"type:varchar(20)" json:"unit"`
	Description string `gorm:"type:text" json:"description"`

	// Prices in cents
	CostPrice       int64  `gorm:"default:0" json:"cost_price"`
	SellingPrice    int64  `gorm:"default:0" json:"selling_price"`
	WholesalePrice  *int64 `json:"wholesale_price,omitempty"`
	WholesaleMinQty int    `gorm:"default:1" json:"wholesale_min_qty"`

	// Aggregate stock across all batches (plus any untracked legacy stock).
	// Never allowed to go negative.
	Stock             int  `gorm:"default:0" json:"stock"`
	LowStockThreshold int  `gorm:"default:10" json:"low_stock_threshold"`
	IsActive          bool `gorm:"default:true" json:"is_active"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty"`

	// Relasi
	Batches   []Batch         `json:"batches,omitempty"`
	Movements []StockMovement `json:"movements,omitempty"`
}

// IsLowStock reports whether the aggregate stock dropped to the threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// HasWholesalePrice reports whether a wholesale price is configured.
func (p *Product) HasWholesalePrice() bool {
	return p.WholesalePrice != nil && *p.WholesalePrice > 0
}
