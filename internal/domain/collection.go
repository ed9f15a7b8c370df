package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollectionItem 컬렉션 항목 (보유 중인 게임)
type CollectionItem struct {
	ID                string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID            string    `gorm:"column:user_id;size:36;not null;index" json:"user_id"`
	ProductID         string    `gorm:"column:product_id;size:100;not null" json:"product_id"`
	Name              string    `gorm:"column:name;size:255" json:"name"`
	Platform          string    `gorm:"column:platform;size:100" json:"platform"`
	ImageURL          string    `gorm:"column:image_url;size:500" json:"image_url"`
	Condition         Condition `gorm:"column:condition;size:10;not null" json:"condition"`
	PurchasePrice     float64   `gorm:"column:purchase_price;not null" json:"purchase_price"`
	PurchaseDate      string    `gorm:"column:purchase_date;size:10" json:"purchase_date"`
	Notes             *string   `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CurrentPriceLoose *float64  `gorm:"column:current_price_loose" json:"current_price_loose"`
	CurrentPriceCIB   *float64  `gorm:"column:current_price_cib" json:"current_price_cib"`
	CurrentPriceNew   *float64  `gorm:"column:current_price_new" json:"current_price_new"`
	LastUpdated       time.Time `gorm:"column:last_updated;not null" json:"last_updated"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	Seq               int64     `gorm:"column:seq;not null;default:0;index" json:"-"`
}

func (CollectionItem) TableName() string {
	return "collections"
}

// BeforeCreate assigns a UUID when the caller left the id empty, and the insertion sequence.
func (c *CollectionItem) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Seq == 0 {
		c.Seq = nextSeq()
	}
	return nil
}

// CurrentValue returns the snapshot matching the item's own condition, 0 when absent.
func (c CollectionItem) CurrentValue() float64 {
	var p *float64
	switch c.Condition {
	case ConditionLoose:
		p = c.CurrentPriceLoose
	case ConditionCIB:
		p = c.CurrentPriceCIB
	case ConditionNew:
		p = c.CurrentPriceNew
	}
	if p == nil {
		return 0
	}
	return *p
}

// CollectionInput is what a caller supplies when adding an owned copy.
type CollectionInput struct {
	ProductID         string    `json:"product_id" binding:"required"`
	Name              string    `json:"name" binding:"required"`
	Platform          string    `json:"platform"`
	ImageURL          string    `json:"image_url"`
	Condition         Condition `json:"condition" binding:"required,condition"`
	PurchasePrice     float64   `json:"purchase_price" binding:"gt=0"`
	PurchaseDate      string    `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
	Notes             *string   `json:"notes"`
	CurrentPriceLoose *float64  `json:"current_price_loose" binding:"omitempty,gte=0"`
	CurrentPriceCIB   *float64  `json:"current_price_cib" binding:"omitempty,gte=0"`
	CurrentPriceNew   *float64  `json:"current_price_new" binding:"omitempty,gte=0"`
}

// CollectionItemPatch holds the editable fields of a collection item. Nil fields are left alone.
type CollectionItemPatch struct {
	Name          *string    `json:"name"`
	Platform      *string    `json:"platform"`
	ImageURL      *string    `json:"image_url"`
	Condition     *Condition `json:"condition" binding:"omitempty,condition"`
	PurchasePrice *float64   `json:"purchase_price" binding:"omitempty,gt=0"`
	PurchaseDate  *string    `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
	Notes         *string    `json:"notes"`
}

// Empty reports whether the patch changes nothing
func (p CollectionItemPatch) Empty() bool {
	return p.Name == nil && p.Platform == nil && p.ImageURL == nil && p.Condition == nil &&
		p.PurchasePrice == nil && p.PurchaseDate == nil && p.Notes == nil
}

// Columns returns the column/value map for a partial update
func (p CollectionItemPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Platform != nil {
		cols["platform"] = *p.Platform
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	if p.Condition != nil {
		cols["condition"] = *p.Condition
	}
	if p.PurchasePrice != nil {
		cols["purchase_price"] = *p.PurchasePrice
	}
	if p.PurchaseDate != nil {
		cols["purchase_date"] = *p.PurchaseDate
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	return cols
}

// Apply copies the patch onto item in place
func (p CollectionItemPatch) Apply(item *CollectionItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Platform != nil {
		item.Platform = *p.Platform
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.Condition != nil {
		item.Condition = *p.Condition
	}
	if p.PurchasePrice != nil {
		item.PurchasePrice = *p.PurchasePrice
	}
	if p.PurchaseDate != nil {
		item.PurchaseDate = *p.PurchaseDate
	}
	if p.Notes != nil {
		notes := *p.Notes
		item.Notes = &notes
	}
}

// PriceSnapshot is a partial update of the three current-price snapshots
type PriceSnapshot struct {
	Loose *float64 `json:"loose" binding:"omitempty,gte=0"`
	CIB   *float64 `json:"cib" binding:"omitempty,gte=0"`
	New   *float64 `json:"new" binding:"omitempty,gte=0"`
}

// SnapshotFromProduct takes the three prices of a product
func SnapshotFromProduct(p Product) PriceSnapshot {
	return PriceSnapshot{Loose: p.PriceLoose, CIB: p.PriceCIB, New: p.PriceNew}
}

// Columns returns the column/value map for a partial update
func (s PriceSnapshot) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if s.Loose != nil {
		cols["current_price_loose"] = *s.Loose
	}
	if s.CIB != nil {
		cols["current_price_cib"] = *s.CIB
	}
	if s.New != nil {
		cols["current_price_new"] = *s.New
	}
	return cols
}

// Apply copies the snapshot onto item in place
func (s PriceSnapshot) Apply(item *CollectionItem) {
	if s.Loose != nil {
		v := *s.Loose
		item.CurrentPriceLoose = &v
	}
	if s.CIB != nil {
		v := *s.CIB
		item.CurrentPriceCIB = &v
	}
	if s.New != nil {
		v := *s.New
		item.CurrentPriceNew = &v
	}
}

// CollectionValue 컬렉션 가치 합계
type CollectionValue struct {
	TotalPurchase float64 `json:"total_purchase"`
	TotalCurrent  float64 `json:"total_current"`
	Difference    float64 `json:"difference"`
}

// AggregateValue folds items into purchase and current totals.
// The result does not depend on item order.
func AggregateValue(items []CollectionItem) CollectionValue {
	var v CollectionValue
	for _, item := range items {
		v.TotalPurchase += item.PurchasePrice
		v.TotalCurrent += item.CurrentValue()
	}
	v.Difference = v.TotalCurrent - v.TotalPurchase
	return v
}
