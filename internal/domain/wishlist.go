package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistItem 위시리스트 항목
type WishlistItem struct {
	ID              string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID          string    `gorm:"column:user_id;size:36;not null;index" json:"user_id"`
	ProductID       string    `gorm:"column:product_id;size:100;not null" json:"product_id"`
	Name            string    `gorm:"column:name;size:255" json:"name"`
	Platform        string    `gorm:"column:platform;size:100" json:"platform"`
	ImageURL        string    `gorm:"column:image_url;size:500" json:"image_url"`
	PriceLoose      *float64  `gorm:"column:price_loose" json:"price_loose"`
	PriceCIB        *float64  `gorm:"column:price_cib" json:"price_cib"`
	PriceNew        *float64  `gorm:"column:price_new" json:"price_new"`
	DateAdded       time.Time `gorm:"column:date_added;not null" json:"date_added"`
	AlertPercentage *float64  `gorm:"column:alert_percentage" json:"alert_percentage,omitempty"`
	Seq             int64     `gorm:"column:seq;not null;default:0;index" json:"-"`
}

func (WishlistItem) TableName() string {
	return "wishlists"
}

// BeforeCreate assigns a UUID when the caller left the id empty, and the insertion sequence.
func (w *WishlistItem) BeforeCreate(_ *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Seq == 0 {
		w.Seq = nextSeq()
	}
	return nil
}

// WishlistInput is what a caller supplies when adding a product to the wishlist.
type WishlistInput struct {
	ProductID  string   `json:"product_id" binding:"required"`
	Name       string   `json:"name" binding:"required"`
	Platform   string   `json:"platform"`
	ImageURL   string   `json:"image_url"`
	PriceLoose *float64 `json:"price_loose" binding:"omitempty,gte=0"`
	PriceCIB   *float64 `json:"price_cib" binding:"omitempty,gte=0"`
	PriceNew   *float64 `json:"price_new" binding:"omitempty,gte=0"`
}

// WishlistInputFromProduct snapshots a product's prices for the wishlist
func WishlistInputFromProduct(p Product) WishlistInput {
	return WishlistInput{
		ProductID:  p.ID,
		Name:       p.Name,
		Platform:   p.Platform,
		ImageURL:   p.ImageURL,
		PriceLoose: p.PriceLoose,
		PriceCIB:   p.PriceCIB,
		PriceNew:   p.PriceNew,
	}
}

// PriceDropAlert reports a wishlist item whose loose price fell past its alert threshold
type PriceDropAlert struct {
	Item          WishlistItem `json:"item"`
	PreviousPrice float64      `json:"previous_price"`
	CurrentPrice  float64      `json:"current_price"`
	DropPercent   float64      `json:"drop_percent"`
}

// PriceDrop compares the loose price stored at add time against current.
// It reports an alert when the item has a threshold and the drop reaches it.
func (w WishlistItem) PriceDrop(current Product) (PriceDropAlert, bool) {
	if w.AlertPercentage == nil || w.PriceLoose == nil || current.PriceLoose == nil {
		return PriceDropAlert{}, false
	}
	before, now := *w.PriceLoose, *current.PriceLoose
	if before <= 0 || now >= before {
		return PriceDropAlert{}, false
	}

	drop := math.Round((before-now)/before*10000) / 100
	if drop < *w.AlertPercentage {
		return PriceDropAlert{}, false
	}
	return PriceDropAlert{
		Item:          w,
		PreviousPrice: before,
		CurrentPrice:  now,
		DropPercent:   drop,
	}, true
}
