package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LocalizedText is a bilingual string pair as served by the catalog API.
type LocalizedText struct {
	En string `json:"en"`
	Ar string `json:"ar"`
}

// In returns the text for the given language code, falling back to English
// when the Arabic variant is empty.
func (t LocalizedText) In(lang string) string {
	if lang == "ar" && t.Ar != "" {
		return t.Ar
	}
	return t.En
}

// Image is one entry of a product's ordered image list.
type Image struct {
	URL string `json:"url"`
}

// Rating is the aggregated review score of a product.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Product is the catalog entry shape shared with the Remote Catalog Service.
// Products are read-only on the storefront side; only admin calls mutate them.
type Product struct {
	ID          string        `json:"id"`
	Name        LocalizedText `json:"name"`
	Description LocalizedText `json:"description"`
	Price       float64       `json:"price"`
	Discount    float64       `json:"discount"` // percent, 0-100
	Stock       int           `json:"stock"`
	Category    string        `json:"category"`
	Rating      Rating        `json:"rating"`
	Images      []Image       `json:"images"`
	CreatedAt   time.Time     `json:"createdAt"`
}

var hundred = decimal.NewFromInt(100)

// FinalPrice returns price - price*discount/100, never below zero.
// Discounts outside 0..100 are clamped.
func (p Product) FinalPrice() decimal.Decimal {
	price := decimal.NewFromFloat(p.Price)
	discount := decimal.NewFromFloat(p.Discount)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(hundred) {
		discount = hundred
	}
	final := price.Sub(price.Mul(discount).Div(hundred))
	if final.IsNegative() {
		return decimal.Zero
	}
	return final.Round(2)
}

// OnSale reports whether the product carries a positive discount.
func (p Product) OnSale() bool { return p.Discount > 0 }

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool { return p.Stock > 0 }

// PrimaryImage returns the first image URL or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// Pagination mirrors the pagination block of a catalog list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

// ProductPage is one page of a filtered catalog query.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}
