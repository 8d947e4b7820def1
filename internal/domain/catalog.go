package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryRef is the category of a product. The API sends either a bare id
// or an embedded {_id, name} object depending on the endpoint.
type CategoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		c.ID = id
		c.Name = ""
		return nil
	}
	type plain CategoryRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = CategoryRef(p)
	return nil
}

type CatalogProduct struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    CategoryRef     `json:"category"`
	Images      []string        `json:"images"`
	Status      string          `json:"status"`
}

const PlaceholderImage = "https://via.placeholder.com/300"

// PrimaryImage returns the first image or a placeholder.
func (p CatalogProduct) PrimaryImage() string {
	if len(p.Images) > 0 && p.Images[0] != "" {
		return p.Images[0]
	}
	return PlaceholderImage
}

type ProductPage struct {
	Products []CatalogProduct `json:"products"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

type Category struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type AdminUser struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type StatsCounters struct {
	TotalUsers      int             `json:"totalUsers"`
	TotalProducts   int             `json:"totalProducts"`
	TotalCategories int             `json:"totalCategories"`
	TotalOrders     int             `json:"totalOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

type DashboardStats struct {
	Stats          StatsCounters    `json:"stats"`
	RecentProducts []CatalogProduct `json:"recentProducts"`
	RecentUsers    []AdminUser      `json:"recentUsers"`
}
