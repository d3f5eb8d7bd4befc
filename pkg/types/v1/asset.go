package v1

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ID string

func (id ID) String() string { return string(id) }

// Asset is a listing owned by a business on the marketplace. Only the fields
// the client renders are decoded; the full schema belongs to the API.
type Asset struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Images      []string  `json:"images,omitempty"`
	Category    string    `json:"category,omitempty"`
	Condition   string    `json:"condition,omitempty"`
	Location    string    `json:"location,omitempty"`
	Seller      Seller    `json:"seller"`
	Quantity    int       `json:"quantity"`
	Sales       int       `json:"salesCount"`
	Description string    `json:"description,omitempty"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Seller is the business behind an asset. The API sends either a populated
// object or a bare reference id.
type Seller struct {
	ID         ID      `json:"id"`
	Name       string  `json:"name,omitempty"`
	TrustScore float64 `json:"trustScore,omitempty"`
	Verified   bool    `json:"verified,omitempty"`
}

type assetJSON struct {
	ID        ID       `json:"id"`
	MongoID   ID       `json:"_id"`
	Title     string   `json:"title"`
	Price     float64  `json:"price"`
	Images    []string `json:"images"`
	Category  string   `json:"category"`
	Condition string   `json:"condition"`
	Location  string   `json:"location"`
	Seller    Seller   `json:"seller"`
	Business  *Seller  `json:"business"`
	Quantity  int      `json:"quantity"`
	Sales     int      `json:"salesCount"`
	Desc      string   `json:"description"`
	Views     int      `json:"views"`
	CreatedAt string   `json:"createdAt"`
}

func (a *Asset) UnmarshalJSON(b []byte) error {
	var raw assetJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*a = Asset{
		ID:          raw.ID,
		Title:       raw.Title,
		Price:       raw.Price,
		Images:      raw.Images,
		Category:    raw.Category,
		Condition:   raw.Condition,
		Location:    raw.Location,
		Seller:      raw.Seller,
		Quantity:    raw.Quantity,
		Sales:       raw.Sales,
		Description: raw.Desc,
		Views:       raw.Views,
	}
	if a.ID == "" {
		a.ID = raw.MongoID
	}
	if a.Seller.ID == "" && raw.Business != nil {
		a.Seller = *raw.Business
	}
	if raw.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339, raw.CreatedAt)
		if err != nil {
			return fmt.Errorf("invalid createdAt %q: %w", raw.CreatedAt, err)
		}
		a.CreatedAt = t
	}
	return nil
}

type sellerJSON struct {
	ID         ID      `json:"id"`
	MongoID    ID      `json:"_id"`
	Name       string  `json:"name"`
	TrustScore float64 `json:"trustScore"`
	Verified   bool    `json:"verified"`
}

func (s *Seller) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		*s = Seller{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*s = Seller{ID: ID(id)}
		return nil
	}

	var raw sellerJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Seller{ID: raw.ID, Name: raw.Name, TrustScore: raw.TrustScore, Verified: raw.Verified}
	if s.ID == "" {
		s.ID = raw.MongoID
	}
	return nil
}

// DisplayName falls back to the seller reference when the API did not
// populate the seller.
func (s Seller) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.ID == "" {
		return "unknown seller"
	}
	return "seller " + s.ID.String()
}

func (a *Asset) InStock() bool { return a.Quantity > 0 }

// AssetPage is one page of the asset listing as reported by the server.
type AssetPage struct {
	Assets []Asset `json:"assets"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
}

func (p *AssetPage) HasMore() bool { return p.Page < p.Pages }
