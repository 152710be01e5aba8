package entity

import (
	"sort"
	"time"
)

type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusReserved ListingStatus = "reserved"
	ListingStatusInactive ListingStatus = "inactive"
)

// Listing is a seller's offering of a product. The catalog owns it; the cart
// only reads it when a line is added or refreshed.
type Listing struct {
	ID          string
	ProductID   string
	CategoryID  string
	SellerID    string
	SellerName  string
	Title       string
	Description string
	ImageURL    string
	Price       float64
	Stock       int
	Status      ListingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (l *Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}

func (l *Listing) InStock() bool {
	return l.Stock > 0
}

type ListingFilter struct {
	Query      string
	CategoryID string
	MinPrice   float64
	MaxPrice   float64
	Page       int
	Limit      int
}

const (
	DefaultListingPageSize = 20
	MaxListingPageSize     = 100
)

// Normalize clamps paging parameters into their accepted ranges.
func (f ListingFilter) Normalize() ListingFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListingPageSize
	}
	if f.Limit > MaxListingPageSize {
		f.Limit = MaxListingPageSize
	}
	return f
}

type ListingPage struct {
	Listings []*Listing
	Total    int64
	Page     int
	Limit    int
}

type Category struct {
	ID       string
	Name     string
	Slug     string
	ParentID string
	Children []*Category
}

// BuildCategoryTree links flat categories through ParentID. Categories whose
// parent is unknown are treated as roots. Siblings are ordered by name.
func BuildCategoryTree(flat []*Category) []*Category {
	byID := make(map[string]*Category, len(flat))
	for _, c := range flat {
		c.Children = nil
		byID[c.ID] = c
	}

	roots := make([]*Category, 0)
	for _, c := range flat {
		parent, ok := byID[c.ParentID]
		if c.ParentID == "" || !ok || parent == c {
			roots = append(roots, c)
			continue
		}
		parent.Children = append(parent.Children, c)
	}

	sortCategories(roots)
	return roots
}

func sortCategories(cs []*Category) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
	for _, c := range cs {
		sortCategories(c.Children)
	}
}
