package domain

import "github.com/shopspring/decimal"

type ListingType string

const (
	ListingTypeGoods      ListingType = "goods"
	ListingTypeClothing   ListingType = "clothing"
	ListingTypeElectronic ListingType = "electronic"
	ListingTypeVehicle    ListingType = "vehicle"
	ListingTypeRealEstate ListingType = "real_estate"
)

// Reservable reports whether a listing type can be held in a cart.
// Vehicles and real estate are sold as one-off purchases elsewhere.
func (t ListingType) Reservable() bool {
	return t != ListingTypeVehicle && t != ListingTypeRealEstate
}

type ListingStatus string

const (
	ListingStatusActive ListingStatus = "active"
	ListingStatusSold   ListingStatus = "sold"
	ListingStatusPaused ListingStatus = "paused"
)

// Listing is the engine's read model of a marketplace listing. Listing CRUD
// lives outside the engine; the only field the engine ever writes is Quantity,
// decremented at settlement.
type Listing struct {
	ID       string
	SellerID string
	Title    string
	Price    decimal.Decimal
	Quantity int
	Type     ListingType
	Status   ListingStatus
}

func (l Listing) Active() bool {
	return l.Status == ListingStatusActive
}
