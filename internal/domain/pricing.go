package domain

// PricingRule is a per-vehicle-type tiered rate. BasePrice covers the
// first 4 km; PricePerKm is the marginal rate beyond that.
type PricingRule struct {
	ID           string
	VehicleType  string // unique label, matched against Trip.VehicleModel
	BasePrice    int64
	PricePerKm   int64
	DisplayOrder int
	Active       bool
}
