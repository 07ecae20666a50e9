package model

import "time"

// Service is a priced offering listed by exactly one professional.
//
// Fields:
//  ID             – primary key identifier.
//  ProfessionalID – owning professional's account id.
//  Name           – short title.
//  Description    – free text description.
//  Price          – non-negative price in the marketplace currency.
//  Categories     – optional tags used for filtering.
type Service struct {
	ID             uint64    // services.id
	ProfessionalID uint64    // services.professional_id
	Name           string    // services.name
	Description    string    // services.description
	Price          float64   // services.price
	Categories     []string  // services.categories (JSON)
	CreatedAt      time.Time // services.created_at
	UpdatedAt      time.Time // services.updated_at
}

// ServiceListing is a service joined with its owner's public fields and
// its rating summary, as shown in the catalog.
type ServiceListing struct {
	Service
	ProfessionalName     string
	ProfessionalLocation string
	Rating               RatingSummary
}

// ServiceFilter narrows a catalog listing.  Empty fields do not filter.
type ServiceFilter struct {
	Location string
	Category string
}
