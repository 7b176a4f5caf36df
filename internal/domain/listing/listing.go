// Package listing holds the canonical listing aggregate: normalization of raw
// records, the full-text rendering fed to the embedder, and the content-derived id.
package listing

// RawRecord is a listing as decoded from JSON, before normalization.
type RawRecord map[string]any

// Unknown is the sentinel for an absent optional numeric attribute.
const Unknown = -1.0

// Recognized attribute names, in template order.
const (
	FieldNeighborhood            = "neighborhood"
	FieldNeighborhoodDescription = "neighborhood_description"
	FieldPrice                   = "price"
	FieldBedrooms                = "bedrooms"
	FieldBathrooms               = "bathrooms"
	FieldHouseSize               = "house_size"
	FieldSchoolRating            = "school_rating"
	FieldTransitMinutes          = "transit_minutes"
	FieldDescription             = "description"
)

// Attributes is the normalized attribute set. Optional numerics hold Unknown
// when absent, optional strings hold "".
type Attributes struct {
	Neighborhood            string
	NeighborhoodDescription string
	Price                   float64
	Bedrooms                float64
	Bathrooms               float64
	HouseSize               float64
	SchoolRating            float64
	TransitMinutes          float64
	Description             string
}

// Listing is the listing aggregate (immutable value object).
type Listing struct {
	id       string
	attrs    Attributes
	fullText string
	vector   []float32
}

// Normalize validates a raw record and builds its canonical Listing (without vector).
func Normalize(raw RawRecord) (Listing, error) {
	attrs, err := normalizeAttributes(raw)
	if err != nil {
		return Listing{}, err
	}
	text := FullText(attrs)
	return Listing{id: ComputeID(text), attrs: attrs, fullText: text}, nil
}

// Reconstruct creates a Listing without validation (storage hydration).
func Reconstruct(id string, attrs Attributes, fullText string, vector []float32) Listing {
	return Listing{id: id, attrs: attrs, fullText: fullText, vector: vector}
}

// ID returns the content-derived identifier.
func (l *Listing) ID() string { return l.id }

// Attributes returns the normalized attributes.
func (l *Listing) Attributes() Attributes { return l.attrs }

// FullText returns the embedding input.
func (l *Listing) FullText() string { return l.fullText }

// Vector returns the embedding vector (nil before ingestion).
func (l *Listing) Vector() []float32 { return l.vector }

// WithVector returns a copy with the given vector set.
func (l *Listing) WithVector(v []float32) Listing {
	return Listing{id: l.id, attrs: l.attrs, fullText: l.fullText, vector: v}
}
