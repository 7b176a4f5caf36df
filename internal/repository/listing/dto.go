package listing

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/estaterag/internal/db"
	domlisting "github.com/kailas-cloud/estaterag/internal/domain/listing"
)

// Hash field names besides the attribute names.
const (
	fieldID       = "id"
	fieldFullText = "full_text"
	fieldVector   = "vector"
)

// returnFields is what native search fetches per hit; the vector is left out.
var returnFields = []string{
	fieldID, fieldFullText,
	domlisting.FieldNeighborhood, domlisting.FieldNeighborhoodDescription,
	domlisting.FieldPrice, domlisting.FieldBedrooms, domlisting.FieldBathrooms,
	domlisting.FieldHouseSize, domlisting.FieldSchoolRating, domlisting.FieldTransitMinutes,
	domlisting.FieldDescription,
}

// buildHashFields flattens a listing into HSET fields.
func buildHashFields(l *domlisting.Listing) map[string]string {
	a := l.Attributes()
	return map[string]string{
		fieldID:                                 l.ID(),
		fieldFullText:                           l.FullText(),
		fieldVector:                             db.EncodeVector(l.Vector()),
		domlisting.FieldNeighborhood:            a.Neighborhood,
		domlisting.FieldNeighborhoodDescription: a.NeighborhoodDescription,
		domlisting.FieldPrice:                   formatNumber(a.Price),
		domlisting.FieldBedrooms:                formatNumber(a.Bedrooms),
		domlisting.FieldBathrooms:               formatNumber(a.Bathrooms),
		domlisting.FieldHouseSize:               formatNumber(a.HouseSize),
		domlisting.FieldSchoolRating:            formatNumber(a.SchoolRating),
		domlisting.FieldTransitMinutes:          formatNumber(a.TransitMinutes),
		domlisting.FieldDescription:             a.Description,
	}
}

// parseHashFields rebuilds a listing from hash fields. withVector controls
// whether the vector blob is expected.
func parseHashFields(id string, m map[string]string, withVector bool) (domlisting.Listing, error) {
	var (
		a   domlisting.Attributes
		err error
	)
	a.Neighborhood = m[domlisting.FieldNeighborhood]
	a.NeighborhoodDescription = m[domlisting.FieldNeighborhoodDescription]
	a.Description = m[domlisting.FieldDescription]

	numerics := []struct {
		name string
		dst  *float64
	}{
		{domlisting.FieldPrice, &a.Price},
		{domlisting.FieldBedrooms, &a.Bedrooms},
		{domlisting.FieldBathrooms, &a.Bathrooms},
		{domlisting.FieldHouseSize, &a.HouseSize},
		{domlisting.FieldSchoolRating, &a.SchoolRating},
		{domlisting.FieldTransitMinutes, &a.TransitMinutes},
	}
	for _, n := range numerics {
		if *n.dst, err = parseNumber(m[n.name]); err != nil {
			return domlisting.Listing{}, fmt.Errorf("field %s: %w", n.name, err)
		}
	}

	var vec []float32
	if withVector {
		if vec, err = db.DecodeVector(m[fieldVector]); err != nil {
			return domlisting.Listing{}, fmt.Errorf("field %s: %w", fieldVector, err)
		}
	}

	return domlisting.Reconstruct(id, a, m[fieldFullText], vec), nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return domlisting.Unknown, nil
	}
	return strconv.ParseFloat(s, 64)
}
