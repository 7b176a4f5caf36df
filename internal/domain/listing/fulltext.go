package listing

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FullText renders attributes into the fixed sentence template used as the
// embedding input. Changing the template changes every future id.
func FullText(a Attributes) string {
	p := message.NewPrinter(language.English)

	parts := make([]string, 0, 8)
	parts = append(parts, "Neighborhood: "+a.Neighborhood)
	if a.NeighborhoodDescription != "" {
		parts = append(parts, "Area: "+a.NeighborhoodDescription)
	}
	parts = append(parts,
		p.Sprintf("Price: $%d", int64(a.Price)),
		p.Sprintf("Bedrooms: %d, Bathrooms: %s", int64(a.Bedrooms), formatOptional(a.Bathrooms)),
	)
	if a.HouseSize == Unknown {
		parts = append(parts, "Size: unknown")
	} else {
		parts = append(parts, p.Sprintf("Size: %d sqft", int64(a.HouseSize)))
	}
	if a.SchoolRating == Unknown {
		parts = append(parts, "School rating: unknown")
	} else {
		parts = append(parts, "School rating: "+formatOptional(a.SchoolRating)+"/10")
	}
	if a.TransitMinutes == Unknown {
		parts = append(parts, "Transit: unknown")
	} else {
		parts = append(parts, "Transit: "+formatOptional(a.TransitMinutes)+" minutes to public transit")
	}
	if a.Description != "" {
		parts = append(parts, "Details: "+a.Description)
	}
	return strings.Join(parts, ". ")
}

func formatOptional(v float64) string {
	if v == Unknown {
		return "unknown"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
