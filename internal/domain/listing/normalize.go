package listing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/estaterag/internal/domain"
)

const maxSchoolRating = 10

// MaxNumeric bounds every numeric attribute. It stays below 2^53 so whole
// values render exactly in the full text and never collide.
const MaxNumeric = 1e15

// unitSuffixes are stripped from numeric strings like "2,000 sqft".
var unitSuffixes = []string{"square feet", "sq. ft.", "sq ft", "sqft", "minutes", "mins", "min"}

func normalizeAttributes(raw RawRecord) (Attributes, error) {
	var (
		a   Attributes
		err error
	)

	if a.Neighborhood, err = stringField(raw, FieldNeighborhood, true); err != nil {
		return Attributes{}, err
	}
	// cases.Caser is stateful, one per call.
	a.Neighborhood = cases.Title(language.English).String(a.Neighborhood)

	if a.NeighborhoodDescription, err = stringField(raw, FieldNeighborhoodDescription, false); err != nil {
		return Attributes{}, err
	}
	if a.Description, err = stringField(raw, FieldDescription, false); err != nil {
		return Attributes{}, err
	}

	numerics := []struct {
		name     string
		required bool
		step     float64
		dst      *float64
	}{
		{FieldPrice, true, 1, &a.Price},
		{FieldBedrooms, true, 1, &a.Bedrooms},
		{FieldBathrooms, false, 0.5, &a.Bathrooms},
		{FieldHouseSize, false, 1, &a.HouseSize},
		{FieldSchoolRating, false, 0.1, &a.SchoolRating},
		{FieldTransitMinutes, false, 1, &a.TransitMinutes},
	}
	for _, n := range numerics {
		v, err := numberField(raw, n.name, n.required)
		if err != nil {
			return Attributes{}, err
		}
		if v != Unknown {
			v = roundTo(v, n.step)
		}
		*n.dst = v
	}

	if a.SchoolRating != Unknown && a.SchoolRating > maxSchoolRating {
		return Attributes{}, domain.NewValidationError(FieldSchoolRating, "must be between 0 and 10")
	}
	return a, nil
}

func stringField(raw RawRecord, name string, required bool) (string, error) {
	v, ok := raw[name]
	if !ok || v == nil {
		if required {
			return "", domain.NewValidationError(name, "is required")
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", domain.NewValidationError(name, fmt.Sprintf("expected string, got %T", v))
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" && required {
		return "", domain.NewValidationError(name, "is required")
	}
	return s, nil
}

func numberField(raw RawRecord, name string, required bool) (float64, error) {
	v, ok := raw[name]
	if !ok || v == nil {
		if required {
			return 0, domain.NewValidationError(name, "is required")
		}
		return Unknown, nil
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, domain.NewValidationError(name, "must be numeric")
		}
		f = parsed
	case string:
		parsed, empty, err := parseNumeric(t)
		if empty {
			if required {
				return 0, domain.NewValidationError(name, "is required")
			}
			return Unknown, nil
		}
		if err != nil {
			return 0, domain.NewValidationError(name, "must be numeric")
		}
		f = parsed
	default:
		return 0, domain.NewValidationError(name, fmt.Sprintf("expected number, got %T", v))
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.NewValidationError(name, "must be finite")
	}
	if f < 0 {
		return 0, domain.NewValidationError(name, "must not be negative")
	}
	if f > MaxNumeric {
		return 0, domain.NewValidationError(name, "must not exceed 1e15")
	}
	return f, nil
}

// parseNumeric accepts "$1,250,000", "2,000 sqft", "1.2M", "850k".
func parseNumeric(s string) (float64, bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, true, nil
	}
	s = strings.NewReplacer("$", "", ",", "", "_", "").Replace(s)
	for _, suffix := range unitSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "m"):
		mult, s = 1_000_000, strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "k"):
		mult, s = 1_000, strings.TrimSuffix(s, "k")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false, err
	}
	return f * mult, false, nil
}

func roundTo(v, step float64) float64 {
	r := math.Round(v/step) * step
	if step >= 1 {
		return r
	}
	// trim binary noise such as 8.500000000000002
	return math.Round(r*100) / 100
}
