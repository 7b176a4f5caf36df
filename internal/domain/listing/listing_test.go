package listing

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/estaterag/internal/domain"
)

func fullRecord() RawRecord {
	return RawRecord{
		"neighborhood":             "  green   oaks ",
		"neighborhood_description": "Quiet, family friendly",
		"price":                    "$1,250,000",
		"bedrooms":                 3.0,
		"bathrooms":                2.4,
		"house_size":               "2,000 sqft",
		"school_rating":            8.46,
		"transit_minutes":          5,
		"description":              "Modern kitchen",
		"agent_phone":              "555-0100",
	}
}

func TestNormalize_FullRecord(t *testing.T) {
	l, err := Normalize(fullRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := l.Attributes()
	if a.Neighborhood != "Green Oaks" {
		t.Errorf("neighborhood = %q", a.Neighborhood)
	}
	if a.Price != 1_250_000 {
		t.Errorf("price = %v", a.Price)
	}
	if a.Bathrooms != 2.5 {
		t.Errorf("bathrooms = %v, want 2.5", a.Bathrooms)
	}
	if a.SchoolRating != 8.5 {
		t.Errorf("school_rating = %v, want 8.5", a.SchoolRating)
	}
	if a.HouseSize != 2000 {
		t.Errorf("house_size = %v", a.HouseSize)
	}

	want := "Neighborhood: Green Oaks. Area: Quiet, family friendly. Price: $1,250,000. " +
		"Bedrooms: 3, Bathrooms: 2.5. Size: 2,000 sqft. School rating: 8.5/10. " +
		"Transit: 5 minutes to public transit. Details: Modern kitchen"
	if l.FullText() != want {
		t.Errorf("full text:\n got %q\nwant %q", l.FullText(), want)
	}
	if l.ID() != ComputeID(want) {
		t.Errorf("id %q does not match full text digest", l.ID())
	}
	if l.Vector() != nil {
		t.Error("normalized listing must not carry a vector")
	}
}

func TestNormalize_MissingOptionals(t *testing.T) {
	l, err := Normalize(RawRecord{"neighborhood": "soma", "price": 500000, "bedrooms": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := l.Attributes()
	for name, v := range map[string]float64{
		"bathrooms": a.Bathrooms, "house_size": a.HouseSize,
		"school_rating": a.SchoolRating, "transit_minutes": a.TransitMinutes,
	} {
		if v != Unknown {
			t.Errorf("%s = %v, want sentinel", name, v)
		}
	}
	want := "Neighborhood: Soma. Price: $500,000. Bedrooms: 2, Bathrooms: unknown. " +
		"Size: unknown. School rating: unknown. Transit: unknown"
	if l.FullText() != want {
		t.Errorf("full text:\n got %q\nwant %q", l.FullText(), want)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	a, err := Normalize(fullRecord())
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		b, err := Normalize(fullRecord())
		if err != nil {
			t.Fatal(err)
		}
		if a.ID() != b.ID() || a.FullText() != b.FullText() {
			t.Fatalf("normalization not deterministic: %q vs %q", a.ID(), b.ID())
		}
	}
}

func TestNormalize_EquivalentInputsShareID(t *testing.T) {
	a, _ := Normalize(RawRecord{"neighborhood": "Green Oaks", "price": 1250000, "bedrooms": 3})
	b, _ := Normalize(RawRecord{"neighborhood": "green oaks", "price": "$1,250,000", "bedrooms": "3"})
	if a.ID() != b.ID() {
		t.Errorf("equivalent records got different ids: %q vs %q", a.ID(), b.ID())
	}
}

func TestNormalize_AttributeChangeChangesID(t *testing.T) {
	base, _ := Normalize(fullRecord())
	rec := fullRecord()
	rec["price"] = 1_250_001
	changed, err := Normalize(rec)
	if err != nil {
		t.Fatal(err)
	}
	if base.ID() == changed.ID() {
		t.Error("price change must change id")
	}
}

func TestNormalize_JSONNumber(t *testing.T) {
	var raw RawRecord
	dec := json.NewDecoder(strings.NewReader(`{"neighborhood":"a","price":900000,"bedrooms":1}`))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		t.Fatal(err)
	}
	l, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Attributes().Price != 900000 {
		t.Errorf("price = %v", l.Attributes().Price)
	}
}

func TestNormalize_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(RawRecord)
		field string
	}{
		{"missing neighborhood", func(r RawRecord) { delete(r, "neighborhood") }, FieldNeighborhood},
		{"blank neighborhood", func(r RawRecord) { r["neighborhood"] = "   " }, FieldNeighborhood},
		{"null price", func(r RawRecord) { r["price"] = nil }, FieldPrice},
		{"bool price", func(r RawRecord) { r["price"] = true }, FieldPrice},
		{"unparsable price", func(r RawRecord) { r["price"] = "call agent" }, FieldPrice},
		{"missing bedrooms", func(r RawRecord) { delete(r, "bedrooms") }, FieldBedrooms},
		{"negative bedrooms", func(r RawRecord) { r["bedrooms"] = -1 }, FieldBedrooms},
		{"school rating over 10", func(r RawRecord) { r["school_rating"] = 11 }, FieldSchoolRating},
		{"numeric description", func(r RawRecord) { r["description"] = 42 }, FieldDescription},
		{"nan bathrooms", func(r RawRecord) { r["bathrooms"] = "NaN" }, FieldBathrooms},
		{"price beyond bound", func(r RawRecord) { r["price"] = 1e19 }, FieldPrice},
		{"house size beyond bound", func(r RawRecord) { r["house_size"] = "5e19" }, FieldHouseSize},
		{"huge unsigned bedrooms", func(r RawRecord) { r["bedrooms"] = uint64(1 << 63) }, FieldBedrooms},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fullRecord()
			tt.mut(rec)
			_, err := Normalize(rec)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestNormalize_LargePricesKeepDistinctIDs(t *testing.T) {
	a := fullRecord()
	a["price"] = MaxNumeric
	b := fullRecord()
	b["price"] = MaxNumeric - 1

	la, err := Normalize(a)
	if err != nil {
		t.Fatalf("Normalize a: %v", err)
	}
	lb, err := Normalize(b)
	if err != nil {
		t.Fatalf("Normalize b: %v", err)
	}
	if la.ID() == lb.ID() {
		t.Fatalf("different prices share id %s", la.ID())
	}
	if !strings.Contains(la.FullText(), "Price: $1,000,000,000,000,000") {
		t.Errorf("full text = %q", la.FullText())
	}
	if !strings.Contains(lb.FullText(), "Price: $999,999,999,999,999") {
		t.Errorf("full text = %q", lb.FullText())
	}
}

func TestNormalize_AcceptsAnyIntegerKind(t *testing.T) {
	for _, v := range []any{int8(3), int16(3), uint(3), uint8(3), uint16(3), uint32(3), uint64(3)} {
		rec := fullRecord()
		rec["bedrooms"] = v
		l, err := Normalize(rec)
		if err != nil {
			t.Fatalf("%T: %v", v, err)
		}
		if l.Attributes().Bedrooms != 3 {
			t.Errorf("%T: bedrooms = %v, want 3", v, l.Attributes().Bedrooms)
		}
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,250,000", 1_250_000},
		{"1.2M", 1_200_000},
		{"850k", 850_000},
		{"2,000 sqft", 2000},
		{"12 minutes", 12},
		{" 7 ", 7},
	}
	for _, tt := range tests {
		got, empty, err := parseNumeric(tt.in)
		if err != nil || empty {
			t.Errorf("parseNumeric(%q): err=%v empty=%v", tt.in, err, empty)
			continue
		}
		if got != tt.want {
			t.Errorf("parseNumeric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComputeID(t *testing.T) {
	if got := ComputeID(""); got != "ef46db3751d8e999" {
		t.Errorf("ComputeID(\"\") = %q", got)
	}
	id := ComputeID("Neighborhood: X")
	if len(id) != 16 {
		t.Errorf("id length = %d, want 16", len(id))
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Fatalf("id %q is not lowercase hex", id)
		}
	}
	if id != ComputeID("Neighborhood: X") {
		t.Error("id not stable")
	}
}

func TestWithVector(t *testing.T) {
	l, _ := Normalize(fullRecord())
	v := l.WithVector([]float32{1, 2})
	if len(v.Vector()) != 2 || v.ID() != l.ID() {
		t.Error("WithVector must keep identity and set vector")
	}
	if l.Vector() != nil {
		t.Error("WithVector must not mutate the receiver")
	}
}
