package db

import (
	"strconv"
	"strings"
)

// IndexBuilder assembles an FT index definition over hashes.
//
//	def, err := db.NewIndex("estaterag:idx").
//		Prefix("estaterag:listing:").
//		Tag("neighborhood").
//		Numeric("price").
//		Vector("vector", db.VectorSpec{Algorithm: db.VectorHNSW, Dim: 1536}).
//		Build()
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a definition stored ON HASH.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, StorageType: StorageHash}}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldNumeric})
	return b
}

// Tag adds a TAG field.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldTag})
	return b
}

// Vector adds a VECTOR field. An empty distance means cosine.
func (b *IndexBuilder) Vector(name string, spec VectorSpec) *IndexBuilder {
	if spec.Distance == "" {
		spec.Distance = DistanceCosine
	}
	f := IndexField{
		Name:           name,
		Type:           IndexFieldVector,
		VectorAlgo:     spec.Algorithm,
		VectorDim:      spec.Dim,
		VectorDistance: spec.Distance,
	}
	switch spec.Algorithm {
	case VectorHNSW:
		f.VectorM, f.VectorEFConstruct = spec.M, spec.EFConstruct
	case VectorFlat:
		f.VectorBlockSize = spec.BlockSize
	}
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// String renders the definition like the FT.CREATE command, for logs.
func (idx *IndexDefinition) String() string {
	var sb strings.Builder
	sb.WriteString("FT.CREATE " + idx.Name)
	if idx.StorageType != "" {
		sb.WriteString(" ON " + string(idx.StorageType))
	}
	if len(idx.Prefixes) > 0 {
		sb.WriteString(" PREFIX " + strings.Join(idx.Prefixes, " "))
	}
	sb.WriteString(" SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		sb.WriteString(" " + f.Name)
		switch f.Type {
		case IndexFieldTag:
			sb.WriteString(" TAG")
		case IndexFieldNumeric:
			sb.WriteString(" NUMERIC")
		case IndexFieldVector:
			sb.WriteString(" VECTOR " + string(f.VectorAlgo) + " DIM " + strconv.Itoa(f.VectorDim))
		}
	}
	return sb.String()
}

// VectorField returns the vector field of the definition, if any.
func (idx *IndexDefinition) VectorField() (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Type == IndexFieldVector {
			return f, true
		}
	}
	return IndexField{}, false
}
