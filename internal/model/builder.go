package model

import (
	"log"

	"github.com/hashcol/hashcol/internal/annotation"
	"github.com/hashcol/hashcol/internal/descriptor"
	"github.com/hashcol/hashcol/pkg/types"
)

// Builder is the fluent declaration front end. All declaration styles (this
// builder, struct tags, YAML files) converge on the same normalization path
// in Build, so behavior cannot diverge by declaration style.
type Builder struct {
	entities []*EntityBuilder
}

// EntityBuilder accumulates property declarations for one entity.
type EntityBuilder struct {
	name       string
	properties []*PropertyBuilder
}

// PropertyBuilder accumulates a single property declaration.
type PropertyBuilder struct {
	name         string
	kind         types.PropertyKind
	nullable     bool
	explicitType string

	// pending raw hash declaration, normalized at Build time
	hashToken   string
	hashSources []string
	hasHash     bool
}

// NewBuilder creates an empty model builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Entity returns the builder for the named entity, creating it on first use.
func (b *Builder) Entity(name string) *EntityBuilder {
	for _, e := range b.entities {
		if e.name == name {
			return e
		}
	}
	e := &EntityBuilder{name: name}
	b.entities = append(b.entities, e)
	return e
}

// Property returns the builder for the named property, creating it on first
// use. Repeated calls for the same name return the same builder, so a later
// declaration overwrites an earlier one (last writer wins).
func (e *EntityBuilder) Property(name string) *PropertyBuilder {
	for _, p := range e.properties {
		if p.name == name {
			return p
		}
	}
	p := &PropertyBuilder{name: name, kind: types.KindString}
	e.properties = append(e.properties, p)
	return p
}

// Bytes declares the property as a byte sequence.
func (p *PropertyBuilder) Bytes() *PropertyBuilder {
	p.kind = types.KindBytes
	return p
}

// String declares the property as a string.
func (p *PropertyBuilder) String() *PropertyBuilder {
	p.kind = types.KindString
	return p
}

// Int64 declares the property as a 64-bit integer.
func (p *PropertyBuilder) Int64() *PropertyBuilder {
	p.kind = types.KindInt64
	return p
}

// Float64 declares the property as a double-precision float.
func (p *PropertyBuilder) Float64() *PropertyBuilder {
	p.kind = types.KindFloat64
	return p
}

// Bool declares the property as a boolean.
func (p *PropertyBuilder) Bool() *PropertyBuilder {
	p.kind = types.KindBool
	return p
}

// Time declares the property as a timestamp.
func (p *PropertyBuilder) Time() *PropertyBuilder {
	p.kind = types.KindTime
	return p
}

// Nullable marks the property as nullable.
func (p *PropertyBuilder) Nullable() *PropertyBuilder {
	p.nullable = true
	return p
}

// HasColumnType sets an explicit storage type. For computed-hash columns
// the renderer rejects any type other than the required BINARY(width).
func (p *PropertyBuilder) HasColumnType(sqlType string) *PropertyBuilder {
	p.explicitType = sqlType
	return p
}

// HashOf declares the property's value as a persisted hash of the named
// sibling columns, in the given order. A repeated call replaces the previous
// declaration (last writer wins).
func (p *PropertyBuilder) HashOf(algorithmToken string, sources ...string) *PropertyBuilder {
	p.hashToken = algorithmToken
	p.hashSources = append([]string(nil), sources...)
	p.hasHash = true
	return p
}

// ClearHash removes a pending hash declaration, reverting the property to an
// ordinary column.
func (p *PropertyBuilder) ClearHash() *PropertyBuilder {
	p.hasHash = false
	p.hashToken = ""
	p.hashSources = nil
	return p
}

// Build normalizes every declaration and produces the model. Any invalid
// hash declaration aborts the build; there is no partial-success mode.
func (b *Builder) Build() (*Model, error) {
	m := &Model{}
	for _, eb := range b.entities {
		entity := &Entity{Name: eb.name}
		for _, pb := range eb.properties {
			prop := &Property{
				Name:         pb.name,
				Kind:         string(pb.kind),
				Nullable:     pb.nullable,
				ExplicitType: pb.explicitType,
			}

			if pb.hasHash {
				d, err := descriptor.Normalize(pb.name, pb.kind, pb.hashToken, pb.hashSources)
				if err != nil {
					return nil, err
				}
				if !d.Algorithm.Secure() {
					log.Printf("[WARN] model: %s.%s uses insecure hash algorithm %s",
						eb.name, pb.name, d.Algorithm)
				}
				prop.Annotations = make(map[string]string)
				annotation.Encode(d, prop.Annotations)
			}

			entity.Properties = append(entity.Properties, prop)
		}
		m.Entities = append(m.Entities, entity)
	}
	return m, nil
}

// mustParseKind converts a stored kind string back to a PropertyKind.
// Unknown kinds fall back to string, matching the default column type.
func mustParseKind(s string) types.PropertyKind {
	k, err := types.ParseKind(s)
	if err != nil {
		return types.KindString
	}
	return k
}

// KindOf returns the property's kind as a typed value.
func (p *Property) KindOf() types.PropertyKind {
	return mustParseKind(p.Kind)
}
