package migration

import (
	"github.com/hashcol/hashcol/internal/model"
)

// Diff compares two models and emits one generic operation per changed
// column, carrying the annotation state of both sides. This is the
// coarse-grain detection a host migration framework performs; the resolver
// then rewrites each operation's payload.
//
// oldModel may be nil (first migration).
func Diff(oldModel, newModel *model.Model) []*Operation {
	var ops []*Operation

	oldEntities := make(map[string]*model.Entity)
	if oldModel != nil {
		for _, e := range oldModel.Entities {
			oldEntities[e.Name] = e
		}
	}

	for _, newEnt := range newModel.Entities {
		oldEnt := oldEntities[newEnt.Name]

		oldProps := make(map[string]*model.Property)
		if oldEnt != nil {
			for _, p := range oldEnt.Properties {
				oldProps[p.Name] = p
			}
		}

		for _, newProp := range newEnt.Properties {
			oldProp := oldProps[newProp.Name]
			delete(oldProps, newProp.Name)

			if oldProp == nil {
				ops = append(ops, &Operation{
					Kind:           OpAddColumn,
					Table:          newEnt.Name,
					Column:         newProp.Name,
					NewAnnotations: newProp.Annotations,
					ExplicitType:   newProp.ExplicitType,
					Payload:        defaultPayload(newProp),
				})
				continue
			}

			if propertiesEqual(oldProp, newProp) {
				continue
			}
			ops = append(ops, &Operation{
				Kind:           OpAlterColumn,
				Table:          newEnt.Name,
				Column:         newProp.Name,
				OldAnnotations: oldProp.Annotations,
				NewAnnotations: newProp.Annotations,
				ExplicitType:   newProp.ExplicitType,
				Payload:        defaultPayload(newProp),
			})
		}

		// Remaining old properties were removed.
		for _, oldProp := range orderedProperties(oldEnt, oldProps) {
			ops = append(ops, &Operation{
				Kind:           OpDropColumn,
				Table:          newEnt.Name,
				Column:         oldProp.Name,
				OldAnnotations: oldProp.Annotations,
			})
		}
	}

	return ops
}

// defaultPayload is what the host would emit before this engine rewrites it:
// the kind's default storage type, no expression.
func defaultPayload(p *model.Property) Payload {
	typeSQL := p.KindOf().SQLType()
	if p.ExplicitType != "" {
		typeSQL = p.ExplicitType
	}
	return Payload{TypeSQL: typeSQL}
}

// propertiesEqual reports whether a column needs no operation at all.
func propertiesEqual(a, b *model.Property) bool {
	if a.Kind != b.Kind || a.Nullable != b.Nullable || a.ExplicitType != b.ExplicitType {
		return false
	}
	if len(a.Annotations) != len(b.Annotations) {
		return false
	}
	for k, v := range a.Annotations {
		if b.Annotations[k] != v {
			return false
		}
	}
	return true
}

// orderedProperties returns the subset of remaining properties in the old
// entity's declared order, keeping drop operations deterministic.
func orderedProperties(e *model.Entity, remaining map[string]*model.Property) []*model.Property {
	if e == nil {
		return nil
	}
	var out []*model.Property
	for _, p := range e.Properties {
		if _, ok := remaining[p.Name]; ok {
			out = append(out, p)
		}
	}
	return out
}
