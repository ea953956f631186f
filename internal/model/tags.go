package model

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/hashcol/hashcol/pkg/types"
)

// TagKey is the struct tag read by the reflection front end.
// Format: `hashcol:"ALGORITHM,Source1,Source2,..."` on a []byte field.
const TagKey = "hashcol"

// FromStruct declares an entity from a Go struct. Field types map to
// property kinds; a hashcol tag on a []byte field declares a computed hash.
// The declaration goes through the same builder (and therefore the same
// normalizer) as every other front end.
func (b *Builder) FromStruct(name string, v interface{}) error {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("model: FromStruct requires a struct, got %s", t.Kind())
	}

	entity := b.Entity(name)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		kind, ok := kindOfField(field.Type)
		if !ok {
			return fmt.Errorf("model: %s.%s has unsupported field type %s", name, field.Name, field.Type)
		}

		pb := entity.Property(field.Name)
		setKind(pb, kind)
		if field.Type.Kind() == reflect.Ptr {
			pb.Nullable()
		}

		if tag, hasTag := field.Tag.Lookup(TagKey); hasTag {
			parts := strings.Split(tag, ",")
			if len(parts) < 2 {
				return fmt.Errorf("model: %s.%s: hashcol tag needs an algorithm and at least one source", name, field.Name)
			}
			sources := make([]string, 0, len(parts)-1)
			for _, s := range parts[1:] {
				sources = append(sources, strings.TrimSpace(s))
			}
			pb.HashOf(strings.TrimSpace(parts[0]), sources...)
		}
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

func kindOfField(t reflect.Type) (types.PropertyKind, bool) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return types.KindTime, true
	}
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return types.KindBytes, true
		}
		return "", false
	case reflect.String:
		return types.KindString, true
	case reflect.Int, reflect.Int32, reflect.Int64:
		return types.KindInt64, true
	case reflect.Float32, reflect.Float64:
		return types.KindFloat64, true
	case reflect.Bool:
		return types.KindBool, true
	default:
		return "", false
	}
}

func setKind(pb *PropertyBuilder, kind types.PropertyKind) {
	switch kind {
	case types.KindBytes:
		pb.Bytes()
	case types.KindString:
		pb.String()
	case types.KindInt64:
		pb.Int64()
	case types.KindFloat64:
		pb.Float64()
	case types.KindBool:
		pb.Bool()
	case types.KindTime:
		pb.Time()
	}
}
