package migration

import (
	"github.com/hashcol/hashcol/internal/annotation"
	"github.com/hashcol/hashcol/internal/descriptor"
	"github.com/hashcol/hashcol/internal/errors"
	"github.com/hashcol/hashcol/internal/sqlgen"
)

// Resolve inspects the operation's old/new annotation state and rewrites its
// payload according to the lifecycle transition table:
//
//	old      new       resolution
//	none     some(d)   create: computed type + expression, persisted
//	some(d)  some(d)   no-op: payload untouched
//	some(d1) some(d2)  alter: type + expression re-derived together from d2
//	some(d)  none      convert-to-plain: expression and markers cleared
//	none     none      operation is not hash-related, payload untouched
//
// Malformed annotation state is deliberately fatal: silently emitting wrong
// schema SQL is worse than aborting migration generation.
func Resolve(op *Operation) error {
	oldDesc, hadOld, err := decodeSide(op, op.OldAnnotations)
	if err != nil {
		return err
	}
	newDesc, hasNew, err := decodeSide(op, op.NewAnnotations)
	if err != nil {
		return err
	}

	switch {
	case !hadOld && !hasNew:
		// Ordinary column change, nothing for this engine to do.
		return nil

	case !hadOld && hasNew:
		return resolveComputed(op, newDesc)

	case hadOld && hasNew:
		if oldDesc.Equal(newDesc) {
			// Identical declaration: leave the host's operation untouched so
			// re-running the same model produces no spurious change.
			return nil
		}
		return resolveComputed(op, newDesc)

	default: // hadOld && !hasNew
		return resolvePlain(op)
	}
}

// resolveComputed rewrites the payload for a create or alter-definition
// transition. Storage width and expression are both derived from the new
// descriptor in the same step.
func resolveComputed(op *Operation, d descriptor.Descriptor) error {
	if err := sqlgen.CheckStorageType(d, op.ExplicitType); err != nil {
		return err
	}
	op.Payload = Payload{
		TypeSQL:    sqlgen.StorageType(d).SQL(),
		Expression: sqlgen.Expression(d),
		Persisted:  true,
		Computed:   true,
	}
	return nil
}

// resolvePlain rewrites the payload for a convert-to-plain transition: the
// column becomes ordinary and independently writable. The storage type is
// kept unless the user's new declaration specifies one.
func resolvePlain(op *Operation) error {
	typeSQL := op.Payload.TypeSQL
	if op.ExplicitType != "" {
		typeSQL = op.ExplicitType
	}
	op.Payload = Payload{
		TypeSQL:    typeSQL,
		Expression: "",
		Persisted:  false,
		Computed:   false,
	}
	return nil
}

// decodeSide re-materializes one side's descriptor. Decode re-validates, so
// hand-edited annotation state surfaces here with the column named.
func decodeSide(op *Operation, store map[string]string) (descriptor.Descriptor, bool, error) {
	if store == nil {
		return descriptor.Descriptor{}, false, nil
	}
	d, ok, err := annotation.Decode(op.Column, store)
	if err != nil {
		return descriptor.Descriptor{}, false, errors.Wrap(errors.ErrCategoryMigration, errors.CodeMalformedAnnotation,
			"table "+op.Table+", column "+op.Column+": cannot resolve transition", err)
	}
	return d, ok, nil
}
