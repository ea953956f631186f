package migration

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"

	"github.com/hashcol/hashcol/internal/annotation"
	"github.com/hashcol/hashcol/internal/model"
	"github.com/hashcol/hashcol/internal/sqlgen"
)

// Plan is a resolved set of schema operations for one model transition.
type Plan struct {
	// ID uniquely identifies this generation run.
	ID string
	// Fingerprint is a murmur3 hash of the rendered script body, used to
	// detect whether a plan differs from a previously archived one.
	Fingerprint uint64
	Operations  []*Operation
}

// NewPlan diffs the two models and resolves every operation. Any malformed
// annotation state or incompatible explicit type aborts the plan; there is
// no partial-success mode.
func NewPlan(oldModel, newModel *model.Model) (*Plan, error) {
	ops := Diff(oldModel, newModel)
	for _, op := range ops {
		if err := Resolve(op); err != nil {
			return nil, err
		}
	}

	p := &Plan{
		ID:         uuid.NewString(),
		Operations: ops,
	}
	p.Fingerprint = murmur3.Sum64([]byte(p.scriptBody()))
	return p, nil
}

// Empty reports whether the plan contains no operations.
func (p *Plan) Empty() bool {
	return len(p.Operations) == 0
}

// Script renders the plan as a T-SQL migration script. The body is a pure
// function of the operations; only the header carries the per-run ID.
func (p *Plan) Script() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "-- hashcol migration %s\n", p.ID)
	fmt.Fprintf(&sb, "-- fingerprint: %016x\n\n", p.Fingerprint)
	sb.WriteString(p.scriptBody())
	return sb.String()
}

// scriptBody renders the statements without the header, so the fingerprint
// is stable across runs for the same model transition.
func (p *Plan) scriptBody() string {
	var sb strings.Builder
	for _, op := range p.Operations {
		writeStatements(&sb, op)
	}
	return sb.String()
}

// writeStatements renders one operation. SQL Server cannot redefine a
// computed column in place, so alter operations that touch a computed
// definition are rendered as drop-and-re-add.
func writeStatements(sb *strings.Builder, op *Operation) {
	table := sqlgen.Quote(op.Table)
	column := sqlgen.Quote(op.Column)

	switch op.Kind {
	case OpAddColumn:
		fmt.Fprintf(sb, "ALTER TABLE %s ADD %s;\n", table, columnClause(op))

	case OpAlterColumn:
		if op.Payload.Computed {
			fmt.Fprintf(sb, "ALTER TABLE %s DROP COLUMN %s;\n", table, column)
			fmt.Fprintf(sb, "ALTER TABLE %s ADD %s;\n", table, columnClause(op))
			return
		}
		if wasComputed(op) {
			// Convert-to-plain: the computed definition must go; the column
			// comes back as ordinary, writable storage.
			fmt.Fprintf(sb, "ALTER TABLE %s DROP COLUMN %s;\n", table, column)
			fmt.Fprintf(sb, "ALTER TABLE %s ADD %s %s NULL;\n", table, column, op.Payload.TypeSQL)
			return
		}
		fmt.Fprintf(sb, "ALTER TABLE %s ALTER COLUMN %s %s;\n", table, column, op.Payload.TypeSQL)

	case OpDropColumn:
		fmt.Fprintf(sb, "ALTER TABLE %s DROP COLUMN %s;\n", table, column)
	}
}

// columnClause renders the column definition for an ADD statement.
func columnClause(op *Operation) string {
	column := sqlgen.Quote(op.Column)
	if op.Payload.Computed {
		clause := fmt.Sprintf("%s AS (%s)", column, op.Payload.Expression)
		if op.Payload.Persisted {
			clause += " PERSISTED"
		}
		return clause
	}
	return fmt.Sprintf("%s %s NULL", column, op.Payload.TypeSQL)
}

// wasComputed reports whether the operation's old side carried a computed
// declaration. Resolve has already validated both sides at this point.
func wasComputed(op *Operation) bool {
	if op.OldAnnotations == nil {
		return false
	}
	_, ok := op.OldAnnotations[annotation.KeyComputed]
	return ok
}
