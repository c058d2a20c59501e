package trace

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed fixture.cue
var fixtureSchema string

// Schema checks the structure of fixture documents before their values
// are decoded.
type Schema struct {
	ctx   *cue.Context
	trace cue.Value
}

// NewSchema compiles the embedded fixture schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(fixtureSchema, cue.Filename("fixture.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile fixture schema: %w", err)
	}
	trace := v.LookupPath(cue.ParsePath("#Trace"))
	if err := trace.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Trace: %w", err)
	}
	return &Schema{ctx: ctx, trace: trace}, nil
}

// Validate reports a SchemaViolation if data does not have the shape of
// a trace. path names the document in errors and CUE positions.
func (s *Schema) Validate(data []byte, path string) error {
	doc := s.ctx.CompileBytes(data, cue.Filename(path))
	if err := doc.Err(); err != nil {
		return schemaError(path, err)
	}
	unified := s.trace.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return schemaError(path, err)
	}
	return nil
}

// schemaError keeps the first CUE error together with its position.
func schemaError(path string, err error) error {
	de := &DecodeError{Kind: KindSchemaViolation, Path: path, Step: -1, Err: err}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return de
	}
	first := errs[0]
	de.Message = first.Error()
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		pos := positions[0]
		de.Message = fmt.Sprintf("%d:%d: %s", pos.Line(), pos.Column(), first.Error())
	}
	return de
}
