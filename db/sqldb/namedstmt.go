package sqldb

import (
	"context"
)

// NamedStmt is a prepared statement addressed by parameter name.
// Like the PreparedStmt it wraps, it is not safe for concurrent use.
type NamedStmt struct {
	parsed *ParsedStmt
	stmt   PreparedStmt
	args   *ArgSet
}

// PrepareNamed parses query and prepares it on h in the placeholder style of prefix.
// Parse failures are returned before anything is sent to the database.
func PrepareNamed(ctx context.Context, h Handle, prefix byte, query string) (*NamedStmt, error) {
	parsed, err := ParseStatement(query)
	if err != nil {
		return nil, err
	}
	return PrepareParsed(ctx, h, prefix, parsed)
}

// PrepareParsed prepares an already parsed statement, e.g. one from a StmtStore.
func PrepareParsed(ctx context.Context, h Handle, prefix byte, parsed *ParsedStmt) (*NamedStmt, error) {
	stmt, err := h.Prepare(ctx, parsed.Render(prefix))
	if err != nil {
		return nil, err
	}
	return &NamedStmt{parsed: parsed, stmt: stmt, args: NewArgSet(parsed.ParamCount())}, nil
}

func (s *NamedStmt) Parsed() *ParsedStmt { return s.parsed }

// Set binds v to every occurrence of name.
func (s *NamedStmt) Set(name string, v any) error {
	positions, err := s.parsed.ResolvePositions(name)
	if err != nil {
		return err
	}
	for _, pos := range positions {
		if err = BindValue(s.args, pos, v); err != nil {
			return err
		}
	}
	return nil
}

// SetParameters binds positional values, the first at ordinal 1.
func (s *NamedStmt) SetParameters(args ...any) error {
	return BindPositional(s.args, args...)
}

// Bind binds values by name. Values for undeclared names are ignored.
func (s *NamedStmt) Bind(values map[string]any) error {
	return BindNamed(s.parsed, values, s.args)
}

// ClearParameters unbinds every parameter.
func (s *NamedStmt) ClearParameters() { s.args.Clear() }

func (s *NamedStmt) Exec(ctx context.Context) (Result, error) {
	args, err := s.args.Args()
	if err != nil {
		return nil, err
	}
	return s.stmt.Exec(ctx, args...)
}

func (s *NamedStmt) Query(ctx context.Context) (Rows, error) {
	args, err := s.args.Args()
	if err != nil {
		return nil, err
	}
	return s.stmt.Query(ctx, args...)
}

func (s *NamedStmt) QueryRow(ctx context.Context) Row {
	args, err := s.args.Args()
	if err != nil {
		return errRow{err: err}
	}
	return s.stmt.QueryRow(ctx, args...)
}

// ExecWith binds values and executes in one step.
func (s *NamedStmt) ExecWith(ctx context.Context, values map[string]any) (Result, error) {
	s.args.Clear()
	if err := s.Bind(values); err != nil {
		return nil, err
	}
	return s.Exec(ctx)
}

// QueryWith binds values and queries in one step.
func (s *NamedStmt) QueryWith(ctx context.Context, values map[string]any) (Rows, error) {
	s.args.Clear()
	if err := s.Bind(values); err != nil {
		return nil, err
	}
	return s.Query(ctx)
}

func (s *NamedStmt) Close() error {
	return s.stmt.Close()
}

// errRow defers a bind failure to Scan, matching the lazy QueryRow contract.
type errRow struct {
	err error
}

func (r errRow) Scan(_ ...any) error { return r.err }
