package sqldb

import (
	"context"
	"fmt"
)

func QueryItem[
	M any, // Model struct
	MP Scannable[M], // *Model Implementing Scannable[M]
](
	ctx context.Context,
	h Handle,
	rawSQLStmt string,
	args ...any, // variadic
) (*M, error) { // Returns the Pointer to the Newly Created Item
	row := h.QueryRow(ctx, rawSQLStmt, args...)
	return RowToItem[M, MP](row)
}

func RowToItem[
	M any, // Model struct
	MP Scannable[M], // *Model Implementing Scannable[M]
](row Row) (*M, error) { // Returns the Pointer to the Newly Created Item
	var item M     // struct with zero values for the fields
	p := MP(&item) // p is *M, which satisfies targetFieldsProvider interface
	err := row.Scan(p.TargetFields()...)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func QueryItems[
	M any, // Model struct
	MP Scannable[M], // *Model Implementing Scannable[M]
](
	ctx context.Context,
	h Handle,
	rawSQLStmt string,
	args ...any, // variadic
) ([]*M, error) { // Returns a Slice of Model-Pointers
	rows, err := h.QueryRows(ctx, rawSQLStmt, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	return RowsToItems[M, MP](rows)
}

// QueryItemsNamed is QueryItems for a named-parameter statement.
func QueryItemsNamed[
	M any,
	MP Scannable[M],
](
	ctx context.Context,
	s *Session,
	query string,
	values map[string]any,
) ([]*M, error) {
	q, args, err := s.named(query, values)
	if err != nil {
		return nil, err
	}
	return QueryItems[M, MP](ctx, s.Handle, q, args...)
}

// QueryItemNamed is QueryItem for a named-parameter statement.
// Returns ErrNoRows when nothing matched.
func QueryItemNamed[
	M any,
	MP Scannable[M],
](
	ctx context.Context,
	s *Session,
	query string,
	values map[string]any,
) (*M, error) {
	q, args, err := s.named(query, values)
	if err != nil {
		return nil, err
	}
	return QueryItem[M, MP](ctx, s.Handle, q, args...)
}

func RowsToItems[
	M any, // Model struct
	MP Scannable[M], // *Model Implementing Scannable[M]
](rows Rows) ([]*M, error) { // Returns a Slice of Model-Pointers
	var itemptrs []*M
	for rows.Next() {
		var item M     // struct with zero values for the fields
		p := MP(&item) // p is *M, which satisfies targetFieldsProvider interface
		// Scan the Fields of Each Row to the Fields of the new struct of the Model
		if err := rows.Scan(p.TargetFields()...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		itemptrs = append(itemptrs, &item) // Collect the pointers
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during iterating rows: %w", err)
	}
	return itemptrs, nil
}

// QueryMap queries items using rawSQLStmt and scan rows to a map[id]item
func QueryMap[
	M any, // Model struct
	MP ScannableIdentifiable[M, ID], // *Model Implementing ScannableIdentifiable[M, ID]
	ID comparable,
](
	ctx context.Context,
	h Handle,
	rawSQLStmt string,
	args ...any, // variadic
) (map[ID]*M, error) { // Returns a ItemsMap of ID to Model-Pointers
	rows, err := h.QueryRows(ctx, rawSQLStmt, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	return RowsToMap[M, MP, ID](rows)
}

// RowsToMap scan rows to a map[id]item
func RowsToMap[
	M any, // Model struct
	MP ScannableIdentifiable[M, ID], // *Model Implementing ScannableIdentifiable[M, ID]
	ID comparable,
](rows Rows) (map[ID]*M, error) { // Returns a ItemsMap of ID to Model-Pointers
	idItemptrs := map[ID]*M{}
	for rows.Next() {
		var item M
		p := MP(&item)
		if err := rows.Scan(p.TargetFields()...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		idItemptrs[p.GetID()] = &item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during iterating rows: %w", err)
	}
	return idItemptrs, nil
}

// ScanMap reads the current row into a column name -> value map.
func ScanMap(rows Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err = rows.Scan(dest...); err != nil {
		return nil, err
	}
	m := make(map[string]any, len(cols))
	for i, col := range cols {
		m[col] = values[i]
	}
	return m, nil
}
