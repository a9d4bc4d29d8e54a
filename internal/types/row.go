package types

import "encoding/json"

// Row is a single record keyed by column name.
type Row = map[string]any

// RowBatch is a homogeneous slice of rows, capped at the configured
// chunk size before being consumed by a single delete/archive transaction.
type RowBatch []Row

// Chunks splits rows into batches of at most size, preserving order.
// A non-positive size returns the whole batch as a single chunk.
func Chunks(rows RowBatch, size int) []RowBatch {
	if size <= 0 || len(rows) <= size {
		return []RowBatch{rows}
	}

	chunks := make([]RowBatch, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

// JSONWrap marshals map- and slice-typed column values to JSON so they can
// be inserted into a jsonb mirror column. Scalar values pass through
// unchanged.
func JSONWrap(value any) (any, error) {
	switch value.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return value, nil
	}
}

// JSONWrapRow applies JSONWrap to every value in row, returning a new row.
func JSONWrapRow(row Row) (Row, error) {
	wrapped := make(Row, len(row))
	for k, v := range row {
		w, err := JSONWrap(v)
		if err != nil {
			return nil, err
		}
		wrapped[k] = w
	}
	return wrapped, nil
}
