package model

// TableCell is one cell of a reconciled table, with its grid placement and
// optional provenance rectangle.
type TableCell struct {
	Text         string `json:"text"`
	BBox         *BBox  `json:"bbox,omitempty"`
	RowSpan      int    `json:"row_span"`
	ColSpan      int    `json:"col_span"`
	StartRow     int    `json:"start_row_offset_idx"`
	EndRow       int    `json:"end_row_offset_idx"`
	StartCol     int    `json:"start_col_offset_idx"`
	EndCol       int    `json:"end_col_offset_idx"`
	ColumnHeader bool   `json:"column_header,omitempty"`
	RowHeader    bool   `json:"row_header,omitempty"`
}

// TableData is the cell structure of a table. The zero value (no rows, no
// columns, no cells) is the explicit sentinel for "no table data available",
// produced when no reference table clears the IoU cutoff.
type TableData struct {
	NumRows int         `json:"num_rows"`
	NumCols int         `json:"num_cols"`
	Cells   []TableCell `json:"cells,omitempty"`
}

// IsEmpty reports whether the data is the no-match sentinel.
func (t TableData) IsEmpty() bool {
	return t.NumRows == 0 && t.NumCols == 0 && len(t.Cells) == 0
}
