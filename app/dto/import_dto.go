package dto

// ImportRowErrorDTO reports one rejected row from a bulk import. Row indexes
// are 1-based over the data rows; the header row does not count. RawRow
// carries the offending cells so the upload can be corrected without
// re-opening the file.
type ImportRowErrorDTO struct {
	Row    int      `json:"row" example:"5"`
	Reason string   `json:"reason" example:"phone number is required"`
	RawRow []string `json:"raw_row,omitempty"`
}

// ImportResultDTO summarizes the outcome of a bulk call import
type ImportResultDTO struct {
	TotalRows  int                 `json:"total_rows" example:"120"`
	Imported   int                 `json:"imported" example:"112"`
	Duplicates int                 `json:"duplicates" example:"5"`
	Errors     []ImportRowErrorDTO `json:"errors,omitempty"`
}
