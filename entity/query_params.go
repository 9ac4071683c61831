package entity

// QueryParams are the catalog list filters.
type QueryParams struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Keyword  string `form:"keyword"` // substring of name
	Name     string `form:"name"`    // exact name

	Architecture string `form:"architecture"`
	Status       string `form:"status"`
	Version      string `form:"version"`
	IsSystem     *bool  `form:"is_system"`

	// StoragePath looks up the single row owning that object key.
	StoragePath string `form:"storage_path"`
}

// PageResult is one page of a list query.
type PageResult struct {
	Total int64       `json:"total"`
	List  interface{} `json:"list"`
}
