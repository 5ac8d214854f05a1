package common

// APIError is the body written for every failed request.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// Column describes one field of a resource schema for the metadata endpoint.
type Column struct {
	Name       string `json:"name"`
	Column     string `json:"column"`
	Type       string `json:"type"`
	IsPrimary  bool   `json:"is_primary"`
	Searchable bool   `json:"searchable"`
}

// TableMetadata is returned by GET /{resource}/_meta.
type TableMetadata struct {
	Resource string   `json:"resource"`
	Table    string   `json:"table"`
	Columns  []Column `json:"columns"`
}
