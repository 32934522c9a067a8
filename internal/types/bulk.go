package types

const (
	BulkStatusSuccess = "success"
	BulkStatusFailed  = "failed"
)

// BulkUploadResult records the outcome of one file in a bulk upload. A failed
// file never aborts its siblings.
type BulkUploadResult struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	ID       uint   `json:"id,omitempty"`
	Error    string `json:"error,omitempty"`
}

type BulkUploadResponse struct {
	TotalProcessed int                `json:"total_processed"`
	Successful     int                `json:"successful"`
	Failed         int                `json:"failed"`
	Results        []BulkUploadResult `json:"results"`
}

// BulkActionResult records the outcome of one id in bulk approve or delete.
type BulkActionResult struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type BulkActionResponse struct {
	TotalProcessed int                `json:"total_processed"`
	Successful     int                `json:"successful"`
	Failed         int                `json:"failed"`
	Results        []BulkActionResult `json:"results"`
}
