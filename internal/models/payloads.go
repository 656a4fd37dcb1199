package models

// These structs define the JSON payloads for the report API.

// UploadResponse is returned by POST /pdf/upload.
type UploadResponse struct {
	DocumentID            string       `json:"document_id"`
	Filename              string       `json:"filename"`
	GCSUri                string       `json:"gcs_uri"`
	TotalPages            int          `json:"total_pages"`
	Images                []ImageInfo  `json:"images"`
	ReportInfo            ReportFields `json:"report_info"`
	ProcessingTimeSeconds float64      `json:"processing_time_seconds"`
}

// RecordListResponse is returned by GET /pdf.
type RecordListResponse struct {
	Records []*Record `json:"records"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ProcessingHandoff is the argument passed to the post-processing workflow.
type ProcessingHandoff struct {
	DocumentID string `json:"documentId"`
	PageCount  int    `json:"pageCount"`
	ImageCount int    `json:"imageCount"`
}

// NewUploadResponse projects a stored record onto the upload response.
func NewUploadResponse(r *Record) UploadResponse {
	return UploadResponse{
		DocumentID:            r.DocumentID,
		Filename:              r.Filename,
		GCSUri:                r.GCSUri,
		TotalPages:            r.TotalPages,
		Images:                r.Images,
		ReportInfo:            r.ReportInfo,
		ProcessingTimeSeconds: r.ProcessingTimeSeconds,
	}
}

// GCSEvent is the payload of a storage object-finalized event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}
