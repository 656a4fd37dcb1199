package models

import "time"

// Record statuses stored on a report document.
const (
	StatusProcessing = "PROCESSING"
	StatusComplete   = "COMPLETE"
	StatusFailed     = "FAILED"
)

// Record represents the main Firestore document for a processed report.
// It tracks the processing status and carries everything derived from the PDF.
type Record struct {
	DocumentID            string       `firestore:"documentId" json:"document_id"`
	FileHash              string       `firestore:"fileHash,omitempty" json:"-"`
	Filename              string       `firestore:"filename" json:"filename"`
	GCSUri                string       `firestore:"gcsUri,omitempty" json:"gcs_uri"`
	Status                string       `firestore:"status" json:"status"`
	ErrorDetails          string       `firestore:"errorDetails,omitempty" json:"error_details,omitempty"`
	TotalPages            int          `firestore:"totalPages" json:"total_pages"`
	FullText              string       `firestore:"fullText,omitempty" json:"-"`
	Pages                 []PageText   `firestore:"pages,omitempty" json:"-"`
	Images                []ImageInfo  `firestore:"images" json:"images"`
	ReportInfo            ReportFields `firestore:"reportInfo" json:"report_info"`
	ProcessingTimeSeconds float64      `firestore:"processingTimeSeconds" json:"processing_time_seconds"`
	CreatedAt             time.Time    `firestore:"createdAt" json:"created_at"`
	UploadedBy            string       `firestore:"uploadedBy" json:"uploaded_by"`
	WorkflowExecutionID   string       `firestore:"workflowExecutionId,omitempty" json:"-"` // For traceability
}
