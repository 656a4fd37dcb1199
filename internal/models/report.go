package models

// PageText is the recognized text and geometry of a single page.
type PageText struct {
	PageNumber        int      `firestore:"pageNumber" json:"page_number"`
	Width             float64  `firestore:"width" json:"width"`
	Height            float64  `firestore:"height" json:"height"`
	Text              string   `firestore:"text" json:"text"`
	DetectedLanguages []string `firestore:"detectedLanguages" json:"detected_languages"`
}

// ExtractedImage is an embedded raster image that survived triage.
type ExtractedImage struct {
	Data       []byte
	PageNumber int
	MIMEType   string
	Width      int
	Height     int
}

// ImageInfo is the stored form of an ExtractedImage.
type ImageInfo struct {
	PageNumber int    `firestore:"pageNumber" json:"page_number"`
	GCSUri     string `firestore:"gcsUri" json:"gcs_uri"`
	Width      int    `firestore:"width" json:"width"`
	Height     int    `firestore:"height" json:"height"`
	MIMEType   string `firestore:"mimeType" json:"mime_type"`
}

// ReportFields holds the structured fields parsed from a report's text.
// A nil field means the value was not found.
type ReportFields struct {
	PatientName     *string `firestore:"patientName" json:"patient_name"`
	Species         *string `firestore:"species" json:"species"`
	Breed           *string `firestore:"breed" json:"breed"`
	Sex             *string `firestore:"sex" json:"sex"`
	Age             *string `firestore:"age" json:"age"`
	OwnerName       *string `firestore:"ownerName" json:"owner_name"`
	Veterinarian    *string `firestore:"veterinarian" json:"veterinarian"`
	Date            *string `firestore:"date" json:"date"`
	Diagnosis       *string `firestore:"diagnosis" json:"diagnosis"`
	Recommendations *string `firestore:"recommendations" json:"recommendations"`
}
