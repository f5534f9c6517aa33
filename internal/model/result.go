package model

// ResultFlag is the abnormal-value classification of a reported value.
type ResultFlag string

const (
	FlagNormal  ResultFlag = "normal"
	FlagHigh    ResultFlag = "high"
	FlagLow     ResultFlag = "low"
	FlagUnknown ResultFlag = "unknown"
)

// Abnormal is true only for a confident out-of-range classification.
func (f ResultFlag) Abnormal() bool {
	return f == FlagHigh || f == FlagLow
}

type LabResult struct {
	ID             string     `json:"id"`
	PatientMRN     string     `json:"patient_mrn"`
	TestName       string     `json:"test_name"`
	Value          string     `json:"value"`
	Unit           string     `json:"unit,omitempty"`
	ReferenceRange string     `json:"reference_range,omitempty"`
	ResultedAt     string     `json:"resulted_at"`
	Critical       bool       `json:"critical"`
	Flag           ResultFlag `json:"flag"`
	Abnormal       bool       `json:"abnormal"`
}

// TestRecord projects the result into the history shape used for
// duplicate detection.
func (r *LabResult) TestRecord() TestRecord {
	return TestRecord{
		ID:          r.ID,
		PatientMRN:  r.PatientMRN,
		TestName:    r.TestName,
		PerformedAt: r.ResultedAt,
	}
}

type ResultFilters struct {
	PatientMRN   string `form:"patient"`
	TestName     string `form:"test"`
	AbnormalOnly bool   `form:"abnormal"`
	CriticalOnly bool   `form:"critical"`
}

type ClassifyRequest struct {
	// Value may be a number or a string; zero is a legal value so presence
	// is checked by the handler.
	Value          interface{} `json:"value"`
	ReferenceRange string      `json:"reference_range"`
}
