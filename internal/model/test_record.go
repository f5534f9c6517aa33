package model

// TestRecord is one historical lab test instance for a patient.
// PerformedAt is kept as the raw source value; callers parse it and must
// treat values that fail to parse as absent.
type TestRecord struct {
	ID          string `json:"id" db:"id"`
	PatientMRN  string `json:"patient_mrn" db:"patient_mrn"`
	TestName    string `json:"test_name" db:"test_name"`
	PerformedAt string `json:"performed_at" db:"performed_at"`
}
