// Package seed holds the mock tracking-board tables the service starts with.
package seed

import (
	"time"

	"github.com/jwalitptl/ed-orders/internal/model"
)

// Data is one consistent snapshot of the mock tables.
type Data struct {
	Patients []model.Patient
	Results  []model.LabResult
	Tasks    []model.Task
}

// Load builds the tables with timestamps relative to now, so the duplicate
// windows always have something to find.
func Load(now time.Time) Data {
	now = now.UTC()
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	stamp := func(d time.Duration) string { return ago(d).Format(time.RFC3339) }

	patients := []model.Patient{
		{MRN: "MRN-1001", Name: "Maria Alvarez", Age: 67, Sex: "F", Bed: "A3", ChiefComplaint: "Chest pain", Acuity: 2, Status: model.PatientStatusRoomed, AssignedTo: "dr-chen", ArrivedAt: ago(3 * time.Hour)},
		{MRN: "MRN-1002", Name: "James Okafor", Age: 45, Sex: "M", Bed: "B1", ChiefComplaint: "Fever, rigors", Acuity: 2, Status: model.PatientStatusRoomed, AssignedTo: "dr-chen", ArrivedAt: ago(5 * time.Hour)},
		{MRN: "MRN-1003", Name: "Linh Tran", Age: 29, Sex: "F", ChiefComplaint: "Ankle injury", Acuity: 4, Status: model.PatientStatusWaiting, ArrivedAt: ago(40 * time.Minute)},
		{MRN: "MRN-1004", Name: "Robert Haines", Age: 72, Sex: "M", Bed: "R2", ChiefComplaint: "Shortness of breath", Acuity: 1, Status: model.PatientStatusRoomed, AssignedTo: "dr-patel", ArrivedAt: ago(90 * time.Minute)},
		{MRN: "MRN-1005", Name: "Aisha Rahman", Age: 54, Sex: "F", Bed: "C4", ChiefComplaint: "Hyperglycemia", Acuity: 3, Status: model.PatientStatusAdmitted, AssignedTo: "dr-patel", ArrivedAt: ago(26 * time.Hour)},
		{MRN: "MRN-1006", Name: "Tomasz Nowak", Age: 38, Sex: "M", ChiefComplaint: "Laceration", Acuity: 5, Status: model.PatientStatusDischarged, ArrivedAt: ago(8 * time.Hour)},
	}

	results := []model.LabResult{
		{ID: "res-2001", PatientMRN: "MRN-1001", TestName: "Troponin I", Value: "0.09", Unit: "ng/mL", ReferenceRange: "<0.04", ResultedAt: stamp(2 * time.Hour), Critical: true},
		{ID: "res-2002", PatientMRN: "MRN-1001", TestName: "CBC", Value: "11.2", Unit: "K/uL", ReferenceRange: "4.5-11.0", ResultedAt: stamp(23 * time.Hour)},
		{ID: "res-2003", PatientMRN: "MRN-1001", TestName: "BMP", Value: "138", Unit: "mmol/L", ReferenceRange: "135-145", ResultedAt: stamp(30 * time.Hour)},
		{ID: "res-2004", PatientMRN: "MRN-1002", TestName: "Blood Culture", Value: "pending", ReferenceRange: "", ResultedAt: stamp(48 * time.Hour)},
		{ID: "res-2005", PatientMRN: "MRN-1002", TestName: "Lactate", Value: "3.1", Unit: "mmol/L", ReferenceRange: "0.5-2.2", ResultedAt: stamp(4 * time.Hour), Critical: true},
		{ID: "res-2006", PatientMRN: "MRN-1002", TestName: "CBC", Value: "15.8", Unit: "K/uL", ReferenceRange: "4.5-11.0", ResultedAt: stamp(4 * time.Hour)},
		{ID: "res-2007", PatientMRN: "MRN-1004", TestName: "BNP", Value: "820", Unit: "pg/mL", ReferenceRange: "<100", ResultedAt: stamp(80 * time.Minute)},
		{ID: "res-2008", PatientMRN: "MRN-1004", TestName: "Arterial Blood Gas", Value: "7.31", ReferenceRange: "7.35-7.45", ResultedAt: stamp(70 * time.Minute), Critical: true},
		{ID: "res-2009", PatientMRN: "MRN-1005", TestName: "Hemoglobin A1c", Value: "9.4", Unit: "%", ReferenceRange: "<5.7", ResultedAt: stamp(70 * time.Hour)},
		{ID: "res-2010", PatientMRN: "MRN-1005", TestName: "Glucose", Value: "312", Unit: "mg/dL", ReferenceRange: "70-99", ResultedAt: stamp(25 * time.Hour)},
		{ID: "res-2011", PatientMRN: "MRN-1005", TestName: "Potassium", Value: "3.2", Unit: "mmol/L", ReferenceRange: ">3.5", ResultedAt: stamp(25 * time.Hour)},
		// Upstream feed occasionally sends unreadable timestamps.
		{ID: "res-2012", PatientMRN: "MRN-1005", TestName: "BMP", Value: "140", Unit: "mmol/L", ReferenceRange: "135-145", ResultedAt: "yesterday 14:00"},
		{ID: "res-2013", PatientMRN: "MRN-1006", TestName: "CBC", Value: "7.4", Unit: "K/uL", ReferenceRange: "4.5-11.0", ResultedAt: stamp(7 * time.Hour)},
	}

	tasks := []model.Task{
		{ID: "task-3001", PatientMRN: "MRN-1001", Title: "Repeat troponin at 3h", AssignedTo: "dr-chen", Priority: model.TaskPriorityHigh, DueAt: now.Add(time.Hour)},
		{ID: "task-3002", PatientMRN: "MRN-1002", Title: "Follow up blood culture", AssignedTo: "dr-chen", Priority: model.TaskPriorityMedium, DueAt: now.Add(6 * time.Hour)},
		{ID: "task-3003", PatientMRN: "MRN-1004", Title: "Call cardiology re: BNP", AssignedTo: "dr-patel", Priority: model.TaskPriorityHigh, DueAt: now.Add(30 * time.Minute)},
		{ID: "task-3004", PatientMRN: "MRN-1005", Title: "Insulin sliding scale review", AssignedTo: "dr-patel", Priority: model.TaskPriorityMedium, DueAt: now.Add(2 * time.Hour)},
		{ID: "task-3005", PatientMRN: "MRN-1006", Title: "Discharge paperwork", AssignedTo: "nurse-kim", Priority: model.TaskPriorityLow, DueAt: ago(time.Hour), Completed: true, CompletedAt: timePtr(ago(30 * time.Minute))},
	}

	return Data{Patients: patients, Results: results, Tasks: tasks}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
