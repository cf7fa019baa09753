package medicalrecord

import (
	"strings"
	"time"
)

type MedicalRecord struct {
	ID                int64     `json:"id"`
	PatientID         int64     `json:"patient_id"`
	DoctorID          int64     `json:"doctor_id"`
	Diagnosis         string    `json:"diagnosis"`
	Prescriptions     string    `json:"prescriptions,omitempty"`
	TestResults       string    `json:"test_results,omitempty"`
	OngoingTreatments string    `json:"ongoing_treatments,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// RecordPatch lists the fields a doctor may amend. Nil fields are left as is.
type RecordPatch struct {
	Diagnosis         *string `json:"diagnosis,omitempty"`
	Prescriptions     *string `json:"prescriptions,omitempty"`
	TestResults       *string `json:"test_results,omitempty"`
	OngoingTreatments *string `json:"ongoing_treatments,omitempty"`
}

func (p RecordPatch) IsEmpty() bool {
	return p.Diagnosis == nil && p.Prescriptions == nil && p.TestResults == nil && p.OngoingTreatments == nil
}

// Apply copies the set fields of p onto r.
func (p RecordPatch) Apply(r *MedicalRecord) {
	if p.Diagnosis != nil {
		r.Diagnosis = *p.Diagnosis
	}
	if p.Prescriptions != nil {
		r.Prescriptions = *p.Prescriptions
	}
	if p.TestResults != nil {
		r.TestResults = *p.TestResults
	}
	if p.OngoingTreatments != nil {
		r.OngoingTreatments = *p.OngoingTreatments
	}
}

func (p RecordPatch) clearsDiagnosis() bool {
	return p.Diagnosis != nil && strings.TrimSpace(*p.Diagnosis) == ""
}
