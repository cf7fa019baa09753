package medicalrecord

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const recordCols = `id, patient_id, doctor_id, diagnosis, COALESCE(prescriptions, ''),
	COALESCE(test_results, ''), COALESCE(ongoing_treatments, ''), timestamp`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(&m.ID, &m.PatientID, &m.DoctorID, &m.Diagnosis, &m.Prescriptions,
		&m.TestResults, &m.OngoingTreatments, &m.Timestamp)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *MedicalRecord) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_records (patient_id, doctor_id, diagnosis, prescriptions, test_results, ongoing_treatments)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id, timestamp`,
		m.PatientID, m.DoctorID, m.Diagnosis, m.Prescriptions, m.TestResults, m.OngoingTreatments,
	).Scan(&m.ID, &m.Timestamp)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*MedicalRecord, error) {
	m, err := scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, apperr.New(apperr.ErrNotFound, "Medical record not found")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Update writes only the columns set in patch; the column names are fixed here
// and never taken from the request.
func (r *repoPG) Update(ctx context.Context, id int64, patch RecordPatch) error {
	sets := []string{}
	args := []interface{}{id}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("diagnosis", patch.Diagnosis)
	add("prescriptions", patch.Prescriptions)
	add("test_results", patch.TestResults)
	add("ongoing_treatments", patch.OngoingTreatments)
	if len(sets) == 0 {
		return nil
	}

	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE medical_records SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	return err
}

func (r *repoPG) List(ctx context.Context) ([]*MedicalRecord, error) {
	return r.list(ctx, `SELECT `+recordCols+` FROM medical_records ORDER BY timestamp DESC, id DESC`)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int64) ([]*MedicalRecord, error) {
	return r.list(ctx, `SELECT `+recordCols+` FROM medical_records
		WHERE patient_id = $1 ORDER BY timestamp DESC, id DESC`, patientID)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID int64) ([]*MedicalRecord, error) {
	return r.list(ctx, `SELECT `+recordCols+` FROM medical_records
		WHERE doctor_id = $1 ORDER BY timestamp DESC, id DESC`, doctorID)
}

func (r *repoPG) list(ctx context.Context, query string, args ...interface{}) ([]*MedicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*MedicalRecord{}
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
