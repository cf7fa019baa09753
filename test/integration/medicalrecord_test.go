//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic/clinic/internal/domain/audit"
	"github.com/clinic/clinic/internal/domain/medicalrecord"
	"github.com/clinic/clinic/internal/domain/notification"
	"github.com/clinic/clinic/internal/domain/user"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/auth"
)

func TestMedicalRecordWorkflow(t *testing.T) {
	ctx := context.Background()
	schema := newSchema(t, ctx, "mr")

	patient := createTestUser(t, ctx, schema, "pat", auth.RolePatient)
	other := createTestUser(t, ctx, schema, "pat2", auth.RolePatient)
	doctor := createTestUser(t, ctx, schema, "doc", auth.RoleDoctor)
	otherDoctor := createTestUser(t, ctx, schema, "doc2", auth.RoleDoctor)

	pool := globalDB.Pool
	auditSvc := audit.NewService(audit.NewRepoPG(pool))
	userSvc := user.NewService(user.NewRepoPG(pool), auth.NewPasswordHasher(4), nil, auditSvc)
	svc := medicalrecord.NewService(medicalrecord.NewRepoPG(pool), userSvc,
		notification.NewService(notification.NewRepoPG(pool)), auditSvc,
		medicalrecord.Options{NotifyOnUpdate: true})

	var recordID int64
	t.Run("Create", func(t *testing.T) {
		err := withSchemaConn(ctx, schema, func(ctx context.Context) error {
			var err error
			recordID, err = svc.CreateRecord(ctx, &medicalrecord.MedicalRecord{
				PatientID: patient.ID, DoctorID: doctor.ID, Diagnosis: "Flu",
			})
			if err != nil {
				return err
			}
			_, err = svc.CreateRecord(ctx, &medicalrecord.MedicalRecord{
				PatientID: other.ID, DoctorID: otherDoctor.ID, Diagnosis: "Sprain",
			})
			return err
		})
		require.NoError(t, err)
		assert.Positive(t, recordID)
	})

	t.Run("Update_PartialFields", func(t *testing.T) {
		err := withSchemaConn(ctx, schema, func(ctx context.Context) error {
			got, err := svc.UpdateRecord(ctx, recordID, medicalrecord.RecordPatch{
				TestResults: ptrStr("negative"),
			}, doctor.ID)
			if err != nil {
				return err
			}
			assert.Equal(t, "Flu", got.Diagnosis)
			assert.Equal(t, "negative", got.TestResults)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("Update_NotAuthor", func(t *testing.T) {
		err := withSchemaConn(ctx, schema, func(ctx context.Context) error {
			_, err := svc.UpdateRecord(ctx, recordID, medicalrecord.RecordPatch{Diagnosis: ptrStr("Cold")}, otherDoctor.ID)
			assert.True(t, errors.Is(err, apperr.ErrForbidden), "got %v", err)

			items, err := svc.GetMedicalRecords(ctx, patient.ID, auth.RolePatient)
			if err != nil {
				return err
			}
			require.Len(t, items, 1)
			assert.Equal(t, "Flu", items[0].Diagnosis)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("ListByRole", func(t *testing.T) {
		err := withSchemaConn(ctx, schema, func(ctx context.Context) error {
			mine, err := svc.GetMedicalRecords(ctx, patient.ID, auth.RolePatient)
			if err != nil {
				return err
			}
			for _, r := range mine {
				assert.Equal(t, patient.ID, r.PatientID)
			}

			authored, err := svc.GetMedicalRecords(ctx, otherDoctor.ID, auth.RoleDoctor)
			if err != nil {
				return err
			}
			require.Len(t, authored, 1)
			assert.Equal(t, "Sprain", authored[0].Diagnosis)

			all, err := svc.GetMedicalRecords(ctx, 0, auth.RoleAdmin)
			if err != nil {
				return err
			}
			assert.Len(t, all, 2)
			return nil
		})
		require.NoError(t, err)
	})
}
