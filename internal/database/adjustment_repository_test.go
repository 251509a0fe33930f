package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewpoint/staff-events-backend/internal/models"
)

func TestAdjustmentAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAdjustmentRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		eventID := "evt-1"

		mock.ExpectQuery(`INSERT INTO point_adjustments`).
			WithArgs(sqlmock.AnyArg(), "staff-1", 50, "event participation: Spring fair", "admin-1", &eventID).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		adj := &models.PointAdjustment{
			StaffID: "staff-1",
			Delta:   50,
			Reason:  "event participation: Spring fair",
			ActorID: "admin-1",
			EventID: &eventID,
		}

		err := repo.Append(adj)
		require.NoError(t, err)
		assert.NotEmpty(t, adj.ID)
		assert.Equal(t, now, adj.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO point_adjustments`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Append(&models.PointAdjustment{StaffID: "staff-1", Delta: 10, Reason: "bonus", ActorID: "admin-1"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to append adjustment")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSumForStaff(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAdjustmentRepository(&mockDatabase{db: db})

	t.Run("Positive Sum", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(delta\), 0\)`).
			WithArgs("staff-1").
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(530))

		sum, err := repo.SumForStaff("staff-1")
		require.NoError(t, err)
		assert.Equal(t, 530, sum)
	})

	t.Run("Negative Sum Passes Through Raw", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(delta\), 0\)`).
			WithArgs("staff-2").
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(-120))

		sum, err := repo.SumForStaff("staff-2")
		require.NoError(t, err)
		assert.Equal(t, -120, sum)
	})

	t.Run("Empty Ledger", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(delta\), 0\)`).
			WithArgs("staff-3").
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

		sum, err := repo.SumForStaff("staff-3")
		require.NoError(t, err)
		assert.Equal(t, 0, sum)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByStaff(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAdjustmentRepository(&mockDatabase{db: db})
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM point_adjustments`).
		WithArgs("staff-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "staff_id", "delta", "reason", "actor_id", "event_id", "created_at",
		}).
			AddRow("adj-2", "staff-1", -50, "correction", "admin-1", nil, now).
			AddRow("adj-1", "staff-1", 50, "bonus", "admin-1", "evt-1", now.Add(-time.Hour)))

	adjustments, err := repo.ListByStaff("staff-1")
	require.NoError(t, err)
	require.Len(t, adjustments, 2)
	assert.Equal(t, -50, adjustments[0].Delta)
	assert.Nil(t, adjustments[0].EventID)
	require.NotNil(t, adjustments[1].EventID)
	assert.Equal(t, "evt-1", *adjustments[1].EventID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
