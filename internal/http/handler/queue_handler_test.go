package handler

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"backend-clinic/internal/config"
	"backend-clinic/internal/helper"
	"backend-clinic/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDoctorUserID int64 = 7

func setupQueueTest(t *testing.T) (sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)

	config.DB = db
	config.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return mock, mr
}

func newQueueTestApp() *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", testDoctorUserID)
		return c.Next()
	})
	app.Put("/api/queue/status", UpdateQueueStatus)
	app.Put("/api/queue/call-next", CallNextQueue)
	return app
}

func putJSON(t *testing.T, app *fiber.App, path, body string) (int, string) {
	req := httptest.NewRequest("PUT", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(raw)
}

func emptyStaleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "token_number"})
}

func doctorRow(isPaused int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "specialization", "is_paused", "last_token_called",
		"last_called_date", "current_session",
	}).AddRow(1, testDoctorUserID, "General Medicine", isPaused, 0, nil, nil)
}

func queueItemRows(id int64, token int, queueStatus, bookingStatus string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "doctor_id", "token_number", "queue_status", "booking_status",
		"priority", "service_date",
	}).AddRow(id, testDoctorUserID, token, queueStatus, bookingStatus,
		models.PriorityNormal, helper.Today())
}

func TestCallNextRejectedWhileConsultationActive(t *testing.T) {
	mock, _ := setupQueueTest(t)
	app := newQueueTestApp()

	mock.ExpectQuery("SELECT id, token_number FROM appointments").
		WillReturnRows(emptyStaleRows())
	mock.ExpectQuery("SELECT id, user_id, specialization").
		WillReturnRows(doctorRow(0))
	mock.ExpectQuery("SELECT id FROM appointments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	code, body := putJSON(t, app, "/api/queue/call-next", "{}")

	assert.Equal(t, fiber.StatusConflict, code)
	assert.Contains(t, body, "already in consultation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallNextRejectedWhilePaused(t *testing.T) {
	mock, _ := setupQueueTest(t)
	app := newQueueTestApp()

	mock.ExpectQuery("SELECT id, token_number FROM appointments").
		WillReturnRows(emptyStaleRows())
	mock.ExpectQuery("SELECT id, user_id, specialization").
		WillReturnRows(doctorRow(1))

	code, body := putJSON(t, app, "/api/queue/call-next", "{}")

	assert.Equal(t, fiber.StatusConflict, code)
	assert.Contains(t, body, "paused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallRejectedOnUnconfirmedBooking(t *testing.T) {
	mock, _ := setupQueueTest(t)
	app := newQueueTestApp()

	// Unpaid booking still sitting at queue_status = 'Waiting'.
	mock.ExpectQuery("SELECT id, doctor_id, token_number").
		WillReturnRows(queueItemRows(5, 3, models.QueueWaiting, models.BookingPending))

	code, body := putJSON(t, app, "/api/queue/status",
		`{"appointment_id":5,"status":"In-Consultation"}`)

	assert.Equal(t, fiber.StatusConflict, code)
	assert.Contains(t, body, "not confirmed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Calling a token and completing it leaves last_token_called at that token:
// the call writes it once, the completion never touches the doctors row.
func TestCallThenCompleteKeepsLastTokenCalled(t *testing.T) {
	mock, mr := setupQueueTest(t)
	app := newQueueTestApp()

	today := helper.Today()
	nowKey := helper.NowServingKey(testDoctorUserID, today)

	// Call leg.
	mock.ExpectQuery("SELECT id, doctor_id, token_number").
		WillReturnRows(queueItemRows(9, 4, models.QueueWaiting, models.BookingConfirmed))
	mock.ExpectQuery("SELECT id, token_number FROM appointments").
		WillReturnRows(emptyStaleRows())
	mock.ExpectQuery("SELECT id, user_id, specialization").
		WillReturnRows(doctorRow(0))
	mock.ExpectQuery("SELECT id FROM appointments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("UPDATE appointments SET queue_status").
		WithArgs(models.QueueInConsultation, 9, models.QueueWaiting, models.BookingConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE doctors SET last_token_called").
		WithArgs(4, today, testDoctorUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO queue_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	code, body := putJSON(t, app, "/api/queue/status",
		`{"appointment_id":9,"status":"In-Consultation"}`)

	require.Equal(t, fiber.StatusOK, code, body)

	served, err := mr.Get(nowKey)
	require.NoError(t, err)
	assert.Equal(t, "4", served)

	// Complete leg: no doctors UPDATE is expected, so last_token_called
	// stays at the completed token.
	mock.ExpectQuery("SELECT id, doctor_id, token_number").
		WillReturnRows(queueItemRows(9, 4, models.QueueInConsultation, models.BookingConfirmed))
	mock.ExpectExec("UPDATE appointments SET queue_status").
		WithArgs(models.QueueCompleted, models.BookingCompleted, 9, models.QueueInConsultation).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO queue_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	code, body = putJSON(t, app, "/api/queue/status",
		`{"appointment_id":9,"status":"Completed"}`)

	require.Equal(t, fiber.StatusOK, code, body)
	assert.False(t, mr.Exists(nowKey), "completed token should not stay on the now-serving mirror")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Skipping the patient in consultation clears the now-serving mirror, and
// skipping a waiting patient leaves it alone.
func TestSkipClearsNowServingMirrorOnlyForActiveItem(t *testing.T) {
	mock, mr := setupQueueTest(t)
	app := newQueueTestApp()

	today := helper.Today()
	nowKey := helper.NowServingKey(testDoctorUserID, today)
	require.NoError(t, mr.Set(nowKey, "4"))

	mock.ExpectQuery("SELECT id, doctor_id, token_number").
		WillReturnRows(queueItemRows(9, 4, models.QueueInConsultation, models.BookingConfirmed))
	mock.ExpectExec("UPDATE appointments SET queue_status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO queue_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	code, _ := putJSON(t, app, "/api/queue/status",
		`{"appointment_id":9,"status":"Skipped"}`)

	require.Equal(t, fiber.StatusOK, code)
	assert.False(t, mr.Exists(nowKey))

	require.NoError(t, mr.Set(nowKey, "4"))

	mock.ExpectQuery("SELECT id, doctor_id, token_number").
		WillReturnRows(queueItemRows(11, 6, models.QueueWaiting, models.BookingConfirmed))
	mock.ExpectExec("UPDATE appointments SET queue_status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO queue_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	code, _ = putJSON(t, app, "/api/queue/status",
		`{"appointment_id":11,"status":"Skipped"}`)

	require.Equal(t, fiber.StatusOK, code)
	served, err := mr.Get(nowKey)
	require.NoError(t, err)
	assert.Equal(t, "4", served)
	assert.NoError(t, mock.ExpectationsWereMet())
}
