package helper

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"backend-clinic/internal/config"
	"backend-clinic/internal/models"
)

var (
	ErrDoctorNotFound = errors.New("doctor profile not found")
)

// Today returns the current service date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// DoctorForUser resolves the doctors row owned by a user account. The
// session columns come back day-scoped through the QueueState.
func DoctorForUser(userID int64) (models.Doctor, error) {
	var (
		d              models.Doctor
		isPaused       int
		lastCalledDate sql.NullString
		currentSession sql.NullString
	)

	query := `
		SELECT id, user_id, specialization, is_paused, last_token_called,
		       DATE_FORMAT(last_called_date, '%Y-%m-%d'), current_session
		FROM doctors WHERE user_id = ?
	`
	err := config.DB.QueryRow(query, userID).Scan(
		&d.ID,
		&d.UserID,
		&d.Specialization,
		&isPaused,
		&d.QueueState.LastTokenCalled,
		&lastCalledDate,
		&currentSession,
	)

	if err == sql.ErrNoRows {
		return d, ErrDoctorNotFound
	}

	if err != nil {
		return d, err
	}

	d.QueueState.IsPaused = isPaused == 1
	if lastCalledDate.Valid {
		d.QueueState.LastCalledDate = lastCalledDate.String
	}
	if currentSession.Valid {
		d.QueueState.CurrentSession = currentSession.String
	}
	d.QueueState.LastTokenCalled = EffectiveLastToken(
		d.QueueState.LastTokenCalled, d.QueueState.LastCalledDate, Today())

	return d, nil
}

// AvailabilityForDoctor loads the weekly availability entries for a
// doctors row.
func AvailabilityForDoctor(doctorID int64) ([]models.Availability, error) {
	rows, err := config.DB.Query(`
		SELECT weekday, start_time, end_time
		FROM doctor_availabilities
		WHERE doctor_id = ?
	`, doctorID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var availability []models.Availability
	for rows.Next() {
		var a models.Availability
		if err := rows.Scan(&a.Weekday, &a.StartTime, &a.EndTime); err != nil {
			continue
		}
		availability = append(availability, a)
	}

	return availability, nil
}

// InsertQueueEvent appends to the queue event log. Failures are logged and
// swallowed; the event log never blocks a queue operation.
func InsertQueueEvent(appointmentID *int64, doctorID int64, event string, actorUserID *int64) {
	_, err := config.DB.Exec(`
		INSERT INTO queue_events
		(appointment_id, doctor_id, event, actor_user_id, created_at)
		VALUES (?, ?, ?, ?, NOW())
	`, appointmentID, doctorID, event, actorUserID)

	if err != nil {
		log.Printf("[queue] failed to log %s event: %v", event, err)
	}
}
