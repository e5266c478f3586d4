package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tourbill/internal/models"
)

// CreateBooking inserts the booking and its travelers in one transaction.
// The booking's ID and Version are set on success.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if b.Status == "" {
		b.Status = models.StatusPending
	}
	if b.Currency == "" {
		b.Currency = "USD"
	}

	var (
		scheduleStart, scheduleEnd sql.NullTime
		unitPrice                  float64
		totalSeats, bookedSeats    int64
	)
	if b.Schedule != nil {
		scheduleStart = sql.NullTime{Time: b.Schedule.StartDate, Valid: !b.Schedule.StartDate.IsZero()}
		scheduleEnd = sql.NullTime{Time: b.Schedule.EndDate, Valid: !b.Schedule.EndDate.IsZero()}
		unitPrice = b.Schedule.UnitPrice
		totalSeats = b.Schedule.TotalSeats
		bookedSeats = b.Schedule.BookedSeats
	}

	res, err := tx.ExecContext(ctx, `
        INSERT INTO bookings (
            reference, status, currency, authoritative_total,
            schedule_start, schedule_end, unit_price, total_seats, booked_seats,
            package_name, package_duration_days, cancel_reason,
            created_at, updated_at, version
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		b.Reference, b.Status, b.Currency, b.AuthoritativeTotal,
		scheduleStart, scheduleEnd, unitPrice, totalSeats, bookedSeats,
		b.Package.Name, b.Package.DurationDays, b.CancelReason,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("booking id: %w", err)
	}

	for i, tr := range b.Travelers {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO travelers (booking_id, position, name, email, phone, country)
            VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, tr.Name, tr.Email, tr.Phone, tr.Country,
		); err != nil {
			return fmt.Errorf("insert traveler %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	b.ID = id
	b.Version = 1
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// GetBooking loads a booking with its travelers ordered by position.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b := &models.Booking{}
	var (
		scheduleStart, scheduleEnd sql.NullTime
		unitPrice                  float64
		totalSeats, bookedSeats    int64
	)

	err := db.QueryRowContext(ctx, `
        SELECT id, reference, status, currency, authoritative_total,
               schedule_start, schedule_end, unit_price, total_seats, booked_seats,
               package_name, package_duration_days, cancel_reason,
               created_at, updated_at, version
        FROM bookings WHERE id = ?`, id,
	).Scan(
		&b.ID, &b.Reference, &b.Status, &b.Currency, &b.AuthoritativeTotal,
		&scheduleStart, &scheduleEnd, &unitPrice, &totalSeats, &bookedSeats,
		&b.Package.Name, &b.Package.DurationDays, &b.CancelReason,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query booking: %w", err)
	}

	if scheduleStart.Valid || scheduleEnd.Valid || unitPrice != 0 || totalSeats != 0 {
		b.Schedule = &models.ScheduleWindow{
			StartDate:   scheduleStart.Time,
			EndDate:     scheduleEnd.Time,
			UnitPrice:   unitPrice,
			TotalSeats:  totalSeats,
			BookedSeats: bookedSeats,
		}
	}

	rows, err := db.QueryContext(ctx, `
        SELECT name, email, phone, country
        FROM travelers WHERE booking_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query travelers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tr models.Traveler
		if err := rows.Scan(&tr.Name, &tr.Email, &tr.Phone, &tr.Country); err != nil {
			return nil, fmt.Errorf("scan traveler: %w", err)
		}
		b.Travelers = append(b.Travelers, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate travelers: %w", err)
	}

	return b, nil
}

// GetBookingByReference loads a booking by its human-facing reference.
func (db *DB) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	var id int64
	err := db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE reference = ?`, reference).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query booking by reference: %w", err)
	}
	return db.GetBooking(ctx, id)
}

// CancelBookingWithVersion marks a booking cancelled if the stored version
// still matches. An already cancelled booking is reported as such rather
// than as a version conflict.
func (db *DB) CancelBookingWithVersion(ctx context.Context, id int64, version int, reason string) error {
	res, err := db.ExecContext(ctx, `
        UPDATE bookings
        SET status = ?, cancel_reason = ?, updated_at = ?, version = version + 1
        WHERE id = ? AND version = ? AND status != ?`,
		models.StatusCancelled, reason, time.Now().UTC(), id, version, models.StatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return db.resolveConflict(ctx, id, models.StatusCancelled)
	}
	return nil
}

// RecoverBookingWithVersion returns a cancelled booking to pending.
func (db *DB) RecoverBookingWithVersion(ctx context.Context, id int64, version int) error {
	res, err := db.ExecContext(ctx, `
        UPDATE bookings
        SET status = ?, cancel_reason = '', updated_at = ?, version = version + 1
        WHERE id = ? AND version = ? AND status = ?`,
		models.StatusPending, time.Now().UTC(), id, version, models.StatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("recover booking: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var status string
		err := db.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&status)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("query status: %w", err)
		}
		if status != models.StatusCancelled {
			return ErrNotCancelled
		}
		return ErrConcurrentModification
	}
	return nil
}

// UpdateBookingStatusWithVersion moves a booking to the given status
// guarded by optimistic versioning.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id int64, version int, status string) error {
	res, err := db.ExecContext(ctx, `
        UPDATE bookings
        SET status = ?, updated_at = ?, version = version + 1
        WHERE id = ? AND version = ?`,
		status, time.Now().UTC(), id, version,
	)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := db.bookingExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) resolveConflict(ctx context.Context, id int64, terminalStatus string) error {
	var status string
	err := db.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query status: %w", err)
	}
	if status == terminalStatus {
		return ErrAlreadyCancelled
	}
	return ErrConcurrentModification
}

func (db *DB) bookingExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query booking: %w", err)
	}
	return true, nil
}
