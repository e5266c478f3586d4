package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tourbill/internal/models"
)

// CreateSyncTask enqueues a task for the audit worker.
func (db *DB) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	res, err := db.ExecContext(ctx, `
        INSERT INTO sync_queue (task_type, booking_id, payload, status, created_at)
        VALUES (?, ?, ?, 'pending', ?)`,
		task.TaskType, task.BookingID, task.Payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert sync task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sync task id: %w", err)
	}
	task.ID = id
	task.Status = "pending"
	return nil
}

// GetPendingSyncTasks returns tasks ready to run, oldest first.
func (db *DB) GetPendingSyncTasks(ctx context.Context, limit int) ([]*models.SyncTask, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT id, task_type, booking_id, payload, status, retry_count, last_error,
               created_at, processed_at, next_retry_at
        FROM sync_queue
        WHERE status IN ('pending', 'retry')
          AND (next_retry_at IS NULL OR next_retry_at <= ?)
        ORDER BY created_at ASC
        LIMIT ?`, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query pending sync tasks: %w", err)
	}
	defer rows.Close()

	return scanSyncTasks(rows)
}

// UpdateSyncTaskStatus records the outcome of a task attempt.
func (db *DB) UpdateSyncTaskStatus(ctx context.Context, id int64, status string, lastError string, nextRetryAt *time.Time) error {
	var err error
	switch status {
	case "completed":
		_, err = db.ExecContext(ctx, `
            UPDATE sync_queue
            SET status = ?, processed_at = ?, last_error = NULL, next_retry_at = NULL
            WHERE id = ?`, status, time.Now().UTC(), id)
	case "retry":
		_, err = db.ExecContext(ctx, `
            UPDATE sync_queue
            SET status = ?, retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
            WHERE id = ?`, status, lastError, nextRetryAt, id)
	default:
		_, err = db.ExecContext(ctx, `
            UPDATE sync_queue
            SET status = ?, last_error = ?, processed_at = ?
            WHERE id = ?`, status, lastError, time.Now().UTC(), id)
	}
	if err != nil {
		return fmt.Errorf("update sync task %d: %w", id, err)
	}
	return nil
}

// GetFailedSyncTasks returns terminally failed tasks for inspection.
func (db *DB) GetFailedSyncTasks(ctx context.Context, limit int) ([]*models.SyncTask, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT id, task_type, booking_id, payload, status, retry_count, last_error,
               created_at, processed_at, next_retry_at
        FROM sync_queue
        WHERE status = 'failed'
        ORDER BY created_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed sync tasks: %w", err)
	}
	defer rows.Close()

	return scanSyncTasks(rows)
}

func scanSyncTasks(rows *sql.Rows) ([]*models.SyncTask, error) {
	var tasks []*models.SyncTask
	for rows.Next() {
		task := &models.SyncTask{}
		if err := rows.Scan(
			&task.ID, &task.TaskType, &task.BookingID, &task.Payload,
			&task.Status, &task.RetryCount, &task.LastError,
			&task.CreatedAt, &task.ProcessedAt, &task.NextRetryAt,
		); err != nil {
			return nil, fmt.Errorf("scan sync task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync tasks: %w", err)
	}
	return tasks, nil
}
