package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"webhooksandbox/internal/platform/models"
)

const deliveryColumns = `id, endpoint_id, kind, subject_id, payload, signature, status, attempts, response_code, last_error, created_at, updated_at`

type DeliveryRepository struct {
	db *sql.DB
}

func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Create(d *models.Delivery) error {
	now := time.Now().Unix()
	d.ID = "dlv_" + uuid.New().String()
	d.Status = models.DeliveryStatusPending
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO deliveries (id, endpoint_id, kind, subject_id, payload, signature, status, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, d.ID, d.EndpointID, d.Kind, d.SubjectID, d.Payload, d.Signature, d.Status, d.Attempts, d.CreatedAt, d.UpdatedAt)
	return err
}

func scanDelivery(row rowScanner) (*models.Delivery, error) {
	var d models.Delivery
	var responseCode sql.NullInt64
	var lastError sql.NullString

	err := row.Scan(&d.ID, &d.EndpointID, &d.Kind, &d.SubjectID, &d.Payload, &d.Signature, &d.Status, &d.Attempts, &responseCode, &lastError, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if responseCode.Valid {
		d.ResponseCode = int(responseCode.Int64)
	}
	if lastError.Valid {
		d.LastError = lastError.String
	}
	return &d, nil
}

// GetByID returns sql.ErrNoRows when the delivery does not exist.
func (r *DeliveryRepository) GetByID(id string) (*models.Delivery, error) {
	return scanDelivery(r.db.QueryRow(`SELECT `+deliveryColumns+` FROM deliveries WHERE id = ?`, id))
}

func (r *DeliveryRepository) ListByEndpoint(endpointID string, limit int) ([]*models.Delivery, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(`SELECT `+deliveryColumns+` FROM deliveries WHERE endpoint_id = ? ORDER BY created_at DESC, id LIMIT ?`, endpointID, limit)
}

// ListRetryable returns failed deliveries that have been attempted fewer than
// maxAttempts times, oldest first.
func (r *DeliveryRepository) ListRetryable(maxAttempts int) ([]*models.Delivery, error) {
	return r.query(`SELECT `+deliveryColumns+` FROM deliveries WHERE status = ? AND attempts < ? ORDER BY created_at, id`, models.DeliveryStatusFailed, maxAttempts)
}

func (r *DeliveryRepository) query(query string, args ...any) ([]*models.Delivery, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []*models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// MarkDelivered records a successful attempt.
func (r *DeliveryRepository) MarkDelivered(d *models.Delivery, responseCode int) error {
	return r.recordAttempt(d, models.DeliveryStatusDelivered, responseCode, "")
}

// MarkFailed records a failed attempt. responseCode is zero when the request
// never got a response.
func (r *DeliveryRepository) MarkFailed(d *models.Delivery, responseCode int, lastError string) error {
	return r.recordAttempt(d, models.DeliveryStatusFailed, responseCode, lastError)
}

func (r *DeliveryRepository) recordAttempt(d *models.Delivery, status string, responseCode int, lastError string) error {
	d.Status = status
	d.Attempts++
	d.ResponseCode = responseCode
	d.LastError = lastError
	d.UpdatedAt = time.Now().Unix()

	var code sql.NullInt64
	if responseCode != 0 {
		code = sql.NullInt64{Int64: int64(responseCode), Valid: true}
	}
	var errStr sql.NullString
	if lastError != "" {
		errStr = sql.NullString{String: lastError, Valid: true}
	}

	query := `UPDATE deliveries SET status = ?, attempts = ?, response_code = ?, last_error = ?, updated_at = ? WHERE id = ?`
	return expectOneRow(r.db.Exec(query, d.Status, d.Attempts, code, errStr, d.UpdatedAt, d.ID))
}
