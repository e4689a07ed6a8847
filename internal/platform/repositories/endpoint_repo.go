package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"webhooksandbox/internal/platform/models"
)

const endpointColumns = `id, url, kinds, description, status, retry_count, last_triggered_at, last_error, created_at, updated_at`

type EndpointRepository struct {
	db *sql.DB
}

func NewEndpointRepository(db *sql.DB) *EndpointRepository {
	return &EndpointRepository{db: db}
}

func (r *EndpointRepository) Create(endpoint *models.Endpoint) error {
	now := time.Now().Unix()
	endpoint.ID = "ep_" + uuid.New().String()
	endpoint.CreatedAt = now
	endpoint.UpdatedAt = now
	if endpoint.Status == "" {
		endpoint.Status = models.EndpointStatusActive
	}

	kindsJSON, err := marshalKinds(endpoint.Kinds)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO endpoints (id, url, kinds, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, endpoint.ID, endpoint.URL, kindsJSON, endpoint.Description, endpoint.Status, endpoint.CreatedAt, endpoint.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEndpoint(row rowScanner) (*models.Endpoint, error) {
	var e models.Endpoint
	var kindsStr string
	var description sql.NullString
	var lastTriggeredAt sql.NullInt64
	var lastError sql.NullString

	err := row.Scan(&e.ID, &e.URL, &kindsStr, &description, &e.Status, &e.RetryCount, &lastTriggeredAt, &lastError, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	e.Description = description.String
	if lastTriggeredAt.Valid {
		e.LastTriggeredAt = lastTriggeredAt.Int64
	}
	if lastError.Valid {
		e.LastError = lastError.String
	}
	if err := json.Unmarshal([]byte(kindsStr), &e.Kinds); err != nil {
		return nil, err
	}

	return &e, nil
}

// GetByID returns sql.ErrNoRows when the endpoint does not exist.
func (r *EndpointRepository) GetByID(id string) (*models.Endpoint, error) {
	row := r.db.QueryRow(`SELECT `+endpointColumns+` FROM endpoints WHERE id = ?`, id)
	return scanEndpoint(row)
}

func (r *EndpointRepository) List() ([]*models.Endpoint, error) {
	return r.query(`SELECT ` + endpointColumns + ` FROM endpoints ORDER BY created_at DESC, id`)
}

// GetByKind returns active endpoints subscribed to kind.
func (r *EndpointRepository) GetByKind(kind string) ([]*models.Endpoint, error) {
	// Kinds live in a JSON column, so filtering happens here rather than in SQL.
	active, err := r.query(`SELECT `+endpointColumns+` FROM endpoints WHERE status = ? ORDER BY created_at, id`, models.EndpointStatusActive)
	if err != nil {
		return nil, err
	}

	var matched []*models.Endpoint
	for _, e := range active {
		if e.Subscribed(kind) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (r *EndpointRepository) query(query string, args ...any) ([]*models.Endpoint, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []*models.Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

func (r *EndpointRepository) Update(endpoint *models.Endpoint) error {
	kindsJSON, err := marshalKinds(endpoint.Kinds)
	if err != nil {
		return err
	}
	endpoint.UpdatedAt = time.Now().Unix()

	query := `
		UPDATE endpoints
		SET url = ?, kinds = ?, description = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	return expectOneRow(r.db.Exec(query, endpoint.URL, kindsJSON, endpoint.Description, endpoint.Status, endpoint.UpdatedAt, endpoint.ID))
}

func (r *EndpointRepository) Delete(id string) error {
	return expectOneRow(r.db.Exec(`DELETE FROM endpoints WHERE id = ?`, id))
}

func (r *EndpointRepository) UpdateLastTriggered(id string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE endpoints SET last_triggered_at = ? WHERE id = ?`, timestamp, id)
	return err
}

func (r *EndpointRepository) IncrementRetryCount(id string) error {
	_, err := r.db.Exec(`UPDATE endpoints SET retry_count = retry_count + 1 WHERE id = ?`, id)
	return err
}

func (r *EndpointRepository) ResetRetryCount(id string) error {
	_, err := r.db.Exec(`UPDATE endpoints SET retry_count = 0, last_error = NULL WHERE id = ?`, id)
	return err
}

func (r *EndpointRepository) UpdateLastError(id, lastError string) error {
	_, err := r.db.Exec(`UPDATE endpoints SET last_error = ? WHERE id = ?`, lastError, id)
	return err
}

func marshalKinds(kinds []string) (string, error) {
	if kinds == nil {
		kinds = []string{}
	}
	b, err := json.Marshal(kinds)
	return string(b), err
}

func expectOneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
