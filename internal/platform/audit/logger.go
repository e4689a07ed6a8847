package audit

import (
	"database/sql"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	ActionEndpointCreated = "endpoint.created"
	ActionEndpointUpdated = "endpoint.updated"
	ActionEndpointDeleted = "endpoint.deleted"
	ActionDispatched      = "notification.dispatched"
)

type Entry struct {
	ID           string                 `json:"id"`
	MerchantID   string                 `json:"merchant_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	IPAddress    string                 `json:"ip_address"`
	UserAgent    string                 `json:"user_agent"`
	CreatedAt    int64                  `json:"created_at"`
}

// Logger records changes made through the management API.
type Logger struct {
	db  *sql.DB
	now func() time.Time
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db, now: time.Now}
}

// Log writes an entry for the request. Failures are logged and swallowed so an
// audit problem never fails the operation being audited. A nil Logger is a no-op.
func (l *Logger) Log(r *http.Request, merchantID, action, resourceType, resourceID string, metadata map[string]interface{}) {
	if l == nil {
		return
	}

	entry := &Entry{
		ID:           "audit_" + uuid.New().String(),
		MerchantID:   merchantID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
		IPAddress:    "unknown",
		UserAgent:    "unknown",
		CreatedAt:    l.now().Unix(),
	}
	if r != nil {
		entry.IPAddress = remoteHost(r)
		if ua := r.UserAgent(); ua != "" {
			entry.UserAgent = ua
		}
	}

	var metaJSON []byte
	if metadata != nil {
		metaJSON, _ = json.Marshal(metadata)
	}

	query := `
		INSERT INTO audit_logs (id, merchant_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := l.db.Exec(query, entry.ID, entry.MerchantID, entry.Action, entry.ResourceType, entry.ResourceID,
		string(metaJSON), entry.IPAddress, entry.UserAgent, entry.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("action", action).Str("resource_id", resourceID).Msg("failed to write audit log")
	}
}

// Recent returns up to limit entries, newest first.
func (l *Logger) Recent(limit int) ([]*Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, merchant_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at
		FROM audit_logs ORDER BY created_at DESC, rowid DESC LIMIT ?
	`
	rows, err := l.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var merchantID, resourceID, metadata, ip, ua sql.NullString
		if err := rows.Scan(&e.ID, &merchantID, &e.Action, &e.ResourceType, &resourceID, &metadata, &ip, &ua, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.MerchantID = merchantID.String
		e.ResourceID = resourceID.String
		e.IPAddress = ip.String
		e.UserAgent = ua.String
		if metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
				return nil, err
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
