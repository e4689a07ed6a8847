package notifications

import (
	"encoding/base64"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// PayloadBuilder renders and encodes notification documents.
type PayloadBuilder struct {
	now func() time.Time
}

func NewPayloadBuilder() *PayloadBuilder {
	return &PayloadBuilder{now: time.Now}
}

// Document returns the raw notification XML for kind and id.
func (b *PayloadBuilder) Document(kind Kind, id string) string {
	timestamp := b.now().UTC().Format(timestampLayout)

	return Node("notification",
		LeafWithAttrs("timestamp", TypeDatetime, timestamp),
		Leaf("kind", kind.String()),
		Node("subject", subjectFor(kind)(id)),
	).String()
}

// BuildPayload returns the base64 encoded notification document as a single
// unbroken token.
func (b *PayloadBuilder) BuildPayload(kind Kind, id string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(b.Document(kind, id)))
	return strings.ReplaceAll(encoded, "\r", "")
}
