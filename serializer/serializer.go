// Package serializer renders session envelopes into upload payloads.
// The format is pluggable; the pipeline ships with JSON and the backend
// speaks JSON, but the uploader only sees this interface.
package serializer

import (
	"encoding/json"

	"github.com/xping/xping-go/errors"
	"github.com/xping/xping-go/telemetry"
)

// Serializer renders a session to wire bytes.
//
// A serialization failure is a programming-bug signal (a record holding
// an unmarshalable value), so unlike transport failures it surfaces as
// an error rather than being folded into an UploadResult.
type Serializer interface {
	Serialize(session *telemetry.TestSession) ([]byte, error)
	ContentType() string
}

// JSON is the default Serializer.
type JSON struct{}

// NewJSON creates the JSON serializer.
func NewJSON() JSON {
	return JSON{}
}

// Serialize renders the session as JSON.
func (JSON) Serialize(session *telemetry.TestSession) ([]byte, error) {
	if session == nil {
		return nil, errors.New("cannot serialize nil session")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize session")
	}
	return payload, nil
}

// ContentType returns the MIME type of serialized payloads.
func (JSON) ContentType() string {
	return "application/json"
}
