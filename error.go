package influx

import (
	"fmt"
	"strings"
)

// notFoundPrefix is the documented InfluxDB 1.x message for a write or
// statement against an absent database, e.g. `database not found: "mydb"`.
const notFoundPrefix = "database not found"

// ValidationError reports caller-supplied point data that violates the
// line-protocol contract. It is returned before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError reports a network failure or timeout reaching the endpoint.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %s", e.URL, e.Err.Error())
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NotFoundError reports that the targeted database does not exist on the server.
type NotFoundError struct {
	Database string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Database != "" {
		return fmt.Sprintf("database %q: %s", e.Database, e.Message)
	}
	return e.Message
}

// ServerError reports any other non-success response from the server,
// carrying the original status and message.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// apiResults mirrors the response payload of the 1.x HTTP API. Errors come
// back either top-level or embedded in a statement result.
type apiResults struct {
	Results []apiStatement `json:"results"`
	Error   string         `json:"error"`
}

type apiStatement struct {
	StatementID int    `json:"statement_id"`
	Error       string `json:"error"`
}

// errorMessage extracts the error text carried by a response payload, or ""
// when the payload reports success. Only the single-statement form is
// inspected; this client never submits multi-statement queries.
func (r *apiResults) errorMessage() string {
	if r.Error != "" {
		return r.Error
	}
	if len(r.Results) == 1 {
		return r.Results[0].Error
	}
	return ""
}

// classifyServerMessage partitions a server error message into the one
// condition this client recovers from (database missing) and everything
// else. Any message that does not carry the exact 1.x signature is kept as
// a ServerError so unrelated failures are never masked as provisioning
// opportunities.
func classifyServerMessage(statusCode int, message string) error {
	if strings.HasPrefix(message, notFoundPrefix) {
		return &NotFoundError{Message: message}
	}
	return &ServerError{StatusCode: statusCode, Message: message}
}
