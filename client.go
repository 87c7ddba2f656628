// Package influx is a client for writing time series data to InfluxDB 1.x
// over its line-protocol HTTP API. Databases are provisioned transparently:
// a write against a database that does not exist yet creates it and retries
// the write once.
package influx

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"io/ioutil"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/AxiomExergy/influx-client/internal/gzip"
	ilog "github.com/AxiomExergy/influx-client/internal/log"
)

const userAgent = "influx-client Go"

// HTTPRequestDoer executes one HTTP request. Satisfied by *http.Client.
// The doer owned by a Client is shared by all concurrent callers and must be
// safe for concurrent use; connection pooling is delegated to it entirely.
type HTTPRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestCallback mutates a request before it is sent
type RequestCallback func(req *http.Request)

// ResponseCallback consumes the body of a success response
type ResponseCallback func(resp *http.Response) error

// Client provides administration of and writes to the databases of one
// InfluxDB server. A Client holds no database state of its own; the database
// name is supplied per call and its presence is re-derived from every
// response. Use a Registry (or the package-level GetClient) to share one
// Client per server URL.
type Client struct {
	serverURL string
	baseURL   *url.URL
	options   Options
	httpDoer  HTTPRequestDoer
	logger    ilog.Logger
}

// NewClient creates a Client for the InfluxDB server at serverURL with
// default options.
func NewClient(serverURL string) (*Client, error) {
	return NewClientWithOptions(serverURL, *DefaultOptions())
}

// NewClientWithOptions creates a Client for the InfluxDB server at serverURL.
// The URL is validated up front; no request is made.
func NewClientWithOptions(serverURL string, options Options) (*Client, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing server URL %q", serverURL)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Errorf("server URL %q must use http or https", serverURL)
	}
	if options.HTTPTimeout == 0 {
		options.HTTPTimeout = DefaultOptions().HTTPTimeout
	}
	c := &Client{
		serverURL: serverURL,
		baseURL:   base,
		options:   options,
		httpDoer: &http.Client{
			Timeout: options.HTTPTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				WriteBufferSize:     500 * 1024,
			},
		},
	}
	c.logger.SetDebugLevel(options.Debug)
	return c, nil
}

// Options returns the options the client was created with
func (c *Client) Options() *Options {
	return &c.options
}

// ServerURL returns the URL the client was created with
func (c *Client) ServerURL() string {
	return c.serverURL
}

// Ping checks the server is reachable and responding.
func (c *Client) Ping(ctx context.Context) (bool, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, "ping")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpDoer.Do(req)
	if err != nil {
		return false, &TransportError{URL: u.String(), Err: err}
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK, nil
}

// CreateDatabase issues CREATE DATABASE for the given name. Creating a
// database that already exists succeeds; the server treats the statement as
// idempotent.
func (c *Client) CreateDatabase(ctx context.Context, database string) error {
	c.logger.Debugf("creating database %q", database)
	return c.queryRequest(ctx, "CREATE DATABASE "+quoteIdent(database))
}

// DropDatabase issues DROP DATABASE for the given name. Dropping a database
// that does not exist fails with *NotFoundError.
func (c *Client) DropDatabase(ctx context.Context, database string) error {
	c.logger.Debugf("dropping database %q", database)
	err := c.queryRequest(ctx, "DROP DATABASE "+quoteIdent(database))
	var notFound *NotFoundError
	if stderrors.As(err, &notFound) {
		notFound.Database = database
	}
	return err
}

// Write encodes a single point and writes it to the given database,
// provisioning the database if it does not exist yet. Pass a zero ts to let
// the server assign the ingestion time.
func (c *Client) Write(ctx context.Context, database, measurement string, fields map[string]interface{}, tags map[string]string, ts time.Time) error {
	return c.WritePoint(ctx, database, NewPoint(measurement, tags, fields, ts))
}

// WritePoint encodes the given points and writes them to the given database
// in a single request. Invalid point data fails with *ValidationError before
// any request is made. If the server reports the database missing, the
// database is created and the same encoded body is resubmitted exactly once.
func (c *Client) WritePoint(ctx context.Context, database string, points ...*Point) error {
	if len(points) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.Grow(1024)
	for _, p := range points {
		if err := p.ToLineProtocolBuffer(&sb, c.options.Precision); err != nil {
			return err
		}
	}
	return c.writeBody(ctx, database, sb.String())
}

// WriteRecord writes raw line-protocol record(s) to the given database in a
// single request, with the same provisioning behavior as WritePoint. Records
// are not validated client-side.
func (c *Client) WriteRecord(ctx context.Context, database string, lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return c.writeBody(ctx, database, sb.String())
}

// writeBody submits one encoded write and applies the provision-and-retry
// policy: the single recovered condition is the server's "database not
// found" signature, answered by one CreateDatabase and one resubmission.
// Whatever the second attempt returns is final.
func (c *Client) writeBody(ctx context.Context, database, body string) error {
	err := c.sendWrite(ctx, database, body)
	var notFound *NotFoundError
	if !stderrors.As(err, &notFound) {
		return err
	}
	c.logger.Infof("database %q not found, creating it and retrying the write", database)
	if cerr := c.CreateDatabase(ctx, database); cerr != nil {
		c.logger.Errorf("creating database %q failed: %s", database, cerr.Error())
		return errors.Wrapf(cerr, "creating missing database %q", database)
	}
	if err = c.sendWrite(ctx, database, body); err != nil {
		if stderrors.As(err, &notFound) {
			notFound.Database = database
		}
		return err
	}
	return nil
}

// sendWrite performs one write attempt, no retries.
func (c *Client) sendWrite(ctx context.Context, database, body string) error {
	var reader io.Reader = strings.NewReader(body)
	if c.options.UseGZip {
		r, err := gzip.CompressWithGzip(reader, 6)
		if err != nil {
			return errors.Wrap(err, "compressing write body")
		}
		reader = r
	}
	c.logger.Debugf("writing to database %q:\n%s", database, body)
	return c.postRequest(ctx, c.writeURL(database), reader, func(req *http.Request) {
		if c.options.UseGZip {
			req.Header.Set("Content-Encoding", "gzip")
		}
	}, nil)
}

// queryRequest submits one InfluxQL statement to the query endpoint. The
// 1.x API reports some statement failures inside a 200 response, so the
// body is inspected even on success statuses.
func (c *Client) queryRequest(ctx context.Context, q string) error {
	return c.postRequest(ctx, c.queryURL(q), nil, nil, func(resp *http.Response) error {
		var r apiResults
		if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
			return errors.Wrap(err, "decoding query response")
		}
		if msg := r.errorMessage(); msg != "" {
			return classifyServerMessage(resp.StatusCode, msg)
		}
		return nil
	})
}

func (c *Client) postRequest(ctx context.Context, url string, body io.Reader, requestCallback RequestCallback, responseCallback ResponseCallback) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	if requestCallback != nil {
		requestCallback(req)
	}
	resp, err := c.httpDoer.Do(req)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleHTTPError(resp)
	}
	if responseCallback != nil {
		return responseCallback(resp)
	}
	return nil
}

// handleHTTPError turns a non-2xx response into a typed error. A JSON body
// carrying the "database not found" signature becomes *NotFoundError,
// anything else *ServerError with the original status and message.
func (c *Client) handleHTTPError(resp *http.Response) error {
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{URL: resp.Request.URL.String(), Err: err}
	}
	message := ""
	ctype, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if ctype == "application/json" {
		var r apiResults
		if err := json.Unmarshal(body, &r); err == nil {
			message = r.errorMessage()
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
		if message == "" {
			message = resp.Status
		}
	}
	return classifyServerMessage(resp.StatusCode, message)
}

func (c *Client) writeURL(database string) string {
	u := *c.baseURL
	u.Path = path.Join(u.Path, "write")
	params := u.Query()
	params.Set("db", database)
	params.Set("precision", precisionToString(c.options.Precision))
	u.RawQuery = params.Encode()
	return u.String()
}

func (c *Client) queryURL(q string) string {
	u := *c.baseURL
	u.Path = path.Join(u.Path, "query")
	params := u.Query()
	params.Set("q", q)
	u.RawQuery = params.Encode()
	return u.String()
}

// quoteIdent quotes an InfluxQL identifier such as a database name.
func quoteIdent(name string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(name) + `"`
}

// precisionToString maps a precision duration to the 1.x API token.
func precisionToString(precision time.Duration) string {
	prec := "ns"
	switch precision {
	case time.Microsecond:
		prec = "u"
	case time.Millisecond:
		prec = "ms"
	case time.Second:
		prec = "s"
	}
	return prec
}
