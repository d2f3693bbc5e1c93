package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"docintake/internal/config"
	"docintake/internal/logging"
	"docintake/internal/model"
)

// maxResponseBytes caps how much of a backend response is read.
const maxResponseBytes = 4 << 20

// Client is the HTTP implementation of Gateway. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	log     *slog.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient builds a client for the backend at cfg.BaseURL. Every call is
// bounded by cfg.Timeout; cfg.RequestsPerSecond > 0 paces outgoing requests.
func NewClient(cfg config.BackendConfig, log *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base url is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend base url must be absolute: %q", cfg.BaseURL)
	}
	if log == nil {
		log = logging.Discard()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 50
	transport.MaxIdleConnsPerHost = 25
	transport.IdleConnTimeout = 60 * time.Second

	c := &Client{
		base:    u,
		http:    &http.Client{Transport: otelhttp.NewTransport(transport)},
		timeout: cfg.Timeout,
		log:     log,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.base.String() }

// Ping checks that the backend answers its health route.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, c.endpoint("api", "health"), nil, nil)
}

func (c *Client) ListCandidates(ctx context.Context) ([]model.Candidate, error) {
	var out []model.Candidate
	if err := c.do(ctx, "list candidates", http.MethodGet, c.endpoint("api", "candidates"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCandidate(ctx context.Context, id model.ID) (*model.Candidate, error) {
	var out model.Candidate
	if err := c.do(ctx, "get candidate", http.MethodGet, c.endpoint("api", "candidates", id.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitResume(ctx context.Context, p Payload) (*ResumeResult, error) {
	var out ResumeResult
	if err := c.do(ctx, "submit resume", http.MethodPost, c.endpoint("api", "candidates", "upload"), &p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitDocument(ctx context.Context, candidateID model.ID, p Payload) (*DocumentResult, error) {
	const op = "submit document"
	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodPost, c.endpoint("api", "candidates", candidateID.String(), "submit-documents"), &p, &raw); err != nil {
		return nil, err
	}
	res, err := decodeDocumentResult(raw)
	if err != nil {
		return nil, &MalformedResponseError{Op: op, Err: err}
	}
	return res, nil
}

func (c *Client) RequestDocuments(ctx context.Context, candidateID model.ID) (*DocumentRequestResult, error) {
	p := Payload{ContentType: "application/json", Body: []byte("{}")}
	var out DocumentRequestResult
	if err := c.do(ctx, "request documents", http.MethodPost, c.endpoint("api", "candidates", candidateID.String(), "request-documents"), &p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) endpoint(segments ...string) string {
	return c.base.JoinPath(segments...).String()
}

// do issues one request and decodes a successful JSON body into out.
func (c *Client) do(ctx context.Context, op, method, endpoint string, p *Payload, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Op: op, Err: err}
		}
	}

	var body io.Reader
	if p != nil {
		body = bytes.NewReader(p.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if p != nil && p.ContentType != "" {
		req.Header.Set("Content-Type", p.ContentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend_request_failed", "op", op, "error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds())
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}
	c.log.Debug("backend_request", "op", op, "method", method, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: op, Status: resp.StatusCode, Message: backendMessage(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &MalformedResponseError{Op: op, Err: err}
	}
	return nil
}

// submittedDocument is one entry of the backend's "documents" array.
type submittedDocument struct {
	ID                 model.ID `json:"id"`
	Type               string   `json:"type"`
	Filename           string   `json:"filename"`
	Size               int64    `json:"size"`
	VerificationStatus string   `json:"verification_status"`
	DocumentNumber     string   `json:"document_number"`
	ExtractedName      string   `json:"extracted_name"`
	SimilarityScore    *float64 `json:"similarity_score"`
	Reason             string   `json:"reason"`
}

func (d submittedDocument) toDocument() model.Document {
	status := d.VerificationStatus
	if status == "" {
		status = model.VerificationSubmitted
	}
	return model.Document{
		ID:                 d.ID,
		Name:               d.Filename,
		Size:               d.Size,
		DocumentType:       d.Type,
		Status:             status,
		VerificationStatus: d.VerificationStatus,
		DocumentNumber:     d.DocumentNumber,
		ExtractedName:      d.ExtractedName,
		SimilarityScore:    d.SimilarityScore,
		VerificationReason: d.Reason,
	}
}

// decodeDocumentResult accepts either the backend's batch envelope
// ({"message", "documents": [...], "overall_status"}) or a single flat
// document in the camelCase display shape.
func decodeDocumentResult(raw []byte) (*DocumentResult, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	if _, ok := probe["documents"]; ok {
		var env struct {
			Message       string                 `json:"message"`
			Documents     []submittedDocument    `json:"documents"`
			OverallStatus model.ExtractionStatus `json:"overall_status"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		res := &DocumentResult{Message: env.Message, OverallStatus: env.OverallStatus}
		for _, d := range env.Documents {
			res.Documents = append(res.Documents, d.toDocument())
		}
		return res, nil
	}

	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	var msg struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &msg)
	return &DocumentResult{Message: msg.Message, Documents: []model.Document{doc}}, nil
}
