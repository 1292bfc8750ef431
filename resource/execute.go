package resource

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/goliatone/go-xero/core"
	"github.com/goliatone/go-xero/query"
)

// Result is one executed operation's outcome. Exactly one of Records,
// Document, or PDF is populated: Document for raw-response collections, PDF
// for application/pdf renditions, Records otherwise. Response always carries
// the raw transport outcome.
type Result struct {
	Records  any
	Document *etree.Document
	PDF      []byte
	Response core.TransportResponse
}

// Get fetches one record by id.
func (m *Manager) Get(ctx context.Context, id string, headers map[string]string) (Result, error) {
	descriptor, err := m.GetRequest(id, headers)
	if err != nil {
		return Result{}, err
	}
	return m.Execute(ctx, descriptor)
}

// All lists the whole collection.
func (m *Manager) All(ctx context.Context) (Result, error) {
	return m.Execute(ctx, m.AllRequest())
}

// Filter lists records matching the compiled criteria.
func (m *Manager) Filter(ctx context.Context, criteria query.Criteria) (Result, error) {
	descriptor, err := m.FilterRequest(criteria)
	if err != nil {
		return Result{}, err
	}
	return m.Execute(ctx, descriptor)
}

// ReportFilter fetches a sub-resource with report-style parameters.
func (m *Manager) ReportFilter(ctx context.Context, id string, criteria query.Criteria, headers map[string]string) (Result, error) {
	descriptor, err := m.ReportRequest(id, criteria, headers)
	if err != nil {
		return Result{}, err
	}
	return m.Execute(ctx, descriptor)
}

// Save updates existing records.
func (m *Manager) Save(ctx context.Context, data any) (Result, error) {
	descriptor, err := m.SaveRequest(data)
	if err != nil {
		return Result{}, err
	}
	return m.Execute(ctx, descriptor)
}

// Put creates new records.
func (m *Manager) Put(ctx context.Context, data any) (Result, error) {
	descriptor, err := m.PutRequest(data)
	if err != nil {
		return Result{}, err
	}
	return m.Execute(ctx, descriptor)
}

// Execute runs one descriptor: sign, transport, classify, decode. Form
// parameters participate in the OAuth signature before being encoded as the
// request body.
func (m *Manager) Execute(ctx context.Context, descriptor core.RequestDescriptor) (Result, error) {
	if m == nil || m.credentials == nil {
		return Result{}, fmt.Errorf("resource: manager requires credentials")
	}
	signing, err := m.credentials.SigningContext()
	if err != nil {
		return Result{}, err
	}

	header, err := signing.AuthorizationHeader(descriptor.Method, descriptor.URL, descriptor.Form)
	if err != nil {
		return Result{}, err
	}
	headers := map[string]string{"Authorization": header}
	for key, value := range descriptor.Headers {
		headers[key] = value
	}
	var body []byte
	if len(descriptor.Form) > 0 {
		body = []byte(url.Values(descriptor.Form).Encode())
		headers["Content-Type"] = "application/x-www-form-urlencoded"
	}

	if m.adapter == nil {
		return Result{}, fmt.Errorf("resource: manager requires a transport adapter")
	}

	res, err := m.adapter.Do(ctx, core.TransportRequest{
		Method:  descriptor.Method,
		URL:     descriptor.URL,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return Result{}, err
	}
	if err := core.ClassifyResponse(res); err != nil {
		m.logger.Debug("request failed",
			"collection", m.name,
			"method", descriptor.Method,
			"status", res.StatusCode,
		)
		return Result{Response: res}, err
	}

	if strings.HasPrefix(res.Header("Content-Type"), "application/pdf") {
		return Result{PDF: res.Body, Response: res}, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(res.Body); err != nil {
		return Result{Response: res}, fmt.Errorf("resource: parse %s response: %w", m.name, err)
	}
	if m.descriptor.RawResponse() {
		return Result{Document: doc, Response: res}, nil
	}

	decoded, err := m.descriptor.DecodeDocument(doc)
	if err != nil {
		return Result{Response: res}, err
	}
	return Result{Records: m.extractRecords(decoded), Response: res}, nil
}

// extractRecords unwraps the response envelope: an accumulated slice stays a
// slice, a map holding one record under the singular key yields that record,
// and any other collection entry is returned as decoded.
func (m *Manager) extractRecords(decoded any) any {
	response, ok := decoded.(map[string]any)
	if !ok {
		return nil
	}
	result, ok := response[m.name]
	if !ok {
		return nil
	}
	switch records := result.(type) {
	case []any:
		return records
	case map[string]any:
		if record, ok := records[m.descriptor.Singular]; ok {
			return record
		}
		return records
	default:
		return result
	}
}
