// Package resource exposes one named API collection through the uniform verb
// set: Get, All, Filter, ReportFilter, Save, and Put. Every verb is a pure
// descriptor builder paired with one shared execute path that signs,
// transports, classifies, and decodes.
package resource

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-xero/codec"
	"github.com/goliatone/go-xero/core"
	"github.com/goliatone/go-xero/query"
	"github.com/goliatone/go-xero/transport"
)

// Manager binds one collection name to a credential and a transport.
type Manager struct {
	name       string
	descriptor *codec.Descriptor
	compiler   query.Compiler

	credentials core.SigningContextProvider
	apiURL      string
	adapter     core.TransportAdapter
	logger      core.Logger
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithAPIURL overrides the API base the manager addresses, e.g. the payroll
// prefix or a test server.
func WithAPIURL(apiURL string) Option {
	return func(m *Manager) {
		m.apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	}
}

// WithTransport replaces the HTTP adapter.
func WithTransport(adapter core.TransportAdapter) Option {
	return func(m *Manager) {
		m.adapter = adapter
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger core.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager builds the manager for one collection. The default API base is
// the public host; credentials bound to the partner host pass theirs through
// WithAPIURL. Unless WithTransport overrides it, the adapter is built here,
// presenting the credential's client certificate when it carries one, so the
// manager is never mutated on the request path.
func NewManager(name string, credentials core.SigningContextProvider, opts ...Option) *Manager {
	descriptor := codec.NewDescriptor(strings.TrimSpace(name))
	m := &Manager{
		name:        descriptor.Name,
		descriptor:  descriptor,
		compiler:    query.Compiler{Fields: descriptor},
		credentials: credentials,
		apiURL:      core.DefaultConfig().Endpoints.APIURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.adapter == nil {
		m.adapter = transport.NewRESTAdapter(transport.NewCertificateClient(credentialClientCert(credentials)))
	}
	m.logger = glog.Ensure(m.logger)
	return m
}

func credentialClientCert(credentials core.SigningContextProvider) *tls.Certificate {
	provider, ok := credentials.(interface{ ClientCert() *tls.Certificate })
	if !ok {
		return nil
	}
	return provider.ClientCert()
}

// Name returns the collection name the manager addresses.
func (m *Manager) Name() string {
	return m.name
}

// GetRequest describes fetching one record by id. Extra headers (e.g. an
// Accept override for PDF renditions) pass through untouched.
func (m *Manager) GetRequest(id string, headers map[string]string) (core.RequestDescriptor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return core.RequestDescriptor{}, fmt.Errorf("resource: %s get requires an id", m.name)
	}
	return core.RequestDescriptor{
		Method:  http.MethodGet,
		URL:     m.collectionURL() + "/" + id,
		Headers: headers,
	}, nil
}

// AllRequest describes listing the whole collection.
func (m *Manager) AllRequest() core.RequestDescriptor {
	return core.RequestDescriptor{
		Method: http.MethodGet,
		URL:    m.collectionURL(),
	}
}

// FilterRequest describes a filtered listing. Criteria compile into the
// where-clause grammar; since/offset/page get their reserved treatment.
func (m *Manager) FilterRequest(criteria query.Criteria) (core.RequestDescriptor, error) {
	compiled, err := m.compiler.Compile(criteria)
	if err != nil {
		return core.RequestDescriptor{}, err
	}
	requestURL := m.collectionURL()
	if compiled.RawQuery != "" {
		requestURL += "?" + compiled.RawQuery
	}
	return core.RequestDescriptor{
		Method:  http.MethodGet,
		URL:     requestURL,
		Headers: compiled.Headers,
	}, nil
}

// ReportRequest describes fetching a sub-resource with the plain key=value
// report grammar.
func (m *Manager) ReportRequest(id string, criteria query.Criteria, headers map[string]string) (core.RequestDescriptor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return core.RequestDescriptor{}, fmt.Errorf("resource: %s report requires an id", m.name)
	}
	compiled, err := m.compiler.CompileReport(criteria)
	if err != nil {
		return core.RequestDescriptor{}, err
	}
	requestURL := m.collectionURL() + "/" + id
	if compiled.RawQuery != "" {
		requestURL += "?" + compiled.RawQuery
	}
	merged := map[string]string{}
	for key, value := range compiled.Headers {
		merged[key] = value
	}
	for key, value := range headers {
		merged[key] = value
	}
	return core.RequestDescriptor{
		Method:  http.MethodGet,
		URL:     requestURL,
		Headers: merged,
	}, nil
}

// SaveRequest describes updating records: the payload is serialized to XML
// and sent as the xml form field over POST.
func (m *Manager) SaveRequest(data any) (core.RequestDescriptor, error) {
	return m.writeRequest(http.MethodPost, data)
}

// PutRequest describes creating records, same body shape over PUT.
func (m *Manager) PutRequest(data any) (core.RequestDescriptor, error) {
	return m.writeRequest(http.MethodPut, data)
}

func (m *Manager) writeRequest(method string, data any) (core.RequestDescriptor, error) {
	encoded, err := m.descriptor.EncodeRequest(data)
	if err != nil {
		return core.RequestDescriptor{}, err
	}
	return core.RequestDescriptor{
		Method: method,
		URL:    m.collectionURL(),
		Form:   map[string][]string{"xml": {encoded}},
	}, nil
}

func (m *Manager) collectionURL() string {
	return m.apiURL + "/" + m.name
}
