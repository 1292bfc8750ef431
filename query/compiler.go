// Package query compiles keyword filter criteria into the where-clause
// grammar the Xero API embeds in its query string, along with the pagination
// parameters and conditional-request headers that ride alongside it.
package query

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Reserved criteria keys. These never become where-clause predicates.
const (
	KeySince  = "since"
	KeyOffset = "offset"
	KeyPage   = "page"
)

const ifModifiedSinceHeader = "If-Modified-Since"

// Operator suffixes recognized after the double-underscore delimiter. The
// predicate renders with the key's own casing, so Name__Contains becomes
// Name.Contains(...).
var operatorSuffixes = map[string]struct{}{
	"contains":   {},
	"startswith": {},
	"endswith":   {},
}

// FieldClassifier reports how a field's values must be rendered. The codec
// package's Descriptor satisfies it.
type FieldClassifier interface {
	IsBoolean(field string) bool
	IsDateTime(field string) bool
}

// Criteria is one filter call's keyword arguments.
type Criteria map[string]any

// Compiled is the query string and headers a filter compiles to. RawQuery is
// already escaped and ready to assign to a URL.
type Compiled struct {
	RawQuery string
	Headers  map[string]string
}

// Compiler renders criteria for one resource collection.
type Compiler struct {
	Fields FieldClassifier
}

// Compile renders criteria into a where-clause query. The since key becomes
// an If-Modified-Since header, offset and page become plain query parameters,
// and every remaining key becomes a predicate. Predicates are joined with &&
// and URL-escaped as a single where= value.
func (c Compiler) Compile(criteria Criteria) (Compiled, error) {
	out := Compiled{}
	if len(criteria) == 0 {
		return out, nil
	}

	var predicates []string
	var offset, page string
	for _, key := range sortedKeys(criteria) {
		value := criteria[key]
		switch key {
		case KeySince:
			out.Headers = map[string]string{ifModifiedSinceHeader: sinceHeaderValue(value)}
		case KeyOffset:
			offset = fmt.Sprintf("%v", value)
		case KeyPage:
			page = fmt.Sprintf("%v", value)
		default:
			predicate, err := c.predicate(key, value, true)
			if err != nil {
				return Compiled{}, err
			}
			predicates = append(predicates, predicate)
		}
	}

	var parts []string
	if len(predicates) > 0 {
		parts = append(parts, "where="+quoteExpression(strings.Join(predicates, "&&")))
	}
	if offset != "" {
		parts = append(parts, "offset="+offset)
	}
	if page != "" {
		parts = append(parts, "page="+page)
	}
	out.RawQuery = strings.Join(parts, "&")
	return out, nil
}

// CompileReport renders criteria for report endpoints, which use a plain
// key=value grammar with no predicate operators and no quoting.
func (c Compiler) CompileReport(criteria Criteria) (Compiled, error) {
	out := Compiled{}
	if len(criteria) == 0 {
		return out, nil
	}

	var parts []string
	for _, key := range sortedKeys(criteria) {
		value := criteria[key]
		if key == KeySince {
			out.Headers = map[string]string{ifModifiedSinceHeader: sinceHeaderValue(value)}
			continue
		}
		rendered, err := c.renderValue(key, value, false)
		if err != nil {
			return Compiled{}, err
		}
		parts = append(parts, key+"="+rendered)
	}
	out.RawQuery = strings.Join(parts, "&")
	return out, nil
}

// predicate renders one key/value pair. A key of the form Field__Op with a
// recognized operator renders as Field.Op(value); anything else renders as an
// equality with single underscores translated to the API's dotted paths.
func (c Compiler) predicate(key string, value any, quoted bool) (string, error) {
	field, operator, found := strings.Cut(key, "__")
	if found {
		if _, ok := operatorSuffixes[strings.ToLower(operator)]; ok {
			rendered, err := c.renderValue(key, value, quoted)
			if err != nil {
				return "", err
			}
			return field + "." + operator + "(" + rendered + ")", nil
		}
	}
	rendered, err := c.renderValue(key, value, quoted)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(key, "_", ".") + "==" + rendered, nil
}

func (c Compiler) renderValue(key string, value any, quoted bool) (string, error) {
	field := key
	if base, _, found := strings.Cut(key, "__"); found {
		field = base
	}
	switch {
	case c.Fields != nil && c.Fields.IsBoolean(field):
		flag, ok := value.(bool)
		if !ok {
			return "", compileValidationError(key, fmt.Sprintf("boolean field requires a bool value, got %T", value))
		}
		if flag {
			return "true", nil
		}
		return "false", nil
	case c.Fields != nil && c.Fields.IsDateTime(field):
		ts, ok := value.(time.Time)
		if !ok {
			return "", compileValidationError(key, fmt.Sprintf("datetime field requires a time.Time value, got %T", value))
		}
		return ts.Format("2006-01-02T15:04:05"), nil
	default:
		if quoted {
			return fmt.Sprintf("%q", fmt.Sprintf("%v", value)), nil
		}
		return fmt.Sprintf("%v", value), nil
	}
}

// sinceHeaderValue formats the conditional header: RFC 1123 GMT for
// timestamps, a quoted literal for anything else.
func sinceHeaderValue(value any) string {
	if ts, ok := value.(time.Time); ok {
		return ts.UTC().Format("Mon, 02 Jan 2006 15:04:05") + " GMT"
	}
	return fmt.Sprintf("%q", fmt.Sprintf("%v", value))
}

// quoteExpression escapes a where expression as one query-string value,
// keeping slashes readable the way the API documents its examples.
func quoteExpression(expression string) string {
	escaped := url.QueryEscape(expression)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	return escaped
}

func sortedKeys(criteria Criteria) []string {
	keys := make([]string, 0, len(criteria))
	for key := range criteria {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
