package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// Decode converts an element tree into plain Go values. Elements with child
// elements become maps keyed by child tag; repeated line-item elements (and
// elements named after the collection's singular form) accumulate into
// slices; leaves stay strings unless their tag is classified as boolean,
// timestamp, or date. Empty elements are dropped.
func (d *Descriptor) Decode(root *etree.Element) (any, error) {
	if root == nil {
		return nil, fmt.Errorf("codec: decode root element is nil")
	}
	return d.convert(walk(root))
}

// DecodeDocument decodes from the document root.
func (d *Descriptor) DecodeDocument(doc *etree.Document) (any, error) {
	if doc == nil || doc.Root() == nil {
		return nil, fmt.Errorf("codec: document has no root element")
	}
	return d.Decode(doc.Root())
}

// walk flattens an element into an interleaved list: a child element
// contributes its tag followed by its own flattened list, and each non-empty
// text node contributes its trimmed text. The interleaving is what lets
// convert distinguish leaves (one text entry) from records (tag/list pairs).
func walk(el *etree.Element) []any {
	var entries []any
	for _, child := range el.Child {
		switch node := child.(type) {
		case *etree.Element:
			entries = append(entries, node.Tag, walk(node))
		case *etree.CharData:
			if text := strings.TrimSpace(node.Data); text != "" {
				entries = append(entries, text)
			}
		}
	}
	return entries
}

func (d *Descriptor) convert(entries []any) (any, error) {
	switch {
	case len(entries) > 2:
		return d.convertRecord(entries)
	case len(entries) == 2:
		// A single child element: keep its tag as the key and leave the
		// value uncoerced.
		key, _ := entries[0].(string)
		data, _ := entries[1].([]any)
		value, err := d.convert(data)
		if err != nil {
			return nil, err
		}
		return map[string]any{key: value}, nil
	case len(entries) == 1:
		return entries[0], nil
	default:
		return map[string]any{}, nil
	}
}

// convertRecord pairs each child tag with its flattened subtree and folds the
// pairs into either a map or, once a line-item key appears, a slice. A record
// that already accumulated map fields keeps the map shape even for line-item
// keys, since some field names serve both roles.
func (d *Descriptor) convertRecord(entries []any) (any, error) {
	var keys []string
	var lists [][]any
	for _, entry := range entries {
		switch value := entry.(type) {
		case string:
			keys = append(keys, value)
		case []any:
			lists = append(lists, value)
		}
	}
	count := len(keys)
	if len(lists) < count {
		count = len(lists)
	}

	var outMap map[string]any
	var outList []any
	setValue := func(key string, value any) {
		if outList != nil {
			outList = append(outList, value)
			return
		}
		if outMap == nil {
			outMap = map[string]any{}
		}
		outMap[key] = value
	}

	for i := 0; i < count; i++ {
		key, data := keys[i], lists[i]
		switch {
		case d.isMultiLine(key) || key == d.Singular:
			value, err := d.convert(data)
			if err != nil {
				return nil, err
			}
			switch {
			case len(outMap) > 0:
				outMap[key] = value
			case outList != nil:
				outList = append(outList, value)
			default:
				outList = []any{value}
			}
		case len(data) == 1:
			text, _ := data[0].(string)
			value, err := d.coerce(key, text)
			if err != nil {
				return nil, err
			}
			setValue(key, value)
		case len(data) > 1:
			value, err := d.convert(data)
			if err != nil {
				return nil, err
			}
			setValue(key, value)
		}
		// len(data) == 0 is an empty element; it contributes nothing.
	}

	if outList != nil {
		return outList, nil
	}
	if outMap == nil {
		outMap = map[string]any{}
	}
	return outMap, nil
}

func (d *Descriptor) coerce(field string, text string) (any, error) {
	switch {
	case d.IsBoolean(field):
		return strings.EqualFold(text, "true"), nil
	case d.IsDateTime(field):
		ts, err := ParseTimestamp(text)
		if err != nil {
			return nil, fmt.Errorf("codec: parse %s timestamp %q: %w", field, text, err)
		}
		return ts, nil
	case d.IsDate(field):
		ts, err := ParseTimestamp(text)
		if err != nil {
			return nil, fmt.Errorf("codec: parse %s date %q: %w", field, text, err)
		}
		year, month, day := ts.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, ts.Location()), nil
	default:
		return text, nil
	}
}
