package codec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// EncodeRequest serializes a record, or a slice of records, into the XML body
// the API expects for save and put operations. A slice is wrapped in the
// collection element with one singular child per record; a single record
// becomes the singular element directly.
func (d *Descriptor) EncodeRequest(data any) (string, error) {
	if d == nil {
		return "", fmt.Errorf("codec: descriptor is nil")
	}
	doc := etree.NewDocument()
	switch records := data.(type) {
	case []map[string]any:
		root := doc.CreateElement(d.Name)
		for _, record := range records {
			if err := encodeInto(root.CreateElement(d.Singular), record); err != nil {
				return "", err
			}
		}
	case []any:
		root := doc.CreateElement(d.Name)
		for _, record := range records {
			fields, ok := record.(map[string]any)
			if !ok {
				return "", fmt.Errorf("codec: encode %s: list items must be records, got %T", d.Name, record)
			}
			if err := encodeInto(root.CreateElement(d.Singular), fields); err != nil {
				return "", err
			}
		}
	case map[string]any:
		if err := encodeInto(doc.CreateElement(d.Singular), records); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("codec: encode %s: unsupported payload type %T", d.Name, data)
	}
	return doc.WriteToString()
}

// encodeInto unrolls a record under parent. Keys are emitted in sorted order
// so output is stable. A plural key holding a slice wraps each item in the
// singular form of the key; a non-plural key holding a slice merges every
// item's fields into one element.
func encodeInto(parent *etree.Element, record map[string]any) error {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := record[key]
		el := parent.CreateElement(key)

		switch sub := value.(type) {
		case map[string]any:
			if err := encodeInto(el, sub); err != nil {
				return err
			}
		case []map[string]any:
			if err := encodeList(el, key, asAnySlice(sub)); err != nil {
				return err
			}
		case []any:
			if err := encodeList(el, key, sub); err != nil {
				return err
			}
		default:
			el.SetText(formatScalar(value))
		}
	}
	return nil
}

func encodeList(el *etree.Element, key string, items []any) error {
	if strings.HasSuffix(key, "s") {
		singular := strings.TrimSuffix(key, "s")
		if exception, ok := pluralExceptions[singular]; ok {
			singular = exception
		}
		for _, item := range items {
			fields, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf("codec: encode %s: list items must be records, got %T", key, item)
			}
			if err := encodeInto(el.CreateElement(singular), fields); err != nil {
				return err
			}
		}
		return nil
	}
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("codec: encode %s: list items must be records, got %T", key, item)
		}
		if err := encodeInto(el, fields); err != nil {
			return err
		}
	}
	return nil
}

func asAnySlice(records []map[string]any) []any {
	items := make([]any, len(records))
	for i, record := range records {
		items[i] = record
	}
	return items
}

func formatScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case time.Time:
		return v.Format("2006-01-02T15:04:05")
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
