package codec

import (
	"strings"
	"time"
)

// Field classification tables. The API serializes every leaf as text; these
// name the fields whose text decodes into richer scalar types.
var (
	datetimeFields = newFieldSet(
		"UpdatedDateUTC", "Updated", "FullyPaidOnDate", "CreatedDateUTC",
		"ExpectedPaymentDate", "PlannedPaymentDate", "DateOfBirth",
		"StartDate", "EndDate",
	)
	dateFields    = newFieldSet("DueDate", "Date", "JournalDate")
	booleanFields = newFieldSet("IsSupplier", "IsCustomer")

	// multiLineFields are the element names that always decode as collection
	// items even when a response carries only one of them.
	multiLineFields = newFieldSet(
		"LineItem", "Phone", "Address", "TaxRate",
		"JournalLine", "TrackingCategory", "Payment",
		"TimesheetLine", "NumberOfUnit", "EarningsRate", "DeductionType",
		"ReimbursementType", "LeaveType", "EarningsRates", "DeductionTypes",
		"ReimbursementTypes", "LeaveTypes", "Option",
	)

	pluralExceptions = map[string]string{
		"Addresse":           "Address",
		"TrackingCategories": "TrackingCategory",
	}

	// rawResponseEntities are collections whose responses come back as a raw
	// XML document instead of decoded records.
	rawResponseEntities = newFieldSet("Reports")
)

type fieldSet map[string]struct{}

func newFieldSet(names ...string) fieldSet {
	set := make(fieldSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func (s fieldSet) contains(name string) bool {
	_, ok := s[name]
	return ok
}

// SingularOf derives the singular element name for a collection: exception
// table first, then the exception table again after trimming a trailing "s",
// then the plain trimmed form.
func SingularOf(name string) string {
	if singular, ok := pluralExceptions[name]; ok {
		return singular
	}
	if strings.HasSuffix(name, "s") {
		stripped := strings.TrimSuffix(name, "s")
		if singular, ok := pluralExceptions[stripped]; ok {
			return singular
		}
		return stripped
	}
	return name
}

// Descriptor binds one resource collection name to its singular form and the
// shared field classification tables.
type Descriptor struct {
	Name     string
	Singular string
}

// NewDescriptor builds the descriptor for a named collection.
func NewDescriptor(name string) *Descriptor {
	return &Descriptor{
		Name:     name,
		Singular: SingularOf(name),
	}
}

// RawResponse reports whether responses for this collection should be
// returned as a raw XML document rather than decoded records.
func (d *Descriptor) RawResponse() bool {
	return d != nil && rawResponseEntities.contains(d.Name)
}

// IsBoolean reports whether the named field decodes as a boolean.
func (d *Descriptor) IsBoolean(field string) bool {
	return booleanFields.contains(field)
}

// IsDateTime reports whether the named field decodes as a timestamp.
func (d *Descriptor) IsDateTime(field string) bool {
	return datetimeFields.contains(field)
}

// IsDate reports whether the named field decodes as a calendar date.
func (d *Descriptor) IsDate(field string) bool {
	return dateFields.contains(field)
}

func (d *Descriptor) isMultiLine(field string) bool {
	return multiLineFields.contains(field)
}

// ParseTimestamp parses the timestamp formats the API emits, most specific
// first.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.9999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	var err error
	for _, layout := range layouts {
		var ts time.Time
		if ts, err = time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}
