package listing

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront_gateway/internal/domain"
)

type FieldKind int

const (
	// FieldSearch is free text; changes reload after the debounce delay.
	FieldSearch FieldKind = iota
	// FieldEnum is a selector whose default value means "no filter".
	FieldEnum
	// FieldNumber is one bound of a numeric range.
	FieldNumber
	// FieldDate is one bound of a date range, formatted YYYY-MM-DD.
	FieldDate
	// FieldSort selects "<field>_<direction>" and always emits sort_by and sort_order.
	FieldSort
)

const (
	AllValue     = "all"
	DefaultValue = "default"
	dateLayout   = "2006-01-02"
)

// DefaultSortBy and DefaultSortOrder apply while the sort selector is on "default".
const (
	DefaultSortBy    = "created_at"
	DefaultSortOrder = "desc"
)

var ErrInvalidFilter = errors.New("invalid filter")

// FilterError rejects a SetFilter call. No request is issued for it.
type FilterError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter %s=%q: %s", e.Field, e.Value, e.Reason)
}

func (e *FilterError) Unwrap() error {
	return ErrInvalidFilter
}

// Field describes one filter control of a list screen.
type Field struct {
	Name string
	Kind FieldKind
	// Param is the API query name. Empty means Name.
	Param string
	// Options restricts enum and sort values. An enum without options accepts
	// positive integer ids, which is how category selectors work.
	Options []string
	// Numeric makes a search field accept digits only.
	Numeric bool
	// Translate replaces the default name=value emission.
	Translate func(value string, params *domain.ListParams)
}

func (f Field) param() string {
	if f.Param != "" {
		return f.Param
	}
	return f.Name
}

// Default is the value a field holds after ClearFilters.
func (f Field) Default() string {
	switch f.Kind {
	case FieldEnum:
		return AllValue
	case FieldSort:
		return DefaultValue
	default:
		return ""
	}
}

// Normalize validates value and returns the canonical form that is stored.
func (f Field) Normalize(value string) (string, error) {
	value = strings.TrimSpace(value)
	reject := func(reason string) (string, error) {
		return "", &FilterError{Field: f.Name, Value: value, Reason: reason}
	}

	if value == "" {
		return f.Default(), nil
	}

	switch f.Kind {
	case FieldSearch:
		if f.Numeric {
			if _, err := strconv.ParseUint(value, 10, 63); err != nil {
				return reject("must be a number")
			}
		}
		return value, nil

	case FieldEnum:
		if value == AllValue {
			return value, nil
		}
		if len(f.Options) == 0 {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil || id <= 0 {
				return reject("must be a positive id")
			}
			return strconv.FormatInt(id, 10), nil
		}
		if !slices.Contains(f.Options, value) {
			return reject("unknown option")
		}
		return value, nil

	case FieldNumber:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return reject("must be a number")
		}
		if d.IsNegative() {
			return reject("must not be negative")
		}
		return d.String(), nil

	case FieldDate:
		if _, err := time.Parse(dateLayout, value); err != nil {
			return reject("must be a date formatted YYYY-MM-DD")
		}
		return value, nil

	case FieldSort:
		if value == DefaultValue {
			return value, nil
		}
		if len(f.Options) > 0 && !slices.Contains(f.Options, value) {
			return reject("unknown sort option")
		}
		if _, _, ok := SplitSort(value); !ok {
			return reject(`must look like "<field>_<asc|desc>"`)
		}
		return value, nil
	}
	return reject("unsupported field")
}

// apply writes the query params for value. Defaults and empty values emit
// nothing, except sort, which always emits its pair.
func (f Field) apply(value string, params *domain.ListParams) {
	if f.Kind == FieldSort {
		by, order := DefaultSortBy, DefaultSortOrder
		if value != DefaultValue && value != "" {
			by, order, _ = SplitSort(value)
		}
		params.Set("sort_by", by)
		params.Set("sort_order", order)
		return
	}
	if value == "" || value == f.Default() {
		return
	}
	if f.Translate != nil {
		f.Translate(value, params)
		return
	}
	params.Set(f.param(), value)
}

// SplitSort splits "created_at_desc" at its last underscore into
// ("created_at", "desc").
func SplitSort(value string) (by, order string, ok bool) {
	i := strings.LastIndexByte(value, '_')
	if i <= 0 || i == len(value)-1 {
		return "", "", false
	}
	by, order = value[:i], value[i+1:]
	if order != "asc" && order != "desc" {
		return "", "", false
	}
	return by, order, true
}

// Config is the per-resource configuration of a list screen.
type Config struct {
	Name    string
	PerPage int
	Fields  []Field
	// ReadOnly screens reject destructive actions.
	ReadOnly bool
	// LoadFailure is shown when a load fails without a server message.
	LoadFailure string
}

func (c Config) field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (c Config) defaults() map[string]string {
	out := make(map[string]string, len(c.Fields))
	for _, f := range c.Fields {
		out[f.Name] = f.Default()
	}
	return out
}

// Params builds the list query for the given filter values and page:
// fields in configuration order, then page, then per_page.
func (c Config) Params(values map[string]string, page int) *domain.ListParams {
	if page < 1 {
		page = 1
	}
	p := domain.NewListParams()
	for _, f := range c.Fields {
		f.apply(values[f.Name], p)
	}
	p.Set("page", strconv.Itoa(page))
	if c.PerPage > 0 {
		p.Set("per_page", strconv.Itoa(c.PerPage))
	}
	return p
}
