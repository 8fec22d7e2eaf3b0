package domain

import (
	"net/url"
	"strings"
)

// ListParams is an insertion-ordered set of list query parameters. The order
// is kept so the same filter state always encodes to the same query string.
type ListParams struct {
	keys   []string
	values map[string]string
}

func NewListParams() *ListParams {
	return &ListParams{values: make(map[string]string)}
}

// Set stores value under key. Re-setting a key keeps its original position.
func (p *ListParams) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *ListParams) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *ListParams) Del(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

func (p *ListParams) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *ListParams) Len() int {
	return len(p.keys)
}

// Values converts the params to url.Values for callers that do not care about order.
func (p *ListParams) Values() url.Values {
	v := make(url.Values, len(p.keys))
	for _, k := range p.keys {
		v.Set(k, p.values[k])
	}
	return v
}

// Encode renders the params as a query string in insertion order.
func (p *ListParams) Encode() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.values[k]))
	}
	return b.String()
}

func (p *ListParams) Clone() *ListParams {
	c := NewListParams()
	for _, k := range p.keys {
		c.Set(k, p.values[k])
	}
	return c
}

// Equal reports whether both param sets hold the same keys, values and order.
func (p *ListParams) Equal(o *ListParams) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Encode() == o.Encode()
}
