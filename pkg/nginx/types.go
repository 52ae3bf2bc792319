package nginx

// Directive is one semicolon-terminated nginx statement body. Key is the
// first token of the statement and Value is the remainder, whitespace
// normalized to single spaces between tokens.
type Directive struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// LocationBlock is a parsed `location PATH { ... }` unit. Directive order
// is preserved: directive order is semantically significant in proxy
// configuration (later headers can override earlier ones), so the
// generator must reproduce input order on round-trip.
type LocationBlock struct {
	Path       string      `json:"path"`
	Directives []Directive `json:"directives"`
	Raw        string      `json:"raw"`
}

// Directive returns the value of the first directive with the given key
// and whether it was present.
func (b *LocationBlock) Directive(key string) (string, bool) {
	for _, d := range b.Directives {
		if d.Key == key {
			return d.Value, true
		}
	}
	return "", false
}

// UpstreamBlock is a parsed `upstream NAME { ... }` unit. Servers holds
// the value part of each `server` directive in input order.
type UpstreamBlock struct {
	Name    string   `json:"name"`
	Servers []string `json:"servers"`
}

// Config is the result of parsing one or more configuration fragments.
type Config struct {
	Locations []LocationBlock `json:"locations"`
	Upstreams []UpstreamBlock `json:"upstreams"`
}
