package nginx

import (
	"strings"
)

// Parse extracts top-level `upstream NAME { ... }` and `location PATH
// { ... }` blocks from raw configuration text. The scanner is
// intentionally non-recursive: block bodies are assumed to contain only
// directives, never nested blocks, which is all the self-service fragment
// format permits. Malformed directives inside a body (a line with no
// value token) are silently dropped; rejecting malformed input is the
// syntax validator's job, not the parser's.
func Parse(content string) *Config {
	cfg := &Config{}

	for i := 0; i < len(content); {
		keyword, arg, body, raw, next, ok := nextBlock(content, i)
		if !ok {
			break
		}
		i = next

		switch keyword {
		case "location":
			cfg.Locations = append(cfg.Locations, LocationBlock{
				Path:       arg,
				Directives: parseDirectives(body),
				Raw:        raw,
			})
		case "upstream":
			cfg.Upstreams = append(cfg.Upstreams, UpstreamBlock{
				Name:    arg,
				Servers: parseServers(body),
			})
		}
	}

	return cfg
}

// nextBlock scans forward from offset for the next `upstream` or
// `location` block. It returns the block keyword, its argument (name or
// path), the brace-delimited body, the raw matched text, and the offset
// just past the closing brace.
func nextBlock(content string, offset int) (keyword, arg, body, raw string, next int, ok bool) {
	start, kw := -1, ""
	for _, candidate := range []string{"upstream", "location"} {
		idx := indexWord(content, candidate, offset)
		if idx >= 0 && (start < 0 || idx < start) {
			start, kw = idx, candidate
		}
	}
	if start < 0 {
		return "", "", "", "", 0, false
	}

	open := strings.IndexByte(content[start:], '{')
	if open < 0 {
		return "", "", "", "", 0, false
	}
	open += start

	closing := strings.IndexByte(content[open:], '}')
	if closing < 0 {
		return "", "", "", "", 0, false
	}
	closing += open

	arg = strings.TrimSpace(content[start+len(kw) : open])
	if arg == "" {
		// Keyword without an argument before the brace; skip it and
		// keep scanning.
		return nextBlock(content, start+len(kw))
	}

	body = strings.TrimSpace(content[open+1 : closing])
	raw = content[start : closing+1]
	return kw, arg, body, raw, closing + 1, true
}

// indexWord finds the next occurrence of word at or after offset that
// starts a token (preceded by start-of-text or whitespace and followed by
// whitespace). This keeps directive values like `proxy_pass
// http://upstream_pool` from being mistaken for block openers.
func indexWord(content, word string, offset int) int {
	for i := offset; i < len(content); {
		idx := strings.Index(content[i:], word)
		if idx < 0 {
			return -1
		}
		idx += i

		startOK := idx == 0 || isSpace(content[idx-1])
		endIdx := idx + len(word)
		endOK := endIdx < len(content) && isSpace(content[endIdx])
		if startOK && endOK {
			return idx
		}
		i = idx + len(word)
	}
	return -1
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// parseDirectives splits a block body into ordered key/value directives.
// Statements are separated by `;`; within a statement the first
// whitespace run separates key from value. Statements with no value token
// are dropped.
func parseDirectives(body string) []Directive {
	var directives []Directive
	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		fields := strings.Fields(stmt)
		if len(fields) < 2 {
			continue
		}
		directives = append(directives, Directive{
			Key:   fields[0],
			Value: strings.Join(fields[1:], " "),
		})
	}
	return directives
}

// parseServers extracts the value of each `server` directive from an
// upstream body, in input order.
func parseServers(body string) []string {
	var servers []string
	for _, d := range parseDirectives(body) {
		if d.Key == "server" {
			servers = append(servers, d.Value)
		}
	}
	return servers
}
