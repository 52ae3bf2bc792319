package nginx

import (
	"reflect"
	"testing"
)

func TestParse_Locations(t *testing.T) {
	content := `
location /api/checkout/ {
    proxy_pass http://checkout_backend;
    proxy_set_header Host $host;
    proxy_set_header X-Real-IP $remote_addr;
}

location /static/checkout {
    proxy_pass http://checkout_static;
}
`
	cfg := Parse(content)

	if len(cfg.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(cfg.Locations))
	}

	first := cfg.Locations[0]
	if first.Path != "/api/checkout/" {
		t.Errorf("expected path /api/checkout/, got %q", first.Path)
	}
	want := []Directive{
		{Key: "proxy_pass", Value: "http://checkout_backend"},
		{Key: "proxy_set_header", Value: "Host $host"},
		{Key: "proxy_set_header", Value: "X-Real-IP $remote_addr"},
	}
	if !reflect.DeepEqual(first.Directives, want) {
		t.Errorf("unexpected directives: %+v", first.Directives)
	}

	if cfg.Locations[1].Path != "/static/checkout" {
		t.Errorf("expected path /static/checkout, got %q", cfg.Locations[1].Path)
	}
}

func TestParse_Upstreams(t *testing.T) {
	content := `
upstream checkout_backend {
    server 10.0.0.1:8080;
    server 10.0.0.2:8080 weight=2;
}
`
	cfg := Parse(content)

	if len(cfg.Upstreams) != 1 {
		t.Fatalf("expected 1 upstream, got %d", len(cfg.Upstreams))
	}

	up := cfg.Upstreams[0]
	if up.Name != "checkout_backend" {
		t.Errorf("expected name checkout_backend, got %q", up.Name)
	}
	want := []string{"10.0.0.1:8080", "10.0.0.2:8080 weight=2"}
	if !reflect.DeepEqual(up.Servers, want) {
		t.Errorf("unexpected servers: %v", up.Servers)
	}
}

func TestParse_Mixed(t *testing.T) {
	content := `
upstream payments_backend {
    server 10.1.0.1:9000;
}

location /api/payments/ {
    proxy_pass http://payments_backend;
}
`
	cfg := Parse(content)

	if len(cfg.Upstreams) != 1 || len(cfg.Locations) != 1 {
		t.Fatalf("expected 1 upstream and 1 location, got %d and %d",
			len(cfg.Upstreams), len(cfg.Locations))
	}
}

func TestParse_DirectiveOrderPreserved(t *testing.T) {
	content := `
location /api/orders/ {
    proxy_set_header X-First 1;
    proxy_set_header X-Second 2;
    proxy_set_header X-Third 3;
}
`
	cfg := Parse(content)

	if len(cfg.Locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(cfg.Locations))
	}
	keysInOrder := []string{"X-First 1", "X-Second 2", "X-Third 3"}
	for i, d := range cfg.Locations[0].Directives {
		if d.Value != keysInOrder[i] {
			t.Errorf("directive %d: expected value %q, got %q", i, keysInOrder[i], d.Value)
		}
	}
}

func TestParse_MalformedDirectiveDropped(t *testing.T) {
	content := `
location /api/checkout/ {
    proxy_pass http://checkout_backend;
    keyonly;
}
`
	cfg := Parse(content)

	if len(cfg.Locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(cfg.Locations))
	}
	if len(cfg.Locations[0].Directives) != 1 {
		t.Errorf("expected the bare-key statement to be dropped, got %+v",
			cfg.Locations[0].Directives)
	}
}

func TestParse_KeywordInsideValueIgnored(t *testing.T) {
	// "upstream" as part of a directive value must not open a block.
	content := `
location /api/checkout/ {
    proxy_pass http://upstream_pool;
}
`
	cfg := Parse(content)

	if len(cfg.Upstreams) != 0 {
		t.Errorf("expected no upstreams, got %+v", cfg.Upstreams)
	}
	if len(cfg.Locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(cfg.Locations))
	}
}

func TestParse_Empty(t *testing.T) {
	cfg := Parse("")
	if len(cfg.Locations) != 0 || len(cfg.Upstreams) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	blocks := []UpstreamBlock{
		{Name: "checkout_backend", Servers: []string{"10.0.0.1:8080"}},
	}

	a := GenerateUpstreams(blocks)
	b := GenerateUpstreams(blocks)
	if a != b {
		t.Error("expected byte-identical output for identical input")
	}
}

func TestRoundTrip_Locations(t *testing.T) {
	content := `
location /api/checkout/ {
    proxy_pass http://checkout_backend;
    proxy_set_header Host $host;
}

location /static/checkout/assets {
    proxy_pass http://checkout_static;
    expires 1h;
}
`
	parsed := Parse(content)
	regenerated := Parse(GenerateLocations(parsed.Locations))

	if len(regenerated.Locations) != len(parsed.Locations) {
		t.Fatalf("round-trip changed block count: %d != %d",
			len(regenerated.Locations), len(parsed.Locations))
	}
	for i := range parsed.Locations {
		if regenerated.Locations[i].Path != parsed.Locations[i].Path {
			t.Errorf("block %d: path changed on round-trip", i)
		}
		if !reflect.DeepEqual(regenerated.Locations[i].Directives, parsed.Locations[i].Directives) {
			t.Errorf("block %d: directives changed on round-trip:\n got %+v\nwant %+v",
				i, regenerated.Locations[i].Directives, parsed.Locations[i].Directives)
		}
	}
}

func TestRoundTrip_Upstreams(t *testing.T) {
	content := `
upstream checkout_backend {
    server 10.0.0.1:8080;
    server 10.0.0.2:8080 backup;
}

upstream payments_backend {
    server 10.1.0.1:9000;
}
`
	parsed := Parse(content)
	regenerated := Parse(GenerateUpstreams(parsed.Upstreams))

	if !reflect.DeepEqual(regenerated.Upstreams, parsed.Upstreams) {
		t.Errorf("upstreams changed on round-trip:\n got %+v\nwant %+v",
			regenerated.Upstreams, parsed.Upstreams)
	}
}

func TestLocationBlock_Directive(t *testing.T) {
	block := LocationBlock{
		Path: "/api/checkout/",
		Directives: []Directive{
			{Key: "proxy_pass", Value: "http://checkout_backend"},
		},
	}

	if v, ok := block.Directive("proxy_pass"); !ok || v != "http://checkout_backend" {
		t.Errorf("Directive(proxy_pass) = %q, %v", v, ok)
	}
	if _, ok := block.Directive("rewrite"); ok {
		t.Error("Directive(rewrite) should not be found")
	}
}
