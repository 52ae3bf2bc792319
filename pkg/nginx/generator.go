package nginx

import "strings"

// GenerateLocations renders location blocks back to configuration text.
// Output is deterministic: identical structured input always yields
// byte-identical text, which the worker relies on when diffing a
// submission against the provider's current content. Directive order is
// reproduced exactly as parsed.
func GenerateLocations(blocks []LocationBlock) string {
	var sb strings.Builder
	for i, block := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("location ")
		sb.WriteString(block.Path)
		sb.WriteString(" {\n")
		for _, d := range block.Directives {
			sb.WriteString("    ")
			sb.WriteString(d.Key)
			sb.WriteString(" ")
			sb.WriteString(d.Value)
			sb.WriteString(";\n")
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}

// GenerateUpstreams renders upstream blocks back to configuration text
// with the same determinism guarantees as GenerateLocations.
func GenerateUpstreams(blocks []UpstreamBlock) string {
	var sb strings.Builder
	for i, block := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("upstream ")
		sb.WriteString(block.Name)
		sb.WriteString(" {\n")
		for _, server := range block.Servers {
			sb.WriteString("    server ")
			sb.WriteString(server)
			sb.WriteString(";\n")
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}
