// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

const namespace = "expresskart"

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
