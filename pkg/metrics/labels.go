package metrics

// normalizeLabel maps an empty label value to "unknown".
func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
