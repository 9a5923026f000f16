package models

// nullableString maps an empty domain string to a NULL column
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// stringValue maps a NULL column back to an empty domain string
func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
