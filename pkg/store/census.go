package store

// SaveCensus stores the latest census report document, replacing the
// previous one.
func SaveCensus(data []byte) error {
	return set("census:latest", data)
}

// GetCensus returns the latest census report, or found=false when no sweep
// has run yet.
func GetCensus() ([]byte, bool, error) {
	return get("census:latest")
}
