package config

// GetAuthSkipperPaths returns path prefixes that bypass admin authentication.
func GetAuthSkipperPaths() []string {
	// Shopper-facing routes are public; owner ids are taken at face value.
	return []string{"/api/shop/", "/graphql", "/health"}
}
