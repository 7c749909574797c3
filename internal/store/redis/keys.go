package redis

import "fmt"

const (
	// KeyPrefixDomain is the prefix for snapshot record keys
	KeyPrefixDomain = "domon:domain:"
	// KeyPrefixCheck is the prefix for cached health-check reports
	KeyPrefixCheck = "domon:check:"
	// KeyDomainOrder lists snapshot domains in backend order
	KeyDomainOrder = "domon:domains:order"
	// KeySnapshotSavedAt holds the RFC 3339 time of the last snapshot
	KeySnapshotSavedAt = "domon:snapshot:saved_at"
)

// DomainKey returns the Redis key for a snapshot record
func DomainKey(name string) string {
	return KeyPrefixDomain + name
}

// CheckKey returns the Redis key for a cached check report
func CheckKey(name string) string {
	return KeyPrefixCheck + name
}

// ExtractDomain extracts the domain name from a snapshot record key
func ExtractDomain(key string) (string, error) {
	if len(key) <= len(KeyPrefixDomain) || key[:len(KeyPrefixDomain)] != KeyPrefixDomain {
		return "", fmt.Errorf("invalid domain key: %s", key)
	}
	return key[len(KeyPrefixDomain):], nil
}
