package util

import "strings"

// PartitionPrefix namespaces every per-organization collection
const PartitionPrefix = "org_"

// PartitionName derives the partition identifier from an organization's
// display name: trimmed, lowercased, spaces replaced by underscores and
// prefixed with PartitionPrefix.
//
// Always derive from the display name. Feeding a previous result back in
// prefixes it again.
func PartitionName(displayName string) string {
	normalized := strings.ToLower(strings.TrimSpace(displayName))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	return PartitionPrefix + normalized
}

// IsPartitionName reports whether a collection name lives in the
// partition namespace.
func IsPartitionName(name string) bool {
	return strings.HasPrefix(name, PartitionPrefix) && len(name) > len(PartitionPrefix)
}
