package utils

import "strings"

// ParseRepoNamespace splits "owner/name" into its two parts.
func ParseRepoNamespace(namespace string) (string, string) {
	splits := strings.SplitN(namespace, "/", 2)
	if len(splits) < 2 {
		return namespace, ""
	}
	return splits[0], splits[1]
}
