package stacks

import "strings"

// NormalizeBranchRef strips the git ref prefixes that CI systems put into
// branch variables, so "refs/heads/master" and "master" resolve identically.
func NormalizeBranchRef(ref string) string {
	ref = strings.TrimPrefix(ref, "refs/heads/")
	ref = strings.TrimPrefix(ref, "refs/tags/")
	return ref
}
