package risk

import "regexp"

// Heuristic pattern tables. These are a replaceable keyword approximation of
// "what kind of change is this", not a security scanner.

var criticalFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|/)package(-lock)?\.json$`),
	regexp.MustCompile(`(^|/)go\.(mod|sum)$`),
	regexp.MustCompile(`(^|/)\.env(\.|$)`),
	regexp.MustCompile(`(^|/)Dockerfile`),
	regexp.MustCompile(`(^|/)(auth|security|credentials?|secrets?)(/|$)`),
	regexp.MustCompile(`(^|/)config\.(ts|js|go|ya?ml|json)$`),
	regexp.MustCompile(`(^|/)\.github/workflows/`),
}

var securityPattern = regexp.MustCompile(`(?i)\b(auth|authn|authz|token|password|secret|credential|permission|acl|crypto|certificate|login|session)\b`)

var databasePattern = regexp.MustCompile(`(?i)(migration|schema|database|\.sql$|(^|/)models?(/|$))`)

var destructiveDBPattern = regexp.MustCompile(`(?i)\b(drop|truncate)\b`)

var apiPattern = regexp.MustCompile(`(?i)((^|/)api(/|$)|route|handler|endpoint|controller|middleware)`)

var dependencyPattern = regexp.MustCompile(`(?i)(package(-lock)?\.json$|go\.(mod|sum)$|requirements\.txt$|Gemfile(\.lock)?$|pom\.xml$|yarn\.lock$|Cargo\.(toml|lock)$|composer\.json$)`)

var irreversiblePattern = regexp.MustCompile(`(?i)\b(delete|remove|drop|purge|destroy|truncate|force[- ]push)\b`)

func matchesAny(patterns []*regexp.Regexp, value string) bool {
	for _, p := range patterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}
