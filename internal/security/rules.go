package security

import (
	"regexp"
	"strings"
)

// Rule detects one kind of secret.
type Rule struct {
	// ID is a stable identifier (aws_access_key, private_key, ...).
	ID string
	// Description is shown to the user when the rule matches.
	Description string

	pattern *regexp.Regexp
	// falsePositive marks matches whose surrounding text looks like an
	// example or a lookup rather than a literal secret.
	falsePositive []*regexp.Regexp
}

// match returns the 1-based line numbers of the rule's real matches.
func (r *Rule) match(content string) []int {
	locs := r.pattern.FindAllStringIndex(content, -1)
	var lines []int
	for _, loc := range locs {
		start := max(0, loc[0]-50)
		end := min(len(content), loc[1]+50)
		if r.isFalsePositive(content[start:end]) {
			continue
		}
		lines = append(lines, strings.Count(content[:loc[0]], "\n")+1)
	}
	return lines
}

func (r *Rule) isFalsePositive(context string) bool {
	for _, hint := range r.falsePositive {
		if hint.MatchString(context) {
			return true
		}
	}
	return false
}

func rule(id, description, pattern string, hints ...string) *Rule {
	r := &Rule{ID: id, Description: description, pattern: regexp.MustCompile(pattern)}
	for _, h := range hints {
		r.falsePositive = append(r.falsePositive, regexp.MustCompile(h))
	}
	return r
}

// DefaultRules is the rule set used by RunSecurityCheck.
var DefaultRules = []*Rule{
	rule("private_key", "Private key",
		`-----BEGIN (?:RSA |DSA |EC |OPENSSH |PGP |ENCRYPTED )?PRIVATE KEY(?: BLOCK)?-----`),
	rule("aws_access_key", "AWS access key ID",
		`\b(?:A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}\b`,
		`(?i)example`),
	rule("aws_secret_key", "AWS secret access key",
		`(?i)aws[_-]?secret[_-]?(?:access)?[_-]?key\s*[=:]\s*["']?[a-zA-Z0-9/+=]{40}["']?`),
	rule("github_token", "GitHub token",
		`\b(?:ghp|gho|ghu|ghs|ghr)_[a-zA-Z0-9]{36,}\b`),
	rule("github_pat", "GitHub fine-grained personal access token",
		`github_pat_[a-zA-Z0-9]{22}_[a-zA-Z0-9]{59}`),
	rule("slack_token", "Slack token",
		`xox[baprs]-[0-9a-zA-Z-]{10,}`),
	rule("slack_webhook", "Slack webhook URL",
		`https://hooks\.slack\.com/services/T[0-9A-Z]+/B[0-9A-Z]+/[a-zA-Z0-9]+`),
	rule("stripe_key", "Stripe secret key",
		`\b(?:sk|rk)_live_[0-9a-zA-Z]{24,}\b`),
	rule("openai_key", "OpenAI API key",
		`\bsk-(?:proj-|svcacct-|admin-)?[A-Za-z0-9_-]{20,}T3BlbkFJ[A-Za-z0-9_-]{20,}\b|\bsk-[A-Za-z0-9]{48}\b`),
	rule("google_api_key", "Google API key",
		`\bAIza[0-9A-Za-z_-]{35}\b`),
	rule("gcp_service_account", "Google Cloud service account key",
		`"type"\s*:\s*"service_account"`),
	rule("url_credentials", "Credentials embedded in URL",
		`[a-zA-Z][a-zA-Z0-9+.-]*://[^/\s:@"']+:[^/\s:@"']+@[^\s"']+`,
		`(?i)://(?:user|username)?:(?:pass|password)?@`,
		`(?i)\$\{?[A-Z_]+\}?@`),
	rule("generic_secret", "Hardcoded secret assignment",
		`(?i)\b(?:api[_-]?key|secret[_-]?key|client[_-]?secret|access[_-]?token|auth[_-]?token|password|passwd)\b\s*[=:]\s*["'][^"'\s]{12,}["']`,
		`(?i)["'](?:[a-z_]*(?:example|placeholder|changeme|dummy|sample)[a-z_]*|x{6,}|\*{6,})["']`,
		`(?i)your[_-]?(?:api[_-]?key|password|token|secret)`,
		`(?i)(?:getenv|environ|process\.env)`),
}
