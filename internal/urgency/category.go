package urgency

import "strings"

// categoryKeywords drives category auto-detection for tickets submitted
// without one. First match in declaration order wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"payment", []string{"payment", "billing", "invoice", "charge", "refund", "transaction"}},
	{"security", []string{"security", "breach", "hack", "virus", "malware", "phishing", "vulnerability"}},
	{"outage", []string{"outage", "down", "offline", "unavailable", "503", "500 error"}},
	{"authentication", []string{"login", "password", "auth", "sso", "mfa", "2fa", "locked out"}},
	{"email", []string{"email", "outlook", "inbox", "smtp", "mail"}},
	{"network", []string{"vpn", "network", "wifi", "internet", "connection", "dns"}},
	{"hardware", []string{"printer", "laptop", "monitor", "keyboard", "mouse", "hardware"}},
	{"database", []string{"database", "sql", "query", "replication", "backup"}},
	{"performance", []string{"slow", "performance", "lag", "timeout", "memory"}},
}

// DetectCategory infers a ticket category from its text, returning "general"
// when nothing matches.
func DetectCategory(text string) string {
	lowered := strings.ToLower(text)
	for _, group := range categoryKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(lowered, keyword) {
				return group.category
			}
		}
	}
	return "general"
}
