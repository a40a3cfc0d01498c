package logging

import (
	"fmt"
	"net/url"
	"strings"
)

// SecretKeyPatterns contains substrings that mark an attribute key as sensitive.
// Keys are matched case-insensitively.
var SecretKeyPatterns = []string{
	"TOKEN",
	"SECRET",
	"PASSWORD",
	"AUTHORIZATION",
	"VERIFIER",
	"CREDENTIAL",
	"API_KEY",
	"PRIVATE",
}

// secretKeys are keys masked only on an exact (case-insensitive) match.
// "code" as a substring would also catch exit codes and status codes.
var secretKeys = map[string]bool{
	"CODE":          true,
	"AUTH_CODE":     true,
	"CLIENT_SECRET": true,
}

// sensitiveQueryParams are URL query parameters redacted by MaskURL.
var sensitiveQueryParams = []string{"code", "code_verifier", "access_token", "refresh_token", "client_secret"}

// TokenPrefixes contains value prefixes that indicate a credential
// regardless of the key it is logged under.
var TokenPrefixes = []string{
	"eyJ",     // JWT (base64 of `{"`)
	"Bearer ", // Authorization header value
	"ghp_",    // GitHub personal access token
	"gho_",    // GitHub OAuth token
	"ghu_",    // GitHub user-to-server token
	"sk-",     // OpenAI/Anthropic keys
	"xoxb-",   // Slack bot token
	"xoxp-",   // Slack user token
}

// MaskValue masks a potentially sensitive string value.
// Values with 4 or fewer characters are fully masked as "********".
// Longer values show the last 4 characters: "****xxxx".
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// ShouldMask returns true if the key name suggests it contains sensitive data.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	if secretKeys[upper] {
		return true
	}
	for _, pattern := range SecretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix returns true if the value starts with a known token prefix.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range TokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// MaskURL redacts embedded passwords and authorization query parameters
// (code, code_verifier, tokens) from a URL. Unparseable input is returned
// unchanged.
func MaskURL(rawURL string) string {
	if rawURL == "" || !strings.Contains(rawURL, "://") {
		return rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	changed := false
	if parsed.User != nil {
		if password, ok := parsed.User.Password(); ok && password != "" {
			parsed.User = url.UserPassword(parsed.User.Username(), MaskValue(password))
			changed = true
		}
	}

	if parsed.RawQuery != "" {
		q := parsed.Query()
		for _, p := range sensitiveQueryParams {
			if v := q.Get(p); v != "" {
				q.Set(p, MaskValue(v))
				changed = true
			}
		}
		if changed {
			parsed.RawQuery = q.Encode()
		}
	}

	if !changed {
		return rawURL
	}
	return parsed.String()
}

// redact returns the display form of an attribute value and whether it
// differs from the original.
func redact(key string, value any) (any, bool) {
	if ShouldMask(key) {
		return MaskValue(stringOf(value)), true
	}
	strVal, ok := value.(string)
	if !ok {
		return value, false
	}
	if ContainsTokenPrefix(strVal) {
		return MaskValue(strVal), true
	}
	if masked := MaskURL(strVal); masked != strVal {
		return masked, true
	}
	return value, false
}

func stringOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
