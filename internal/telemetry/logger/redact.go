package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// Key fragments whose values are never logged.
var sensitiveKeyPatterns = []string{
	"password",
	"passphrase",
	"secret",
	"token",
	"credential",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if s != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if masked := RedactString(s); masked != s {
			return slog.String(a.Key, masked)
		}
	case slog.KindAny:
		// Argument vectors of external commands.
		if args, ok := a.Value.Any().([]string); ok {
			out := make([]string, len(args))
			for i, s := range args {
				out[i] = RedactString(s)
			}
			return slog.Any(a.Key, out)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// RedactString masks the password of a URL embedded in value, such as
// "rsync://user:pw@host/module". Anything else is returned unchanged.
func RedactString(value string) string {
	i := strings.Index(value, "://")
	if i <= 0 || !strings.Contains(value[i:], "@") {
		return value
	}
	// Keep any "--opt=" prefix in front of the URL.
	start := strings.LastIndexAny(value[:i], "= ") + 1
	u, err := url.Parse(value[start:])
	if err != nil || u.User == nil {
		return value
	}
	if _, ok := u.User.Password(); !ok {
		return value
	}
	return value[:start] + u.Redacted()
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
