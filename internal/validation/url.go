package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// URLValidator validates http(s) URLs handed to the network or to a browser.
type URLValidator struct {
	// MaxLength is the maximum allowed URL length
	MaxLength int
	// DefaultScheme is prepended when the input carries no scheme
	DefaultScheme string
}

// NewBackendURLValidator accepts local and private addresses, since the
// search backend usually runs next to the client during development.
func NewBackendURLValidator() *URLValidator {
	return &URLValidator{
		MaxLength:     2048,
		DefaultScheme: "http",
	}
}

// NewResultURLValidator is used before a result URL is passed to an
// external program.
func NewResultURLValidator() *URLValidator {
	return &URLValidator{
		MaxLength:     4096,
		DefaultScheme: "https",
	}
}

// ValidateAndNormalize validates a URL and returns the normalized version
func (v *URLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'`\n\r\t ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		if hasScheme(input) {
			return "", fmt.Errorf("URL must use http or https protocol")
		}
		scheme := v.DefaultScheme
		if scheme == "" {
			scheme = "https"
		}
		input = scheme + "://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}
	parsedURL.Scheme = scheme

	if parsedURL.Host == "" || parsedURL.Hostname() == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if parsedURL.User != nil {
		return "", fmt.Errorf("URL must not embed credentials")
	}

	if hostname := parsedURL.Hostname(); isUnroutable(hostname) {
		return "", fmt.Errorf("hostname %q is not routable", hostname)
	}

	return parsedURL.String(), nil
}

// hasScheme catches "javascript:alert(1)" and "mailto:x" style inputs that
// carry a scheme without an authority.
func hasScheme(input string) bool {
	i := strings.Index(input, ":")
	if i <= 0 {
		return false
	}
	candidate, rest := input[:i], input[i+1:]
	if startsWithPort(rest) {
		return false
	}
	for _, r := range candidate {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

// startsWithPort reports whether s looks like the "8080" or "8080/path"
// tail of a host:port pair.
func startsWithPort(s string) bool {
	if end := strings.IndexByte(s, '/'); end >= 0 {
		s = s[:end]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isUnroutable(hostname string) bool {
	ip := net.ParseIP(hostname)
	if ip == nil {
		return false
	}
	return ip.IsUnspecified() || ip.Equal(net.IPv4bcast)
}
