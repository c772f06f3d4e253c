// Package forum derives stable identifiers for forum endpoints and
// round-trips per-forum publication metadata through note front matter.
package forum

import (
	"net/url"
	"regexp"
	"strings"
)

// Maximum length of a key derived from an unparseable URL
const maxFallbackKeyLength = 20

var regexIPv4 = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

// Common infrastructural subdomains that carry no identity
var infraSubdomains = map[string]bool{
	"www": true,
	"api": true,
	"cdn": true,
}

// Country-code second-level labels forming compound TLDs (ex: co.uk, com.au)
var compoundSecondLabels = map[string]bool{
	"ac":  true,
	"co":  true,
	"com": true,
	"edu": true,
	"gov": true,
	"net": true,
	"org": true,
}

// DeriveKey maps a forum base URL to a stable, metadata-safe short identifier.
//
// Ex:
//
//	https://forum.example.com  => forum_example
//	https://example.com        => example
//	http://127.0.0.1:3000      => 127-0-0-1-3000
//
// Malformed URLs never fail: the raw string is sanitized and truncated instead.
func DeriveKey(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Hostname() == "" {
		key := sanitizeKey(baseURL)
		// Truncate on runes so the bound stays valid if sanitizeKey ever
		// lets multi-byte characters through
		if runes := []rune(key); len(runes) > maxFallbackKeyLength {
			key = string(runes[:maxFallbackKeyLength])
		}
		return strings.Trim(key, "_")
	}

	hostname := strings.ToLower(parsed.Hostname())
	port := parsed.Port()

	if regexIPv4.MatchString(hostname) {
		key := strings.ReplaceAll(hostname, ".", "-")
		if port != "" {
			key += "-" + port
		}
		return key
	}

	subdomain, mainDomain := splitDomain(hostname)
	if subdomain != "" {
		return sanitizeKey(subdomain + "_" + mainDomain)
	}
	return sanitizeKey(mainDomain)
}

// DisplayName returns a human-readable name for a forum endpoint.
// Same domain-part extraction as DeriveKey but without sanitization.
func DisplayName(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Hostname() == "" {
		return baseURL
	}

	hostname := strings.ToLower(parsed.Hostname())
	port := parsed.Port()

	if regexIPv4.MatchString(hostname) {
		if port != "" {
			return hostname + ":" + port
		}
		return hostname
	}

	subdomain, mainDomain := splitDomain(hostname)
	if subdomain != "" {
		return subdomain + "." + mainDomain
	}
	return mainDomain
}

// SameForum returns if two URLs point to the same forum.
// Only hostname (case-insensitive) and port matter; scheme and path are ignored.
func SameForum(urlA, urlB string) bool {
	parsedA, errA := url.Parse(urlA)
	parsedB, errB := url.Parse(urlB)
	if errA != nil || errB != nil {
		return false
	}
	return strings.EqualFold(parsedA.Hostname(), parsedB.Hostname()) &&
		parsedA.Port() == parsedB.Port()
}

// splitDomain extracts the main domain and the optional meaningful subdomain
// from a hostname. An empty subdomain after filtering infrastructural names
// is a legitimate "no subdomain" result.
func splitDomain(hostname string) (subdomain, mainDomain string) {
	labels := strings.Split(hostname, ".")
	if len(labels) == 1 {
		return "", labels[0]
	}

	// Compound TLD (ex: example.co.uk): the label before the trailing pair
	// is the main domain.
	if len(labels) >= 3 && len(labels[len(labels)-1]) == 2 && compoundSecondLabels[labels[len(labels)-2]] {
		mainDomain = labels[len(labels)-3]
		if len(labels) >= 4 {
			subdomain = labels[len(labels)-4]
		}
	} else {
		mainDomain = labels[len(labels)-2]
		if len(labels) >= 3 {
			subdomain = labels[len(labels)-3]
		}
	}

	if infraSubdomains[subdomain] {
		subdomain = ""
	}
	return subdomain, mainDomain
}

var regexUnsafeCharacters = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
var regexRepeatedUnderscores = regexp.MustCompile(`_+`)

func sanitizeKey(key string) string {
	key = regexUnsafeCharacters.ReplaceAllString(key, "_")
	key = regexRepeatedUnderscores.ReplaceAllString(key, "_")
	key = strings.Trim(key, "_")
	return strings.ToLower(key)
}
