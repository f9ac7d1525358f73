package openrouter

import (
	"fmt"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://openrouter.ai"

// hostSet is a lowercase set of hostnames without ports.
type hostSet map[string]struct{}

var defaultHosts = hostSet{
	"openrouter.ai":     {},
	"api.openrouter.ai": {},
}

func (h hostSet) has(host string) bool {
	_, ok := h[strings.ToLower(host)]
	return ok
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// ValidateBaseURL checks that baseURL is a plain https origin (optionally with
// a path prefix) whose host is in allowedHosts. An empty allow-list means the
// public OpenRouter hosts.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)
	bad := func(reason string) error {
		return fmt.Errorf("invalid OPENROUTER_BASE_URL %q: %s", baseURL, reason)
	}

	u, err := url.Parse(baseURL)
	switch {
	case err != nil:
		return fmt.Errorf("invalid OPENROUTER_BASE_URL: %w", err)
	case !u.IsAbs() || u.Hostname() == "":
		return bad("absolute URL with host is required")
	case u.User != nil:
		return bad("userinfo is not allowed")
	case u.RawQuery != "" || u.Fragment != "":
		return bad("query and fragment are not allowed")
	case !strings.EqualFold(u.Scheme, "https"):
		return bad("https is required")
	}

	if !parseHosts(allowedHosts).has(u.Hostname()) {
		return bad(fmt.Sprintf("host %q is not in OPENROUTER_ALLOWED_HOSTS", strings.ToLower(u.Hostname())))
	}
	return nil
}

// parseHosts accepts bare hosts, host:port or full origins.
func parseHosts(raw []string) hostSet {
	out := hostSet{}
	for _, h := range raw {
		v := strings.ToLower(strings.TrimSpace(h))
		if _, rest, ok := strings.Cut(v, "://"); ok {
			v = rest
		}
		v, _, _ = strings.Cut(strings.Trim(v, "/"), "/")
		v, _, _ = strings.Cut(v, ":")
		if v != "" {
			out[v] = struct{}{}
		}
	}
	if len(out) == 0 {
		return defaultHosts
	}
	return out
}
