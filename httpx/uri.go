package httpx

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// URI is an immutable URI reference. The zero value is the empty URI with
// path "/" once rendered. Every With* method returns a modified copy.
type URI struct {
	scheme   string
	userInfo string
	host     string
	port     int // 0 when absent
	path     string
	query    string
	fragment string
}

const (
	schemeDelimiter = "://"
	minPort         = 1
	maxPort         = 65535
)

// StandardPort returns the default TCP port for scheme.
func StandardPort(scheme string) (int, bool) {
	switch strings.ToLower(scheme) {
	case "http":
		return 80, true
	case "https":
		return 443, true
	}
	return 0, false
}

// ParseURI splits raw into its components following the generic URI
// syntax "scheme://userinfo@host:port/path?query#fragment". Scheme and
// host are lower-cased and the path always starts with "/".
func ParseURI(raw string) (URI, error) {
	var u URI
	rest := raw

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		u.fragment = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		u.query = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, ':'); i > 0 && validScheme(rest[:i]) {
		u.scheme = strings.ToLower(rest[:i])
		rest = rest[i+1:]
	}
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexByte(rest, '/')
		if end < 0 {
			end = len(rest)
		}
		if err := u.parseAuthority(rest[:end]); err != nil {
			return URI{}, fmt.Errorf("%w %q: %v", ErrParse, raw, err)
		}
		rest = rest[end:]
	}
	u.path = normalizePath(rest)
	return u, nil
}

// MustParseURI is like ParseURI but panics on error.
func MustParseURI(raw string) URI {
	u, err := ParseURI(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func (u *URI) parseAuthority(auth string) error {
	hostport := auth
	if i := strings.LastIndexByte(auth, '@'); i >= 0 {
		u.userInfo = auth[:i]
		hostport = auth[i+1:]
	}
	host, port := hostport, ""
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return fmt.Errorf("unclosed IPv6 literal")
		}
		host = hostport[:end+1]
		switch after := hostport[end+1:]; {
		case after == "":
		case after[0] == ':':
			port = after[1:]
		default:
			return fmt.Errorf("unexpected %q after IPv6 literal", after)
		}
	} else if i := strings.LastIndexByte(hostport, ':'); i >= 0 {
		host, port = hostport[:i], hostport[i+1:]
		if strings.IndexByte(host, ':') >= 0 {
			return fmt.Errorf("unexpected ':' in host %q", host)
		}
	}
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < minPort || n > maxPort {
			return fmt.Errorf("invalid port %q", port)
		}
		u.port = n
	}
	if host == "" && (u.userInfo != "" || u.port != 0) {
		return fmt.Errorf("missing host")
	}
	u.host = strings.ToLower(host)
	return nil
}

// validScheme reports whether s matches ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func validScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return s != ""
}

func normalizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

func (u URI) Scheme() string   { return u.scheme }
func (u URI) UserInfo() string { return u.userInfo }
func (u URI) Host() string     { return u.host }

// Port returns the explicitly set port, or 0 when none is set.
func (u URI) Port() int { return u.port }

// Path always starts with "/".
func (u URI) Path() string {
	if u.path == "" {
		return "/"
	}
	return u.path
}

func (u URI) Query() string    { return u.query }
func (u URI) Fragment() string { return u.fragment }

// IsAbsolute reports whether both scheme and host are set.
func (u URI) IsAbsolute() bool { return u.scheme != "" && u.host != "" }

// Authority returns "[userinfo@]host[:port]", or "" when there is no host.
// A port is omitted only when none has been set; an explicit port equal
// to the scheme's standard port is still rendered.
func (u URI) Authority() string {
	if u.host == "" {
		return ""
	}
	var b strings.Builder
	if u.userInfo != "" {
		b.WriteString(u.userInfo)
		b.WriteByte('@')
	}
	b.WriteString(u.host)
	if u.port != 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(u.port))
	}
	return b.String()
}

// WithScheme accepts "http" or "https" in any case, with or without a
// trailing "://". An empty scheme is rejected.
func (u URI) WithScheme(scheme string) (URI, error) {
	s := strings.ToLower(strings.ReplaceAll(scheme, schemeDelimiter, ""))
	if s != "http" && s != "https" {
		return URI{}, invalidArgf("unsupported scheme %q", scheme)
	}
	u.scheme = s
	return u, nil
}

// WithUserInfo sets "user[:password]". An empty user clears the user info.
// Only the first password, if any, is used.
func (u URI) WithUserInfo(user string, password ...string) URI {
	switch {
	case user == "":
		u.userInfo = ""
	case len(password) > 0:
		u.userInfo = user + ":" + password[0]
	default:
		u.userInfo = user
	}
	return u
}

// WithHost lower-cases host; no hostname validation is performed.
func (u URI) WithHost(host string) URI {
	u.host = strings.ToLower(host)
	return u
}

func (u URI) WithPort(port int) (URI, error) {
	if port < minPort || port > maxPort {
		return URI{}, invalidArgf("port %d out of range [%d, %d]", port, minPort, maxPort)
	}
	u.port = port
	return u, nil
}

func (u URI) WithoutPort() URI {
	u.port = 0
	return u
}

// WithPath trims surrounding slashes from path and stores it as "/path/".
// The trailing slash is always added. An empty path becomes "/".
func (u URI) WithPath(path string) (URI, error) {
	if strings.Contains(path, "?") {
		return URI{}, invalidArgf("path %q must not contain a query string", path)
	}
	if strings.Contains(path, "#") {
		return URI{}, invalidArgf("path %q must not contain a fragment", path)
	}
	if p := strings.Trim(path, "/"); p != "" {
		u.path = "/" + p + "/"
	} else {
		u.path = "/"
	}
	return u, nil
}

// WithQuery strips leading "?" characters. A non-empty query must consist
// of key=value pairs separated by "&".
func (u URI) WithQuery(query string) (URI, error) {
	q := strings.TrimLeft(query, "?")
	if q != "" {
		if err := validateQuery(q); err != nil {
			return URI{}, err
		}
	}
	u.query = q
	return u, nil
}

func validateQuery(q string) error {
	pairs := 0
	for _, pair := range strings.Split(q, "&") {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return invalidArgf("query %q: %q is not a key=value pair", q, pair)
		}
		if _, err := url.QueryUnescape(key); err != nil {
			return invalidArgf("query %q: %v", q, err)
		}
		if _, err := url.QueryUnescape(value); err != nil {
			return invalidArgf("query %q: %v", q, err)
		}
		pairs++
	}
	if pairs == 0 {
		return invalidArgf("query %q has no key=value pair", q)
	}
	return nil
}

// WithFragment strips leading "#" characters.
func (u URI) WithFragment(fragment string) URI {
	u.fragment = strings.TrimLeft(fragment, "#")
	return u
}

// String reassembles the URI from its components.
func (u URI) String() string {
	var b strings.Builder
	if u.scheme != "" {
		b.WriteString(u.scheme)
		b.WriteString(schemeDelimiter)
	}
	b.WriteString(u.Authority())
	b.WriteString(u.Path())
	if u.query != "" {
		b.WriteByte('?')
		b.WriteString(u.query)
	}
	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.fragment)
	}
	return b.String()
}

func (u URI) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *URI) UnmarshalText(text []byte) error {
	v, err := ParseURI(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// requestTarget returns the origin-form target: path plus optional query,
// with whitespace percent-encoded so the target is a single token.
func (u URI) requestTarget() string {
	t := u.Path()
	if u.query != "" {
		t += "?" + u.query
	}
	return escapeSpace(t)
}

func escapeSpace(s string) string {
	if strings.IndexFunc(s, unicode.IsSpace) < 0 {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		var enc [utf8.UTFMax]byte
		n := utf8.EncodeRune(enc[:], r)
		for _, c := range enc[:n] {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
