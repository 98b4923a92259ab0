package typeparsers

import (
	"net/netip"
	"net/url"

	"github.com/npillmayer/logpar/combinator"
	"github.com/npillmayer/logpar/document"
)

// IP builds the P_IP builder: an IPv4 or IPv6 address via net/netip. No
// pack example or third-party library in the retrieved corpus parses
// addresses without pulling in a much heavier networking stack than this
// single field needs, so this is one of the few builders grounded directly
// on the standard library rather than on a pack dependency. It bounds its
// own capture to ipCharset so it self-terminates when the compiler resolves
// an empty end-token list for a field immediately followed by another
// field or choice (§4.5).
func IP(name string, endTokens []string, args []string) combinator.Parser[any] {
	return fromCaptureWhile(name, endTokens, true, ipCharset, func(s string) (any, error) {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, err
		}
		return addr.String(), nil
	})
}

// URI builds the P_URI builder: a URI broken into its document fields
// (original, scheme, domain, path, and, when present, query, port and
// username). Like P_IP, no pack dependency offers a URI
// parser lighter than net/url, so this builder is grounded on the standard
// library.
func URI(name string, endTokens []string, args []string) combinator.Parser[any] {
	return fromCapture(name, endTokens, true, func(s string) (any, error) {
		u, err := url.Parse(s)
		if err != nil {
			return nil, err
		}
		d := document.Doc{
			"original": s,
			"scheme":   u.Scheme,
			"domain":   u.Hostname(),
			"path":     u.Path,
		}
		if u.RawQuery != "" {
			d["query"] = u.RawQuery
		}
		if port := u.Port(); port != "" {
			d["port"] = port
		}
		if u.User != nil {
			d["username"] = u.User.Username()
		}
		return d, nil
	})
}
