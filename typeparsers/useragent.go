package typeparsers

import (
	_ "embed"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"

	"github.com/npillmayer/logpar/combinator"
	"github.com/npillmayer/logpar/document"
)

//go:embed regexes.yaml
var regexesYAML []byte

var (
	uaOnce   sync.Once
	uaParser *uaparser.Parser
	uaErr    error
)

func sharedUAParser() (*uaparser.Parser, error) {
	uaOnce.Do(func() {
		uaParser, uaErr = uaparser.NewFromBytes(regexesYAML)
	})
	return uaParser, uaErr
}

// UserAgent builds the P_USER_AGENT builder: the raw header text, broken
// down into browser/OS/device fields via github.com/ua-parser/uap-go, the
// same library the real uap-core regex corpus ships bindings for. The
// registered pattern set here is a small representative subset, not the
// full upstream corpus.
func UserAgent(name string, endTokens []string, args []string) combinator.Parser[any] {
	return fromCapture(name, endTokens, true, func(s string) (any, error) {
		p, err := sharedUAParser()
		if err != nil {
			return nil, err
		}
		client := p.Parse(s)
		d := document.Doc{"original": s}
		if client.UserAgent != nil && client.UserAgent.Family != "" {
			d["name"] = client.UserAgent.Family
			if client.UserAgent.Major != "" {
				d["version"] = client.UserAgent.Major
			}
		}
		if client.Os != nil && client.Os.Family != "" {
			d["os"] = document.Doc{"name": client.Os.Family, "version": client.Os.Major}
		}
		if client.Device != nil && client.Device.Family != "" {
			d["device"] = document.Doc{"name": client.Device.Family}
		}
		return d, nil
	})
}
