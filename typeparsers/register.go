package typeparsers

import "github.com/npillmayer/logpar/registry"

// Register installs the builder for every registry.ParserKind named in
// §4.4's fixed type table onto r. It is the normal way a program wires up a
// fresh Registry. Register stops at the first ErrDuplicate and returns it:
// if any of these kinds is already registered on r, Register fails, and the
// kinds after it in its list are left unregistered.
func Register(r *registry.Registry) error {
	builders := []struct {
		kind registry.ParserKind
		fn   registry.Builder
	}{
		{registry.PLong, Long},
		{registry.PDouble, Double},
		{registry.PFloat, Float},
		{registry.PScaledFloat, ScaledFloat},
		{registry.PByte, Byte},
		{registry.PText, Text},
		{registry.PBool, Bool},
		{registry.PIP, IP},
		{registry.PDate, Date},
		{registry.PUserAgent, UserAgent},
		{registry.PURI, URI},
		{registry.PLiteral, Literal},
	}
	for _, b := range builders {
		if err := r.RegisterBuilder(b.kind, b.fn); err != nil {
			return err
		}
	}
	tracer().Infof("registered %d type parser builders", len(builders))
	return nil
}
