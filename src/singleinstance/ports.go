package singleinstance

// PortRange is an inclusive loopback TCP port range. The resident binds Start;
// clients scan the whole range.
type PortRange struct {
	Start int
	End   int
}

// DefaultPorts is used when the caller has no configured range.
var DefaultPorts = PortRange{Start: 54321, End: 54329}

// normalize falls back to defaults when unset and clamps to [1024, 65535].
func (r PortRange) normalize() PortRange {
	if r.Start == 0 && r.End == 0 {
		return DefaultPorts
	}
	if r.End == 0 {
		r.End = r.Start
	}
	if r.Start < 1024 {
		r.Start = 1024
	}
	if r.End > 65535 {
		r.End = 65535
	}
	if r.End < r.Start {
		r.Start, r.End = r.End, r.Start
	}
	return r
}
