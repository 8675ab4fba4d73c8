package topology

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCIDR is returned by ParseCIDR for strings that are not a valid
// dotted-decimal IPv4 address followed by "/" and a prefix length 0-32.
var ErrInvalidCIDR = errors.New("invalid ip/prefix")

// Addr is an IPv4 address held as a 32-bit integer.
type Addr uint32

// CIDR is a parsed "a.b.c.d/p" string: an address plus a prefix length.
type CIDR struct {
	Addr   Addr
	Prefix int
}

// ParseCIDR parses "a.b.c.d/p" with octets 0-255 and prefix 0-32.
// No shorthand forms are accepted: exactly four octets and an explicit
// prefix are required, matching the topology document format.
func ParseCIDR(s string) (CIDR, error) {
	ipPart, prefixPart, ok := strings.Cut(s, "/")
	if !ok {
		return CIDR{}, fmt.Errorf("%w: %q", ErrInvalidCIDR, s)
	}

	prefix, err := strconv.Atoi(prefixPart)
	if err != nil || prefix < 0 || prefix > 32 {
		return CIDR{}, fmt.Errorf("%w: %q", ErrInvalidCIDR, s)
	}

	octets := strings.Split(ipPart, ".")
	if len(octets) != 4 {
		return CIDR{}, fmt.Errorf("%w: %q", ErrInvalidCIDR, s)
	}

	var addr Addr
	for _, o := range octets {
		v, err := strconv.Atoi(o)
		if err != nil || v < 0 || v > 255 || (len(o) > 1 && o[0] == '0') {
			return CIDR{}, fmt.Errorf("%w: %q", ErrInvalidCIDR, s)
		}
		addr = addr<<8 | Addr(v)
	}

	return CIDR{Addr: addr, Prefix: prefix}, nil
}

// Network returns the network address of the CIDR: the address with all host
// bits cleared. A /0 prefix yields 0.
func (c CIDR) Network() Addr {
	if c.Prefix == 0 {
		return 0
	}
	mask := ^Addr(1<<(32-c.Prefix) - 1)
	return c.Addr & mask
}

// String renders the CIDR back to "a.b.c.d/p" form.
func (c CIDR) String() string {
	return fmt.Sprintf("%s/%d", c.Addr, c.Prefix)
}

// String renders the address in dotted-decimal form.
func (a Addr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(a>>24), byte(a>>16), byte(a>>8), byte(a))
}

// HostNumber returns the last octet of an "a.b.c.d/p" string, used for the
// ".N" host shorthand in edge labels. Returns 0 for unparseable input.
func HostNumber(s string) int {
	c, err := ParseCIDR(s)
	if err != nil {
		return 0
	}
	return int(c.Addr & 0xff)
}
