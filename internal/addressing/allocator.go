// Package addressing implements the address allocator: a
// deterministic, monotonically advancing cursor over a private /16 used to
// hand out per-link /30 subnets and per-router identifiers.
package addressing

import (
	"fmt"
	"net"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
)

// DefaultLinkRange is the documented default range for point-to-point
// link subnets.
const DefaultLinkRange = "10.100.0.0/16"

// Allocator hands out /30 point-to-point subnets and router identifiers
// from a private range. Replaying Allocator calls in the same order
// against a freshly constructed Allocator always yields identical output
// so that repeated runs of the same synthesis are reproducible; the
// caller is responsible for constructing
// one Allocator per synthesis run.
type Allocator struct {
	base    uint32
	bits    int
	cursor  uint32 // offset in /30 blocks already handed out
	maxCursor uint32
}

// New constructs an Allocator over the given CIDR range (typically
// DefaultLinkRange). Returns an error if the range cannot host at least one
// /30.
func New(cidr string) (*Allocator, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("addressing: invalid range %q: %w", cidr, err)
	}
	ones, bits := ipnet.Mask.Size()
	if bits != 32 {
		return nil, fmt.Errorf("addressing: only IPv4 ranges are supported, got %q", cidr)
	}
	if ones > 30 {
		return nil, fmt.Errorf("addressing: range %q is smaller than a /30", cidr)
	}

	base := ipToUint32(ipnet.IP)
	blockCount := uint32(1) << uint(30-ones)

	return &Allocator{
		base:      base,
		bits:      bits,
		cursor:    0,
		maxCursor: blockCount,
	}, nil
}

// Subnet is an allocated /30: two usable host addresses and the mask.
type Subnet struct {
	IPA  net.IP
	IPB  net.IP
	Mask net.IP
}

// NextLinkSubnet returns an unused /30 from the range, advancing the
// allocator's cursor. Returns *domerrors.AddressSpaceExhaustedError once
// every /30 block in the configured range has been handed out.
func (a *Allocator) NextLinkSubnet() (Subnet, error) {
	if a.cursor >= a.maxCursor {
		return Subnet{}, &domerrors.AddressSpaceExhaustedError{Range: fmt.Sprintf("base+%d/30 blocks", a.maxCursor)}
	}
	blockBase := a.base + a.cursor*4
	a.cursor++

	return Subnet{
		IPA:  uint32ToIP(blockBase + 1),
		IPB:  uint32ToIP(blockBase + 2),
		Mask: uint32ToIP(0xFFFFFFFC),
	}, nil
}

// Remaining reports how many /30 blocks are still unallocated.
func (a *Allocator) Remaining() int {
	return int(a.maxCursor - a.cursor)
}

// RouterID deterministically derives a router identifier from the router's
// creation index: 10.<r>.1.1, where r is (index mod 254) + 1, so index 0
// gives 10.1.1.1 and the sequence wraps after 254 routers.
func RouterID(index int) string {
	octet := (index % 254) + 1
	return fmt.Sprintf("10.%d.1.1", octet)
}

// Wildcard returns the bitwise complement of a subnet mask, used when
// rendering OSPF network statements by downstream renderers.
func Wildcard(mask net.IP) net.IP {
	m := mask.To4()
	w := make(net.IP, 4)
	for i := range m {
		w[i] = ^m[i]
	}
	return w
}

func ipToUint32(ip net.IP) uint32 {
	ip4 := ip.To4()
	return uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3])
}

func uint32ToIP(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
