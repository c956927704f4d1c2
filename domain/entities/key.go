package entities

import (
	"fmt"
	"strings"
)

// InterfaceKey identifies one directory slot: an interface name plus the
// instance name under which an implementation is published.
//
// Interface names may be namespaced ("sim::IFrameRate"); instance names must
// not contain a dot.
type InterfaceKey struct {
	Interface string `json:"interface" yaml:"interface" hcl:"interface,label" validate:"required,max=127"`
	Instance  string `json:"instance" yaml:"instance" hcl:"instance,label" validate:"required,max=127,excludes=."`
}

// Key builds an InterfaceKey.
func Key(iface, instance string) InterfaceKey {
	return InterfaceKey{Interface: iface, Instance: instance}
}

// ParseKey parses the "Interface.instance" text form. The split happens at the
// last dot so that namespaced interface names survive a round trip.
func ParseKey(s string) (InterfaceKey, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return InterfaceKey{}, fmt.Errorf("invalid interface key %q: want Interface.instance", s)
	}
	return InterfaceKey{Interface: s[:i], Instance: s[i+1:]}, nil
}

// String returns the "Interface.instance" form.
func (k InterfaceKey) String() string {
	return k.Interface + "." + k.Instance
}

// IsZero reports whether either half of the key is empty.
func (k InterfaceKey) IsZero() bool {
	return k.Interface == "" || k.Instance == ""
}

// Compare orders keys by interface name, then instance name.
func (k InterfaceKey) Compare(other InterfaceKey) int {
	if c := strings.Compare(k.Interface, other.Interface); c != 0 {
		return c
	}
	return strings.Compare(k.Instance, other.Instance)
}
