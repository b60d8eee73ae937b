package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

var _ pflag.Value = (*addrValue)(nil)

// addrValue is a 16-bit address flag. It accepts hex with a 0x or $ prefix,
// or bare hex digits.
type addrValue uint16

func (a *addrValue) String() string { return fmt.Sprintf("0x%04X", uint16(*a)) }
func (a *addrValue) Type() string   { return "addr" }

func (a *addrValue) Set(s string) error {
	h := strings.ToLower(strings.TrimSpace(s))
	h = strings.TrimPrefix(h, "0x")
	h = strings.TrimPrefix(h, "$")
	v, err := strconv.ParseUint(h, 16, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q", s)
	}
	*a = addrValue(v)
	return nil
}
