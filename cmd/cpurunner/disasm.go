package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/FabianRolfMatthiasNoll/sm83core/internal/cart"
	"github.com/FabianRolfMatthiasNoll/sm83core/internal/cpu"
	"github.com/spf13/cobra"
)

func newDisasmCmd() *cobra.Command {
	start := addrValue(0x0100)
	var count int

	cmd := &cobra.Command{
		Use:   "disasm <rom>",
		Short: "Disassemble instructions linearly from a ROM image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read rom: %w", err)
			}
			c, _, err := cart.Load(rom)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(cmd.OutOrStdout())
			disassemble(w, c, uint16(start), count)
			return w.Flush()
		},
	}
	cmd.Flags().Var(&start, "start", "First address to decode")
	cmd.Flags().IntVarP(&count, "count", "n", 32, "Number of instructions")
	return cmd
}

// disassemble prints count instructions starting at pc, one per line, as
// address, raw bytes and text.
func disassemble(w io.Writer, r cpu.Reader, pc uint16, count int) {
	for i := 0; i < count; i++ {
		op := r.Read(pc)
		n := cpu.Length(op)

		var text string
		if op == 0xCB {
			text = cpu.Disassemble(r, pc+2, r.Read(pc+1), true)
		} else {
			text = cpu.Disassemble(r, pc+1, op, false)
		}

		raw := make([]string, n)
		for j := range raw {
			raw[j] = fmt.Sprintf("%02X", r.Read(pc+uint16(j)))
		}
		fmt.Fprintf(w, "%04X  %-8s  %s\n", pc, strings.Join(raw, " "), text)
		pc += uint16(n)
	}
}
