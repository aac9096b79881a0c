// lumen-trace decodes a captured command buffer into a readable parameter
// listing. Words are given on the command line in hex, header first; the
// expected signature is passed with -types, since the wire format is
// positional and a raw buffer does not describe itself.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lumen-emu/lumen/ipc"
)

func main() {
	flagTypes := flag.String("types", "", "Comma-separated parameter types: u32, u64, handles, pid, static, mapped")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] WORD [WORD...]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Decode a command buffer given as hex words, header first.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*flagTypes, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(types string, words []string, out *os.File) error {
	b := ipc.NewBuffer()
	if len(words) > ipc.BufferWords {
		return fmt.Errorf("%d words given, buffer holds %d", len(words), ipc.BufferWords)
	}
	for i, w := range words {
		v, err := strconv.ParseUint(strings.TrimPrefix(w, "0x"), 16, 32)
		if err != nil {
			return fmt.Errorf("word %d %q: %s", i, w, err)
		}
		b.Words()[i] = uint32(v)
	}

	h := b.Header()
	fmt.Fprintf(out, "command=%#06x regular=%d translate=%d\n", h.CommandID, h.Regular, h.Translate)

	if types == "" {
		return nil
	}
	sig, err := parseTypes(types)
	if err != nil {
		return err
	}

	r, err := ipc.NewReader(b, h, zeroMemory{})
	if err != nil {
		return err
	}
	for i, typ := range sig {
		p, err := r.Next(typ)
		if err != nil {
			return fmt.Errorf("parameter %d: %s", i, err)
		}
		printParam(out, i, p)
	}
	return r.Finish()
}

func parseTypes(s string) ([]ipc.Type, error) {
	var sig []ipc.Type
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "u32":
			sig = append(sig, ipc.U32)
		case "u64":
			sig = append(sig, ipc.U64)
		case "handles":
			sig = append(sig, ipc.HandlesType)
		case "pid":
			sig = append(sig, ipc.CallingPIDType)
		case "static":
			sig = append(sig, ipc.StaticBufferType)
		case "mapped":
			sig = append(sig, ipc.MappedBufferType)
		default:
			return nil, fmt.Errorf("unknown parameter type %q", name)
		}
	}
	return sig, nil
}

func printParam(out *os.File, i int, p ipc.Param) {
	switch v := p.(type) {
	case ipc.Regular:
		if len(v.Bytes) == 8 {
			fmt.Fprintf(out, "%2d: u64 %#x\n", i, v.U64())
			return
		}
		fmt.Fprintf(out, "%2d: u32 %#x\n", i, v.U32())
	case ipc.Handles:
		mode := "move"
		if v.Copy {
			mode = "copy"
		}
		fmt.Fprintf(out, "%2d: handles (%s) %#x\n", i, mode, v.Values)
	case ipc.CallingPID:
		fmt.Fprintf(out, "%2d: calling pid %d\n", i, v.PID)
	case ipc.StaticBuffer:
		fmt.Fprintf(out, "%2d: static buffer id=%d size=%d addr=%#08x\n", i, v.ID, len(v.Data), v.Address)
	case ipc.MappedBuffer:
		fmt.Fprintf(out, "%2d: mapped buffer perm=%d size=%d addr=%#08x\n", i, v.Perm, v.Size, v.Address)
	}
}

// zeroMemory satisfies static buffer reads with zeroes; a captured buffer
// arrives without the guest address space that backed it.
type zeroMemory struct{}

func (zeroMemory) ReadBlock(addr uint32, size uint32) ([]byte, error) {
	return make([]byte, size), nil
}

func (zeroMemory) WriteBlock(addr uint32, data []byte) error {
	return nil
}
