// lumen-font inspects and rebases shared-font dumps so a blob authored
// against the stock dump base can be prepared for a different mapping
// address ahead of time.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lumen-emu/lumen/bcfnt"
)

func main() {
	flagOut := flag.String("out", "", "Write the relocated blob to this path instead of just inspecting")
	flagBase := flag.Uint64("base", bcfnt.AuthoredBase, "Target base address for relocation")
	flagRaw := flag.Bool("raw", false, "Blob has no shared-memory prefix before the CFNT header")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] FONT_FILE\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *flagOut, uint32(*flagBase), *flagRaw); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(path, outPath string, base uint32, raw bool) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	offset := bcfnt.SharedFontOffset
	if raw {
		offset = 0
	}
	if len(blob) < offset {
		return fmt.Errorf("%s: %d bytes is too short for a shared font dump", path, len(blob))
	}
	font := blob[offset:]

	hdr, err := bcfnt.ParseHeader(font)
	if err != nil {
		return err
	}
	fmt.Printf("%s: version=%#x size=%d blocks=%d\n", path, hdr.Version, hdr.FileSize, hdr.NumBlocks)

	if outPath == "" {
		return nil
	}

	if err := bcfnt.Relocate(font, bcfnt.AuthoredBase, base); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, blob, 0o644); err != nil {
		return err
	}
	fmt.Printf("relocated to %#08x: %s\n", base, outPath)
	return nil
}
