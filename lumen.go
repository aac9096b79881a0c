// Package lumen is the embedding surface of the HLE service layer: it wires
// guest memory, the handle table and the service dispatch tables together
// from host configuration. The CPU core drives it by handing over a command
// buffer whenever the guest performs a synchronous service call.
package lumen

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/lumen-emu/lumen/config"
	"github.com/lumen-emu/lumen/ipc"
	"github.com/lumen-emu/lumen/kernel"
	"github.com/lumen-emu/lumen/service"
	"github.com/lumen-emu/lumen/service/apt"
	"github.com/lumen-emu/lumen/util"
)

const (
	defaultMemoryBase = 0x08000000
	defaultMemorySize = 1 << 20

	defaultFontBase = 0x18000000
)

// Host owns the emulated process's service-call plumbing.
type Host struct {
	l *logrus.Logger

	Memory  *kernel.FlatMemory
	Handles *kernel.HandleTable
	APT     *apt.APT

	services map[string]*service.Service
}

// Main builds a Host from configuration. The logger is reconfigured from the
// `logging` section before anything else so construction itself logs the way
// the operator asked for.
func Main(c *config.C, l *logrus.Logger) (*Host, error) {
	if err := configLogger(l, c); err != nil {
		return nil, util.NewFault("failed to configure the logger", nil, err)
	}

	h := &Host{
		l: l,
		Memory: kernel.NewFlatMemory(
			c.GetUint32("memory.base", defaultMemoryBase),
			c.GetInt("memory.size", defaultMemorySize)),
		Handles:  kernel.NewHandleTable(),
		services: make(map[string]*service.Service),
	}

	h.APT = apt.New(l, h.Handles, nil)
	if path := c.GetString("font.path", ""); path != "" {
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, util.NewFault("failed to read the shared font", map[string]any{"path": path}, err)
		}
		base := c.GetUint32("font.base", defaultFontBase)
		if err := h.APT.LoadSharedFont(blob, base); err != nil {
			return nil, util.NewFault("failed to load the shared font", map[string]any{"path": path}, err)
		}
		l.WithFields(logrus.Fields{"path": path, "base": fmt.Sprintf("%#08x", base)}).
			Info("shared font loaded")
	}

	// The guest reaches the same applet manager through three ports.
	aptService := h.APT.Service()
	for _, port := range []string{"APT:U", "APT:S", "APT:A"} {
		h.services[port] = aptService
	}

	return h, nil
}

// Service returns the service registered for a port name.
func (h *Host) Service(port string) (*service.Service, bool) {
	s, ok := h.services[port]
	return s, ok
}

// Dispatch runs one synchronous call against the named port. Protocol
// violations are logged through the fatal-error channel and returned; the
// caller must stop the guest rather than continue on a corrupted call.
func (h *Host) Dispatch(port string, b *ipc.Buffer) error {
	s, ok := h.services[port]
	if !ok {
		return util.NewFault("no service bound to port", map[string]any{"port": port}, nil)
	}
	if err := s.Handle(b, h.Memory); err != nil {
		util.LogFault("service call fault", err, h.l)
		return err
	}
	return nil
}
