// Package service dispatches command-buffer calls to named HLE services. A
// service owns a command-id table of ipc functions; everything below the
// table (decoding, budget accounting, reply encoding) is the ipc package's
// job, and everything above it (kernel objects, per-service state) lives in
// the service implementations.
package service

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lumen-emu/lumen/ipc"
	"github.com/lumen-emu/lumen/result"
	"github.com/lumen-emu/lumen/util"
)

// ErrProtocolViolation tags faults that mean a handler signature no longer
// matches the wire layout the guest used. These are host bugs; letting them
// pass would corrupt emulation state, so the call path halts instead.
var ErrProtocolViolation = errors.New("ipc protocol violation")

// errUnknownCommand is the guest-facing reply for a command id the service
// has no entry for.
var errUnknownCommand = result.New(0x3F8, result.ModuleOS, result.SummaryNotSupported, result.LevelPermanent)

type Service struct {
	name    string
	l       *logrus.Logger
	funcs   map[uint16]ipc.Func
	metrics *callMetrics
}

func New(name string, l *logrus.Logger) *Service {
	return &Service{
		name:    name,
		l:       l,
		funcs:   make(map[uint16]ipc.Func),
		metrics: newCallMetrics(name),
	}
}

func (s *Service) Name() string { return s.name }

// Register installs f for commandID, replacing any previous entry.
func (s *Service) Register(commandID uint16, f ipc.Func) {
	s.funcs[commandID] = f
	s.metrics.register(commandID, f.Name)
}

// Handle runs one synchronous call against the buffer. Guest-induced
// failures complete normally with an error result word; the returned error is
// reserved for host-side faults, which the embedder must treat as fatal to
// the call path.
func (s *Service) Handle(b *ipc.Buffer, mem ipc.Memory) error {
	h := b.Header()

	f, ok := s.funcs[h.CommandID]
	if !ok {
		s.metrics.unknown.Inc(1)
		s.l.WithFields(logrus.Fields{"service": s.name, "command": fmt.Sprintf("%#06x", h.CommandID)}).
			Error("unknown command")
		return s.replyUnknown(b, h)
	}

	s.metrics.call(h.CommandID)
	if err := ipc.Call(b, mem, f); err != nil {
		s.metrics.violations.Inc(1)
		return util.NewFault("halting call path", map[string]any{
			"service": s.name,
			"command": f.Name,
		}, fmt.Errorf("%w: %w", ErrProtocolViolation, err))
	}
	return nil
}

// replyUnknown rewrites the buffer with just an error result word, keeping
// the guest's command id.
func (s *Service) replyUnknown(b *ipc.Buffer, h ipc.Header) error {
	w := ipc.NewWriter(b, nil)
	if err := w.Write(ipc.NewU32(uint32(errUnknownCommand))); err != nil {
		return err
	}
	return w.Finish(h.CommandID)
}

// Stub builds a deterministic placeholder for a not-yet-implemented command:
// it consumes the declared arguments, logs the call as stubbed, and replies
// with the fixed words given, result code first. Same inputs always produce
// the same reply, so compatibility progress stays reproducible.
func (s *Service) Stub(name string, args []ipc.Type, reply ...uint32) ipc.Func {
	return ipc.Func{
		Name: name,
		Args: args,
		Fn: func(in []ipc.Param) ([]ipc.Param, error) {
			s.l.WithFields(logrus.Fields{"service": s.name, "command": name}).
				Warn("(STUBBED) called")
			out := make([]ipc.Param, 0, len(reply)+1)
			out = append(out, ipc.NewU32(uint32(result.Success)))
			for _, wd := range reply {
				out = append(out, ipc.NewU32(wd))
			}
			return out, nil
		},
	}
}
