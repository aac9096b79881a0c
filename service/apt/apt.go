// Package apt implements the applet manager service, the worked example of a
// command-buffer consumer: it exchanges parameters between applets through a
// single-slot latch, hands out kernel handles through translate parameters,
// and owns the shared system font.
package apt

import (
	"github.com/sirupsen/logrus"

	"github.com/lumen-emu/lumen/bcfnt"
	"github.com/lumen-emu/lumen/ipc"
	"github.com/lumen-emu/lumen/kernel"
	"github.com/lumen-emu/lumen/result"
	"github.com/lumen-emu/lumen/service"
)

// Application ids with fixed, guest-known values.
const (
	AppIDHomeMenu    = 0x101
	AppIDApplication = 0x300
)

// Signal values delivered with a parameter.
const (
	SignalNone     = 0
	SignalWakeup   = 1
	SignalRequest  = 2
	SignalResponse = 3
)

var (
	errNoSuchApplet = result.New(0x2, result.ModuleApplet, result.SummaryNotFound, result.LevelStatus)
	errNoFont       = result.New(0x3, result.ModuleApplet, result.SummaryNotFound, result.LevelStatus)
)

// Applets is the external applet subsystem. When absent, every destination id
// is accepted and nothing reports as registered.
type Applets interface {
	IsRegistered(appID uint32) bool
}

// MessageParameter is the record exchanged between applets.
type MessageParameter struct {
	SenderID      uint32
	DestinationID uint32
	Signal        uint32
	Object        kernel.Object
	Data          []byte
}

// APT holds all service state explicitly; it is constructed once at service
// registration time and captured by the command handlers.
type APT struct {
	l       *logrus.Logger
	handles *kernel.HandleTable
	applets Applets

	lock         *kernel.Mutex
	notification *kernel.Event
	parameter    *kernel.Event

	sharedFont    *kernel.SharedMemory
	fontRelocated bool

	cpuPercent uint32

	// next is the pending-parameter latch: one slot, overwritten by every
	// send, not consumed by receives. Senders racing before a receive lose
	// updates; that is the documented behavior, not a defect.
	next *MessageParameter
}

func New(l *logrus.Logger, handles *kernel.HandleTable, applets Applets) *APT {
	return &APT{
		l:            l,
		handles:      handles,
		applets:      applets,
		lock:         kernel.NewMutex("APT:Lock", true),
		notification: kernel.NewEvent("APT:Notification"),
		parameter:    kernel.NewEvent("APT:Parameter"),
	}
}

// LoadSharedFont installs the font blob into a fresh shared memory block
// mapped at base. The blob is kept in its authored form; relocation happens
// lazily on the first GetSharedFont.
func (a *APT) LoadSharedFont(blob []byte, base uint32) error {
	if _, err := bcfnt.ParseHeader(blob[min(len(blob), bcfnt.SharedFontOffset):]); err != nil {
		return err
	}
	mem := kernel.NewSharedMemory("APT:SharedFont", base, len(blob))
	if err := mem.Load(0, blob); err != nil {
		return err
	}
	a.sharedFont = mem
	a.fontRelocated = false
	return nil
}

// PendingParameter exposes the latch for tests and embedders.
func (a *APT) PendingParameter() *MessageParameter {
	return a.next
}

// Service builds the dispatch table.
func (a *APT) Service() *service.Service {
	s := service.New("APT", a.l)

	s.Register(0x0001, ipc.Func{Name: "GetLockHandle", Args: []ipc.Type{ipc.U32}, Fn: a.getLockHandle})
	s.Register(0x0002, ipc.Func{Name: "Initialize", Args: []ipc.Type{ipc.U32, ipc.U32}, Fn: a.initialize})
	s.Register(0x0003, ipc.Func{Name: "Enable", Args: []ipc.Type{ipc.U32}, Fn: a.enable})
	s.Register(0x0005, ipc.Func{Name: "GetAppletManInfo", Args: []ipc.Type{ipc.U32}, Fn: a.getAppletManInfo})
	s.Register(0x0009, ipc.Func{Name: "IsRegistered", Args: []ipc.Type{ipc.U32}, Fn: a.isRegistered})
	s.Register(0x000B, ipc.Func{Name: "InquireNotification", Args: []ipc.Type{ipc.U32}, Fn: a.inquireNotification})
	s.Register(0x000C, ipc.Func{Name: "SendParameter",
		Args: []ipc.Type{ipc.U32, ipc.U32, ipc.U32, ipc.U32, ipc.HandlesType, ipc.StaticBufferType},
		Fn:   a.sendParameter})
	s.Register(0x000D, ipc.Func{Name: "ReceiveParameter",
		Args: []ipc.Type{ipc.U32, ipc.U32, ipc.StaticBufferType},
		Fn:   a.receiveParameter})
	s.Register(0x000E, ipc.Func{Name: "GlanceParameter",
		Args: []ipc.Type{ipc.U32, ipc.U32, ipc.StaticBufferType},
		Fn:   a.glanceParameter})
	s.Register(0x000F, s.Stub("CancelParameter",
		[]ipc.Type{ipc.U32, ipc.U32, ipc.U32, ipc.U32},
		1)) // "previous parameter canceled"
	s.Register(0x0015, s.Stub("PrepareToStartApplication",
		[]ipc.Type{ipc.U32, ipc.U32, ipc.U32, ipc.U32, ipc.U32}))
	s.Register(0x001B, s.Stub("StartApplication",
		[]ipc.Type{ipc.U32, ipc.U32, ipc.U32, ipc.StaticBufferType, ipc.StaticBufferType}))
	s.Register(0x0043, s.Stub("NotifyToWait", []ipc.Type{ipc.U32}))
	s.Register(0x0044, ipc.Func{Name: "GetSharedFont", Fn: a.getSharedFont})
	s.Register(0x004B, s.Stub("AppletUtility",
		[]ipc.Type{ipc.U32, ipc.U32, ipc.U32, ipc.StaticBufferType}))
	s.Register(0x004F, ipc.Func{Name: "SetAppCpuTimeLimit", Args: []ipc.Type{ipc.U32, ipc.U32}, Fn: a.setAppCpuTimeLimit})
	s.Register(0x0050, ipc.Func{Name: "GetAppCpuTimeLimit", Args: []ipc.Type{ipc.U32}, Fn: a.getAppCpuTimeLimit})

	return s
}

func ok(more ...ipc.Param) []ipc.Param {
	return append([]ipc.Param{ipc.NewU32(uint32(result.Success))}, more...)
}

func fail(code result.Code) []ipc.Param {
	return []ipc.Param{ipc.NewU32(uint32(code))}
}

// getLockHandle hands out a copied handle to the service lock. The
// attributes word is echoed back for the later Enable call.
func (a *APT) getLockHandle(args []ipc.Param) ([]ipc.Param, error) {
	attributes := args[0].(ipc.Regular).U32()

	h, err := a.handles.Create(a.lock)
	if err != nil {
		return nil, err
	}

	a.l.WithFields(logrus.Fields{"attributes": attributes, "handle": h}).
		Warn("(STUBBED) GetLockHandle called")
	return ok(
		ipc.NewU32(attributes),
		ipc.NewU32(0), // power button state
		ipc.Handles{Copy: true, Values: []uint32{uint32(h)}},
	), nil
}

// initialize hands the application its notification and parameter events and
// releases the service lock.
func (a *APT) initialize(args []ipc.Param) ([]ipc.Param, error) {
	appID := args[0].(ipc.Regular).U32()
	flags := args[1].(ipc.Regular).U32()

	hn, err := a.handles.Create(a.notification)
	if err != nil {
		return nil, err
	}
	hp, err := a.handles.Create(a.parameter)
	if err != nil {
		return nil, err
	}

	a.notification.Clear()
	a.parameter.Clear()
	a.lock.Release()

	a.l.WithFields(logrus.Fields{"appID": appID, "flags": flags}).Debug("Initialize called")
	return ok(ipc.Handles{Values: []uint32{uint32(hn), uint32(hp)}}), nil
}

func (a *APT) enable(args []ipc.Param) ([]ipc.Param, error) {
	attributes := args[0].(ipc.Regular).U32()
	// let the application know it has been started
	a.parameter.Signal()
	a.l.WithField("attributes", attributes).Warn("(STUBBED) Enable called")
	return ok(), nil
}

func (a *APT) getAppletManInfo(args []ipc.Param) ([]ipc.Param, error) {
	a.l.WithField("unknown", args[0].(ipc.Regular).U32()).Warn("(STUBBED) GetAppletManInfo called")
	return ok(
		ipc.NewU32(0),
		ipc.NewU32(0),
		ipc.NewU32(AppIDHomeMenu),
		ipc.NewU32(AppIDApplication),
	), nil
}

func (a *APT) isRegistered(args []ipc.Param) ([]ipc.Param, error) {
	appID := args[0].(ipc.Regular).U32()

	registered := uint32(0)
	if a.applets != nil && a.applets.IsRegistered(appID) {
		registered = 1
	}
	a.l.WithField("appID", appID).Warn("(STUBBED) IsRegistered called")
	return ok(ipc.NewU32(registered)), nil
}

func (a *APT) inquireNotification(args []ipc.Param) ([]ipc.Param, error) {
	a.l.WithField("appID", args[0].(ipc.Regular).U32()).Warn("(STUBBED) InquireNotification called")
	return ok(ipc.NewU32(SignalNone)), nil
}

// sendParameter overwrites the latch and signals the parameter event so a
// waiting receiver wakes up.
func (a *APT) sendParameter(args []ipc.Param) ([]ipc.Param, error) {
	srcID := args[0].(ipc.Regular).U32()
	dstID := args[1].(ipc.Regular).U32()
	signal := args[2].(ipc.Regular).U32()
	size := args[3].(ipc.Regular).U32()
	handles := args[4].(ipc.Handles)
	buffer := args[5].(ipc.StaticBuffer)

	if a.applets != nil && !a.applets.IsRegistered(dstID) {
		a.l.WithField("appID", dstID).Error("SendParameter to unknown applet")
		return fail(errNoSuchApplet), nil
	}

	var object kernel.Object
	if len(handles.Values) > 0 && handles.Values[0] != 0 {
		obj, err := a.handles.Get(kernel.Handle(handles.Values[0]))
		if err != nil {
			return fail(errNoSuchApplet), nil
		}
		object = obj
	}

	data := buffer.Data
	if uint32(len(data)) > size {
		data = data[:size]
	}

	a.next = &MessageParameter{
		SenderID:      srcID,
		DestinationID: dstID,
		Signal:        signal,
		Object:        object,
		Data:          append([]byte(nil), data...),
	}
	a.parameter.Signal()

	a.l.WithFields(logrus.Fields{
		"srcID":  srcID,
		"dstID":  dstID,
		"signal": signal,
		"size":   size,
	}).Debug("SendParameter called")
	return ok(), nil
}

func (a *APT) receiveParameter(args []ipc.Param) ([]ipc.Param, error) {
	return a.pendingReply("ReceiveParameter", args)
}

// glanceParameter is ReceiveParameter by another name: the latch holds the
// record either way, so neither call consumes it.
func (a *APT) glanceParameter(args []ipc.Param) ([]ipc.Param, error) {
	return a.pendingReply("GlanceParameter", args)
}

func (a *APT) pendingReply(name string, args []ipc.Param) ([]ipc.Param, error) {
	appID := args[0].(ipc.Regular).U32()
	bufferSize := args[1].(ipc.Regular).U32()
	recv := args[2].(ipc.StaticBuffer)

	next := a.next
	if next == nil {
		next = &MessageParameter{}
	}

	object := uint32(0)
	if next.Object != nil {
		h, err := a.handles.Create(next.Object)
		if err != nil {
			return nil, err
		}
		object = uint32(h)
	}

	data := next.Data
	if uint32(len(data)) > bufferSize {
		data = data[:bufferSize]
	}

	a.l.WithFields(logrus.Fields{"appID": appID, "bufferSize": bufferSize}).
		Debugf("%s called", name)
	return ok(
		ipc.NewU32(next.SenderID),
		ipc.NewU32(next.Signal),
		ipc.NewU32(uint32(len(next.Data))),
		ipc.Handles{Copy: true, Values: []uint32{object}},
		ipc.StaticBuffer{ID: recv.ID, Address: recv.Address, Data: data},
	), nil
}

// getSharedFont relocates the font to its mapped address, once, then hands
// out the block's address and a moved handle to it.
func (a *APT) getSharedFont(args []ipc.Param) ([]ipc.Param, error) {
	if a.sharedFont == nil {
		a.l.Error("GetSharedFont called without a loaded font")
		return fail(errNoFont), nil
	}

	target := a.sharedFont.Base()
	if !a.fontRelocated {
		blob, err := a.sharedFont.Bytes(bcfnt.SharedFontOffset)
		if err != nil {
			return nil, err
		}
		if err := bcfnt.Relocate(blob, bcfnt.AuthoredBase, target); err != nil {
			return nil, err
		}
		a.fontRelocated = true
	}

	h, err := a.handles.Create(a.sharedFont)
	if err != nil {
		return nil, err
	}
	return ok(
		ipc.NewU32(target),
		ipc.Handles{Values: []uint32{uint32(h)}},
	), nil
}

func (a *APT) setAppCpuTimeLimit(args []ipc.Param) ([]ipc.Param, error) {
	fixed := args[0].(ipc.Regular).U32()
	a.cpuPercent = args[1].(ipc.Regular).U32()
	if fixed != 1 {
		a.l.WithField("fixed", fixed).Error("SetAppCpuTimeLimit expected fixed value 1")
	}
	a.l.WithField("percent", a.cpuPercent).Warn("(STUBBED) SetAppCpuTimeLimit called")
	return ok(), nil
}

func (a *APT) getAppCpuTimeLimit(args []ipc.Param) ([]ipc.Param, error) {
	fixed := args[0].(ipc.Regular).U32()
	if fixed != 1 {
		a.l.WithField("fixed", fixed).Error("GetAppCpuTimeLimit expected fixed value 1")
	}
	a.l.WithField("percent", a.cpuPercent).Warn("(STUBBED) GetAppCpuTimeLimit called")
	return ok(ipc.NewU32(a.cpuPercent)), nil
}
