// Package result implements the 32-bit result-code word that is the first
// regular parameter of every service reply. The bit allocation is fixed by
// guest compatibility; the code is otherwise an opaque regular value to the
// marshaling layer.
package result

import "fmt"

// Code layout:
// |level (5)|reserved (1)|summary (6)|reserved (3)|module (8)|description (10)|
//  31     27             26       21              17       10 9             0
type Code uint32

// Success is the fixed sentinel for a successful call. Any other value is an
// error code.
const Success Code = 0

type (
	Description uint16 // 10 bits
	Module      uint8  // 8 bits
	Summary     uint8  // 6 bits
	Level       uint8  // 5 bits
)

const (
	ModuleCommon Module = 0
	ModuleKernel Module = 1
	ModuleOS     Module = 6
	ModuleFS     Module = 17
	ModuleSRV    Module = 25
	ModuleApplet Module = 51
)

const (
	SummarySuccess         Summary = 0
	SummaryNothingHappened Summary = 1
	SummaryWouldBlock      Summary = 2
	SummaryOutOfResource   Summary = 3
	SummaryNotFound        Summary = 4
	SummaryInvalidState    Summary = 5
	SummaryNotSupported    Summary = 6
	SummaryInvalidArgument Summary = 7
	SummaryWrongArgument   Summary = 8
	SummaryCanceled        Summary = 9
	SummaryInternal        Summary = 11
)

const (
	LevelSuccess   Level = 0
	LevelInfo      Level = 1
	LevelStatus    Level = 25
	LevelTemporary Level = 26
	LevelPermanent Level = 27
	LevelUsage     Level = 28
	LevelFatal     Level = 31
)

// New composes an error code from its sub-fields. Field values beyond their
// bit widths are masked; callers use the typed constants above.
func New(d Description, m Module, s Summary, l Level) Code {
	return Code(uint32(d&0x3FF) |
		uint32(m)<<10 |
		uint32(s&0x3F)<<21 |
		uint32(l&0x1F)<<27)
}

func (c Code) Description() Description { return Description(c & 0x3FF) }
func (c Code) Module() Module           { return Module(c >> 10) }
func (c Code) Summary() Summary         { return Summary((c >> 21) & 0x3F) }
func (c Code) Level() Level             { return Level(c >> 27) }

// IsError reports whether the code is anything but the success sentinel.
func (c Code) IsError() bool {
	return c != Success
}

func (c Code) String() string {
	if c == Success {
		return "success"
	}
	return fmt.Sprintf("error desc=%d module=%d summary=%d level=%d",
		c.Description(), c.Module(), c.Summary(), c.Level())
}
