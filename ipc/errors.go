package ipc

import "errors"

var (
	// ErrValueOutOfRange is returned when a command id, length or descriptor
	// field does not fit in its wire representation. The wire format is
	// compatibility-critical, so encoders refuse rather than truncate.
	ErrValueOutOfRange = errors.New("value does not fit in its wire field")

	// ErrMalformedDescriptor is returned when a descriptor word's tag bits do
	// not match the parameter kind the signature expects at that position.
	ErrMalformedDescriptor = errors.New("descriptor tag bits do not match the expected parameter kind")

	// ErrBudgetExceeded is returned when reading a parameter would consume
	// more words than the header declared for its class.
	ErrBudgetExceeded = errors.New("parameter overruns the declared word count")

	// ErrUnderConsumption is returned when the declared word counts were not
	// fully consumed after all signature parameters were read.
	ErrUnderConsumption = errors.New("declared word count not fully consumed")

	// ErrOrderingViolation is returned when a regular parameter is written
	// after a translate parameter. Regular words always precede translate
	// words on the wire.
	ErrOrderingViolation = errors.New("regular parameter written after a translate parameter")

	// ErrBufferExhausted is returned when a read or write would step past the
	// command buffer's fixed capacity.
	ErrBufferExhausted = errors.New("command buffer capacity exceeded")

	// ErrNoMemory is returned when a static buffer parameter needs guest
	// memory access but no Memory was attached.
	ErrNoMemory = errors.New("no guest memory attached for buffer translation")
)
