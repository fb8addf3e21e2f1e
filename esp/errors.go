package esp

import (
	"errors"

	"i4.energy/across/espat/at"
)

var (
	// ErrNoDialer is returned when a Driver is constructed with New without
	// a Dialer.
	//
	// This indicates a configuration error. Use Attach to wrap a transport
	// that is already open.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a
	// Driver that has no transport.
	//
	// This can occur if the Dialer returned a nil Transport or if the Driver
	// was not created via New or Attach.
	ErrNotInitialized = errors.New("driver not initialized")

	// ErrAlreadyClosed is returned by operations on a closed Driver and when
	// Close is called twice.
	ErrAlreadyClosed = errors.New("driver already closed")

	// ErrNoConnection is returned by Iwconfig when the station is not
	// associated with an access point. It is a Wi-Fi state, not a transport
	// failure.
	ErrNoConnection = errors.New("not connected to an access point")

	// ErrMalformedResponse is returned when a successful response does not
	// have the shape expected for the command. It is always wrapped with the
	// command name and the offending payload.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrInvalidArgument is returned before anything is sent when a command
	// argument cannot be encoded.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Errors produced while framing a response. They are defined by the at
// package and repeated here so callers only need to import esp.
var (
	ErrProtocol       = at.ErrProtocol
	ErrBusy           = at.ErrBusy
	ErrBufferOverflow = at.ErrBufferOverflow
	ErrSerialRead     = at.ErrSerialRead
	ErrSerialWrite    = at.ErrSerialWrite
)
