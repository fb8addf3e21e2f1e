package at

import "io"

// Encoder serializes one AT command onto a byte sink, one byte at a time.
//
// Fragments are written immediately, there is no intermediate buffering.
// The first write error is sticky: later fragments are skipped and the
// error is reported by End or Err.
//
//	err := at.NewEncoder(w).Raw("AT+CWJAP=").Quoted(ssid).Byte(',').Quoted(pwd).End()
type Encoder struct {
	w   io.ByteWriter
	err error

	// Escape enables ESP-AT backslash escaping of '\\', '"' and ',' inside
	// quoted arguments. When false, arguments are written verbatim and an
	// embedded quote ends the argument early on the device side.
	Escape bool
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.ByteWriter) *Encoder {
	return &Encoder{w: w}
}

// Byte writes a single byte.
func (e *Encoder) Byte(b byte) *Encoder {
	if e.err == nil {
		e.err = e.w.WriteByte(b)
	}
	return e
}

// Raw writes s verbatim.
func (e *Encoder) Raw(s string) *Encoder {
	for i := 0; i < len(s) && e.err == nil; i++ {
		e.err = e.w.WriteByte(s[i])
	}
	return e
}

// Quoted writes s wrapped in double quotes.
func (e *Encoder) Quoted(s string) *Encoder {
	e.Byte('"')
	for i := 0; i < len(s) && e.err == nil; i++ {
		c := s[i]
		if e.Escape && (c == '\\' || c == '"' || c == ',') {
			e.Byte('\\')
		}
		e.Byte(c)
	}
	return e.Byte('"')
}

// End terminates the command with CR LF and returns the first error seen.
func (e *Encoder) End() error {
	return e.Raw(CRLF).err
}

// Err returns the first error seen so far.
func (e *Encoder) Err() error {
	return e.err
}

// Command writes text followed by CR LF.
func (e *Encoder) Command(text string) error {
	return e.Raw(text).End()
}
