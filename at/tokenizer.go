package at

import (
	"bufio"
	"bytes"
)

// Splitter tokenizes a CR LF delimited AT stream. It uses the signature of
// bufio.SplitFunc so it can be used directly with bufio.Scanner, and it is
// also handy on its own for peeling complete command lines off a buffer.
//
// Tokens never include the CR LF. A lone CR or LF is not a delimiter.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.Index(data, []byte(CRLF)); i >= 0 {
		return i + len(CRLF), data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter
