package at

import "bytes"

const (
	// Terminal Control
	CR   = '\r'
	LF   = '\n'
	CRLF = "\r\n"

	// Response Codes
	OK    = "OK"
	ERROR = "ERROR"
	// FAIL is sent instead of ERROR by older ESP8266 firmware when
	// AT+CWJAP cannot associate.
	FAIL = "FAIL"

	// Busy markers. The device prints one of these as a whole line when it
	// is still processing (or sending) and cannot accept a new command.
	BusyProcessing = "busy p..."
	BusySending    = "busy s..."

	// NoAP is the full payload of AT+CWJAP? when the station is not associated.
	NoAP = "No AP"
)

// Commands
const (
	CmdAt          = "AT"
	CmdEchoOff     = "ATE0"
	CmdEchoOn      = "ATE1"
	CmdVersion     = "AT+GMR"
	CmdStationIP   = "AT+CIPSTA"
	CmdJoinAP      = "AT+CWJAP"
	CmdQuitAP      = "AT+CWQAP"
	CmdWifiMode    = "AT+CWMODE"
	CmdListAP      = "AT+CWLAP"
	CmdPing        = "AT+PING"
	CmdDomain      = "AT+CIPDOMAIN"
	CmdHostname    = "AT+CWHOSTNAME"
	CmdHTTPClient  = "AT+HTTPCLIENT"
	CmdStatus      = "AT+CIPSTATUS"
	CmdReset       = "AT+RST"
	CmdRestore     = "AT+RESTORE"
	QuerySuffix    = "?"
	AssignOperator = "="
)

type ResponseType int

const (
	TypeData  ResponseType = iota // Intermediate output (+CIPSTA:..., echo, log lines)
	TypeOK                        // Final success
	TypeError                     // ERROR, FAIL
	TypeBusy                      // busy p..., busy s...
)

// IsFinal reports whether a line of this type ends a response.
func (t ResponseType) IsFinal() bool {
	return t != TypeData
}

// Classify identifies the nature of a single response line. The line must
// not include its CR LF terminator; surrounding spaces are the caller's
// responsibility.
func Classify(line string) ResponseType {
	switch line {
	case OK:
		return TypeOK
	case ERROR, FAIL:
		return TypeError
	case BusyProcessing, BusySending:
		return TypeBusy
	default:
		return TypeData
	}
}

var (
	okLine             = []byte(OK)
	errorLine          = []byte(ERROR)
	failLine           = []byte(FAIL)
	busyProcessingLine = []byte(BusyProcessing)
	busySendingLine    = []byte(BusySending)
)

// ClassifyBytes is Classify for a line still held in a byte buffer.
func ClassifyBytes(line []byte) ResponseType {
	switch {
	case bytes.Equal(line, okLine):
		return TypeOK
	case bytes.Equal(line, errorLine), bytes.Equal(line, failLine):
		return TypeError
	case bytes.Equal(line, busyProcessingLine), bytes.Equal(line, busySendingLine):
		return TypeBusy
	default:
		return TypeData
	}
}
