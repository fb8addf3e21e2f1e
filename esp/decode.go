package esp

import (
	"fmt"
	"strconv"
	"strings"

	"i4.energy/across/espat/at"
)

// Unparsable numeric fields decode to Sentinel instead of failing the
// command.
const Sentinel = 255

// Fixed field offsets of the ESP-AT replies.
const (
	prefixCIPSTAIP      = len(`+CIPSTA:ip:"`)
	prefixCIPSTAGateway = len(`+CIPSTA:gateway:"`)
	prefixCIPSTANetmask = len(`+CIPSTA:netmask:"`)
	prefixCWJAP         = len(`+CWJAP:`)
	prefixPING          = len(`+PING:`)
)

// StationIP is the IPv4 configuration of the station interface.
type StationIP struct {
	IP      string `json:"ip"`
	Gateway string `json:"gateway"`
	Netmask string `json:"netmask"`
}

// AccessPoint describes the access point the station is associated with.
type AccessPoint struct {
	SSID    string `json:"ssid"`
	BSSID   string `json:"bssid"`
	Channel uint8  `json:"channel"`
}

// Network is one entry of an access point scan.
type Network struct {
	Encryption int    `json:"encryption"`
	SSID       string `json:"ssid"`
	RSSI       int    `json:"rssi"`
	BSSID      string `json:"bssid"`
	Channel    uint8  `json:"channel"`
}

// LinkStatus is the station state reported by AT+CIPSTATUS.
type LinkStatus int

const (
	StatusGotIP        LinkStatus = 2
	StatusConnected    LinkStatus = 3
	StatusDisconnected LinkStatus = 4
	StatusNoAP         LinkStatus = 5
)

func malformed(cmd, payload string) error {
	return fmt.Errorf("%s: %w: %q", cmd, ErrMalformedResponse, payload)
}

// quotedField returns line[n:len(line)-1], the value between a fixed-size
// prefix ending in a quote and the closing quote.
func quotedField(line string, n int) (string, bool) {
	if len(line) < n+1 {
		return "", false
	}
	return line[n : len(line)-1], true
}

// +CIPSTA:ip:"192.168.1.9"
// +CIPSTA:gateway:"192.168.1.1"
// +CIPSTA:netmask:"255.255.0.0"
func parseIfconfig(payload string) (StationIP, error) {
	lines := strings.Split(payload, "\n")
	if len(lines) < 3 {
		return StationIP{}, malformed(at.CmdStationIP, payload)
	}
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	ip, ok1 := quotedField(lines[0], prefixCIPSTAIP)
	gateway, ok2 := quotedField(lines[1], prefixCIPSTAGateway)
	netmask, ok3 := quotedField(lines[2], prefixCIPSTANetmask)
	if !ok1 || !ok2 || !ok3 {
		return StationIP{}, malformed(at.CmdStationIP, payload)
	}
	return StationIP{IP: ip, Gateway: gateway, Netmask: netmask}, nil
}

// +CWJAP:<ssid>,<bssid>,<channel>,<rssi>,<pci_en>,<reconn_interval>,<listen_interval>,<scan_mode>
//
// The SSID is not unescaped: an SSID containing a comma shifts the fields.
func parseIwconfig(payload string) (AccessPoint, error) {
	if payload == at.NoAP {
		return AccessPoint{}, ErrNoConnection
	}
	if len(payload) < prefixCWJAP {
		return AccessPoint{}, malformed(at.CmdJoinAP, payload)
	}
	fields := strings.Split(payload[prefixCWJAP:], ",")
	if len(fields) < 3 {
		return AccessPoint{}, malformed(at.CmdJoinAP, payload)
	}

	channel, err := strconv.ParseUint(fields[2], 10, 8)
	if err != nil {
		channel = Sentinel
	}
	return AccessPoint{
		SSID:    strings.Trim(fields[0], `"`),
		BSSID:   strings.Trim(fields[1], `"`),
		Channel: uint8(channel),
	}, nil
}

// +PING:<ms>
func parsePing(payload string) (uint32, error) {
	if len(payload) < prefixPING {
		return 0, malformed(at.CmdPing, payload)
	}
	ms, err := strconv.ParseUint(payload[prefixPING:], 10, 32)
	if err != nil {
		return Sentinel, nil
	}
	return uint32(ms), nil
}

// +HTTPCLIENT:<size>,<data>
//
// Everything after the first comma is returned as is, commas included.
func parseHTTPBody(payload string) string {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		return payload[i+1:]
	}
	return ""
}

// STATUS:2
// +CIPSTATUS:0,"UDP","192.168.1.198",2000,1002,0
//
// Only the STATUS line is decoded; connection lines are ignored.
func parseStatus(payload string) (LinkStatus, error) {
	line, _, _ := strings.Cut(payload, at.CRLF)
	v, ok := strings.CutPrefix(line, "STATUS:")
	if !ok {
		return 0, malformed(at.CmdStatus, payload)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, malformed(at.CmdStatus, payload)
	}
	return LinkStatus(n), nil
}

// +CIPDOMAIN:220.181.38.148
func parseDomain(payload string) (string, error) {
	addr, ok := strings.CutPrefix(payload, "+CIPDOMAIN:")
	if !ok || addr == "" {
		return "", malformed(at.CmdDomain, payload)
	}
	return strings.Trim(addr, `"`), nil
}

// +CWHOSTNAME:LWIP
func parseHostname(payload string) (string, error) {
	name, ok := strings.CutPrefix(payload, "+CWHOSTNAME:")
	if !ok {
		return "", malformed(at.CmdHostname, payload)
	}
	return name, nil
}

// +CWLAP:(3,"feather",-65,"04:d9:f5:c4:93:98",11)
//
// Lines that are not scan entries are skipped.
func parseScan(payload string) ([]Network, error) {
	var networks []Network
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		entry, ok := strings.CutPrefix(line, "+CWLAP:(")
		if !ok {
			continue
		}
		entry, ok = strings.CutSuffix(entry, ")")
		if !ok {
			return nil, malformed(at.CmdListAP, line)
		}

		fields := splitQuoted(entry)
		if len(fields) < 5 {
			return nil, malformed(at.CmdListAP, line)
		}
		ecn, err1 := strconv.Atoi(fields[0])
		rssi, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			return nil, malformed(at.CmdListAP, line)
		}
		channel, err := strconv.ParseUint(fields[4], 10, 8)
		if err != nil {
			channel = Sentinel
		}

		networks = append(networks, Network{
			Encryption: ecn,
			SSID:       fields[1],
			RSSI:       rssi,
			BSSID:      fields[3],
			Channel:    uint8(channel),
		})
	}
	return networks, nil
}

// splitQuoted splits on commas outside double quotes and strips the quotes.
// A backslash inside quotes escapes the next byte.
func splitQuoted(s string) []string {
	var (
		fields  []string
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == ',' && !quoted:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}
