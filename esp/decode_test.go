package esp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIfconfig(t *testing.T) {
	got, err := parseIfconfig("+CIPSTA:ip:\"10.0.0.7\"\r\n+CIPSTA:gateway:\"10.0.0.1\"\r\n+CIPSTA:netmask:\"255.255.255.0\"")
	require.NoError(t, err)
	assert.Equal(t, StationIP{IP: "10.0.0.7", Gateway: "10.0.0.1", Netmask: "255.255.255.0"}, got)

	for _, payload := range []string{
		"",
		"+CIPSTA:ip:\"10.0.0.7\"",
		"+CIPSTA:ip:\"10.0.0.7\"\r\n+CIPSTA:gateway:\"10.0.0.1\"",
		"+CIPSTA:ip:\"10.0.0.7\"\r\nshort\r\n+CIPSTA:netmask:\"255.255.255.0\"",
	} {
		_, err := parseIfconfig(payload)
		assert.ErrorIs(t, err, ErrMalformedResponse, "payload %q", payload)
	}
}

func TestParseIwconfig(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    AccessPoint
		err     error
	}{
		{
			name:    "associated",
			payload: `+CWJAP:"feather","04:d9:f5:c4:93:98",11,-68,0,0,0,0`,
			want:    AccessPoint{SSID: "feather", BSSID: "04:d9:f5:c4:93:98", Channel: 11},
		},
		{
			name:    "unparsable channel",
			payload: `+CWJAP:"feather","04:d9:f5:c4:93:98",x,-68`,
			want:    AccessPoint{SSID: "feather", BSSID: "04:d9:f5:c4:93:98", Channel: Sentinel},
		},
		{
			name:    "channel out of range",
			payload: `+CWJAP:"feather","04:d9:f5:c4:93:98",300,-68`,
			want:    AccessPoint{SSID: "feather", BSSID: "04:d9:f5:c4:93:98", Channel: Sentinel},
		},
		{name: "not associated", payload: "No AP", err: ErrNoConnection},
		{name: "too short", payload: "+CW", err: ErrMalformedResponse},
		{name: "missing fields", payload: `+CWJAP:"feather"`, err: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIwconfig(tt.payload)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePing(t *testing.T) {
	ms, err := parsePing("+PING:27")
	require.NoError(t, err)
	assert.EqualValues(t, 27, ms)

	ms, err = parsePing("+PING:TIMEOUT")
	require.NoError(t, err)
	assert.EqualValues(t, Sentinel, ms)

	_, err = parsePing("+PI")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseStatus(t *testing.T) {
	st, err := parseStatus("STATUS:2")
	require.NoError(t, err)
	assert.Equal(t, StatusGotIP, st)

	st, err = parseStatus("STATUS:3\r\n+CIPSTATUS:0,\"UDP\",\"192.168.1.198\",2000,1002,0")
	require.NoError(t, err)
	assert.Equal(t, StatusConnected, st)

	for _, payload := range []string{"", "STATUS:", "STATUS:x", "+CIPSTATUS:0"} {
		_, err := parseStatus(payload)
		assert.ErrorIs(t, err, ErrMalformedResponse, payload)
	}
}

func TestParseHTTPBody(t *testing.T) {
	assert.Equal(t, `{"origin":"1.2.3.4"}`, parseHTTPBody(`+HTTPCLIENT:20,{"origin":"1.2.3.4"}`))
	assert.Equal(t, "a,b,c", parseHTTPBody("+HTTPCLIENT:5,a,b,c"))
	assert.Equal(t, "", parseHTTPBody("+HTTPCLIENT:0,"))
	assert.Equal(t, "", parseHTTPBody("no comma here"))
}

func TestParseDomainAndHostname(t *testing.T) {
	addr, err := parseDomain("+CIPDOMAIN:220.181.38.148")
	require.NoError(t, err)
	assert.Equal(t, "220.181.38.148", addr)

	addr, err = parseDomain(`+CIPDOMAIN:"220.181.38.148"`)
	require.NoError(t, err)
	assert.Equal(t, "220.181.38.148", addr)

	_, err = parseDomain("+CIPDOMAIN:")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	name, err := parseHostname("+CWHOSTNAME:LWIP")
	require.NoError(t, err)
	assert.Equal(t, "LWIP", name)

	_, err = parseHostname("LWIP")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseScan(t *testing.T) {
	payload := "+CWLAP:(3,\"feather\",-65,\"04:d9:f5:c4:93:98\",11)\r\n" +
		"+CWLAP:(0,\"cafe, \\\"free\\\"\",-80,\"aa:bb:cc:dd:ee:ff\",1,-1,-1)\r\n" +
		"+CWLAP:(4,\"\",-90,\"11:22:33:44:55:66\",xx)"

	got, err := parseScan(payload)
	require.NoError(t, err)
	assert.Equal(t, []Network{
		{Encryption: 3, SSID: "feather", RSSI: -65, BSSID: "04:d9:f5:c4:93:98", Channel: 11},
		{Encryption: 0, SSID: `cafe, "free"`, RSSI: -80, BSSID: "aa:bb:cc:dd:ee:ff", Channel: 1},
		{Encryption: 4, SSID: "", RSSI: -90, BSSID: "11:22:33:44:55:66", Channel: Sentinel},
	}, got)

	got, err = parseScan("")
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, payload := range []string{
		"+CWLAP:(3,\"feather\",-65",
		"+CWLAP:(3,\"feather\",-65)",
		"+CWLAP:(x,\"feather\",-65,\"04:d9:f5:c4:93:98\",11)",
	} {
		_, err := parseScan(payload)
		assert.ErrorIs(t, err, ErrMalformedResponse, "payload %q", payload)
	}
}

func TestSchemeFlag(t *testing.T) {
	assert.Equal(t, byte('2'), schemeFlag("https://example.com"))
	assert.Equal(t, byte('1'), schemeFlag("http://example.com"))
	assert.Equal(t, byte('1'), schemeFlag("ftp://example.com"))
}
