package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findShellCmd(t *testing.T, name string) shellCmd {
	t.Helper()
	for _, cmd := range shellCmds {
		if cmd.name == name {
			return cmd
		}
	}
	t.Fatalf("no shell command %q", name)
	return shellCmd{}
}

func TestShellRequest(t *testing.T) {
	tests := []struct {
		cmd  string
		args []string
		want Request
	}{
		{"ifconfig", nil, Request{Op: OpIfconfig}},
		{"ifconfig", []string{"10.0.0.2"}, Request{Op: OpSetIfconfig, IP: "10.0.0.2"}},
		{"ifconfig", []string{"10.0.0.2", "10.0.0.1", "255.0.0.0"}, Request{Op: OpSetIfconfig, IP: "10.0.0.2", Gateway: "10.0.0.1", Netmask: "255.0.0.0"}},
		{"join", []string{"feather"}, Request{Op: OpJoin, SSID: "feather"}},
		{"join", []string{"feather", "-------"}, Request{Op: OpJoin, SSID: "feather", Password: "-------"}},
		{"ping", []string{"baidu.com"}, Request{Op: OpPing, Host: "baidu.com"}},
		{"resolve", []string{"baidu.com"}, Request{Op: OpResolve, Domain: "baidu.com"}},
		{"get", []string{"http://httpbin.org/ip"}, Request{Op: OpHTTPGet, URL: "http://httpbin.org/ip"}},
		{"post", []string{"http://httpbin.org/post", "a=1"}, Request{Op: OpHTTPPost, URL: "http://httpbin.org/post", Data: "a=1"}},
		{"at", []string{"AT+CWMODE=1"}, Request{Op: OpAT, Command: "AT+CWMODE=1"}},
		{"scan", nil, Request{Op: OpScan}},
		{"status", nil, Request{Op: OpStatus}},
		{"reset", nil, Request{Op: OpReset}},
		{"restore", nil, Request{Op: OpRestore}},
	}

	for _, tt := range tests {
		got, err := shellRequest(findShellCmd(t, tt.cmd), tt.args)
		require.NoError(t, err, "%s %v", tt.cmd, tt.args)
		assert.Equal(t, tt.want, got, "%s %v", tt.cmd, tt.args)
	}
}

func TestShellRequestUsage(t *testing.T) {
	for _, tt := range []struct {
		cmd  string
		args []string
	}{
		{"ping", nil},
		{"post", []string{"http://httpbin.org/post"}},
		{"ifconfig", []string{"10.0.0.2", "10.0.0.1"}},
		{"at", nil},
	} {
		_, err := shellRequest(findShellCmd(t, tt.cmd), tt.args)
		assert.ErrorContains(t, err, "usage: "+tt.cmd, "%s %v", tt.cmd, tt.args)
	}
}
