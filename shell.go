package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"
)

const gatewayKey = "$gateway"

type shellCmd struct {
	name    string
	op      string
	usage   string
	help    string
	minArgs int
}

var shellCmds = []shellCmd{
	{name: "ifconfig", op: OpIfconfig, usage: "[IP [GATEWAY NETMASK]]", help: "show or set the station address"},
	{name: "iwconfig", op: OpIwconfig, help: "show the associated access point"},
	{name: "join", op: OpJoin, usage: "SSID [PASSWORD]", help: "join an access point", minArgs: 1},
	{name: "disconnect", op: OpDisconnect, help: "leave the access point"},
	{name: "ping", op: OpPing, usage: "HOST", help: "ping a host", minArgs: 1},
	{name: "resolve", op: OpResolve, usage: "DOMAIN", help: "resolve a domain name", minArgs: 1},
	{name: "scan", op: OpScan, help: "list access points in range"},
	{name: "version", op: OpVersion, help: "show firmware version"},
	{name: "status", op: OpStatus, help: "show the link status"},
	{name: "reset", op: OpReset, help: "restart the module"},
	{name: "restore", op: OpRestore, help: "restore factory settings and restart"},
	{name: "get", op: OpHTTPGet, usage: "URL", help: "HTTP GET through the module", minArgs: 1},
	{name: "post", op: OpHTTPPost, usage: "URL DATA", help: "HTTP POST through the module", minArgs: 2},
	{name: "at", op: OpAT, usage: "COMMAND...", help: "send a raw AT command", minArgs: 1},
}

// shellRequest maps a console command line onto a Request.
func shellRequest(cmd shellCmd, args []string) (Request, error) {
	if len(args) < cmd.minArgs {
		return Request{}, fmt.Errorf("usage: %s %s", cmd.name, cmd.usage)
	}

	req := Request{Op: cmd.op}
	switch cmd.op {
	case OpIfconfig:
		switch len(args) {
		case 0:
		case 1, 3:
			req.Op = OpSetIfconfig
			req.IP = args[0]
			if len(args) == 3 {
				req.Gateway, req.Netmask = args[1], args[2]
			}
		default:
			return Request{}, fmt.Errorf("usage: %s %s", cmd.name, cmd.usage)
		}
	case OpJoin:
		req.SSID = args[0]
		if len(args) > 1 {
			req.Password = args[1]
		}
	case OpPing:
		req.Host = args[0]
	case OpResolve:
		req.Domain = args[0]
	case OpHTTPGet:
		req.URL = args[0]
	case OpHTTPPost:
		req.URL, req.Data = args[0], args[1]
	case OpAT:
		req.Command = strings.Join(args, " ")
	}
	return req, nil
}

// NewShell builds an interactive console over gateway.
func NewShell(gateway *Gateway) *ishell.Shell {
	shell := ishell.New()
	shell.Set(gatewayKey, gateway)
	shell.SetPrompt("esp> ")
	for _, cmd := range shellCmds {
		shell.AddCmd(&ishell.Cmd{
			Name: cmd.name,
			Help: strings.TrimSpace(cmd.usage + " " + cmd.help),
			Func: runShellCmd(cmd),
		})
	}
	return shell
}

func runShellCmd(cmd shellCmd) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		req, err := shellRequest(cmd, c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		gateway := c.Get(gatewayKey).(*Gateway)
		result, err := gateway.Do(context.Background(), req)
		if err != nil {
			c.Err(err)
			return
		}
		if result == nil {
			c.Println("OK")
			return
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
	}
}
