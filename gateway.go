package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"i4.energy/across/espat/esp"
)

// ErrUnknownOp is returned by Gateway.Do for an operation it does not know.
var ErrUnknownOp = errors.New("unknown operation")

// Operations understood by Gateway.Do.
const (
	OpIfconfig    = "ifconfig"
	OpSetIfconfig = "set_ifconfig"
	OpIwconfig    = "iwconfig"
	OpJoin        = "join"
	OpDisconnect  = "disconnect"
	OpPing        = "ping"
	OpHTTPGet     = "http_get"
	OpHTTPPost    = "http_post"
	OpResolve     = "resolve"
	OpScan        = "scan"
	OpVersion     = "version"
	OpStatus      = "status"
	OpReset       = "reset"
	OpRestore     = "restore"
	OpAT          = "at"
)

// Request is one operation on the module, as received over HTTP, MQTT or
// the shell. Only the fields the operation needs are read.
type Request struct {
	ID       string `json:"id,omitempty"`
	Op       string `json:"op"`
	Host     string `json:"host,omitempty"`
	Domain   string `json:"domain,omitempty"`
	SSID     string `json:"ssid,omitempty"`
	Password string `json:"password,omitempty"`
	URL      string `json:"url,omitempty"`
	Data     string `json:"data,omitempty"`
	IP       string `json:"ip,omitempty"`
	Gateway  string `json:"gateway,omitempty"`
	Netmask  string `json:"netmask,omitempty"`
	Command  string `json:"command,omitempty"`
}

// Response answers a Request. Result is omitted for operations that only
// report success.
type Response struct {
	ID     string `json:"id,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// PingResult reports a ping through the module. Reachable is a guess made
// from Millis alone: the driver decodes TIMEOUT and any unparsable reply as
// esp.Sentinel, so a real 255 ms round trip also reads as unreachable.
type PingResult struct {
	Host      string `json:"host"`
	Millis    uint32 `json:"ms"`
	Reachable bool   `json:"reachable"`
}

type ResolveResult struct {
	Domain  string `json:"domain"`
	Address string `json:"address"`
}

type HTTPResult struct {
	Body string `json:"body"`
}

type VersionResult struct {
	Version string `json:"version"`
}

type StatusResult struct {
	Status esp.LinkStatus `json:"status"`
}

type ATResult struct {
	Response string `json:"response"`
}

// Gateway serializes access to a single module. The driver itself has no
// locking, so every front end goes through Do.
type Gateway struct {
	mu     sync.Mutex
	driver *esp.Driver
}

func NewGateway(driver *esp.Driver) *Gateway {
	return &Gateway{driver: driver}
}

func required(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required: %w", field, esp.ErrInvalidArgument)
	}
	return nil
}

// Do runs req against the module and returns a JSON-serializable result.
func (g *Gateway) Do(ctx context.Context, req Request) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	d := g.driver
	switch req.Op {
	case OpIfconfig:
		return d.Ifconfig(ctx)

	case OpSetIfconfig:
		return nil, d.SetIfconfig(ctx, esp.StationIP{IP: req.IP, Gateway: req.Gateway, Netmask: req.Netmask})

	case OpIwconfig:
		return d.Iwconfig(ctx)

	case OpJoin:
		if err := required("ssid", req.SSID); err != nil {
			return nil, err
		}
		return nil, d.Join(ctx, req.SSID, req.Password)

	case OpDisconnect:
		return nil, d.Disconnect(ctx)

	case OpPing:
		if err := required("host", req.Host); err != nil {
			return nil, err
		}
		ms, err := d.Ping(ctx, req.Host)
		if err != nil {
			return nil, err
		}
		return PingResult{Host: req.Host, Millis: ms, Reachable: ms != esp.Sentinel}, nil

	case OpHTTPGet:
		if err := required("url", req.URL); err != nil {
			return nil, err
		}
		body, err := d.HTTPGet(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		return HTTPResult{Body: body}, nil

	case OpHTTPPost:
		if err := required("url", req.URL); err != nil {
			return nil, err
		}
		body, err := d.HTTPPost(ctx, req.URL, req.Data)
		if err != nil {
			return nil, err
		}
		return HTTPResult{Body: body}, nil

	case OpResolve:
		if err := required("domain", req.Domain); err != nil {
			return nil, err
		}
		addr, err := d.Resolve(ctx, req.Domain)
		if err != nil {
			return nil, err
		}
		return ResolveResult{Domain: req.Domain, Address: addr}, nil

	case OpScan:
		networks, err := d.Scan(ctx)
		if err != nil {
			return nil, err
		}
		if networks == nil {
			networks = []esp.Network{}
		}
		return networks, nil

	case OpVersion:
		v, err := d.Version(ctx)
		if err != nil {
			return nil, err
		}
		return VersionResult{Version: v}, nil

	case OpStatus:
		st, err := d.Status(ctx)
		if err != nil {
			return nil, err
		}
		return StatusResult{Status: st}, nil

	case OpReset:
		return nil, d.Reset(ctx)

	case OpRestore:
		return nil, d.Restore(ctx)

	case OpAT:
		if err := required("command", req.Command); err != nil {
			return nil, err
		}
		out, err := d.Command(ctx, req.Command)
		if err != nil {
			return nil, err
		}
		return ATResult{Response: out}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownOp, req.Op)
}

// Close waits for the running operation, if any, and closes the driver.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.driver.Close()
}

// Serve wraps Do for transports that exchange whole Request/Response pairs.
func (g *Gateway) Serve(ctx context.Context, req Request) Response {
	result, err := g.Do(ctx, req)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}
