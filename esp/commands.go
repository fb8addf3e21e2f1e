package esp

import (
	"context"
	"fmt"
	"strings"

	"i4.energy/across/espat/at"
)

// WifiMode is the operating mode selected with AT+CWMODE.
type WifiMode int

const (
	ModeStation   WifiMode = 1
	ModeSoftAP    WifiMode = 2
	ModeStationAP WifiMode = 3
)

func (d *Driver) expectOK(ctx context.Context, name string, encode func(e *at.Encoder) error) error {
	_, err := d.exec(ctx, name, encode)
	return err
}

func query(cmd string) func(e *at.Encoder) error {
	return func(e *at.Encoder) error {
		return e.Raw(cmd).Raw(at.QuerySuffix).End()
	}
}

// schemeFlag selects the AT+HTTPCLIENT transport type: 2 for HTTPS, 1 for
// plain HTTP.
func schemeFlag(url string) byte {
	if strings.HasPrefix(url, "https") {
		return '2'
	}
	return '1'
}

// EchoOff sends ATE0.
func (d *Driver) EchoOff(ctx context.Context) error {
	return d.expectOK(ctx, at.CmdEchoOff, func(e *at.Encoder) error {
		return e.Command(at.CmdEchoOff)
	})
}

// EchoOn sends ATE1.
func (d *Driver) EchoOn(ctx context.Context) error {
	return d.expectOK(ctx, at.CmdEchoOn, func(e *at.Encoder) error {
		return e.Command(at.CmdEchoOn)
	})
}

// Ifconfig queries the station IP configuration with AT+CIPSTA?.
func (d *Driver) Ifconfig(ctx context.Context) (StationIP, error) {
	payload, err := d.exec(ctx, at.CmdStationIP, query(at.CmdStationIP))
	if err != nil {
		return StationIP{}, err
	}
	return parseIfconfig(string(payload))
}

// SetIfconfig assigns a static station address. Gateway and Netmask are
// optional but must be given together.
func (d *Driver) SetIfconfig(ctx context.Context, cfg StationIP) error {
	if cfg.IP == "" || (cfg.Gateway == "") != (cfg.Netmask == "") {
		return fmt.Errorf("%s: ip required, gateway and netmask go together: %w", at.CmdStationIP, ErrInvalidArgument)
	}
	return d.expectOK(ctx, at.CmdStationIP, func(e *at.Encoder) error {
		e.Raw(at.CmdStationIP).Raw(at.AssignOperator).Quoted(cfg.IP)
		if cfg.Gateway != "" {
			e.Byte(',').Quoted(cfg.Gateway).Byte(',').Quoted(cfg.Netmask)
		}
		return e.End()
	})
}

// Iwconfig reports the access point the station is associated with. It
// returns ErrNoConnection when there is none.
func (d *Driver) Iwconfig(ctx context.Context) (AccessPoint, error) {
	payload, err := d.exec(ctx, at.CmdJoinAP, query(at.CmdJoinAP))
	if err != nil {
		return AccessPoint{}, err
	}
	return parseIwconfig(string(payload))
}

// Join associates with an access point.
func (d *Driver) Join(ctx context.Context, ssid, password string) error {
	return d.expectOK(ctx, at.CmdJoinAP, func(e *at.Encoder) error {
		return e.Raw(at.CmdJoinAP).Raw(at.AssignOperator).
			Quoted(ssid).Byte(',').Quoted(password).End()
	})
}

// Disconnect leaves the current access point.
func (d *Driver) Disconnect(ctx context.Context) error {
	return d.expectOK(ctx, at.CmdQuitAP, func(e *at.Encoder) error {
		return e.Command(at.CmdQuitAP)
	})
}

// SetMode selects station, soft-AP or combined mode.
func (d *Driver) SetMode(ctx context.Context, mode WifiMode) error {
	if mode < ModeStation || mode > ModeStationAP {
		return fmt.Errorf("%s: mode %d: %w", at.CmdWifiMode, mode, ErrInvalidArgument)
	}
	return d.expectOK(ctx, at.CmdWifiMode, func(e *at.Encoder) error {
		return e.Raw(at.CmdWifiMode).Raw(at.AssignOperator).Byte(byte('0' + mode)).End()
	})
}

// Scan lists the access points in range.
func (d *Driver) Scan(ctx context.Context) ([]Network, error) {
	payload, err := d.exec(ctx, at.CmdListAP, func(e *at.Encoder) error {
		return e.Command(at.CmdListAP)
	})
	if err != nil {
		return nil, err
	}
	return parseScan(string(payload))
}

// Ping returns the round trip time to host in milliseconds. An unparsable
// reply yields Sentinel.
func (d *Driver) Ping(ctx context.Context, host string) (uint32, error) {
	payload, err := d.exec(ctx, at.CmdPing, func(e *at.Encoder) error {
		return e.Raw(at.CmdPing).Raw(at.AssignOperator).Quoted(host).End()
	})
	if err != nil {
		return 0, err
	}
	return parsePing(string(payload))
}

// Resolve looks up the address of a domain name.
func (d *Driver) Resolve(ctx context.Context, domain string) (string, error) {
	payload, err := d.exec(ctx, at.CmdDomain, func(e *at.Encoder) error {
		return e.Raw(at.CmdDomain).Raw(at.AssignOperator).Quoted(domain).End()
	})
	if err != nil {
		return "", err
	}
	return parseDomain(string(payload))
}

// Hostname returns the station host name.
func (d *Driver) Hostname(ctx context.Context) (string, error) {
	payload, err := d.exec(ctx, at.CmdHostname, query(at.CmdHostname))
	if err != nil {
		return "", err
	}
	return parseHostname(string(payload))
}

// Version returns the AT+GMR firmware description as sent by the module.
func (d *Driver) Version(ctx context.Context) (string, error) {
	payload, err := d.exec(ctx, at.CmdVersion, func(e *at.Encoder) error {
		return e.Command(at.CmdVersion)
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// Status returns the link status reported by AT+CIPSTATUS.
func (d *Driver) Status(ctx context.Context) (LinkStatus, error) {
	payload, err := d.exec(ctx, at.CmdStatus, func(e *at.Encoder) error {
		return e.Command(at.CmdStatus)
	})
	if err != nil {
		return 0, err
	}
	return parseStatus(string(payload))
}

// Reset restarts the module with AT+RST. The module acknowledges before it
// reboots, so its boot output is still to come when Reset returns. Wait for
// it and call SkipToNext before the next command.
func (d *Driver) Reset(ctx context.Context) error {
	return d.expectOK(ctx, at.CmdReset, func(e *at.Encoder) error {
		return e.Command(at.CmdReset)
	})
}

// Restore erases the module's saved settings with AT+RESTORE and reboots
// it. Boot output follows as for Reset.
func (d *Driver) Restore(ctx context.Context) error {
	return d.expectOK(ctx, at.CmdRestore, func(e *at.Encoder) error {
		return e.Command(at.CmdRestore)
	})
}

// HTTPGet performs a GET through the module's HTTP client and returns
// everything after the first comma of the reply, unparsed.
func (d *Driver) HTTPGet(ctx context.Context, url string) (string, error) {
	payload, err := d.exec(ctx, at.CmdHTTPClient, func(e *at.Encoder) error {
		return e.Raw(at.CmdHTTPClient).Raw("=2,0,").Quoted(url).Raw(",,,").
			Byte(schemeFlag(url)).End()
	})
	if err != nil {
		return "", err
	}
	return parseHTTPBody(string(payload)), nil
}

// HTTPPost posts data through the module's HTTP client and returns
// everything after the first comma of the reply, unparsed.
func (d *Driver) HTTPPost(ctx context.Context, url, data string) (string, error) {
	payload, err := d.exec(ctx, at.CmdHTTPClient, func(e *at.Encoder) error {
		return e.Raw(at.CmdHTTPClient).Raw("=3,0,").Quoted(url).Raw(",,,").
			Byte(schemeFlag(url)).Byte(',').Quoted(data).End()
	})
	if err != nil {
		return "", err
	}
	return parseHTTPBody(string(payload)), nil
}
