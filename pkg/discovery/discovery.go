// Package discovery finds GoodWe WiFi modules on the local network.
// The modules answer a fixed probe string broadcast to port 48899 with
// their IP address, MAC and access point name.
package discovery

import (
	"context"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const (
	// Port is the config port of the WiFi module, distinct from the
	// data port the protocol dialects use.
	Port = 48899

	probe = "WIFIKIT-214028-READ"

	maxResponseSize = 256
)

var DefaultBroadcast = "255.255.255.255"

// Device is one discovered WiFi module.
type Device struct {
	IP   string `json:"ip"`
	MAC  string `json:"mac"`
	Name string `json:"name"`
}

// Options tune the broadcast search.
type Options struct {
	// Broadcast is the address the probe is sent to, the all-networks
	// broadcast by default.
	Broadcast string
	// Timeout is how long responses are collected.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Broadcast == "" {
		o.Broadcast = DefaultBroadcast
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Second
	}
	return o
}

// Search broadcasts the discovery probe and collects every response
// that arrives within the timeout. Devices answering more than once
// are reported once.
func Search(ctx context.Context, opts Options) ([]Device, error) {
	opts = opts.withDefaults()
	broadcast := opts.Broadcast
	if _, _, err := net.SplitHostPort(broadcast); err != nil {
		broadcast = net.JoinHostPort(broadcast, strconv.Itoa(Port))
	}
	target, err := net.ResolveUDPAddr("udp4", broadcast)
	if err != nil {
		return nil, errors.Wrap(err, "resolving broadcast address")
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, errors.Wrap(err, "opening broadcast socket")
	}
	defer conn.Close()

	klog.V(2).InfoS("Searching inverters", "broadcast", target.String())
	if _, err := conn.WriteToUDP([]byte(probe), target); err != nil {
		return nil, errors.Wrap(err, "sending discovery probe")
	}

	deadline := time.Now().Add(opts.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	var devices []Device
	seen := map[string]bool{}
	buf := make([]byte, maxResponseSize)
	for {
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if os.IsTimeout(err) {
				return devices, nil
			}
			return devices, err
		}
		device, err := ParseResponse(buf[:n])
		if err != nil {
			klog.V(2).InfoS("Ignoring malformed discovery response", "from", raddr.String(), "err", err)
			continue
		}
		if seen[device.IP] {
			continue
		}
		seen[device.IP] = true
		klog.V(2).InfoS("Discovered inverter", "ip", device.IP, "mac", device.MAC, "name", device.Name)
		devices = append(devices, device)
	}
}

// ParseResponse splits the "ip,mac,name" discovery answer.
func ParseResponse(raw []byte) (Device, error) {
	fields := strings.Split(strings.TrimSpace(string(raw)), ",")
	if len(fields) != 3 {
		return Device{}, errors.Errorf("malformed discovery response %q", raw)
	}
	return Device{IP: fields[0], MAC: fields[1], Name: fields[2]}, nil
}
