package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/go-connections/nat"
)

// DefaultHostIP is reported for pinned ports published on all interfaces.
const DefaultHostIP = "0.0.0.0"

// PinnedAddress returns the host address of a port spec that pins its host
// side ("8080:80", "127.0.0.1:8080:80"). ok is false for dynamically
// published specs ("80", "80/udp", "127.0.0.1::80") and unparseable ones.
func PinnedAddress(spec string) (addr string, ok bool) {
	if !strings.Contains(spec, ":") {
		return "", false
	}
	mappings, err := nat.ParsePortSpec(spec)
	if err != nil || len(mappings) == 0 {
		return "", false
	}
	binding := mappings[0].Binding
	if binding.HostPort == "" {
		return "", false
	}
	ip := binding.HostIP
	if ip == "" {
		ip = DefaultHostIP
	}
	return ip + ":" + binding.HostPort, true
}

// containerPort extracts the container side and protocol of a spec.
func containerPort(spec string) (port, proto string, err error) {
	if !strings.Contains(spec, ":") {
		port, proto, _ = strings.Cut(spec, "/")
		if proto == "" {
			proto = "tcp"
		}
		return port, proto, nil
	}
	mappings, err := nat.ParsePortSpec(spec)
	if err != nil {
		return "", "", fmt.Errorf("invalid port spec %q: %w", spec, err)
	}
	if len(mappings) == 0 {
		return "", "", fmt.Errorf("invalid port spec %q: no ports", spec)
	}
	return mappings[0].Port.Port(), mappings[0].Port.Proto(), nil
}

// Address resolves the externally reachable address of a service port.
// A pinned spec is answered without touching the runtime; otherwise the
// runtime is asked for the published mapping on every call.
func (c *Compose) Address(ctx context.Context, t Target, service, portSpec string) (string, error) {
	if addr, ok := PinnedAddress(portSpec); ok {
		return addr, nil
	}

	port, proto, err := containerPort(portSpec)
	if err != nil {
		return "", err
	}
	args := []string{"port"}
	if proto != "tcp" {
		args = append(args, "--protocol", proto)
	}
	args = append(args, service, port)

	res, err := c.run(ctx, t, args...)
	if err != nil {
		return "", fmt.Errorf("resolving %s port %s: %w", service, portSpec, err)
	}
	return strings.TrimRight(res.Stdout, "\r\n"), nil
}
