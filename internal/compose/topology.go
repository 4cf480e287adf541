package compose

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Service is the part of a compose service definition cienv cares about.
type Service struct {
	Name  string
	Image string
	Ports []string
}

// ExposedPort returns the first declared port spec, which is the one
// readiness checks and address lookups use.
func (s Service) ExposedPort() (string, bool) {
	if len(s.Ports) == 0 {
		return "", false
	}
	return s.Ports[0], true
}

// Topology is a parsed compose file.
type Topology struct {
	Path     string
	Services map[string]Service
}

// top-level keys of a legacy (v1) compose file that are not services
var reservedTopLevel = map[string]bool{
	"version":  true,
	"networks": true,
	"volumes":  true,
	"secrets":  true,
	"configs":  true,
	"name":     true,
	"include":  true,
}

type rawService struct {
	Image string      `yaml:"image"`
	Ports []portEntry `yaml:"ports"`
}

// portEntry accepts both the short ("8080:80") and long
// ({target: 80, published: 8080}) port syntax.
type portEntry string

type longPort struct {
	Target    string `yaml:"target"`
	Published string `yaml:"published"`
	HostIP    string `yaml:"host_ip"`
	Protocol  string `yaml:"protocol"`
}

func (p *portEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = portEntry(node.Value)
		return nil
	case yaml.MappingNode:
		var lp longPort
		if err := node.Decode(&lp); err != nil {
			return err
		}
		if lp.Target == "" {
			return fmt.Errorf("line %d: port mapping without target", node.Line)
		}
		spec := lp.Target
		if lp.Published != "" {
			spec = lp.Published + ":" + spec
			if lp.HostIP != "" {
				spec = lp.HostIP + ":" + spec
			}
		}
		if lp.Protocol != "" && lp.Protocol != "tcp" {
			spec += "/" + lp.Protocol
		}
		*p = portEntry(spec)
		return nil
	default:
		return fmt.Errorf("line %d: unsupported port entry", node.Line)
	}
}

// LoadTopology reads and parses a compose file.
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading compose file: %w", err)
	}
	t, err := ParseTopology(data)
	if err != nil {
		return nil, fmt.Errorf("parsing compose file %s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// ParseTopology parses compose file contents. Files with a top-level
// `services` key and legacy files that list services at the top level are
// both accepted.
func ParseTopology(data []byte) (*Topology, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	raw := make(map[string]rawService)
	if node, ok := doc["services"]; ok {
		if err := node.Decode(&raw); err != nil {
			return nil, err
		}
	} else {
		for key, node := range doc {
			if reservedTopLevel[key] || strings.HasPrefix(key, "x-") {
				continue
			}
			var svc rawService
			if err := node.Decode(&svc); err != nil {
				return nil, fmt.Errorf("service %s: %w", key, err)
			}
			raw[key] = svc
		}
	}

	t := &Topology{Services: make(map[string]Service, len(raw))}
	for name, rs := range raw {
		svc := Service{Name: name, Image: rs.Image}
		for _, p := range rs.Ports {
			svc.Ports = append(svc.Ports, string(p))
		}
		t.Services[name] = svc
	}
	return t, nil
}

// Names returns all service names, sorted.
func (t *Topology) Names() []string {
	names := make([]string, 0, len(t.Services))
	for name := range t.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the named services in order, or every service sorted by
// name when names is empty.
func (t *Topology) Select(names []string) ([]Service, error) {
	if len(names) == 0 {
		names = t.Names()
	}
	out := make([]Service, 0, len(names))
	for _, name := range names {
		svc, ok := t.Services[name]
		if !ok {
			return nil, fmt.Errorf("no such service: %s", name)
		}
		out = append(out, svc)
	}
	return out, nil
}

// Images returns the distinct image references of the selected services.
// Services without an image (build-only) are skipped.
func (t *Topology) Images(names []string) ([]string, error) {
	services, err := t.Select(names)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var images []string
	for _, s := range services {
		if s.Image == "" {
			continue
		}
		if _, dup := seen[s.Image]; dup {
			continue
		}
		seen[s.Image] = struct{}{}
		images = append(images, s.Image)
	}
	return images, nil
}
