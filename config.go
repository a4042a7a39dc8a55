package stpsim

// config.go is adapted from desc-topo.go: the teacher's pattern of a
// plain, pointer-free Desc struct with json/yaml tags, a WriteToFile
// that picks a format from the file extension, and a Build method that
// turns the Desc into the live, pointer-linked runtime objects. Here the
// runtime object is a Topology instead of a mrnes network, and there is
// exactly one Desc type instead of the teacher's device/interface/network
// hierarchy, since a Topology's shape is fully described by its bridges
// and links.

import (
	"encoding/json"
	"os"
	"path"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// BridgeDesc describes one bridge to be built into a Topology.
type BridgeDesc struct {
	MAC      string `json:"mac" yaml:"mac"`
	Priority uint16 `json:"priority" yaml:"priority"`
}

// LinkDesc describes one link to be built into a Topology.
type LinkDesc struct {
	BridgeA string `json:"bridge_a" yaml:"bridge_a"`
	PortA   int    `json:"port_a" yaml:"port_a"`
	BridgeB string `json:"bridge_b" yaml:"bridge_b"`
	PortB   int    `json:"port_b" yaml:"port_b"`
}

// TopologyDesc is a complete, serializable description of a Topology:
// enough to reconstruct it byte-for-byte with Build.
type TopologyDesc struct {
	Name    string       `json:"name" yaml:"name"`
	Bridges []BridgeDesc `json:"bridges" yaml:"bridges"`
	Links   []LinkDesc   `json:"links" yaml:"links"`
}

// CreateTopologyDesc is an initialization constructor, matching
// desc-topo.go's CreateDevExecList naming convention.
func CreateTopologyDesc(name string) *TopologyDesc {
	return &TopologyDesc{Name: name}
}

// AddBridge appends a bridge description. Priority defaults to
// DefaultPriority when 0 is passed, since 0 is never a meaningful
// 802.1D priority in this module's default-priority-only model.
func (td *TopologyDesc) AddBridge(mac string, priority uint16) {
	if priority == 0 {
		priority = DefaultPriority
	}
	td.Bridges = append(td.Bridges, BridgeDesc{MAC: mac, Priority: priority})
}

// AddLink appends a link description.
func (td *TopologyDesc) AddLink(bridgeA string, portA int, bridgeB string, portB int) {
	td.Links = append(td.Links, LinkDesc{BridgeA: bridgeA, PortA: portA, BridgeB: bridgeB, PortB: portB})
}

// Build constructs a live Topology from this description. trace may be
// nil. Build fails with a TopologyError on the first bad bridge or link,
// same failure mode as calling the equivalent Topology methods directly.
func (td *TopologyDesc) Build(trace *TraceManager) (*Topology, error) {
	t := NewTopology(trace)
	for _, bd := range td.Bridges {
		if _, err := t.AddBridge(bd.MAC, bd.Priority); err != nil {
			return nil, err
		}
	}
	for _, ld := range td.Links {
		if err := t.AddLink(ld.BridgeA, ld.PortA, ld.BridgeB, ld.PortB); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteToFile serializes the TopologyDesc to filename, choosing JSON or
// YAML by file extension, in the same style as desc-topo.go's
// DevExecList.WriteToFile.
func (td *TopologyDesc) WriteToFile(filename string) error {
	var out []byte
	var err error

	switch path.Ext(filename) {
	case ".yaml", ".yml", ".YAML":
		out, err = yaml.Marshal(*td)
	case ".json", ".JSON":
		out, err = json.MarshalIndent(*td, "", "\t")
	default:
		return errors.Errorf("stpsim: unrecognized topology description extension %q", path.Ext(filename))
	}
	if err != nil {
		return errors.Wrap(err, "stpsim: marshal topology description")
	}

	return os.WriteFile(filename, out, 0o644)
}

// ReadTopologyDesc reads and deserializes a TopologyDesc from filename,
// choosing JSON or YAML by file extension.
func ReadTopologyDesc(filename string) (*TopologyDesc, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "stpsim: read topology description")
	}

	var td TopologyDesc
	switch path.Ext(filename) {
	case ".yaml", ".yml", ".YAML":
		err = yaml.Unmarshal(raw, &td)
	case ".json", ".JSON":
		err = json.Unmarshal(raw, &td)
	default:
		return nil, errors.Errorf("stpsim: unrecognized topology description extension %q", path.Ext(filename))
	}
	if err != nil {
		return nil, errors.Wrap(err, "stpsim: unmarshal topology description")
	}
	return &td, nil
}
