package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

var (
	ErrNoNode     = errors.New("board: no such node")
	ErrNoProperty = errors.New("board: no such property")
	ErrOverride   = errors.New("board: bad override")
)

// Prop is a property value, a list of 32-bit cells. In JSON a cell is a
// number or a string such as "0xb8003000"; a single cell may be written
// without the list.
type Prop []uint32

func parseCell(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (p *Prop) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	list, ok := raw.([]interface{})
	if !ok {
		list = []interface{}{raw}
	}

	cells := make(Prop, 0, len(list))
	for _, c := range list {
		switch v := c.(type) {
		case float64:
			if v < 0 || v > 0xffffffff || v != float64(uint32(v)) {
				return fmt.Errorf("cell %v out of range", v)
			}
			cells = append(cells, uint32(v))
		case string:
			u, err := parseCell(v)
			if err != nil {
				return fmt.Errorf("cell %q: %w", v, err)
			}
			cells = append(cells, u)
		default:
			return fmt.Errorf("cell %v is not a number", c)
		}
	}
	*p = cells
	return nil
}

// Node is one hardware block's properties
type Node map[string]Prop

// Config is the hardware description, keyed by node name
type Config map[string]Node

// Node names
const (
	NodeBoard = "board"
	NodeLOPI  = "lopi"
	NodeINTC  = "intc"
	NodeTimer = "timer"
	NodeSoC   = "soc"
)

// LoadConfig parses a JSON hardware description and fills in defaults
func LoadConfig(jsonData []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Config{}
	}
	applyDefaults(cfg)
	return cfg, nil
}

func setDefault(cfg Config, node, prop string, v uint32) {
	n := cfg[node]
	if n == nil {
		n = Node{}
		cfg[node] = n
	}
	if _, ok := n[prop]; !ok {
		n[prop] = Prop{v}
	}
}

// applyDefaults fills in the properties every board shares
func applyDefaults(cfg Config) {
	setDefault(cfg, NodeBoard, "tick-rate", 100)
	setDefault(cfg, NodeBoard, "stats-interval-ms", 1000)
	setDefault(cfg, NodeLOPI, "irq-base", 8)
	setDefault(cfg, NodeSoC, "restart", 1)
}

// DefaultConfig returns the description of a stock RTL8196E board
func DefaultConfig() Config {
	cfg := Config{
		NodeLOPI: {"vectors": {0x80000400}},
		NodeINTC: {
			"reg":        {0xb8003000, 0x18},
			"interrupts": {2},
		},
		NodeTimer: {
			"reg":             {0xb8003100, 0x20},
			"interrupts":      {8, 9},
			"clock-frequency": {200000000},
			"clock-div":       {2},
			"shift":           {0},
		},
	}
	applyDefaults(cfg)
	return cfg
}

// U32Index reads cell i of a property
func (c Config) U32Index(node, prop string, i int) (uint32, error) {
	n, ok := c[node]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoNode, node)
	}
	p, ok := n[prop]
	if !ok || i >= len(p) {
		return 0, fmt.Errorf("%w: %s/%s[%d]", ErrNoProperty, node, prop, i)
	}
	return p[i], nil
}

// U32 reads the first cell of a property
func (c Config) U32(node, prop string) (uint32, error) {
	return c.U32Index(node, prop, 0)
}

// Override replaces one property
type Override struct {
	Node  string
	Prop  string
	Value Prop
}

// ParseOverrides splits a command line such as
// "timer.shift=4 'intc.reg=0xb8003000, 0x18'" into overrides
func ParseOverrides(line string) ([]Override, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOverride, err)
	}

	overrides := make([]Override, 0, len(words))
	for _, w := range words {
		key, value, ok := strings.Cut(w, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q has no value", ErrOverride, w)
		}
		node, prop, ok := strings.Cut(key, ".")
		if !ok || node == "" || prop == "" {
			return nil, fmt.Errorf("%w: %q is not node.prop", ErrOverride, key)
		}

		var cells Prop
		for _, s := range strings.Split(value, ",") {
			v, err := parseCell(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrOverride, key, err)
			}
			cells = append(cells, v)
		}
		overrides = append(overrides, Override{Node: node, Prop: prop, Value: cells})
	}
	return overrides, nil
}

// Apply sets each override, creating nodes as needed
func (c Config) Apply(overrides []Override) {
	for _, o := range overrides {
		n := c[o.Node]
		if n == nil {
			n = Node{}
			c[o.Node] = n
		}
		n[o.Prop] = o.Value
	}
}
