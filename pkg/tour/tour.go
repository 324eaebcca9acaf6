// Package tour defines the Go struct types for the tour YAML schema and
// provides strict YAML parsing.
package tour

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Tour is the top-level document defining a guided tour: one or more
// groups, each an ordered sequence of steps.
type Tour struct {
	APIVersion string  `yaml:"apiVersion" json:"apiVersion" jsonschema:"required,enum=tour/v1"`
	Meta       Meta    `yaml:"meta"       json:"meta"       jsonschema:"required"`
	Groups     []Group `yaml:"groups"     json:"groups"     jsonschema:"required,minItems=1"`
}

// Meta contains tour metadata and the initial variable environment that
// expression conditions evaluate against.
type Meta struct {
	Name        string         `yaml:"name"                  json:"name" jsonschema:"required"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Vars        map[string]any `yaml:"vars,omitempty"        json:"vars,omitempty"`
	// TickInterval is the condition registry cadence, e.g. "100ms".
	TickInterval string `yaml:"tick_interval,omitempty" json:"tick_interval,omitempty" jsonschema:"pattern=^[0-9]+(ms|s|m)$"`
}

// Group defines one sequence of steps.
type Group struct {
	ID          string `yaml:"id"                    json:"id"   jsonschema:"required"`
	Name        string `yaml:"name,omitempty"        json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	CanPause    bool   `yaml:"can_pause,omitempty"   json:"can_pause,omitempty"`
	CanResume   bool   `yaml:"can_resume,omitempty"  json:"can_resume,omitempty"`
	// Strategy selects the advancement policy: sequential (default),
	// priority, or parallel.
	Strategy string `yaml:"strategy,omitempty" json:"strategy,omitempty" jsonschema:"enum=sequential,enum=priority,enum=parallel"`
	Items    []Item `yaml:"items"              json:"items" jsonschema:"required,minItems=1"`
}

// Item defines one step of a tour.
type Item struct {
	ID          string `yaml:"id"                    json:"id" jsonschema:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Priority    int    `yaml:"priority,omitempty"    json:"priority,omitempty"`
	// Timeouts are duration strings like "30s"; empty disables.
	WaitingTimeout string `yaml:"waiting_timeout,omitempty" json:"waiting_timeout,omitempty" jsonschema:"pattern=^[0-9]+(ms|s|m|h)$"`
	RunningTimeout string `yaml:"running_timeout,omitempty" json:"running_timeout,omitempty" jsonschema:"pattern=^[0-9]+(ms|s|m|h)$"`
	// AutoStart and AutoComplete default to true for authored tours; the
	// pointer form distinguishes "unset" from an explicit false.
	AutoStart    *bool `yaml:"auto_start,omitempty"    json:"auto_start,omitempty"`
	AutoComplete *bool `yaml:"auto_complete,omitempty" json:"auto_complete,omitempty"`

	Trigger    *Condition `yaml:"trigger,omitempty"    json:"trigger,omitempty"`
	Completion *Condition `yaml:"completion,omitempty" json:"completion,omitempty"`

	Effect *EffectSpec `yaml:"effect,omitempty" json:"effect,omitempty"`
}

// Condition is a node in a condition tree. Kind selects the variant:
// atomic "flag" and "expr" leaves, and composite "all"/"any"/"one"/"not"
// over Children.
type Condition struct {
	Kind string `yaml:"kind" json:"kind" jsonschema:"required,enum=flag,enum=expr,enum=all,enum=any,enum=one,enum=not"`
	// ID names the condition for registry lookup and for firing flags
	// externally. Optional: unnamed conditions get derived ids.
	ID string `yaml:"id,omitempty" json:"id,omitempty"`
	// Expr is the expression source for kind: expr.
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`
	// Children are the sub-conditions for composite kinds.
	Children []*Condition `yaml:"children,omitempty" json:"children,omitempty"`
	// Cleanup overrides the registry cleanup policy. Default: manual
	// (the owning item unregisters on its terminal transition).
	Cleanup string `yaml:"cleanup,omitempty" json:"cleanup,omitempty" jsonschema:"enum=manual,enum=auto_on_satisfied,enum=auto_on_timeout,enum=auto_on_satisfied_or_timeout,enum=persistent"`
	// Timeout is the registry timeout duration string; empty disables.
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"pattern=^[0-9]+(ms|s|m|h)$"`
	// Poll forces periodic re-evaluation for flag conditions.
	Poll bool `yaml:"poll,omitempty" json:"poll,omitempty"`
}

// EffectSpec names the presentation attached to a step. The core treats
// effects as opaque; Kind is resolved against an EffectFactory at build
// time.
type EffectSpec struct {
	Kind  string `yaml:"kind"            json:"kind" jsonschema:"required"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	// Body is markdown shown by terminal effects.
	Body string `yaml:"body,omitempty" json:"body,omitempty"`
	// Duration is how long scripted effects run before signalling
	// completion, e.g. "2s".
	Duration string `yaml:"duration,omitempty" json:"duration,omitempty" jsonschema:"pattern=^[0-9]+(ms|s|m)$"`
}

// LoadFile reads and parses a tour YAML file with strict unknown-field
// rejection (yaml.v3 KnownFields). Returns the parsed Tour or an error.
func LoadFile(path string) (*Tour, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tour: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a tour from an io.Reader with strict unknown-field rejection.
func Load(r io.Reader) (*Tour, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t Tour
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode tour: %w", err)
	}
	return &t, nil
}
