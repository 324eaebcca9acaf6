package tour

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tourwright/tourwright/pkg/condition"
	"github.com/tourwright/tourwright/pkg/guide"
)

// EffectFactory resolves an authored effect spec to a concrete effect.
// A nil factory (or a nil returned effect) falls back to NopEffect.
type EffectFactory func(spec *EffectSpec) (guide.Effect, error)

// BuildConfig carries the collaborators a built tour runs against.
type BuildConfig struct {
	// Clock and Logger seed the engine Env. Nil selects defaults.
	Clock  condition.Clock
	Logger *slog.Logger
	// Effects resolves effect specs. Nil means every step gets a NopEffect.
	Effects EffectFactory
}

// Runtime is a fully constructed tour engine: the manager with all groups
// registered, the shared variable environment, and the flag conditions
// indexed by id so trigger sources (or the play REPL) can fire them.
type Runtime struct {
	Manager *guide.Manager
	Env     *guide.Env
	Vars    *condition.Vars
	Flags   map[string]*condition.Flag
}

// Build constructs the runtime engine for a validated tour document.
func Build(t *Tour, cfg BuildConfig) (*Runtime, error) {
	interval := time.Duration(0)
	if t.Meta.TickInterval != "" {
		d, err := time.ParseDuration(t.Meta.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("meta.tick_interval: %w", err)
		}
		interval = d
	}

	if cfg.Clock == nil {
		cfg.Clock = condition.SystemClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	registry := condition.NewRegistry(condition.RegistryConfig{
		TickInterval: interval,
		Clock:        cfg.Clock,
		Logger:       cfg.Logger,
	})
	env := guide.NewEnv(guide.EnvConfig{
		Clock:      cfg.Clock,
		Logger:     cfg.Logger,
		Conditions: registry,
	})

	rt := &Runtime{
		Manager: guide.NewManager(env),
		Env:     env,
		Vars:    condition.NewVars(),
		Flags:   make(map[string]*condition.Flag),
	}
	for k, v := range t.Meta.Vars {
		rt.Vars.Set(k, v)
	}

	for _, gs := range t.Groups {
		group := guide.NewGroup(env, guide.GroupConfig{
			ID:          gs.ID,
			Name:        gs.Name,
			Description: gs.Description,
			CanPause:    gs.CanPause,
			CanResume:   gs.CanResume,
			Strategy:    strategyFor(gs.Strategy),
		})
		for _, is := range gs.Items {
			item, err := rt.buildItem(env, gs.ID, is, cfg.Effects)
			if err != nil {
				return nil, fmt.Errorf("group %q item %q: %w", gs.ID, is.ID, err)
			}
			group.AddItem(item)
		}
		rt.Manager.RegisterGroup(group)
	}
	return rt, nil
}

func strategyFor(name string) guide.SelectionStrategy {
	switch name {
	case "priority":
		return guide.PriorityOrder{}
	case "parallel":
		return guide.Parallel{}
	default:
		return guide.Sequential{}
	}
}

func (rt *Runtime) buildItem(env *guide.Env, groupID string, is Item, effects EffectFactory) (*guide.Item, error) {
	waiting, err := optionalDuration(is.WaitingTimeout)
	if err != nil {
		return nil, fmt.Errorf("waiting_timeout: %w", err)
	}
	running, err := optionalDuration(is.RunningTimeout)
	if err != nil {
		return nil, fmt.Errorf("running_timeout: %w", err)
	}

	trigger, err := rt.buildCondition(is.Trigger, groupID+"."+is.ID+".trigger")
	if err != nil {
		return nil, fmt.Errorf("trigger: %w", err)
	}
	completion, err := rt.buildCondition(is.Completion, groupID+"."+is.ID+".completion")
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	var effect guide.Effect
	if is.Effect != nil && effects != nil {
		effect, err = effects(is.Effect)
		if err != nil {
			return nil, fmt.Errorf("effect %q: %w", is.Effect.Kind, err)
		}
	}

	return guide.NewItem(env, guide.ItemConfig{
		ID:             is.ID,
		Description:    is.Description,
		Priority:       is.Priority,
		WaitingTimeout: waiting,
		RunningTimeout: running,
		AutoStart:      boolOr(is.AutoStart, true),
		AutoComplete:   boolOr(is.AutoComplete, true),
		Trigger:        trigger,
		Completion:     completion,
		Effect:         effect,
	}), nil
}

// buildCondition recursively constructs a condition tree. Unnamed nodes get
// the derived fallback id so registry membership stays unambiguous.
func (rt *Runtime) buildCondition(spec *Condition, fallbackID string) (condition.Condition, error) {
	if spec == nil {
		return nil, nil
	}
	id := spec.ID
	if id == "" {
		id = fallbackID
	}

	var opts []condition.Option
	if spec.Cleanup != "" {
		strategy, ok := condition.ParseCleanupStrategy(spec.Cleanup)
		if !ok {
			return nil, fmt.Errorf("condition %q: unknown cleanup strategy %q", id, spec.Cleanup)
		}
		opts = append(opts, condition.WithCleanup(strategy))
	}
	if spec.Timeout != "" {
		d, err := time.ParseDuration(spec.Timeout)
		if err != nil {
			return nil, fmt.Errorf("condition %q: timeout: %w", id, err)
		}
		opts = append(opts, condition.WithTimeout(d))
	}
	if spec.Poll {
		opts = append(opts, condition.WithPoll())
	}

	switch spec.Kind {
	case "flag":
		f := condition.NewFlag(id, opts...)
		rt.Flags[id] = f
		return f, nil
	case "expr":
		return condition.NewExpr(id, spec.Expr, rt.Vars, opts...)
	case "all", "any", "one", "not":
		op, _ := condition.ParseOperator(spec.Kind)
		children := make([]condition.Condition, 0, len(spec.Children))
		for i, cs := range spec.Children {
			child, err := rt.buildCondition(cs, fmt.Sprintf("%s.%d", id, i))
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return condition.NewComposite(id, op, children, opts...), nil
	}
	return nil, fmt.Errorf("condition %q: unknown kind %q", id, spec.Kind)
}

func optionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
