package tour

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/tourwright/tourwright/pkg/condition"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g., "groups[0].items[2].trigger")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateFile performs the full 3-phase validation pipeline on a tour file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateFile(path string) (*Tour, []*ValidationError) {
	t, err := LoadFile(path)
	if err != nil {
		return nil, []*ValidationError{{
			Phase:    "structural",
			Message:  err.Error(),
			Severity: "error",
		}}
	}
	return t, Validate(t)
}

// Validate runs the semantic and domain phases on an already-parsed tour.
func Validate(t *Tour) []*ValidationError {
	var allErrors []*ValidationError
	allErrors = append(allErrors, validateSemantic(t)...)
	allErrors = append(allErrors, ValidateDomain(t)...)
	return allErrors
}

// validateSemantic validates the tour against the generated JSON Schema.
func validateSemantic(t *Tour) []*ValidationError {
	fail := func(msg string, args ...any) []*ValidationError {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf(msg, args...),
			Severity: "error",
		}}
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fail("marshal for schema validation: %v", err)
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return fail("generate schema: %v", err)
	}

	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return fail("unmarshal schema: %v", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("tour-v1.json", schemaDoc); err != nil {
		return fail("add schema resource: %v", err)
	}
	sch, err := c.Compile("tour-v1.json")
	if err != nil {
		return fail("compile schema: %v", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fail("unmarshal document: %v", err)
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "/"),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = append(errs, &ValidationError{
				Phase:    "semantic",
				Message:  err.Error(),
				Severity: "error",
			})
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// ValidateDomain performs Phase 3 domain-level validation.
func ValidateDomain(t *Tour) []*ValidationError {
	var errs []*ValidationError
	domainErr := func(path, msg string, args ...any) {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     path,
			Message:  fmt.Sprintf(msg, args...),
			Severity: "error",
		})
	}

	if t.APIVersion != "tour/v1" {
		domainErr("apiVersion", "unrecognized apiVersion %q, expected %q", t.APIVersion, "tour/v1")
	}
	if t.Meta.TickInterval != "" {
		if _, err := time.ParseDuration(t.Meta.TickInterval); err != nil {
			domainErr("meta.tick_interval", "invalid duration %q", t.Meta.TickInterval)
		}
	}

	groupIDs := make(map[string]bool)
	condIDs := make(map[string]bool)
	for gi, g := range t.Groups {
		gPath := fmt.Sprintf("groups[%d]", gi)
		if groupIDs[g.ID] {
			domainErr(gPath+".id", "duplicate group id %q", g.ID)
		}
		groupIDs[g.ID] = true

		if g.Strategy != "" {
			switch g.Strategy {
			case "sequential", "priority", "parallel":
			default:
				domainErr(gPath+".strategy", "unknown strategy %q", g.Strategy)
			}
		}
		if g.CanResume && !g.CanPause {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     gPath + ".can_resume",
				Message:  "can_resume without can_pause: the group can never reach Paused",
				Severity: "warning",
			})
		}

		itemIDs := make(map[string]bool)
		for ii, it := range g.Items {
			iPath := fmt.Sprintf("%s.items[%d]", gPath, ii)
			if itemIDs[it.ID] {
				domainErr(iPath+".id", "duplicate item id %q in group %q", it.ID, g.ID)
			}
			itemIDs[it.ID] = true

			for _, tc := range []struct {
				field string
				value string
			}{
				{"waiting_timeout", it.WaitingTimeout},
				{"running_timeout", it.RunningTimeout},
			} {
				if tc.value == "" {
					continue
				}
				if d, err := time.ParseDuration(tc.value); err != nil || d < 0 {
					domainErr(iPath+"."+tc.field, "invalid duration %q", tc.value)
				}
			}

			validateCondition(it.Trigger, iPath+".trigger", condIDs, domainErr)
			validateCondition(it.Completion, iPath+".completion", condIDs, domainErr)

			if it.Effect != nil && it.Effect.Duration != "" {
				if _, err := time.ParseDuration(it.Effect.Duration); err != nil {
					domainErr(iPath+".effect.duration", "invalid duration %q", it.Effect.Duration)
				}
			}
		}
	}
	return errs
}

func validateCondition(c *Condition, path string, seen map[string]bool, domainErr func(path, msg string, args ...any)) {
	if c == nil {
		return
	}
	if c.ID != "" {
		if seen[c.ID] {
			domainErr(path+".id", "duplicate condition id %q", c.ID)
		}
		seen[c.ID] = true
	}
	if c.Cleanup != "" {
		if _, ok := condition.ParseCleanupStrategy(c.Cleanup); !ok {
			domainErr(path+".cleanup", "unknown cleanup strategy %q", c.Cleanup)
		}
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err != nil || d < 0 {
			domainErr(path+".timeout", "invalid duration %q", c.Timeout)
		}
	}

	switch c.Kind {
	case "flag":
		if len(c.Children) > 0 {
			domainErr(path+".children", "flag condition cannot have children")
		}
	case "expr":
		if len(c.Children) > 0 {
			domainErr(path+".children", "expr condition cannot have children")
		}
		if strings.TrimSpace(c.Expr) == "" {
			domainErr(path+".expr", "expr condition requires a non-empty expression")
		} else if _, err := condition.CompileExpr(c.Expr); err != nil {
			domainErr(path+".expr", "%v", err)
		}
	case "all", "any", "one":
		if len(c.Children) == 0 {
			domainErr(path+".children", "%s condition requires at least one child", c.Kind)
		}
	case "not":
		if len(c.Children) != 1 {
			domainErr(path+".children", "not condition requires exactly one child, got %d", len(c.Children))
		}
	default:
		domainErr(path+".kind", "unknown condition kind %q", c.Kind)
	}

	for i, child := range c.Children {
		validateCondition(child, fmt.Sprintf("%s.children[%d]", path, i), seen, domainErr)
	}
}
