package transform

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ConfigKind is the declared value kind of a recognized pass option.
type ConfigKind uint8

const (
	ConfigBool ConfigKind = iota
	ConfigInteger
	ConfigArray
)

// recognizedOptions lists the pass options the core and its
// surrounding pipeline reference, with their declared kinds. Options
// outside this table pass through unchanged.
var recognizedOptions = map[string]ConfigKind{
	"noalias":                         ConfigBool,
	"detect_global_barrier":           ConfigBool,
	"instrument_bound_checkers":       ConfigBool,
	"disable_assert":                  ConfigBool,
	"disable_vectorize":               ConfigBool,
	"enable_buffer_level_predication": ConfigBool,
	"disable_cse":                     ConfigBool,
	"enable_debug":                    ConfigBool,
	"enable_equiv_terms_in_cse":       ConfigBool,
	"disable_storage_rewrite":         ConfigBool,
	"is_entry_func":                   ConfigBool,
	"add_lower_pass":                  ConfigArray,
	"debug_keep_trivial_loop":         ConfigBool,
	"use_async_copy":                  ConfigBool,
	"merge_static_smem":               ConfigBool,
	"instrument_lwp":                  ConfigBool,
	"vtcm_capacity":                   ConfigInteger,
	"ptx_ldg32":                       ConfigBool,
}

// RecognizedOption returns the declared kind of a pass option, if the
// option is one the pipeline references.
func RecognizedOption(key string) (ConfigKind, bool) {
	kind, ok := recognizedOptions[key]
	return kind, ok
}

// Context carries the configuration a pass executes under.
type Context struct {
	OptLevel int
	Config   map[string]any
}

// NewContext creates a context with the given opt level and an empty
// configuration.
func NewContext(optLevel int) *Context {
	return &Context{OptLevel: optLevel, Config: make(map[string]any)}
}

// BoolConfig reads a boolean option, with a default when unset.
func (c *Context) BoolConfig(key string, def bool) bool {
	if v, ok := c.Config[key].(bool); ok {
		return v
	}
	return def
}

// IntConfig reads an integer option, with a default when unset.
func (c *Context) IntConfig(key string, def int64) int64 {
	switch v := c.Config[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	}
	return def
}

// LoadConfig parses a YAML pass-configuration document into a
// Context. Recognized options are type-checked against their declared
// kinds; unknown keys are preserved untouched.
func LoadConfig(data []byte, optLevel int) (*Context, error) {
	cfg := make(map[string]any)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pass config: %w", err)
	}
	for key, val := range cfg {
		kind, ok := recognizedOptions[key]
		if !ok {
			continue
		}
		if err := checkKind(key, kind, val); err != nil {
			return nil, err
		}
	}
	return &Context{OptLevel: optLevel, Config: cfg}, nil
}

func checkKind(key string, kind ConfigKind, val any) error {
	switch kind {
	case ConfigBool:
		if _, ok := val.(bool); !ok {
			return fmt.Errorf("pass config %q: expected bool, got %T", key, val)
		}
	case ConfigInteger:
		switch val.(type) {
		case int, int64:
		default:
			return fmt.Errorf("pass config %q: expected integer, got %T", key, val)
		}
	case ConfigArray:
		if _, ok := val.([]any); !ok {
			return fmt.Errorf("pass config %q: expected array, got %T", key, val)
		}
	}
	return nil
}
