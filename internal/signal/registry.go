package signal

import "sort"

// Configuration table field names for declarative receiver records.
const (
	fieldClass    = "class"
	fieldFunction = "function"
	fieldFilename = "filename"
	fieldFilepath = "filepath"
	fieldSender   = "sender"
)

// Registry maps signal names to ordered receiver descriptor sequences.
// It is built once from a configuration table and never mutated afterward,
// so it is safe for concurrent reads.
type Registry struct {
	receivers map[string][]Descriptor
}

// BuildRegistry normalizes a raw configuration table into a Registry.
//
// Each raw entry is either an ordered sequence of receiver records or one
// bare record. A mapping that itself contains a "function" key is a single
// declarative record; anything else is treated as a sequence. A nil table
// produces an empty registry; that is not an error.
//
// No validation beyond shape detection happens here. Field-level checks
// (required fields present, module file exists) are deferred to resolution
// time so that modules that never fire are never touched.
func BuildRegistry(table map[string]any) *Registry {
	r := &Registry{receivers: make(map[string][]Descriptor, len(table))}

	for name, raw := range table {
		if name == "" {
			continue
		}
		if descs := normalizeEntry(raw); len(descs) > 0 {
			r.receivers[name] = descs
		}
	}

	return r
}

// Receivers returns the ordered descriptor sequence for a signal.
// The returned slice must not be mutated.
func (r *Registry) Receivers(signal string) []Descriptor {
	return r.receivers[signal]
}

// Has reports whether any receivers are registered for the signal.
func (r *Registry) Has(signal string) bool {
	return len(r.receivers[signal]) > 0
}

// Count returns the number of signals with registered receivers.
func (r *Registry) Count() int {
	return len(r.receivers)
}

// Signals returns all registered signal names, sorted.
func (r *Registry) Signals() []string {
	names := make([]string, 0, len(r.receivers))
	for name := range r.receivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalizeEntry converts one raw configuration entry into an ordered
// descriptor sequence.
func normalizeEntry(raw any) []Descriptor {
	switch v := raw.(type) {
	case nil:
		return nil

	case map[string]any:
		// A mapping with a "function" key is one bare declarative record.
		if _, ok := v[fieldFunction]; ok {
			return []Descriptor{ModuleReceiver(parseRecord(v))}
		}
		return nil

	case []any:
		descs := make([]Descriptor, 0, len(v))
		for _, elem := range v {
			if d, ok := normalizeElement(elem); ok {
				descs = append(descs, d)
			}
		}
		return descs

	case []map[string]any:
		// TOML arrays of tables decode to this shape.
		descs := make([]Descriptor, 0, len(v))
		for _, m := range v {
			descs = append(descs, ModuleReceiver(parseRecord(m)))
		}
		return descs

	case []Descriptor:
		return v

	default:
		// A bare direct receiver is a one-element sequence.
		if d, ok := normalizeElement(raw); ok {
			return []Descriptor{d}
		}
		return nil
	}
}

// normalizeElement converts one sequence element into a descriptor.
// Unrecognized shapes are dropped.
func normalizeElement(elem any) (Descriptor, bool) {
	switch v := elem.(type) {
	case Descriptor:
		return v, true
	case ReceiverFunc:
		return FuncReceiver(v), true
	case func(sender, params any):
		return FuncReceiver(v), true
	case Bound:
		return Descriptor{Kind: KindBound, Bound: v}, true
	case Declarative:
		return ModuleReceiver(v), true
	case map[string]any:
		return ModuleReceiver(parseRecord(v)), true
	default:
		return Descriptor{}, false
	}
}

// parseRecord extracts the recognized declarative fields from a mapping.
// Missing or non-string fields become empty; validation is the
// dispatcher's job.
func parseRecord(m map[string]any) Declarative {
	return Declarative{
		Class:    stringField(m, fieldClass),
		Function: stringField(m, fieldFunction),
		Filename: stringField(m, fieldFilename),
		Filepath: stringField(m, fieldFilepath),
		Sender:   stringField(m, fieldSender),
	}
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
