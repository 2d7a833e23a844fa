package workflow

import (
	"reflect"
	"strings"
	"sync"
)

// fieldMeta is one entry in a class's observed-field registry: the exported
// name the field is recorded under in a snapshot, its hidden/redact
// modifiers, and the field's index path (supporting fields promoted through
// embedding, per reflect.Value.FieldByIndex).
type fieldMeta struct {
	name   string
	hidden bool
	redact bool
	index  []int
}

// observedFields is the class-level registry the spec calls for: a map from
// workflow class to {field name -> hidden/redact}. Go has no prototype to
// hang metadata off, so the registry is keyed by reflect.Type of the
// concrete workflow struct (the type behind (*Workflow).self) and populated
// lazily on first snapshot of that type — matching "per-class, not
// per-instance" exactly, since struct tags are fixed at compile time and
// never vary between instances of the same type.
var (
	observedFieldsMu sync.RWMutex
	observedFields   = map[reflect.Type][]fieldMeta{}
)

var workflowType = reflect.TypeOf(Workflow{})

// fieldsFor returns the observed-field metadata for t, computing and caching
// it on first use. Embedded structs are walked so a subclass inherits its
// base struct's entries, the same way field promotion lets a Go struct
// inherit an embedded struct's methods. The embedded *Workflow handle itself
// is skipped — it is plumbing, never observed domain state.
func fieldsFor(t reflect.Type) []fieldMeta {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	observedFieldsMu.RLock()
	cached, ok := observedFields[t]
	observedFieldsMu.RUnlock()
	if ok {
		return cached
	}

	fields := scanFields(t, nil)

	observedFieldsMu.Lock()
	observedFields[t] = fields
	observedFieldsMu.Unlock()
	return fields
}

func scanFields(t reflect.Type, prefix []int) []fieldMeta {
	if t.Kind() != reflect.Struct {
		return nil
	}

	var fields []fieldMeta
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		path := append(append([]int{}, prefix...), i)

		if sf.Anonymous {
			embedded := sf.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct && embedded != workflowType {
				fields = append(fields, scanFields(embedded, path)...)
			}
			continue
		}

		tag, ok := sf.Tag.Lookup("observed")
		if !ok {
			continue
		}
		name, hidden, redact := parseObservedTag(tag, sf.Name)
		fields = append(fields, fieldMeta{name: name, hidden: hidden, redact: redact, index: path})
	}
	return fields
}

func parseObservedTag(tag, fallbackName string) (name string, hidden bool, redact bool) {
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	if name == "" || name == "-" {
		name = fallbackName
	}
	for _, mod := range parts[1:] {
		switch strings.TrimSpace(mod) {
		case "hidden":
			hidden = true
		case "redact":
			redact = true
		}
	}
	return name, hidden, redact
}

// snapshotFields assembles the observed-state record for self: for each
// recognized field, hidden fields are skipped, redacted fields are replaced
// with the literal string "***", and everything else is read verbatim.
func snapshotFields(self any) ObservedState {
	if self == nil {
		return ObservedState{}
	}
	v := reflect.Indirect(reflect.ValueOf(self))
	if v.Kind() != reflect.Struct {
		return ObservedState{}
	}

	meta := fieldsFor(reflect.TypeOf(self))
	record := make(ObservedState, len(meta))
	for _, m := range meta {
		if m.hidden {
			continue
		}
		if m.redact {
			record[m.name] = "***"
			continue
		}
		fv := v.FieldByIndex(m.index)
		record[m.name] = fv.Interface()
	}
	return record
}
