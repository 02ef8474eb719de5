package fragment

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/burstplan/internal/ctxlog"
	"github.com/specialistvlad/burstplan/internal/params"
)

// Validate renders every fragment once with probe values bound to its
// required placeholders and reports all fragments that fail or produce an
// unusable task. It catches templates that read placeholders they do not
// declare and bodies that come out empty.
func (l *Library) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, f := range l.Fragments() {
		task, err := f.Render(ProbeSet(f.required...))
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if !task.Interpreter.Valid() {
			errs = append(errs, fmt.Sprintf("fragment %q: unknown interpreter %q", f.name, task.Interpreter))
			continue
		}
		if task.Interpreter.RequiresBody() && strings.TrimSpace(task.Body) == "" {
			errs = append(errs, fmt.Sprintf("fragment %q: %s task renders an empty body", f.name, task.Interpreter))
		}
		logger.Debug("Fragment validated.", "name", f.name, "interpreter", task.Interpreter)
	}

	if len(errs) > 0 {
		return fmt.Errorf("fragment library validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ProbeSet binds each name to a representative value: the backend
// placeholder to mariadb10, *_index and *_count to 1, everything else to
// its own name.
func ProbeSet(names ...string) params.Set {
	values := make(map[string]params.Value, len(names))
	for _, name := range names {
		switch {
		case name == params.BackendKey:
			values[name] = params.BackendValue(params.BackendMariaDB10)
		case strings.HasSuffix(name, "_index"), strings.HasSuffix(name, "_count"):
			values[name] = params.Int(1)
		default:
			values[name] = params.String(name)
		}
	}
	return params.NewSet(values)
}
