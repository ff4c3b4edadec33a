package setting

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"sitemap-console/pkg/access"
	"sitemap-console/pkg/control"
	"sitemap-console/pkg/listener"
)

// AccessLink locks a group while the speaker's value equals ReadonlyWhen,
// e.g. a service's settings while the service is disabled. The speaker
// itself stays editable.
type AccessLink struct {
	Group        *Group
	Reason       string
	ReadonlyWhen string
}

// NewServiceLink locks g while its enabled setting is off.
func NewServiceLink(g *Group) *AccessLink {
	return &AccessLink{Group: g, Reason: access.ReasonService, ReadonlyWhen: "false"}
}

// Update implements listener.Listener.
func (a *AccessLink) Update(sp listener.Speaker) {
	a.Group.SetAccessExcept(sp.Value() == a.ReadonlyWhen, a.Reason, sp.Name())
}

// BannerWhenEmpty shows banner while the speaking list setting has no
// active items.
func BannerWhenEmpty(banner *control.Banner) listener.Listener {
	return listener.Func(func(sp listener.Speaker) {
		s, ok := sp.(*Setting)
		if !ok || s.list == nil {
			return
		}
		if s.list.Active() == 0 {
			banner.Show()
		} else {
			banner.Hide()
		}
	})
}

// Derived is a read-only display computed from other settings with an
// expression, e.g. the memory a site's URL limit will need. Numeric
// inputs are exposed to the expression as numbers.
type Derived struct {
	name    string
	source  string
	program *vm.Program
	ctrl    control.Control
	env     map[string]any
	value   string
	err     error
	logger  *slog.Logger

	listeners listener.Manager
}

// NewDerived compiles expression. ctrl may be nil.
func NewDerived(name, expression string, ctrl control.Control, logger *slog.Logger) (*Derived, error) {
	program, err := expr.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("derived %q: %w", name, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Derived{
		name:    name,
		source:  expression,
		program: program,
		ctrl:    ctrl,
		env:     make(map[string]any),
		logger:  logger,
	}, nil
}

// Name returns the display name.
func (d *Derived) Name() string { return d.name }

// Value returns the last computed value, or "" after an evaluation error.
func (d *Derived) Value() string { return d.value }

// Err returns the last evaluation error.
func (d *Derived) Err() error { return d.err }

// AddListener registers l to be informed when the computed value changes.
func (d *Derived) AddListener(l listener.Listener) { d.listeners.Register(l) }

// Watch registers d with each setting and seeds the environment from
// their current values.
func (d *Derived) Watch(settings ...*Setting) {
	for _, s := range settings {
		s.AddListener(d)
		d.env[s.Name()] = envValue(s.Value())
	}
	d.eval()
}

// Set stores a constant input, such as a host limit.
func (d *Derived) Set(name string, v any) {
	d.env[name] = v
	d.eval()
}

// Update implements listener.Listener.
func (d *Derived) Update(sp listener.Speaker) {
	d.env[sp.Name()] = envValue(sp.Value())
	d.eval()
}

func (d *Derived) eval() {
	out, err := expr.Run(d.program, d.env)
	prev := d.value
	if err != nil {
		d.err = err
		d.value = ""
		d.logger.Debug("derived value not computable", "name", d.name, "expr", d.source, "error", err)
	} else {
		d.err = nil
		d.value = formatAny(out)
	}
	if d.ctrl != nil {
		if err := d.ctrl.SetValue(d.value); err != nil {
			d.logger.Warn("control rejected derived value", "name", d.name, "error", err)
		}
	}
	if d.value != prev {
		d.listeners.Inform(d)
	}
}

func envValue(v string) any {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func formatAny(v any) string {
	switch n := v.(type) {
	case float64:
		return formatNumber(n)
	case float32:
		return formatNumber(float64(n))
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(n)
	}
}
