package setting

import (
	"log/slog"

	"sitemap-console/pkg/control"
)

// Alert and confirmation texts shown through the Prompter.
const (
	MsgValidationFailed    = "Input validation failed. Please check the highlighted fields."
	MsgAlreadySpecified    = "The value is already specified: "
	MsgRobotsConfirm       = "Adding the sitemap to robots.txt lets every crawler read it. Continue?"
	MsgRemoteAccessBlocked = "Remote access can only be enabled when the console is served over a secure connection."
	MsgEmptyQueryFields    = "No query fields are included, so every URL parameter will be dropped from the sitemap. Save anyway?"
)

// MetricsRecorder receives counters for setting activity. It is satisfied
// by the telemetry package and kept as an interface to avoid an import cycle.
type MetricsRecorder interface {
	SettingEdited(name string)
	InputRejected(name string)
	ValidationFailed(name string)
}

// InputRule is consulted after a user edit has been applied to a setting.
// Returning false reverts the edit.
type InputRule func(s *Setting, old, new string) bool

// SaveGuard is consulted before a dirty setting is written. Returning false
// discards the pending edit.
type SaveGuard func(s *Setting) bool

// Context carries what settings share within one console: the control
// binder, the prompter for the command in progress, and the rule tables.
type Context struct {
	Binder   *control.Binder
	Prompter control.Prompter
	Logger   *slog.Logger
	Metrics  MetricsRecorder

	// ReadonlyOnInherit locks inherited settings until the site customizes them.
	ReadonlyOnInherit bool

	// SecureTransport reports whether the console is reached over TLS or
	// loopback. Nil means insecure.
	SecureTransport func() bool

	// OnChange is called after every accepted user edit.
	OnChange func(s *Setting)

	rules  map[string][]InputRule
	guards map[string][]SaveGuard
}

// NewContext creates a context with an empty binder and a prompter that
// accepts every confirmation.
func NewContext(logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Binder:   control.NewBinder(),
		Prompter: control.AcceptAll{},
		Logger:   logger,
		rules:    make(map[string][]InputRule),
		guards:   make(map[string][]SaveGuard),
	}
}

// AddRule attaches rule to edits of the control with controlID.
func (c *Context) AddRule(controlID string, rule InputRule) {
	c.rules[controlID] = append(c.rules[controlID], rule)
}

// AddSaveGuard attaches guard to saves of settings named name.
func (c *Context) AddSaveGuard(name string, guard SaveGuard) {
	c.guards[name] = append(c.guards[name], guard)
}

func (c *Context) prompter() control.Prompter {
	if c.Prompter == nil {
		return control.AcceptAll{}
	}
	return c.Prompter
}

func (c *Context) secure() bool {
	return c.SecureTransport != nil && c.SecureTransport()
}

func (c *Context) allow(s *Setting, old, new string) bool {
	for _, rule := range c.rules[s.ctrl.ID()] {
		if !rule(s, old, new) {
			return false
		}
	}
	return true
}

func (c *Context) mayWrite(s *Setting) bool {
	for _, guard := range c.guards[s.name] {
		if !guard(s) {
			return false
		}
	}
	return true
}

func (c *Context) edited(s *Setting) {
	if c.Metrics != nil {
		c.Metrics.SettingEdited(s.name)
	}
	if c.OnChange != nil {
		c.OnChange(s)
	}
}

func (c *Context) rejected(s *Setting) {
	if c.Metrics != nil {
		c.Metrics.InputRejected(s.name)
	}
}

func (c *Context) invalid(s *Setting) {
	if c.Metrics != nil {
		c.Metrics.ValidationFailed(s.name)
	}
}
