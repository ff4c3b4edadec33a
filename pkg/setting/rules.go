package setting

// ConfirmOnEnable asks the operator to confirm msg before a boolean setting
// is switched on. Declining reverts the edit.
func ConfirmOnEnable(msg string) InputRule {
	return func(s *Setting, old, new string) bool {
		if !parseBool(new) || parseBool(old) {
			return true
		}
		return s.ctx.prompter().Confirm(msg)
	}
}

// RequireSecureTransport refuses to switch a boolean setting on unless the
// console is served securely. The operator is told why with msg.
func RequireSecureTransport(msg string) InputRule {
	return func(s *Setting, _, new string) bool {
		if !parseBool(new) || s.ctx.secure() {
			return true
		}
		s.ctx.prompter().Alert(msg)
		return false
	}
}

// ConfirmWhenEmpty asks the operator to confirm msg before an own list
// value with no active items is saved.
func ConfirmWhenEmpty(msg string) SaveGuard {
	return func(s *Setting) bool {
		if s.list == nil || s.Inherited() || s.list.Active() > 0 {
			return true
		}
		return s.ctx.prompter().Confirm(msg)
	}
}
