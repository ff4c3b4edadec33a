package control

// Prompter shows modal dialogs. Confirm blocks until the operator answers.
type Prompter interface {
	Confirm(message string) bool
	Alert(message string)
}

// AcceptAll answers yes to every confirmation and drops alerts.
type AcceptAll struct{}

func (AcceptAll) Confirm(string) bool { return true }
func (AcceptAll) Alert(string)        {}

// DeclineAll answers no to every confirmation and drops alerts.
type DeclineAll struct{}

func (DeclineAll) Confirm(string) bool { return false }
func (DeclineAll) Alert(string)        {}

// Scripted answers confirmations from a queue and records every message.
// When the queue is empty it answers Default.
type Scripted struct {
	Answers  []bool
	Default  bool
	Confirms []string
	Alerts   []string
}

// Confirm records message and pops the next answer.
func (s *Scripted) Confirm(message string) bool {
	s.Confirms = append(s.Confirms, message)
	if len(s.Answers) == 0 {
		return s.Default
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer
}

// Alert records message.
func (s *Scripted) Alert(message string) {
	s.Alerts = append(s.Alerts, message)
}
