package services

// AccountNotifier is told about account lifecycle events. Calls never
// block on delivery and never fail: implementations log their own errors.
type AccountNotifier interface {
	Welcome(name, email string)
	Farewell(name, email string)
}

type nopNotifier struct{}

func (nopNotifier) Welcome(string, string)  {}
func (nopNotifier) Farewell(string, string) {}
