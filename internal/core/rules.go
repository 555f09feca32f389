package core

import "relieftrack/pkg/domain"

// DefaultRules returns the validation rules every mutation passes before it
// reaches the store.
func DefaultRules() []domain.Rule {
	return []domain.Rule{
		RequestStatusValueRule(),
		ImmutableFieldsRule(),
		TerminalRevertRule(),
	}
}

// NewDefaultEngine builds a rules engine with the default rule set.
func NewDefaultEngine() *RulesEngine {
	return domain.NewRulesEngine(DefaultRules()...)
}
