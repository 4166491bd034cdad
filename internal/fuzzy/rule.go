package fuzzy

import (
	"fmt"
	"strings"
)

// Clause is a single "variable is term" proposition.
type Clause struct {
	Variable string
	Term     string
}

// Is builds a clause.
func Is(variable, term string) Clause {
	return Clause{Variable: variable, Term: term}
}

// Rule maps a conjunction of clauses to an output term.
type Rule struct {
	If   []Clause
	Then string
}

// When starts a rule from its antecedent clauses.
func When(clauses ...Clause) Rule {
	return Rule{If: clauses}
}

// Conclude sets the consequent output term.
func (r Rule) Conclude(term string) Rule {
	r.Then = term
	return r
}

func (r Rule) String() string {
	parts := make([]string, len(r.If))
	for i, c := range r.If {
		parts[i] = c.Variable + "=" + c.Term
	}
	return fmt.Sprintf("%s -> %s", strings.Join(parts, " AND "), r.Then)
}

// compiledRule references variables and terms by index.
type compiledRule struct {
	clauses []compiledClause
	output  int
}

type compiledClause struct {
	variable int
	term     int
}
