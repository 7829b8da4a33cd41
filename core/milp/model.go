// Package milp defines a mixed-integer linear model and the engine interface
// used to solve it. Models are built column by column: all variables are
// nonnegative, binaries additionally carry an implicit upper bound of one.
package milp

import (
	"errors"
	"fmt"
)

// ErrNoSolution reports that the engine found no feasible assignment within
// its budget. Callers treat this as a fallback trigger, not a fault.
var ErrNoSolution = errors.New("milp: no feasible solution within budget")

// ErrUnavailable reports that no solve engine is present.
var ErrUnavailable = errors.New("milp: engine unavailable")

// Term is one coefficient in a linear expression.
type Term struct {
	Var  int
	Coef float64
}

// Constraint is a linear row: sum of terms compared to RHS.
type Constraint struct {
	Terms []Term
	RHS   float64
}

// Model is a minimization MILP. Zero value is an empty model.
type Model struct {
	obj    []float64
	binary []bool
	upper  []float64
	lessEq []Constraint
	equal  []Constraint
}

// AddBinary adds a {0,1} variable and returns its index.
func (m *Model) AddBinary() int {
	m.obj = append(m.obj, 0)
	m.binary = append(m.binary, true)
	m.upper = append(m.upper, 1)
	return len(m.obj) - 1
}

// AddContinuous adds a continuous variable on [0, upper] and returns its index.
func (m *Model) AddContinuous(upper float64) int {
	m.obj = append(m.obj, 0)
	m.binary = append(m.binary, false)
	m.upper = append(m.upper, upper)
	return len(m.obj) - 1
}

// SetObjective sets the minimization coefficient for a variable.
func (m *Model) SetObjective(v int, coef float64) {
	m.checkVar(v)
	m.obj[v] = coef
}

// AddLessEq adds the constraint sum(terms) <= rhs.
func (m *Model) AddLessEq(rhs float64, terms ...Term) {
	m.checkTerms(terms)
	m.lessEq = append(m.lessEq, Constraint{Terms: terms, RHS: rhs})
}

// AddEq adds the constraint sum(terms) = rhs.
func (m *Model) AddEq(rhs float64, terms ...Term) {
	m.checkTerms(terms)
	m.equal = append(m.equal, Constraint{Terms: terms, RHS: rhs})
}

// NumVars returns the number of variables added so far.
func (m *Model) NumVars() int { return len(m.obj) }

// NumConstraints returns the total constraint count (both senses).
func (m *Model) NumConstraints() int { return len(m.lessEq) + len(m.equal) }

// Objective returns the objective coefficients. The slice is shared, not copied.
func (m *Model) Objective() []float64 { return m.obj }

// IsBinary reports whether variable v is binary.
func (m *Model) IsBinary(v int) bool {
	m.checkVar(v)
	return m.binary[v]
}

// Upper returns the upper bound of variable v.
func (m *Model) Upper(v int) float64 {
	m.checkVar(v)
	return m.upper[v]
}

// LessEq returns the inequality rows. Shared, not copied.
func (m *Model) LessEq() []Constraint { return m.lessEq }

// Equal returns the equality rows. Shared, not copied.
func (m *Model) Equal() []Constraint { return m.equal }

// Eval computes the objective value for an assignment.
func (m *Model) Eval(x []float64) float64 {
	var sum float64
	for i, c := range m.obj {
		sum += c * x[i]
	}
	return sum
}

func (m *Model) checkVar(v int) {
	if v < 0 || v >= len(m.obj) {
		panic(fmt.Sprintf("milp: variable %d out of range [0,%d)", v, len(m.obj)))
	}
}

func (m *Model) checkTerms(terms []Term) {
	for _, t := range terms {
		m.checkVar(t.Var)
	}
}
