package native

import (
	"fmt"
	"strings"
)

// MethodFunc is the Go side of a registered native method. self is the
// receiving instance and args holds the selector's arguments in order.
type MethodFunc func(self ID, args []ID) ID

// Result is the native return type of a method.
type Result int

const (
	// ResultVoid methods return nothing; the MethodFunc result is ignored.
	ResultVoid Result = iota
	// ResultObject methods return the MethodFunc result as an object.
	ResultObject
	// ResultBool methods return BOOL: YES when the MethodFunc result is
	// non-zero.
	ResultBool
)

func (r Result) String() string {
	switch r {
	case ResultVoid:
		return "void"
	case ResultObject:
		return "object"
	case ResultBool:
		return "bool"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Method binds a selector to its implementation.
type Method struct {
	Selector Selector
	Returns  Result
	Fn       MethodFunc
}

// ClassSpec names what a class needs before any runtime lookups happen.
type ClassSpec struct {
	Name       string
	Superclass string
	Protocols  []string
	Methods    []Method
	Slots      []string
}

// ClassDescriptor is a fully resolved class definition ready for
// registration: superclass and protocols are runtime references.
type ClassDescriptor struct {
	Name       string
	Superclass Class
	Protocols  []Protocol
	Methods    []Method
	Slots      []string
}

// Method returns the implementation bound to sel, if any.
func (d *ClassDescriptor) Method(sel Selector) (Method, bool) {
	for _, m := range d.Methods {
		if m.Selector == sel {
			return m, true
		}
	}
	return Method{}, false
}

// Validate checks the spec for problems that would make registration fail
// in any runtime.
func (s ClassSpec) Validate() error {
	var problems []string
	if s.Name == "" {
		problems = append(problems, "class name is empty")
	}
	if s.Superclass == "" {
		problems = append(problems, "superclass name is empty")
	}

	seen := make(map[Selector]bool, len(s.Methods))
	for _, m := range s.Methods {
		if m.Selector == "" {
			problems = append(problems, "method with empty selector")
			continue
		}
		if seen[m.Selector] {
			problems = append(problems, fmt.Sprintf("duplicate selector %q", m.Selector))
		}
		seen[m.Selector] = true
		if m.Fn == nil {
			problems = append(problems, fmt.Sprintf("selector %q has no implementation", m.Selector))
		}
		if m.Returns < ResultVoid || m.Returns > ResultBool {
			problems = append(problems, fmt.Sprintf("selector %q has unknown return type %s", m.Selector, m.Returns))
		}
	}

	slots := make(map[string]bool, len(s.Slots))
	for _, name := range s.Slots {
		if slots[name] {
			problems = append(problems, fmt.Sprintf("duplicate slot %q", name))
		}
		slots[name] = true
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid class spec %q: %s", s.Name, strings.Join(problems, "; "))
	}
	return nil
}
