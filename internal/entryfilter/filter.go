// Package entryfilter evaluates CEL expressions against persisted log
// entries, e.g. `severity >= 3 && subsystem == "SPI"`.
package entryfilter

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/gourdian25/gourdianringlog/pebblesink"
)

// Filter wraps a compiled CEL program. The zero Filter matches everything.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// New compiles expr. An empty expression yields a Filter that matches
// every entry. The expression must evaluate to a bool and may reference:
//
//	level      string  level name, "" for line-only entries
//	severity   int     numeric level (DEBUG=0 .. CRITICAL=4), -1 if unknown
//	subsystem  string
//	text       string  message text
//	line       string  rendered line
//	ts         int     timestamp in seconds, 0 when unstamped
//	stamped    bool
//	session    string  boot session UUID
//	seq        int     sequence within the session
func New(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("level", cel.StringType),
		cel.Variable("severity", cel.IntType),
		cel.Variable("subsystem", cel.StringType),
		cel.Variable("text", cel.StringType),
		cel.Variable("line", cel.StringType),
		cel.Variable("ts", cel.IntType),
		cel.Variable("stamped", cel.BoolType),
		cel.Variable("session", cel.StringType),
		cel.Variable("seq", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return Filter{}, fmt.Errorf("filter must evaluate to bool, got %s", ast.OutputType())
	}

	prog, err := env.Program(ast)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Match evaluates the filter against e.
func (f Filter) Match(e pebblesink.Entry) (bool, error) {
	if !f.enabled {
		return true, nil
	}

	out, _, err := f.prog.Eval(map[string]interface{}{
		"level":     e.Level,
		"severity":  int64(e.Severity()),
		"subsystem": e.Subsystem,
		"text":      e.Text,
		"line":      e.Line,
		"ts":        e.Timestamp,
		"stamped":   e.Stamped,
		"session":   e.Session,
		"seq":       int64(e.Seq),
	})
	if err != nil {
		return false, err
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, want bool", out.Value())
	}
	return matched, nil
}
