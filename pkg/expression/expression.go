package expression

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/autobrr/animelink/pkg/listing"
)

// SourceEntry is the environment ignore expressions are evaluated against.
type SourceEntry struct {
	Name   string
	Ext    string
	IsDir  bool
	IsFile bool
	Size   int64
}

type CompiledExpression struct {
	Program *vm.Program
	Text    string
}

// Compile compiles every expression, which must evaluate to a bool.
func Compile(expressions []string) ([]CompiledExpression, error) {
	compiled := make([]CompiledExpression, 0, len(expressions))

	for _, text := range expressions {
		program, err := expr.Compile(text, expr.Env(SourceEntry{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile expression %q: %w", text, err)
		}

		compiled = append(compiled, CompiledExpression{
			Program: program,
			Text:    text,
		})
	}

	return compiled, nil
}

func NewSourceEntry(e listing.Entry) SourceEntry {
	return SourceEntry{
		Name:   e.Name,
		Ext:    strings.ToLower(filepath.Ext(e.Name)),
		IsDir:  e.IsDir,
		IsFile: e.IsFile,
		Size:   e.Size,
	}
}

// CheckSourceSingleMatch reports whether any expression matches e, along with
// the text of the first matching expression.
func CheckSourceSingleMatch(e listing.Entry, expressions []CompiledExpression) (bool, string, error) {
	env := NewSourceEntry(e)

	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, env)
		if err != nil {
			return false, "", fmt.Errorf("check expression: %w", err)
		}

		expResult, ok := result.(bool)
		if !ok {
			return false, "", fmt.Errorf("type assert expression result: %T", result)
		}

		if expResult {
			return true, expression.Text, nil
		}
	}

	return false, "", nil
}
