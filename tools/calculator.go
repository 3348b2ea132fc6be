package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Knetic/govaluate"
)

// Calculator evaluates arithmetic expressions such as "5 + 3" or
// "10 * (2 + 3)".
type Calculator struct{}

// Name implements Tool.
func (Calculator) Name() string { return "calculator" }

// Description implements Tool.
func (Calculator) Description() string {
	return "Evaluate a mathematical expression using basic arithmetic operations (+, -, *, /, %)."
}

// Execute implements Tool.
func (Calculator) Execute(ctx context.Context, input string) (string, error) {
	expr, err := govaluate.NewEvaluableExpression(input)
	if err != nil {
		return "", fmt.Errorf("invalid expression %q: %w", input, err)
	}

	result, err := expr.Evaluate(nil)
	if err != nil {
		return "", fmt.Errorf("could not evaluate %q: %w", input, err)
	}

	switch v := result.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}
