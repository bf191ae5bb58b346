package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/rs/zerolog/log"

	"github.com/hookline/hookline/internal/domain"
)

// ParameterExtractor derives parameter specs from the logic text of a
// processing node. The default implementation is heuristic; a stricter
// structured-schema source can replace it without touching the analyzer's
// control flow.
type ParameterExtractor interface {
	Extract(code string) []domain.ParameterSpec
}

// Input object roots whose member accesses count as external input fields.
// Numeric indices are normalized to "[]" before matching, so
// items[0].json.body.x matches the last entry.
var inputRoots = map[string]bool{
	"payload":           true,
	"json":              true,
	"$json.body":        true,
	"items[].json.body": true,
}

// Method names that mark a field as collection-typed when called on it.
var arrayMethods = map[string]bool{
	"map":     true,
	"forEach": true,
	"filter":  true,
	"join":    true,
	"slice":   true,
}

// CodeParameterExtractor mines JavaScript code-node sources for references to
// external input fields. It parses the source with goja and walks the AST;
// when the source does not parse, it falls back to regex scanning so a
// syntactically broken node still yields its obvious parameters.
type CodeParameterExtractor struct{}

// NewCodeParameterExtractor creates the default extractor.
func NewCodeParameterExtractor() *CodeParameterExtractor {
	return &CodeParameterExtractor{}
}

// paramInfo accumulates what the walk learns about one referenced field.
type paramInfo struct {
	isArray      bool
	hasDefault   bool
	defaultValue any
}

// Extract returns the set of distinct input fields referenced by the code,
// in order of first appearance. A `field || <literal>` pattern marks the
// field optional with that literal as default; `.map(`/`.forEach(`/index
// access marks it as an array.
func (e *CodeParameterExtractor) Extract(code string) []domain.ParameterSpec {
	if strings.TrimSpace(code) == "" {
		return nil
	}

	program, err := parser.ParseFile(nil, "", code, 0)
	if err != nil {
		log.Debug().Err(err).Msg("code node did not parse, falling back to regex extraction")
		return e.extractWithRegex(code)
	}

	order := []string{}
	params := map[string]*paramInfo{}

	record := func(name string) *paramInfo {
		info, ok := params[name]
		if !ok {
			info = &paramInfo{}
			params[name] = info
			order = append(order, name)
		}
		return info
	}

	var walk func(node ast.Node)

	inspect := func(node ast.Node) {
		switch n := node.(type) {
		case *ast.DotExpression:
			// payload.field / items[0].json.body.field
			if parent, ok := flattenPath(n.Left); ok && inputRoots[parent] {
				record(n.Identifier.Name.String())
			}

			// field.map(...) etc. marks the field as an array
			if field, ok := inputFieldPath(n.Left); ok && arrayMethods[n.Identifier.Name.String()] {
				record(field).isArray = true
			}
		case *ast.BracketExpression:
			// payload["field"]
			if parent, ok := flattenPath(n.Left); ok && inputRoots[parent] {
				if lit, ok := n.Member.(*ast.StringLiteral); ok {
					record(lit.Value.String())
				}
			}

			// field[0] marks the field as an array
			if field, ok := inputFieldPath(n.Left); ok {
				record(field).isArray = true
			}
		case *ast.BinaryExpression:
			// field || <literal> supplies a fallback, so the field is optional
			if n.Operator.String() != "||" {
				break
			}

			field, ok := inputFieldPath(n.Left)
			if !ok {
				break
			}

			value, ok := literalValue(n.Right)
			if !ok {
				break
			}

			info := record(field)
			info.hasDefault = true
			info.defaultValue = value
		}
	}

	walk = func(node ast.Node) {
		if node == nil {
			return
		}

		inspect(node)

		switch n := node.(type) {
		case *ast.Program:
			for _, stmt := range n.Body {
				walk(stmt)
			}
		case *ast.ExpressionStatement:
			walk(n.Expression)
		case *ast.VariableStatement:
			for _, binding := range n.List {
				walk(binding)
			}
		case *ast.LexicalDeclaration:
			for _, binding := range n.List {
				walk(binding)
			}
		case *ast.Binding:
			walk(n.Initializer)
		case *ast.ReturnStatement:
			walk(n.Argument)
		case *ast.BlockStatement:
			for _, stmt := range n.List {
				walk(stmt)
			}
		case *ast.IfStatement:
			walk(n.Test)
			walk(n.Consequent)
			walk(n.Alternate)
		case *ast.BinaryExpression:
			walk(n.Left)
			walk(n.Right)
		case *ast.AssignExpression:
			walk(n.Left)
			walk(n.Right)
		case *ast.ConditionalExpression:
			walk(n.Test)
			walk(n.Consequent)
			walk(n.Alternate)
		case *ast.CallExpression:
			walk(n.Callee)
			for _, arg := range n.ArgumentList {
				walk(arg)
			}
		case *ast.DotExpression:
			walk(n.Left)
		case *ast.BracketExpression:
			walk(n.Left)
			walk(n.Member)
		case *ast.ArrayLiteral:
			for _, elem := range n.Value {
				walk(elem)
			}
		case *ast.ObjectLiteral:
			for _, prop := range n.Value {
				if keyed, ok := prop.(*ast.PropertyKeyed); ok {
					walk(keyed.Value)
				}
			}
		case *ast.TemplateLiteral:
			for _, expr := range n.Expressions {
				walk(expr)
			}
		case *ast.UnaryExpression:
			walk(n.Operand)
		case *ast.ArrowFunctionLiteral:
			walk(n.Body)
		case *ast.ExpressionBody:
			walk(n.Expression)
		}
	}

	walk(program)

	return buildSpecs(order, params)
}

// flattenPath renders a member-access chain as a dotted path, normalizing
// numeric indices ("items[0]" -> "items[]"). Returns false for chains that
// contain anything but identifiers, dots, and index accesses.
func flattenPath(expr ast.Expression) (string, bool) {
	switch n := expr.(type) {
	case *ast.Identifier:
		return n.Name.String(), true
	case *ast.DotExpression:
		left, ok := flattenPath(n.Left)
		if !ok {
			return "", false
		}
		return left + "." + n.Identifier.Name.String(), true
	case *ast.BracketExpression:
		left, ok := flattenPath(n.Left)
		if !ok {
			return "", false
		}
		if _, ok := n.Member.(*ast.NumberLiteral); ok {
			return left + "[]", true
		}
		return "", false
	default:
		return "", false
	}
}

// inputFieldPath reports whether expr is a direct access on an input root
// (e.g. payload.to) and returns the field name.
func inputFieldPath(expr ast.Expression) (string, bool) {
	dot, ok := expr.(*ast.DotExpression)
	if !ok {
		return "", false
	}

	parent, ok := flattenPath(dot.Left)
	if !ok || !inputRoots[parent] {
		return "", false
	}

	return dot.Identifier.Name.String(), true
}

// literalValue extracts the Go value of a literal expression.
func literalValue(expr ast.Expression) (any, bool) {
	switch n := expr.(type) {
	case *ast.StringLiteral:
		return n.Value.String(), true
	case *ast.NumberLiteral:
		return n.Value, true
	case *ast.BooleanLiteral:
		return n.Value, true
	case *ast.NullLiteral:
		return nil, true
	default:
		return nil, false
	}
}

func buildSpecs(order []string, params map[string]*paramInfo) []domain.ParameterSpec {
	specs := make([]domain.ParameterSpec, 0, len(order))

	for _, name := range order {
		info := params[name]

		spec := domain.ParameterSpec{
			Name:        name,
			Type:        domain.ParameterTypeString,
			Required:    !info.hasDefault,
			Description: fmt.Sprintf("Value of the '%s' input field used by the workflow", name),
		}

		if info.isArray {
			spec.Type = domain.ParameterTypeArray
		}

		if info.hasDefault {
			spec.Default = info.defaultValue
		}

		specs = append(specs, spec)
	}

	return specs
}

// Regex fallback patterns, kept close to what the AST walk recognizes.
var (
	bodyFieldPattern = regexp.MustCompile(`items\[0\]\.json\.body\.(\w+)`)
	rootFieldPattern = regexp.MustCompile(`\b(?:payload|json)\.(\w+)`)
	defaultPattern   = regexp.MustCompile(`\b(?:payload|json)\.(\w+)\s*\|\|\s*(?:"([^"]*)"|'([^']*)')`)
)

func (e *CodeParameterExtractor) extractWithRegex(code string) []domain.ParameterSpec {
	order := []string{}
	params := map[string]*paramInfo{}

	record := func(name string) *paramInfo {
		info, ok := params[name]
		if !ok {
			info = &paramInfo{}
			params[name] = info
			order = append(order, name)
		}
		return info
	}

	for _, match := range bodyFieldPattern.FindAllStringSubmatch(code, -1) {
		record(match[1])
	}

	for _, match := range rootFieldPattern.FindAllStringSubmatch(code, -1) {
		record(match[1])
	}

	for _, match := range defaultPattern.FindAllStringSubmatch(code, -1) {
		info := record(match[1])
		info.hasDefault = true
		if match[2] != "" {
			info.defaultValue = match[2]
		} else {
			info.defaultValue = match[3]
		}
	}

	for name, info := range params {
		if regexp.MustCompile(regexp.QuoteMeta(name) + `\.(?:map|forEach|filter)\(`).MatchString(code) ||
			regexp.MustCompile(regexp.QuoteMeta(name) + `\[`).MatchString(code) {
			info.isArray = true
		}
	}

	return buildSpecs(order, params)
}
