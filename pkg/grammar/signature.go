package grammar

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/rutas/pkg/lexer"
	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

// SignatureSource is the raw text of a handler's parameter list (without
// the parentheses) and result list, with their source positions.
type SignatureSource struct {
	// Handler is the function name; Path/Query/Form types are named after it
	Handler string
	Params  lexer.Span
	Results lexer.Span
	// Imports maps package qualifiers used in the file to import paths
	Imports map[string]string
}

// ParseSignature parses a handler's parameters and result.
func ParseSignature(src SignatureSource) (route.Signature, error) {
	var sig route.Signature

	params, err := parseParams(src)
	if err != nil {
		return sig, err
	}
	sig.Params = params

	ret, err := parseResults(src.Results)
	if err != nil {
		return sig, err
	}
	sig.Return = ret
	return sig, nil
}

func parseParams(src SignatureSource) ([]route.Param, error) {
	c, err := lexer.Parse(src.Params.Text, src.Params.Pos)
	if err != nil {
		return nil, err
	}

	var params []route.Param
	seen := make(map[string]bool)
	for !c.AtEnd() {
		pos := c.Pos()
		var name string
		switch c.Class() {
		case lexer.ClassIdent:
			name, _ = c.TakeIdent()
		case lexer.ClassUnderscore:
			name = "_"
			c.Step()
		default:
			return nil, c.Error("expected parameter name")
		}
		if c.Is(lexer.ClassComma) {
			return nil, c.Errorf("grouped parameters are not supported, give `%s` its own type", name)
		}
		if c.AtEnd() {
			return nil, c.Errorf("expected type for parameter `%s`", name)
		}

		typePos := c.Pos()
		typeExpr, err := parseParamType(c)
		if err != nil {
			return nil, err
		}
		param := route.Param{Name: name, Type: typeExpr}
		kind, err := classifyParam(src.Handler, typeExpr)
		if err != nil {
			return nil, lexer.Errorf(typePos, "%s", err)
		}
		param.Kind = kind
		if q := param.Qualifier(); q != "" {
			param.Import = src.Imports[q]
		}

		if kind != route.ParamOptional {
			key := kind.String()
			if seen[key] {
				return nil, lexer.Errorf(pos, "%s parameter already exists", key)
			}
			seen[key] = true
		}
		params = append(params, param)

		if c.AtEnd() {
			break
		}
		if err := c.TakePunct(lexer.ClassComma); err != nil {
			return nil, c.Error("expected `,` or end of input")
		}
	}
	return params, nil
}

func parseParamType(c *lexer.Cursor) (string, error) {
	pointer := false
	if c.Is(lexer.ClassAsterisk) {
		pointer = true
		c.Step()
	}
	if !c.Is(lexer.ClassIdent) {
		return "", c.Error("unsupported parameter type: expected a named type or a pointer to one")
	}
	path, err := c.TakeTypePath()
	if err != nil {
		return "", err
	}
	if strings.Count(path, ".") > 1 {
		return "", c.Errorf("invalid type `%s`", path)
	}
	if !c.AtEnd() && !c.Is(lexer.ClassComma) {
		return "", c.Errorf("unsupported parameter type after `%s`", path)
	}
	if pointer {
		return "*" + path, nil
	}
	return path, nil
}

// classifyParam maps a type expression to a parameter kind.
func classifyParam(handler, typeExpr string) (route.ParamKind, error) {
	pointer := strings.HasPrefix(typeExpr, "*")
	t := strings.TrimPrefix(typeExpr, "*")
	qualifier, base := "", t
	if i := strings.IndexByte(t, '.'); i >= 0 {
		qualifier, base = t[:i], t[i+1:]
	}

	switch {
	case qualifier == "context" && base == "Context":
		if pointer {
			return 0, fmt.Errorf("`%s` must not be a pointer", t)
		}
		return route.ParamContext, nil

	case base == "App":
		return route.ParamApp, nil

	case base == "Document" || base == "DB" || base == "Cache" || base == "Request":
		if pointer {
			return 0, fmt.Errorf("`%s` must not be a pointer", t)
		}
		return map[string]route.ParamKind{
			"Document": route.ParamDocument,
			"DB":       route.ParamDatabase,
			"Cache":    route.ParamCache,
			"Request":  route.ParamRequest,
		}[base], nil

	case qualifier == "" && base == handler+"Path":
		if pointer {
			return 0, fmt.Errorf("`%s` must not be a pointer", t)
		}
		return route.ParamPath, nil

	case qualifier == "" && base == handler+"Query":
		if pointer {
			return route.ParamQueryOptional, nil
		}
		return route.ParamQuery, nil

	case qualifier == "" && base == handler+"Form":
		if pointer {
			return route.ParamFormOptional, nil
		}
		return route.ParamForm, nil

	case pointer:
		return route.ParamOptional, nil
	}

	return 0, fmt.Errorf(
		"unsupported parameter type `%s`: expected context.Context, App, Document, DB, Cache, Request, %sPath, %sQuery, %sForm, or a pointer",
		typeExpr, handler, handler, handler)
}

const errResult = "expected `(rutas.Response, error)`, or `rutas.Response`"

func parseResults(span lexer.Span) (route.ReturnShape, error) {
	c, err := lexer.Parse(span.Text, span.Pos)
	if err != nil {
		return 0, err
	}
	if c.AtEnd() {
		return 0, c.Error("missing return type: " + errResult)
	}

	if c.Is(lexer.ClassParenGroup) {
		sub, err := c.TakeParenGroup()
		if err != nil {
			return 0, err
		}
		if err := c.TakeEnd(); err != nil {
			return 0, err
		}
		if err := takeResponseType(sub); err != nil {
			return 0, err
		}
		if sub.AtEnd() {
			return route.ReturnBare, nil
		}
		if err := sub.TakePunct(lexer.ClassComma); err != nil {
			return 0, sub.Error(errResult)
		}
		if !sub.IsIdent("error") {
			return 0, sub.Error("the second result must be `error`")
		}
		sub.Step()
		if err := sub.TakeEnd(); err != nil {
			return 0, sub.Error("expected end of result list")
		}
		return route.ReturnFallible, nil
	}

	if err := takeResponseType(c); err != nil {
		return 0, err
	}
	if err := c.TakeEnd(); err != nil {
		return 0, c.Error("expected end of result type")
	}
	return route.ReturnBare, nil
}

func takeResponseType(c *lexer.Cursor) error {
	pos := c.Pos()
	path, err := c.TakeTypePath()
	if err != nil {
		return lexer.Errorf(pos, "%s", errResult)
	}
	if path != "Response" && !strings.HasSuffix(path, ".Response") {
		return lexer.Errorf(pos, "%s, not: `%s`", errResult, path)
	}
	return nil
}
