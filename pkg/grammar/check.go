package grammar

import (
	"errors"

	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

// CheckSignature verifies that a handler signature only asks for data the
// route declares.
func CheckSignature(spec route.Spec, sig route.Signature) error {
	if sig.Has(route.ParamPath) && len(spec.Path.Captures()) == 0 {
		return errors.New("path parameter requires at least one capture in the route path")
	}
	if sig.Has(route.ParamQuery, route.ParamQueryOptional) && !spec.HasQuery {
		return errors.New("query string parameter requires a `?` clause in the route line")
	}
	if sig.Has(route.ParamForm, route.ParamFormOptional) && !spec.HasForm {
		return errors.New("post form parameter requires a `form` instruction")
	}
	return nil
}
