package serialize

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

// documentSchema constrains the shape of the top-level wire document.
// Semantic checks (id ranges, repr exclusivity, attr typing) live in
// the loader; the schema rejects structurally malformed documents
// early with a readable error.
const documentSchema = `
#Node: {
	type_key: string
	repr_str?: string
	repr_b64?: string
	attrs?: {[string]: string}
	keys?: [...string]
	data?: [...int & >=0]
}

root: int & >=0
nodes: [...#Node]
b64ndarrays?: [...string]
attrs?: {[string]: string}
`

// ValidateDocument checks a wire document against the format schema
// without constructing any values. Returns a MalformedInput error
// describing the first violation.
func ValidateDocument(text string) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(documentSchema)
	if err := schema.Err(); err != nil {
		return errf(ErrCodeMalformedInput, -1, "", "compile schema: %v", err)
	}
	expr, err := cuejson.Extract("document.json", []byte(text))
	if err != nil {
		return errf(ErrCodeMalformedInput, -1, "", "parse document: %v", err)
	}
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return errf(ErrCodeMalformedInput, -1, "", "parse document: %v", err)
	}
	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return errf(ErrCodeMalformedInput, -1, "", "document does not match wire format: %v", err)
	}
	return nil
}
