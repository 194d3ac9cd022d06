package workflow

import "strings"

// evaluateExpression is the minimal expression evaluator backing property
// providers. The full expression-evaluation engine is an external
// collaborator per spec §1's "out of scope" list; this is the small
// built-in interpreter exercised by the demonstration activity catalog and
// by tests, grounded on the teacher's own ad-hoc expression handling in
// executeTransform/executeCondition (map-key lookups against run context,
// literal passthrough otherwise).
//
// Supported syntax values:
//   - "" or "literal": Expression is returned verbatim.
//   - "variable": Expression names a key in the run's Variables map.
//   - "input": Expression is ignored; the activity's scheduled input is
//     returned as-is.
//   - "json-path": a minimal "var.field.field" dotted lookup into
//     Variables, falling back to nil on any missing segment.
func evaluateExpression(pd PropertyDefinition, actx *ActivityExecutionContext) (any, error) {
	switch pd.Syntax {
	case "variable":
		return actx.Variables()[pd.Expression], nil
	case "input":
		return actx.Input, nil
	case "json-path":
		return lookupPath(actx.Variables(), pd.Expression), nil
	default:
		return pd.Expression, nil
	}
}

func lookupPath(root map[string]any, path string) any {
	segments := strings.Split(path, ".")
	var cur any = root
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}
