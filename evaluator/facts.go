package evaluator

import "github.com/decisionml/decisionml/model"

// buildFactMap implements section 4.2.1: expand doc's own facts (including
// document references, recursively prefixed by fact name), then apply the
// document's own Foreign-tagged override facts, then apply the caller's
// overrides last so they win over everything declared in the document.
func buildFactMap(doc *model.Document, docs model.Set, overrides map[string]model.Literal) map[string]model.Literal {
	factMap := map[string]model.Literal{}
	expandDoc(doc, docs, "", map[string]bool{doc.Name: true}, factMap)
	for k, v := range overrides {
		factMap[k] = v
	}
	return factMap
}

// expandDoc expands doc's Local facts into out (prefixed), recursing into
// document references, then applies doc's own Foreign-tagged override facts
// on top — so a document's declared overrides win over the plain expansion
// of the document reference they target.
func expandDoc(doc *model.Document, docs model.Set, prefix string, trail map[string]bool, out map[string]model.Literal) {
	for _, f := range doc.Facts {
		if f.Tag.Kind != model.Local {
			continue
		}
		name := prefix + f.Name()
		switch f.Value.Kind {
		case model.FactValueLiteral:
			out[name] = f.Value.Literal
		case model.FactValueDocumentRef:
			if trail[f.Value.DocumentRef] {
				continue
			}
			target, ok := docs[f.Value.DocumentRef]
			if !ok {
				continue
			}
			nextTrail := make(map[string]bool, len(trail)+1)
			for k := range trail {
				nextTrail[k] = true
			}
			nextTrail[f.Value.DocumentRef] = true
			expandDoc(target, docs, name+".", nextTrail, out)
		case model.FactValueTypeAnnotation:
			// Contributes nothing unless an override supplies it later.
		}
	}
	for _, f := range doc.Facts {
		if f.Tag.Kind == model.Foreign && f.Value.Kind == model.FactValueLiteral {
			out[prefix+f.Name()] = f.Value.Literal
		}
	}
}
