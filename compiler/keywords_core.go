package compiler

// compileNothing is used by keywords that only matter during preprocessing
// or carry annotations nobody consumes.
func compileNothing(_ *keywordContext, _ any) (Validator, error) {
	return nil, nil
}

func compileRef(kc *keywordContext, value any) (Validator, error) {
	ref, ok := value.(string)
	if !ok {
		return nil, kc.errorf("must be a string")
	}
	t, err := kc.s.reg.resolveStatic(kc.s.ctx, ref, kc.loc)
	if err != nil {
		return nil, err
	}
	kc.s.log.Debug("resolved reference", "ref", ref, "at", kc.loc.String(), "scope", t.scope.id, "pointer", t.pointer.String())
	return kc.follow(t)
}

func compileDynamicRef(kc *keywordContext, value any) (Validator, error) {
	ref, ok := value.(string)
	if !ok {
		return nil, kc.errorf("must be a string")
	}
	t, err := kc.s.reg.resolveDynamic(kc.s.ctx, ref, kc.loc)
	if err != nil {
		return nil, err
	}
	return kc.follow(t)
}

func compileRecursiveRef(kc *keywordContext, value any) (Validator, error) {
	ref, ok := value.(string)
	if !ok {
		return nil, kc.errorf("must be a string")
	}
	t, err := kc.s.reg.resolveRecursive(ref, kc.loc)
	if err != nil {
		return nil, err
	}
	return kc.follow(t)
}

// follow compiles a reference target. The referring keyword becomes the
// dynamic parent of the target location.
func (kc *keywordContext) follow(t target) (Validator, error) {
	node, _ := t.node()
	parent := kc.loc
	return kc.sub(node, t.scope.at(t.pointer, &parent))
}

var (
	kwID              = &keyword{name: "$id", compile: compileNothing}
	kwSchema          = &keyword{name: "$schema", compile: compileNothing}
	kwAnchor          = &keyword{name: "$anchor", compile: compileNothing}
	kwDynamicAnchor   = &keyword{name: "$dynamicAnchor", compile: compileNothing}
	kwRecursiveAnchor = &keyword{name: "$recursiveAnchor", compile: compileNothing}
	kwVocabulary      = &keyword{name: "$vocabulary", compile: compileNothing}
	kwComment         = &keyword{name: "$comment", compile: compileNothing}
	kwDefs            = &keyword{name: "$defs", compile: compileNothing, walk: walkMap}
	kwRef             = &keyword{name: "$ref", compile: compileRef}
	kwDynamicRef      = &keyword{name: "$dynamicRef", compile: compileDynamicRef}
	kwRecursiveRef    = &keyword{name: "$recursiveRef", compile: compileRecursiveRef}
)

// metaDataKeywords are annotation-only.
var metaDataKeywords = []string{"default", "deprecated", "description", "examples", "readOnly", "title", "writeOnly"}
