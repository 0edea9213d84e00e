package compiler

import (
	"context"

	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/internal/jsonvalue"
	"github.com/erraggy/jsonschema/result"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// compileFormat asserts a format when the dialect requires it or the caller
// asked for it. Otherwise "format" is an annotation and validates nothing.
func compileFormat(kc *keywordContext, value any) (Validator, error) {
	name, ok := value.(string)
	if !ok {
		return nil, kc.errorf("must be a string")
	}
	assert := kc.s.cfg.formatAssertion || kc.scope.dialect.FormatAssertion()
	if !assert {
		return nil, nil
	}
	fn, ok := kc.s.cfg.formats.Lookup(name)
	if !ok {
		return nil, &schemaerrors.CompileError{
			Location: kc.loc.String(),
			Keyword:  kc.keyword,
			Message:  name,
			Cause:    schemaerrors.ErrUnknownFormat,
		}
	}
	return check(kc.loc, jsonvalue.String, func(inst any, id result.ID) *result.Result {
		if fn(inst.(string)) {
			return nil
		}
		return result.Fail(id, result.ErrFormat, inst, name)
	}), nil
}

// contentDecoder returns the decoder named by the sibling contentEncoding.
// Without one, strings are used as they are.
func (kc *keywordContext) contentDecoder() (func(s string) ([]byte, error), string) {
	raw, ok := kc.sibling("contentEncoding")
	if !ok {
		return func(s string) ([]byte, error) { return []byte(s), nil }, ""
	}
	name, _ := raw.(string)
	dec, ok := kc.s.cfg.contents.Encoding(name)
	if !ok {
		kc.s.log.Warn("unknown content encoding", "encoding", name, "location", kc.loc.String())
		return func(s string) ([]byte, error) { return []byte(s), nil }, name
	}
	return dec, name
}

func compileContentEncoding(kc *keywordContext, value any) (Validator, error) {
	if _, ok := value.(string); !ok {
		return nil, kc.errorf("must be a string")
	}
	if !kc.s.cfg.contentAssertion {
		return nil, nil
	}
	decode, name := kc.contentDecoder()
	return check(kc.loc, jsonvalue.String, func(inst any, id result.ID) *result.Result {
		if _, err := decode(inst.(string)); err != nil {
			return result.Fail(id, result.ErrContentEncoding, name)
		}
		return nil
	}), nil
}

func compileContentMediaType(kc *keywordContext, value any) (Validator, error) {
	mediaType, ok := value.(string)
	if !ok {
		return nil, kc.errorf("must be a string")
	}
	if !kc.s.cfg.contentAssertion {
		return nil, nil
	}
	parse, ok := kc.s.cfg.contents.MediaType(mediaType)
	if !ok {
		kc.s.log.Warn("unknown content media type", "mediaType", mediaType, "location", kc.loc.String())
		return nil, nil
	}
	decode, _ := kc.contentDecoder()
	return check(kc.loc, jsonvalue.String, func(inst any, id result.ID) *result.Result {
		data, err := decode(inst.(string))
		if err != nil {
			// reported by contentEncoding
			return nil
		}
		if _, err := parse(data); err != nil {
			return result.Fail(id, result.ErrContentMediaType, mediaType)
		}
		return nil
	}), nil
}

// compileContentSchema validates the decoded and parsed content. It needs a
// sibling contentMediaType.
func compileContentSchema(kc *keywordContext, value any) (Validator, error) {
	v, err := kc.sub(value, kc.loc)
	if err != nil {
		return nil, err
	}
	if !kc.s.cfg.contentAssertion {
		return nil, nil
	}
	raw, ok := kc.sibling("contentMediaType")
	if !ok {
		return nil, nil
	}
	mediaType, _ := raw.(string)
	parse, ok := kc.s.cfg.contents.MediaType(mediaType)
	if !ok {
		return nil, nil
	}
	decode, _ := kc.contentDecoder()
	loc := kc.loc
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		s, ok := inst.(string)
		if !ok {
			return []*result.Result{result.OK(id)}
		}
		data, err := decode(s)
		if err != nil {
			return []*result.Result{result.OK(id)}
		}
		doc, err := parse(data)
		if err != nil {
			return []*result.Result{result.OK(id)}
		}
		rs := v(ctx, doc, at, st)
		if allOK(rs) {
			return []*result.Result{result.OK(id)}
		}
		return []*result.Result{result.Container(id, append([]*result.Result{result.Fail(id, result.ErrContentSchema)}, rs...)...)}
	}, nil
}

var (
	kwFormat           = &keyword{name: "format", compile: compileFormat}
	kwContentEncoding  = &keyword{name: "contentEncoding", compile: compileContentEncoding}
	kwContentMediaType = &keyword{name: "contentMediaType", compile: compileContentMediaType}
	kwContentSchema    = &keyword{name: "contentSchema", compile: compileContentSchema, walk: walkSchema}
)
