package compiler

import (
	"context"
	"fmt"

	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/loader"
	"github.com/erraggy/jsonschema/result"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// target is a resolved reference: a scope and a pointer within it.
type target struct {
	scope   *scope
	pointer jsonptr.Pointer
}

func (t target) node() (any, bool) {
	return jsonptr.Resolve(t.scope.content, t.pointer)
}

// resolveStatic resolves ref as written at the locator.
func (r *registry) resolveStatic(ctx context.Context, ref string, at result.Locator) (target, error) {
	cur := r.scopes[at.Scope]
	path, frag := loader.SplitFragment(ref)

	sc := cur
	if path != "" {
		var err error
		if sc, err = r.resolvePath(ctx, ref, path, cur, at); err != nil {
			return target{}, err
		}
	}

	ptr, err := r.resolveFragment(sc, ref, frag, at)
	if err != nil {
		return target{}, err
	}
	sc, ptr = r.descend(sc, ptr)
	t := target{scope: sc, pointer: ptr}
	if _, ok := t.node(); !ok {
		return target{}, refError(ref, at, "target does not exist", nil)
	}
	return t, nil
}

// resolvePath finds the resource a non-empty reference path points to.
func (r *registry) resolvePath(ctx context.Context, ref, path string, cur *scope, at result.Locator) (*scope, error) {
	if r.resolver != nil {
		res, ok, err := r.resolver.Resolve(path, at)
		if err != nil {
			return nil, refError(ref, at, "external resolver failed", err)
		}
		if ok {
			if !loader.IsAbsolute(res.AbsoluteURI) {
				return nil, refError(ref, at, fmt.Sprintf("resolver returned %q", res.AbsoluteURI), schemaerrors.ErrNotAbsolute)
			}
			abs, _ := loader.SplitFragment(res.AbsoluteURI)
			if res.Schema == nil {
				return r.lookup(ctx, ref, abs, cur, at)
			}
			if sc, ok := r.known(abs); ok {
				return sc, nil
			}
			r.log.Debug("registering resolved document", "ref", ref, "uri", abs)
			sc, err := r.register(ctx, res.Schema, abs, cur.dialect, cur.dialectURI)
			if err != nil {
				return nil, refError(ref, at, "", err)
			}
			return sc, nil
		}
	}
	abs, err := loader.ResolveReference(cur.base(), path)
	if err != nil {
		return nil, refError(ref, at, "", err)
	}
	return r.lookup(ctx, ref, abs, cur, at)
}

func (r *registry) known(abs string) (*scope, bool) {
	if id, ok := r.byURI[abs]; ok {
		return r.scopes[id], true
	}
	if id, ok := r.byOrigin[abs]; ok {
		return r.scopes[id], true
	}
	return nil, false
}

func (r *registry) lookup(ctx context.Context, ref, abs string, cur *scope, at result.Locator) (*scope, error) {
	if sc, ok := r.known(abs); ok {
		return sc, nil
	}
	if !loader.IsAbsolute(abs) {
		return nil, refError(ref, at, "cannot resolve relative reference without a base uri", schemaerrors.ErrNotAbsolute)
	}
	sc, err := r.document(ctx, abs, cur)
	if err != nil {
		return nil, refError(ref, at, "", err)
	}
	return sc, nil
}

// resolveFragment turns a fragment into a pointer within sc. Fragments
// starting with '/' are JSON pointers, others name anchors.
func (r *registry) resolveFragment(sc *scope, ref, frag string, at result.Locator) (jsonptr.Pointer, error) {
	if frag == "" {
		return jsonptr.Root, nil
	}
	if jsonptr.IsFragmentPointer(frag) {
		ptr, err := jsonptr.ParseFragment(frag)
		if err != nil {
			return "", refError(ref, at, "invalid json pointer", err)
		}
		return ptr, nil
	}
	if ptr, ok := sc.anchors[frag]; ok {
		return ptr, nil
	}
	if ptr, ok := sc.dynamicAnchors[frag]; ok {
		return ptr, nil
	}
	return "", refError(ref, at, fmt.Sprintf("anchor %q not found", frag), nil)
}

// resolveDynamic resolves a $dynamicRef. When the static target carries a
// matching $dynamicAnchor, the outermost resource in the dynamic scope that
// declares the same anchor wins.
func (r *registry) resolveDynamic(ctx context.Context, ref string, at result.Locator) (target, error) {
	t, err := r.resolveStatic(ctx, ref, at)
	if err != nil {
		return target{}, err
	}
	_, frag := loader.SplitFragment(ref)
	if frag == "" || jsonptr.IsFragmentPointer(frag) {
		return t, nil
	}
	if _, ok := t.scope.dynamicAnchors[frag]; !ok {
		return t, nil
	}
	for l := &at; l != nil; l = l.Parent {
		sc := r.scopes[l.Scope]
		if ptr, ok := sc.dynamicAnchors[frag]; ok {
			t = target{scope: sc, pointer: ptr}
		}
	}
	r.log.Debug("resolved dynamic reference", "ref", ref, "scope", t.scope.id, "pointer", t.pointer.String())
	return t, nil
}

// resolveRecursive resolves a $recursiveRef, which must be "#". When the
// current resource sets $recursiveAnchor, the outermost resource in the
// dynamic scope that also sets it wins.
func (r *registry) resolveRecursive(ref string, at result.Locator) (target, error) {
	if ref != "#" {
		return target{}, refError(ref, at, `$recursiveRef must be "#"`, schemaerrors.ErrInvalidKeyword)
	}
	cur := r.scopes[at.Scope]
	t := target{scope: cur, pointer: jsonptr.Root}
	if !cur.recursiveAnchor {
		return t, nil
	}
	for l := at.Parent; l != nil; l = l.Parent {
		sc := r.scopes[l.Scope]
		if sc.recursiveAnchor {
			t = target{scope: sc, pointer: jsonptr.Root}
		}
	}
	return t, nil
}

func refError(ref string, at result.Locator, msg string, cause error) error {
	return &schemaerrors.ReferenceError{Ref: ref, Location: at.String(), Message: msg, Cause: cause}
}
