// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package hierarchy

import (
	"reflect"
)

// Key is the canonical identity of a type. Keys are comparable and can be
// used directly as map keys.
type Key = reflect.Type

// Resolver produces the ordered list of related types to consult for key,
// most specific first, restricted to the known set. The known slice is in
// most-recently-bound-first order.
type Resolver func(key Key, known []Key) []Key

// Normalize returns the canonical Key for target.
//
// target may be a value, a pointer (of any depth), or a [reflect.Type];
// all of them map to the same Key. A nil target yields a nil Key.
func Normalize(target any) Key {
	if target == nil {
		return nil
	}

	t, ok := target.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(target)
	}

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

// KeyString renders a Key as a stable, human-readable identifier, suitable
// for cache keys and log fields.
func KeyString(key Key) string {
	if key == nil {
		return "<nil>"
	}

	if pkg := key.PkgPath(); pkg != "" {
		return pkg + "." + key.Name()
	}

	return key.String()
}

// RelatedTypes is the default [Resolver].
//
// The result starts with key itself when known, then walks embedded fields
// breadth-first in declaration order, then appends every known interface
// type that key (or *key) satisfies. Interfaces are consulted in the order
// of the known slice, so more recently bound interfaces win ties.
func RelatedTypes(key Key, known []Key) []Key {
	if key == nil {
		return nil
	}

	knownSet := make(map[Key]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}

	var (
		out  []Key
		seen = map[Key]struct{}{}
	)

	appendKnown := func(k Key) {
		if _, dup := seen[k]; dup {
			return
		}

		seen[k] = struct{}{}

		if _, ok := knownSet[k]; ok {
			out = append(out, k)
		}
	}

	// The type itself, then its embedding chain breadth-first.
	queue := []Key{key}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		appendKnown(t)

		if t.Kind() != reflect.Struct {
			continue
		}

		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.Anonymous {
				continue
			}

			ft := f.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}

			if _, dup := seen[ft]; !dup {
				queue = append(queue, ft)
			}
		}
	}

	// Known interfaces the type satisfies, least specific relationship last.
	ptr := reflect.PointerTo(key)

	for _, k := range known {
		if k.Kind() != reflect.Interface {
			continue
		}

		if key.Implements(k) || ptr.Implements(k) {
			appendKnown(k)
		}
	}

	return out
}
