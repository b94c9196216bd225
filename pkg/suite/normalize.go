package suite

// Normalize returns the tree that is actually executed.
//
// When the tree holds no focused test and no ignored suite, root is returned as
// is. Otherwise a copy is returned in which:
//   - every test below an Ignored suite is Ignored, focused or not;
//   - if a focused test exists (a Focused test, or any test below a Focused
//     suite, outside ignored suites), tests stay Focused when focused and are
//     Ignored otherwise, at every nesting level.
//
// root is never modified.
func Normalize(root *Suite) *Suite {
	focus := hasFocus(root)
	if !focus && !hasIgnoredSuite(root) {
		return root
	}

	return Derive(root, func(parents []*Suite, t *Test) Status {
		ignoredScope, focusedScope := false, false

		for _, p := range parents {
			switch p.status {
			case Ignored:
				ignoredScope = true
			case Focused:
				focusedScope = true
			}
		}

		switch {
		case ignoredScope || t.status == Ignored:
			return Ignored
		case !focus:
			return t.status
		case t.status == Focused || focusedScope:
			return Focused
		default:
			return Ignored
		}
	})
}

// Derive returns a copy of root in which every test status is replaced by the
// result of fn. Suites of the copy share name, status, context and hooks with
// the original; tests whose status does not change are shared as well.
func Derive(root *Suite, fn func(parents []*Suite, t *Test) Status) *Suite {
	return derive(root, []*Suite{root}, fn)
}

func derive(s *Suite, parents []*Suite, fn func([]*Suite, *Test) Status) *Suite {
	cp := &Suite{
		name:      s.name,
		status:    s.status,
		context:   s.context,
		hooks:     s.hooks,
		bases:     s.bases,
		index:     s.index,
		caseGroup: s.caseGroup,
		errs:      s.errs,
		children:  make([]Node, 0, len(s.children)),
	}

	for _, child := range s.children {
		switch c := child.(type) {
		case *Test:
			cp.children = append(cp.children, c.withStatus(fn(parents, c)))
		case *Suite:
			cp.children = append(cp.children, derive(c, append(parents[:len(parents):len(parents)], c), fn))
		}
	}

	return cp
}

func hasFocus(s *Suite) bool {
	switch s.status {
	case Ignored:
		return false
	case Focused:
		return true
	}

	for _, child := range s.children {
		switch c := child.(type) {
		case *Test:
			if c.status == Focused {
				return true
			}
		case *Suite:
			if hasFocus(c) {
				return true
			}
		}
	}

	return false
}

func hasIgnoredSuite(s *Suite) bool {
	if s.status == Ignored {
		return true
	}

	for _, child := range s.children {
		if nested, ok := child.(*Suite); ok && hasIgnoredSuite(nested) {
			return true
		}
	}

	return false
}
