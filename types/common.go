// Copyright (c) 2026 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package types

// CommonSupertype returns the most specific type every one of ts is
// assignable to. It falls back to Any, nullable if any input is.
func (c *Checker) CommonSupertype(ts []Type) Type {
	u := c.universe
	if len(ts) == 0 {
		return u.AnyType(true)
	}
	if len(ts) == 1 {
		return ts[0].withoutDecoration()
	}
	c.enter(ts[0], ts[len(ts)-1])
	defer c.leave()

	nullable := false
	var uniq []Type
	for _, t := range ts {
		if t.star {
			return Star()
		}
		t = t.withoutDecoration()
		if IsNullableType(t) {
			nullable = true
		}
		if t.classifier == u.nothing && len(t.tags) == 0 {
			continue
		}
		dup := false
		for _, q := range uniq {
			if q.Equal(t) {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, t)
		}
	}
	if len(uniq) == 0 {
		return u.NothingType(nullable)
	}

	// One of the inputs may already be above all the others.
	for _, cand := range uniq {
		target := cand.WithNullability(cand.nullable || nullable)
		ok := true
		for _, o := range uniq {
			if !c.IsSubtypeOf(o, target) {
				ok = false
				break
			}
		}
		if ok {
			return target
		}
	}

	if shared := uniq[0].tags; len(shared) > 0 {
		same := true
		for _, o := range uniq[1:] {
			if !sameTags(o.tags, shared) {
				same = false
				break
			}
		}
		if same {
			inner := make([]Type, len(uniq))
			for i, o := range uniq {
				inner[i] = o.Untagged()
			}
			r := c.CommonSupertype(inner)
			if r.star {
				return r
			}
			return r.withTags(shared).WithNullability(r.nullable || nullable)
		}
		return u.AnyType(nullable)
	}
	for _, o := range uniq[1:] {
		if len(o.tags) > 0 {
			return u.AnyType(nullable)
		}
	}

	common := commonClassifiers(uniq)
	if len(common) != 1 {
		return u.AnyType(nullable)
	}
	head := common[0]
	if len(head.params) == 0 {
		return Type{classifier: head, nullable: nullable}
	}
	args := make([]Type, len(head.params))
	for i, p := range head.params {
		views := make([]Type, 0, len(uniq))
		for _, o := range uniq {
			v, ok := SubtypeView(o, head)
			if !ok {
				return u.AnyType(nullable)
			}
			views = append(views, v.args[i])
		}
		args[i] = c.commonArgument(p, views)
	}
	return Type{classifier: head, args: args, nullable: nullable}
}

func (c *Checker) commonArgument(p *Classifier, views []Type) Type {
	first := views[0]
	allEqual := true
	for _, v := range views[1:] {
		if !v.Equal(first) {
			allEqual = false
			break
		}
	}
	if allEqual {
		return first
	}
	if p.variance == Out {
		return c.CommonSupertype(views)
	}
	return Star()
}

func sameTags(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// commonClassifiers intersects the supertype closures of ts and keeps the
// lowest classifiers of the intersection, excluding Any.
func commonClassifiers(ts []Type) []*Classifier {
	u := ts[0].classifier.universe
	closure := SupertypeClassifiers(ts[0].classifier)
	shared := make([]*Classifier, 0, len(closure))
	for _, cl := range closure {
		if cl == u.any {
			continue
		}
		inAll := true
		for _, o := range ts[1:] {
			if !containsClassifier(SupertypeClassifiers(o.classifier), cl) {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, cl)
		}
	}

	var lowest []*Classifier
	for _, cl := range shared {
		dominated := false
		for _, o := range shared {
			if o != cl && containsClassifier(SupertypeClassifiers(o), cl) {
				dominated = true
				break
			}
		}
		if !dominated {
			lowest = append(lowest, cl)
		}
	}
	return lowest
}

func containsClassifier(cs []*Classifier, c *Classifier) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}
