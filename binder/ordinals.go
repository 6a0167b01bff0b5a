package binder

// Ordinal assignment
//
// The n placeholder sites of a statement are numbered 1..n in text order;
// these declared ordinals are fixed at compile time. A SINGLE site renders
// its declared ordinal. A LIST site renders a parenthesized run of fresh
// ordinals allocated past the declared sites: the first list site's run
// starts at n+1, and every later run is shifted by the runtime sizes of the
// list collections before it. Assigned ordinals are computed as a pure
// function of (site arity order, runtime sizes), never by threading a
// mutable counter through emission.

// Ordinals computes the placeholder ordinals each site renders, given the
// runtime size of every list site's collection. listSites[i] tells the
// arity of site i; sizes[i] is consulted only for list sites. A SINGLE site
// yields exactly its declared ordinal; a LIST site yields a run of sizes[i]
// fresh ordinals (possibly empty).
func Ordinals(listSites []bool, sizes []int) [][]int {
	next := len(listSites) + 1
	out := make([][]int, len(listSites))

	for i, isList := range listSites {
		if !isList {
			out[i] = []int{i + 1}
			continue
		}

		run := make([]int, sizes[i])
		for j := range run {
			run[j] = next
			next++
		}

		out[i] = run
	}

	return out
}

// ListSites returns the per-site arity flags of the plan, in text order.
func (p *Plan) ListSites() []bool {
	out := make([]bool, len(p.Sites))
	for i, site := range p.Sites {
		out[i] = site.List
	}

	return out
}

// PlaceholderCount is the total number of rendered placeholders for the
// given runtime list sizes: one per fixed site plus the size of every list
// collection.
func PlaceholderCount(listSites []bool, sizes []int) int {
	count := 0

	for i, isList := range listSites {
		if isList {
			count += sizes[i]
		} else {
			count++
		}
	}

	return count
}
