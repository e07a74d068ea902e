// Package jhobby provides an implementation of John Hobby's spline
// interpolation algorithm, as used for fitting obstacle boundaries.
/*

Spline interpolation by Hobby's algorithm results in aesthetically pleasing
curves superior to "normal" spline interpolation. The primary source of
information for "Hobby-splines" is:

   Smooth, Easy to Compute Interpolating Splines -- John D. Hobby
   Computer Science Dept. Stanford University
   Report No. STAN-CS-85-1047, Jan 1985
   http://i.stanford.edu/pub/cstr/reports/cs/tr/85/1047/CS-TR-85-1047.pdf

The practical algorithm is explained in

   Computers & Typesetting, Vol. B & D.
   http://www-cs-faculty.stanford.edu/~knuth/abcde.html

This package solves the restricted problem needed for fitting sampled
boundaries: every join is a curve, tension is uniform along the path, open
paths have curl 1 at both ends, and there are no explicit directions.
Under these restrictions there is never a need to split a path into
independent segments.

Usage

Clients build a skeleton path and let the solver find the control points:

   path := Nullpath().Knot(P(1,1)).Knot(P(2,2)).Knot(P(3,1)).Knot(P(2,0)).Cycle()
   controls, err := FindHobbyControls(path, nil)

which results in

  (1,1) .. controls (1.0000,1.5523) and (1.4477,2.0000)
   .. (2,2) .. controls (2.5523,2.0000) and (3.0000,1.5523)
   .. (3,1) .. controls (3.0000,0.4477) and (2.5523,0.0000)
   .. (2,0) .. controls (1.4477,0.0000) and (1.0000,0.4477)
   .. cycle

BSD License

Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package jhobby

import (
	"fmt"
	"strings"
)

// AsString returns
// a path -- optionally including spline control points -- as a (debugging)
// string. The string contains newlines if control point information is present.
// Otherwise it will include the knot coordinates in one line.
//
// The format is not fully equivalent to MetaFont's, but close.
func AsString(path *Path, contr *Controls) string {
	var b strings.Builder
	for i := 0; i < path.N(); i++ {
		if i > 0 {
			if contr != nil {
				fmt.Fprintf(&b, " and %s\n  .. ", ptstring(contr.PreControl(i), true))
			} else {
				b.WriteString(" .. ")
			}
		}
		b.WriteString(ptstring(path.Z(i), false))
		if contr != nil && (i < path.N()-1 || path.IsCycle()) {
			fmt.Fprintf(&b, " .. controls %s", ptstring(contr.PostControl(i), true))
		}
	}
	if path.IsCycle() {
		if contr != nil {
			fmt.Fprintf(&b, " and %s\n ", ptstring(contr.PreControl(0), true))
		}
		b.WriteString(" .. cycle")
	}
	return b.String()
}
