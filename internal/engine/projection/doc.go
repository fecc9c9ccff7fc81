// Package projection computes how extracted child content is shown in place
// of the locked host lines it came from.
//
// Projection is pure coordinate math. [Adjust] walks the Range Records in
// extraction order and gives each one an interval as tall as its child,
// carrying the accumulated growth or shrinkage of earlier children forward.
// [NewPlan] adds the number of blank lines the buffer needs so every adjusted
// interval fits, together with the pre-expansion length that must be
// persisted instead of the padded buffer. [Validate] rejects geometry that
// cannot be locked: intervals out of bounds, inverted, overlapping or out of
// order.
//
// [Project] turns validated records into a [View]: one [Block] per record
// whose host lines collapse to zero height and whose rows are the child's
// lines. [View.Lines] interleaves host rows and block rows for any consumer;
// the package never draws anything itself.
package projection
