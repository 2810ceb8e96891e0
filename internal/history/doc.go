// Package history records reversible structure edits and provides linear
// undo/redo over them.
//
// A History keeps an ordered list of actions and a cursor. Actions at or
// before the cursor are committed: they are applied and make up the net
// change set from the baseline. Actions after the cursor are redoable.
//
//	h := history.New(history.WithCapacity(100))
//
//	// The caller has already performed the edit. Record only logs it.
//	h.Record(model.KindAddIndicator, "Add IND-1", delta, apply, unapply)
//
//	h.Undo() // runs unapply, moves the cursor back
//	h.Redo() // runs apply, moves the cursor forward
//
// # Apply and unapply
//
// apply reproduces the forward edit from scratch and unapply reverses it.
// Record never runs apply; it is only used by Redo. The two must be exact
// inverses with respect to the document, which History cannot check.
//
// # Branch on write
//
// Recording after one or more undos discards the redoable tail. History is
// linear; it never keeps a tree of edits.
//
// # Capacity
//
// When the list grows past capacity the oldest actions are evicted and the
// cursor shifts down with them.
//
// # Concurrency
//
// History is not safe for concurrent use and holds no locks. Calling
// Record, Undo, or Redo from inside an apply or unapply callback interleaves
// with the outer call and is not supported.
package history
