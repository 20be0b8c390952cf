// Package session owns the state shared by every unit of one analysis run:
// the lifetime token that symbol references are checked against, the enabled
// language features, and compute-if-absent caches.
//
// A session has an explicit lifetime:
//
//	s := session.Open(session.Options{Features: fs})
//	defer s.Close()
//
// Invalidate bumps the generation; references created under an older token
// are stale afterwards and must be re-resolved.
package session
