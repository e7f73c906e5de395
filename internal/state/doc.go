// Package state persists what kitforge has written into a working tree.
//
// The tree itself is the only persistent entity: its state lives in a
// single JSON file at .kitforge/state.json inside the tree, recording
// applied kits and per-path ownership. Ownership is what makes exclusive
// claims stick across runs and appends happen exactly once.
//
// Key concepts:
//   - TreeState: Applied kit history plus the path ownership map
//   - PathOwnership: Which kits own a path, under which merge policy
//   - Store: Interface for loading and atomically saving tree state
package state
