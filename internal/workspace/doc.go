// Package workspace manages staged artifacts inside the transcoding
// engine's virtual namespace. A Session allocates collision-free staged
// names and tracks every artifact it writes; a Scope guarantees that all
// names staged during one operation are released before the operation
// returns, on success and failure paths alike.
package workspace
