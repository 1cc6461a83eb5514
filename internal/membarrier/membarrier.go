// Package membarrier provides the process-wide memory barrier primitive used
// by the epoch barrier: a heavy, expensive fence that establishes ordering
// against every other thread in the process, and a light fence cheap enough
// to execute on every hazard-pointer publish.
//
// The split is the classical asymmetric-fence optimisation: a cold reclaimer
// pays the heavy fence once per reclamation pass; hot readers pay only the
// light one.
package membarrier

// Heavy executes a process-wide memory barrier. On platforms that expose a
// real membarrier facility (see membarrier_linux.go) this is backed by the
// membarrier(2) syscall. Elsewhere it degrades to the fallback documented in
// membarrier_other.go.
func Heavy() {
	heavy()
}

// Light executes a compiler/CPU-local fence. It is intentionally much
// cheaper than Heavy and never issues a cross-core IPI.
func Light() {
	light()
}
