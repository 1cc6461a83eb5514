package hp

import "unsafe"

// ptrAddr extracts the numeric address behind a *byte hazard slot value,
// purely for use as a map/set key — it is never dereferenced.
func ptrAddr(p *byte) uintptr {
	return uintptr(unsafe.Pointer(p))
}
