package manifest

import "unsafe"

// FromAddr decodes the manifest in the size bytes of memory starting at addr,
// typically a memory-mapped flash window.
//
// The caller must guarantee that [addr, addr+size) is mapped, readable, and
// not modified for the duration of the call. Nothing here checks that; a bad
// window is undefined behavior. A size of zero or less reports no manifest
// without touching memory.
func FromAddr(addr uintptr, size int) (*BitstreamManifest, bool) {
	if size <= 0 {
		return FromWindow(nil)
	}
	return FromWindow(memoryWindow(addr, size))
}

// memoryWindow is the only place raw addresses become a slice.
func memoryWindow(addr uintptr, size int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
}
