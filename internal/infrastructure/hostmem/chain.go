package hostmem

// RangeCheck is a coarse plausibility check on an address. Passing it is not
// proof that the address is live.
type RangeCheck func(addr uint64) bool

// Range accepts addresses in [Min, Max)
type Range struct {
	Min uint64
	Max uint64
}

// Check reports whether addr lies inside the range
func (r Range) Check(addr uint64) bool {
	return addr >= r.Min && addr < r.Max
}

// ReadChain resolves a multi-level pointer chain. It loads the pointer stored
// at root, then for every offset but the last adds the offset and loads the
// next pointer. The last offset is added to the final pointer and the result
// is returned as a field address.
//
// Every address is passed to check before it is dereferenced and every loaded
// pointer is checked before it is used; the first failure yields ok == false.
// With no offsets the chain is just the pointer stored at root.
func ReadChain(s Space, root uint64, offsets []uint64, check RangeCheck) (addr uint64, ok bool) {
	if !check(root) {
		return 0, false
	}
	ptr, err := U64(s, root)
	if err != nil || !check(ptr) {
		return 0, false
	}
	if len(offsets) == 0 {
		return ptr, true
	}

	for _, off := range offsets[:len(offsets)-1] {
		next := ptr + off
		if !check(next) {
			return 0, false
		}
		ptr, err = U64(s, next)
		if err != nil || !check(ptr) {
			return 0, false
		}
	}

	addr = ptr + offsets[len(offsets)-1]
	if !check(addr) {
		return 0, false
	}
	return addr, true
}

// ReadChainI32 resolves a chain and reads an int32 at its end
func ReadChainI32(s Space, root uint64, offsets []uint64, check RangeCheck) (int32, bool) {
	addr, ok := ReadChain(s, root, offsets, check)
	if !ok {
		return 0, false
	}
	v, err := I32(s, addr)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ReadChainU32 resolves a chain and reads a uint32 at its end
func ReadChainU32(s Space, root uint64, offsets []uint64, check RangeCheck) (uint32, bool) {
	addr, ok := ReadChain(s, root, offsets, check)
	if !ok {
		return 0, false
	}
	v, err := U32(s, addr)
	if err != nil {
		return 0, false
	}
	return v, true
}
