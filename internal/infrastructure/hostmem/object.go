package hostmem

// Object reads fixed-offset fields of an opaque host object. Every read
// range-checks the field address first; a failed check or read returns the
// zero value.
type Object struct {
	Space  Space
	Handle uint64
	Check  RangeCheck
}

// Valid reports whether the handle passes the coarse range check
func (o Object) Valid() bool {
	return o.Handle != 0 && o.Check(o.Handle)
}

func (o Object) field(off uint64) (uint64, bool) {
	if !o.Valid() {
		return 0, false
	}
	addr := o.Handle + off
	return addr, o.Check(addr)
}

// U8 reads a byte field
func (o Object) U8(off uint64) uint8 {
	addr, ok := o.field(off)
	if !ok {
		return 0
	}
	v, _ := U8(o.Space, addr)
	return v
}

// U32 reads a uint32 field
func (o Object) U32(off uint64) uint32 {
	addr, ok := o.field(off)
	if !ok {
		return 0
	}
	v, _ := U32(o.Space, addr)
	return v
}

// I32 reads an int32 field
func (o Object) I32(off uint64) int32 {
	return int32(o.U32(off))
}

// F32 reads a float32 field
func (o Object) F32(off uint64) float32 {
	addr, ok := o.field(off)
	if !ok {
		return 0
	}
	v, _ := F32(o.Space, addr)
	return v
}

// U64 reads a uint64 field
func (o Object) U64(off uint64) uint64 {
	addr, ok := o.field(off)
	if !ok {
		return 0
	}
	v, _ := U64(o.Space, addr)
	return v
}
