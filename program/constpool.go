package program

// ConstantAlignment is the byte alignment of every entry in the
// constant-data segment.
const ConstantAlignment = 16

// ConstantPool accumulates the raw constant bytes embedded in the
// compiled artifact. Entries are appended in creation order at aligned
// offsets, so identical graphs produce byte-identical segments.
type ConstantPool struct {
	buf []byte
}

// Add appends data at the next aligned offset and returns that offset.
func (p *ConstantPool) Add(data []byte) int64 {
	offset := alignUp(int64(len(p.buf)), ConstantAlignment)
	if pad := offset - int64(len(p.buf)); pad > 0 {
		p.buf = append(p.buf, make([]byte, pad)...)
	}
	p.buf = append(p.buf, data...)
	return offset
}

// Bytes returns the packed segment.
func (p *ConstantPool) Bytes() []byte {
	return p.buf
}

// alignUp returns the smallest multiple of alignment >= offset.
func alignUp(offset, alignment int64) int64 {
	if alignment <= 1 {
		return offset
	}
	remainder := offset % alignment
	if remainder == 0 {
		return offset
	}
	return offset + (alignment - remainder)
}
