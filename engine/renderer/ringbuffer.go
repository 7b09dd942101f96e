package renderer

import "github.com/spaghettifunk/vkrview/engine/renderer/metadata"

// RingBuffer is a persistent-mapped-style host buffer that wraps once
// full: Alloc hands out a contiguous byte range; FlushRange/FlushCurrent
// do nothing, since the bytes stay in host memory. It backs both the instance data pool
// and the indirect command pool, which differ only in the stride the
// caller writes per record.
type RingBuffer struct {
	data   []byte
	stride int
	cursor uint32
	dirty  [2]uint32 // [start, end) of the most recent Alloc, in records
}

// NewRingBuffer allocates capacity records of stride bytes each.
func NewRingBuffer(capacity, stride int) *RingBuffer {
	return &RingBuffer{
		data:   make([]byte, capacity*stride),
		stride: stride,
	}
}

func (r *RingBuffer) recordCount() int { return len(r.data) / r.stride }

// Alloc reserves count contiguous records, wrapping to the start when
// the tail doesn't have room; it never spans the wrap point within a
// single allocation.
func (r *RingBuffer) Alloc(count int) (base uint32, mapped []byte, ok bool) {
	if count <= 0 || count > r.recordCount() {
		return 0, nil, false
	}
	if int(r.cursor)+count > r.recordCount() {
		r.cursor = 0
	}
	base = r.cursor
	off := int(base) * r.stride
	mapped = r.data[off : off+count*r.stride]
	r.cursor += uint32(count)
	r.dirty = [2]uint32{base, base + uint32(count)}
	return base, mapped, true
}

func (r *RingBuffer) FlushRange(base uint32, count int) {}

func (r *RingBuffer) FlushCurrent() {}

// Remaining reports records left before the ring wraps.
func (r *RingBuffer) Remaining() int {
	return r.recordCount() - int(r.cursor)
}

// InstanceRingPool is the default InstanceBufferPool.
type InstanceRingPool struct{ *RingBuffer }

func NewInstanceRingPool(capacity int) *InstanceRingPool {
	return &InstanceRingPool{RingBuffer: NewRingBuffer(capacity, instanceRecordStride)}
}

// instanceRecordStride matches world.Layer's writeInstances encoding: a
// 4x4 float matrix plus object id, material id, and padding.
const instanceRecordStride = 16*4 + 4*3

var _ InstanceBufferPool = (*InstanceRingPool)(nil)

// IndirectRingPool is the default IndirectDrawSystem: it keeps its
// backing bytes addressable as a metadata.RenderBuffer so a frontend
// can bind it directly for vkCmdDrawIndexedIndirect-style calls.
type IndirectRingPool struct {
	*RingBuffer
	current *metadata.RenderBuffer
}

// indirectRecordStride matches world.Layer's writeIndirectCommands
// encoding: five uint32 fields (VkDrawIndexedIndirectCommand layout).
const indirectRecordStride = 4 * 5

func NewIndirectRingPool(capacity int) *IndirectRingPool {
	p := &IndirectRingPool{RingBuffer: NewRingBuffer(capacity, indirectRecordStride)}
	p.current = &metadata.RenderBuffer{
		RenderBufferType: metadata.RENDERBUFFER_TYPE_STORAGE,
		TotalSize:        uint64(len(p.data)),
	}
	return p
}

func (p *IndirectRingPool) GetCurrent() *metadata.RenderBuffer { return p.current }

var _ IndirectDrawSystem = (*IndirectRingPool)(nil)
