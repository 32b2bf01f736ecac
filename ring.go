package gourdianringlog

// ringBuffer is a fixed-capacity FIFO of records that overwrites its oldest
// entry when full. Slots are allocated once; push and pop never allocate.
//
// head is the next write slot, tail the next read slot, and count stays in
// [0, len(slots)]. Callers serialize access.
type ringBuffer struct {
	slots []Record
	head  int
	tail  int
	count int
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{slots: make([]Record, capacity)}
}

// push stores rec at head. When the ring was already full the oldest record
// is discarded by advancing tail in lockstep, and ErrBufferFull is returned.
func (r *ringBuffer) push(rec Record) error {
	r.slots[r.head] = rec
	r.head = (r.head + 1) % len(r.slots)

	if r.count == len(r.slots) {
		r.tail = (r.tail + 1) % len(r.slots)
		return ErrBufferFull
	}
	r.count++
	return nil
}

// pop removes and returns the oldest record.
func (r *ringBuffer) pop() (Record, error) {
	if r.count == 0 {
		return Record{}, ErrBufferEmpty
	}

	rec := r.slots[r.tail]
	r.slots[r.tail] = Record{}
	r.tail = (r.tail + 1) % len(r.slots)
	r.count--
	return rec, nil
}

func (r *ringBuffer) len() int { return r.count }

func (r *ringBuffer) cap() int { return len(r.slots) }

func (r *ringBuffer) reset() {
	for i := range r.slots {
		r.slots[i] = Record{}
	}
	r.head, r.tail, r.count = 0, 0, 0
}
