package value

import (
	"golang.org/x/exp/rand"

	"calc/internal/rational"
)

// ---- String (§3 "String S"): length-prefixed, NUL-safe, bytewise. ----

type StringVal struct {
	rcHeader
	Bytes []byte
}

func NewString(s string) Value {
	return fromPtr(KindString, &StringVal{rcHeader: newHeader(), Bytes: []byte(s)})
}

func (s *StringVal) release() { s.rc--; /* no children to release */ }

func (v Value) AsString() (*StringVal, bool) {
	s, ok := v.ptr.(*StringVal)
	return s, ok && v.Kind == KindString
}

func (s *StringVal) String() string { return string(s.Bytes) }

// ---- List (§3 "List L", §4.F): doubly-linked with O(1) ends. ----

type listNode struct {
	val        Value
	prev, next *listNode
}

type List struct {
	rcHeader
	head, tail *listNode
	count      int
	// cache speeds up repeated access near the last-visited index.
	cacheIdx  int
	cacheNode *listNode
}

func NewList() *List {
	return &List{rcHeader: newHeader(), cacheIdx: -1}
}

func NewListValue() Value { return fromPtr(KindList, NewList()) }

func (l *List) release() {
	l.rc--
	if l.rc > 0 {
		return
	}
	for n := l.head; n != nil; {
		n.val.Release()
		next := n.next
		n = next
	}
}

func (v Value) AsList() (*List, bool) {
	l, ok := v.ptr.(*List)
	return l, ok && v.Kind == KindList
}

func (l *List) Len() int { return l.count }

func (l *List) PushBack(v Value) {
	v = v.Retain()
	n := &listNode{val: v, prev: l.tail}
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.count++
}

func (l *List) PushFront(v Value) {
	v = v.Retain()
	n := &listNode{val: v, next: l.head}
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.count++
	l.invalidateCache()
}

func (l *List) PopBack() (Value, bool) {
	if l.tail == nil {
		return Value{}, false
	}
	n := l.tail
	l.tail = n.prev
	if l.tail != nil {
		l.tail.next = nil
	} else {
		l.head = nil
	}
	l.count--
	l.invalidateCache()
	return n.val, true
}

func (l *List) PopFront() (Value, bool) {
	if l.head == nil {
		return Value{}, false
	}
	n := l.head
	l.head = n.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	l.count--
	l.invalidateCache()
	return n.val, true
}

func (l *List) invalidateCache() { l.cacheIdx = -1; l.cacheNode = nil }

// nodeAt walks from whichever end (or the cache) is closer to index i.
func (l *List) nodeAt(i int) *listNode {
	if i < 0 || i >= l.count {
		return nil
	}
	if l.cacheNode != nil {
		if i == l.cacheIdx {
			return l.cacheNode
		}
		if i == l.cacheIdx+1 && l.cacheNode.next != nil {
			l.cacheIdx++
			l.cacheNode = l.cacheNode.next
			return l.cacheNode
		}
		if i == l.cacheIdx-1 && l.cacheNode.prev != nil {
			l.cacheIdx--
			l.cacheNode = l.cacheNode.prev
			return l.cacheNode
		}
	}
	var n *listNode
	if i <= l.count/2 {
		n = l.head
		for k := 0; k < i; k++ {
			n = n.next
		}
	} else {
		n = l.tail
		for k := l.count - 1; k > i; k-- {
			n = n.prev
		}
	}
	l.cacheIdx, l.cacheNode = i, n
	return n
}

func (l *List) Get(i int) (Value, bool) {
	n := l.nodeAt(i)
	if n == nil {
		return Value{}, false
	}
	return n.val, true
}

func (l *List) Set(i int, v Value) bool {
	n := l.nodeAt(i)
	if n == nil {
		return false
	}
	n.val.Release()
	n.val = v.Retain()
	return true
}

func (l *List) Delete(i int) bool {
	n := l.nodeAt(i)
	if n == nil {
		return false
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.val.Release()
	l.count--
	l.invalidateCache()
	return true
}

// Each iterates the list in insertion order.
func (l *List) Each(f func(Value)) {
	for n := l.head; n != nil; n = n.next {
		f(n.val)
	}
}

// ---- Matrix (§3 "Matrix M", §4.F): dense, row-major, arbitrary bounds. ----

type Matrix struct {
	rcHeader
	Lo, Hi []int // inclusive bounds per dimension, not necessarily zero-based
	Data   []Value
}

func NewMatrix(lo, hi []int) *Matrix {
	size := 1
	for i := range lo {
		size *= hi[i] - lo[i] + 1
	}
	data := make([]Value, size)
	for i := range data {
		data[i] = Null
	}
	return &Matrix{rcHeader: newHeader(), Lo: lo, Hi: hi, Data: data}
}

func NewMatrixValue(lo, hi []int) Value { return fromPtr(KindMatrix, NewMatrix(lo, hi)) }

// FromMatrixPtr wraps an already-built *Matrix (e.g. from Clone/Transpose)
// as a Value, for callers outside this package that hold a bare *Matrix.
func FromMatrixPtr(m *Matrix) Value { return fromPtr(KindMatrix, m) }

func (m *Matrix) release() {
	m.rc--
	if m.rc > 0 {
		return
	}
	for _, v := range m.Data {
		v.Release()
	}
}

func (v Value) AsMatrix() (*Matrix, bool) {
	m, ok := v.ptr.(*Matrix)
	return m, ok && v.Kind == KindMatrix
}

// Index maps n-dimensional bounded coordinates to a linear offset, bounds
// checked against Lo/Hi (§4.E container protocol). The layout is row-major:
// the last coordinate varies fastest.
func (m *Matrix) Index(coords []int) (int, bool) {
	if len(coords) != len(m.Lo) {
		return 0, false
	}
	offset := 0
	for i := 0; i < len(coords); i++ {
		if coords[i] < m.Lo[i] || coords[i] > m.Hi[i] {
			return 0, false
		}
		offset = offset*(m.Hi[i]-m.Lo[i]+1) + (coords[i] - m.Lo[i])
	}
	return offset, true
}

func (m *Matrix) Get(coords []int) (Value, bool) {
	off, ok := m.Index(coords)
	if !ok {
		return Value{}, false
	}
	return m.Data[off], true
}

func (m *Matrix) Set(coords []int, val Value) bool {
	off, ok := m.Index(coords)
	if !ok {
		return false
	}
	m.Data[off].Release()
	m.Data[off] = val.Retain()
	return true
}

// Clone copies the bounds and every element slot into a new matrix
// (§4.F). Elements that are themselves containers are shared by reference
// count, not cloned.
func (m *Matrix) Clone() *Matrix {
	lo := append([]int(nil), m.Lo...)
	hi := append([]int(nil), m.Hi...)
	out := NewMatrix(lo, hi)
	for i, v := range m.Data {
		out.Data[i] = v.Retain()
	}
	return out
}

// Transpose permutes a 2-D matrix's indices; since this implementation
// stores data contiguously without a stride abstraction, transpose
// allocates a new backing array (§4.F allows this when stride support is
// absent).
func (m *Matrix) Transpose() *Matrix {
	if len(m.Lo) != 2 {
		panic("value: transpose requires a 2-D matrix")
	}
	lo := []int{m.Lo[1], m.Lo[0]}
	hi := []int{m.Hi[1], m.Hi[0]}
	out := NewMatrix(lo, hi)
	rows := m.Hi[0] - m.Lo[0] + 1
	cols := m.Hi[1] - m.Lo[1] + 1
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			val, _ := m.Get([]int{m.Lo[0] + r, m.Lo[1] + c})
			out.Set([]int{lo[0] + c, lo[1] + r}, val)
		}
	}
	return out
}

// ---- Assoc (§3 "Assoc A", §4.F): open-addressed hash of value tuples. ----

type assocEntry struct {
	used  bool
	key   []Value
	hash  uint64
	val   Value
}

type Assoc struct {
	rcHeader
	entries  []assocEntry
	size     int
	order    [][]Value // never filled: Each walks the hash slots, so iteration follows slot order, not insertion order
}

const assocLoadFactor = 0.75

func NewAssoc() *Assoc {
	return &Assoc{rcHeader: newHeader(), entries: make([]assocEntry, 8)}
}

func NewAssocValue() Value { return fromPtr(KindAssoc, NewAssoc()) }

func (a *Assoc) release() {
	a.rc--
	if a.rc > 0 {
		return
	}
	for _, e := range a.entries {
		if e.used {
			for _, k := range e.key {
				k.Release()
			}
			e.val.Release()
		}
	}
}

func (v Value) AsAssoc() (*Assoc, bool) {
	a, ok := v.ptr.(*Assoc)
	return a, ok && v.Kind == KindAssoc
}

func hashKey(key []Value) uint64 {
	var h uint64 = 1469598103934665603 // FNV-1a offset basis
	mix := func(b byte) {
		h ^= uint64(b)
		h *= 1099511628211
	}
	for _, k := range key {
		mix(byte(k.Kind))
		switch k.Kind {
		case KindNumber:
			for _, c := range k.Num.String() {
				mix(byte(c))
			}
		case KindString:
			s, _ := k.AsString()
			for _, c := range s.Bytes {
				mix(c)
			}
		default:
			id := k.Identity()
			for _, c := range id {
				mix(c)
			}
		}
	}
	return h
}

func keysEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (a *Assoc) grow() {
	old := a.entries
	a.entries = make([]assocEntry, len(old)*2)
	a.size = 0
	for _, e := range old {
		if e.used {
			a.rawSet(e.key, e.hash, e.val)
		}
	}
}

func (a *Assoc) rawSet(key []Value, h uint64, val Value) {
	idx := int(h % uint64(len(a.entries)))
	for {
		e := &a.entries[idx]
		if !e.used {
			*e = assocEntry{used: true, key: key, hash: h, val: val}
			a.size++
			return
		}
		if e.hash == h && keysEqual(e.key, key) {
			e.val = val
			return
		}
		idx = (idx + 1) % len(a.entries)
	}
}

// Set inserts or replaces the value for key.
func (a *Assoc) Set(key []Value, val Value) {
	if float64(a.size+1) > assocLoadFactor*float64(len(a.entries)) {
		a.grow()
	}
	h := hashKey(key)
	idx := int(h % uint64(len(a.entries)))
	for {
		e := &a.entries[idx]
		if !e.used {
			retained := make([]Value, len(key))
			for i, k := range key {
				retained[i] = k.Retain()
			}
			*e = assocEntry{used: true, key: retained, hash: h, val: val.Retain()}
			a.size++
			return
		}
		if e.hash == h && keysEqual(e.key, key) {
			e.val.Release()
			e.val = val.Retain()
			return
		}
		idx = (idx + 1) % len(a.entries)
	}
}

func (a *Assoc) Get(key []Value) (Value, bool) {
	if len(a.entries) == 0 {
		return Value{}, false
	}
	h := hashKey(key)
	idx := int(h % uint64(len(a.entries)))
	for i := 0; i < len(a.entries); i++ {
		e := &a.entries[idx]
		if !e.used {
			return Value{}, false
		}
		if e.hash == h && keysEqual(e.key, key) {
			return e.val, true
		}
		idx = (idx + 1) % len(a.entries)
	}
	return Value{}, false
}

func (a *Assoc) Delete(key []Value) bool {
	h := hashKey(key)
	idx := int(h % uint64(len(a.entries)))
	for i := 0; i < len(a.entries); i++ {
		e := &a.entries[idx]
		if !e.used {
			return false
		}
		if e.hash == h && keysEqual(e.key, key) {
			for _, k := range e.key {
				k.Release()
			}
			e.val.Release()
			*e = assocEntry{}
			a.size--
			return true
		}
		idx = (idx + 1) % len(a.entries)
	}
	return false
}

func (a *Assoc) Len() int { return a.size }

func (a *Assoc) Each(f func(key []Value, val Value)) {
	for _, e := range a.entries {
		if e.used {
			f(e.key, e.val)
		}
	}
}

// ---- Block (§3 "Block B"): raw byte buffer. ----

type Block struct {
	rcHeader
	Data []byte
}

func NewBlock(size int) *Block {
	return &Block{rcHeader: newHeader(), Data: make([]byte, size)}
}

func NewBlockValue(size int) Value { return fromPtr(KindBlock, NewBlock(size)) }

func (b *Block) release() { b.rc--; /* Data freed by GC once unreachable */ }

func (v Value) AsBlock() (*Block, bool) {
	b, ok := v.ptr.(*Block)
	return b, ok && v.Kind == KindBlock
}

// ---- Randstate (§3 "Randstate R", §5): explicitly threaded PRNG state. ----
//
// x/exp/rand.Rand's Source is a plain value (rngSource), not a hidden
// global generator, so capturing/copying/restoring a Randstate is a
// genuine value-semantics operation rather than aliasing a process-wide
// generator, matching §5's "explicitly threaded as a Randstate value."
type Randstate struct {
	rcHeader
	seed  int64
	draws uint64
	rng   *rand.Rand
}

func NewRandstate(seed int64) *Randstate {
	return &Randstate{rcHeader: newHeader(), seed: seed, rng: rand.New(rand.NewSource(uint64(seed)))}
}

func NewRandstateValue(seed int64) Value { return fromPtr(KindRandstate, NewRandstate(seed)) }

func (r *Randstate) release() { r.rc-- }

func (v Value) AsRandstate() (*Randstate, bool) {
	r, ok := v.ptr.(*Randstate)
	return r, ok && v.Kind == KindRandstate
}

// Next draws the next pseudo-random 63-bit integer, advancing the stream.
func (r *Randstate) Next() int64 {
	r.draws++
	return r.rng.Int63()
}

// Copy returns an independent Randstate at the same position in the
// stream by replaying `draws` outputs from the same seed.
func (r *Randstate) Copy() *Randstate {
	n := &Randstate{rcHeader: newHeader(), seed: r.seed, rng: rand.New(rand.NewSource(uint64(r.seed)))}
	for i := uint64(0); i < r.draws; i++ {
		n.rng.Int63()
	}
	n.draws = r.draws
	return n
}

// ---- Object (§3 "Object O", §4.G): user record instances. ----

type Object struct {
	rcHeader
	TypeID string
	Fields []Value
}

func NewObject(typeID string, fieldCount int) *Object {
	o := &Object{rcHeader: newHeader(), TypeID: typeID, Fields: make([]Value, fieldCount)}
	for i := range o.Fields {
		o.Fields[i] = Null
	}
	return o
}

func NewObjectValue(typeID string, fieldCount int) Value {
	return fromPtr(KindObject, NewObject(typeID, fieldCount))
}

func (o *Object) release() {
	o.rc--
	if o.rc > 0 {
		return
	}
	for _, f := range o.Fields {
		f.Release()
	}
}

func (v Value) AsObject() (*Object, bool) {
	o, ok := v.ptr.(*Object)
	return o, ok && v.Kind == KindObject
}

// ---- File (§3 "File fid", §5): a resource owned by its Value. ----

// FileResource is implemented by internal/resource.File; kept as an
// interface here so internal/value has no dependency on the driver-backed
// resource package (dependency points resource -> value, not back).
type FileResource interface {
	Close() error
	Describe() string
}

type FileVal struct {
	rcHeader
	Resource FileResource
}

func NewFileValue(r FileResource) Value {
	return fromPtr(KindFile, &FileVal{rcHeader: newHeader(), Resource: r})
}

func (f *FileVal) release() {
	f.rc--
	if f.rc > 0 {
		return
	}
	if f.Resource != nil {
		f.Resource.Close()
	}
}

func (v Value) AsFile() (*FileVal, bool) {
	f, ok := v.ptr.(*FileVal)
	return f, ok && v.Kind == KindFile
}

// ---- Error (§3 "Error code", §7): first-class error value. ----

type ErrorKind int

const (
	ErrNumeric ErrorKind = iota
	ErrType
	ErrShape
	ErrLookup
	ErrParseCompile
	ErrResource
	ErrUser
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNumeric:
		return "numeric"
	case ErrType:
		return "type"
	case ErrShape:
		return "shape"
	case ErrLookup:
		return "lookup"
	case ErrParseCompile:
		return "parse"
	case ErrResource:
		return "resource"
	case ErrUser:
		return "user"
	default:
		return "unknown"
	}
}

type ErrorVal struct {
	rcHeader
	Kind    ErrorKind
	Code    int
	Message string
}

func NewError(kind ErrorKind, code int, message string) Value {
	return fromPtr(KindError, &ErrorVal{rcHeader: newHeader(), Kind: kind, Code: code, Message: message})
}

func (e *ErrorVal) release() { e.rc-- }

// Equal implements structural value equality across all kinds, used by
// Assoc key comparison and the == operator's container cases.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		if (a.Kind == KindNumber || a.Kind == KindComplex) && (b.Kind == KindNumber || b.Kind == KindComplex) {
			// Normalization at construction time guarantees Complex never
			// carries a zero imaginary part, so differing kinds here means
			// genuinely different values.
			return false
		}
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindNumber:
		return a.Num.Equal(b.Num)
	case KindComplex:
		return a.Cx.Re.Equal(b.Cx.Re) && a.Cx.Im.Equal(b.Cx.Im)
	case KindString:
		sa, _ := a.AsString()
		sb, _ := b.AsString()
		return string(sa.Bytes) == string(sb.Bytes)
	case KindList:
		la, _ := a.AsList()
		lb, _ := b.AsList()
		if la == lb {
			return true
		}
		if la.Len() != lb.Len() {
			return false
		}
		na, nb := la.head, lb.head
		for na != nil {
			if !Equal(na.val, nb.val) {
				return false
			}
			na, nb = na.next, nb.next
		}
		return true
	case KindMatrix:
		ma, _ := a.AsMatrix()
		mb, _ := b.AsMatrix()
		if ma == mb {
			return true
		}
		if len(ma.Data) != len(mb.Data) {
			return false
		}
		for i := range ma.Data {
			if !Equal(ma.Data[i], mb.Data[i]) {
				return false
			}
		}
		return true
	case KindObject:
		oa, _ := a.AsObject()
		ob, _ := b.AsObject()
		return oa == ob
	default:
		return a.ptr == b.ptr
	}
}
