package lincheck

import "fmt"

// ThreadID identifies a thread within an [Execution]. ThreadID 0 is
// reserved: it names the virtual initialization thread whose single event
// is the [InitializationLabel] root, never part of any real thread's
// sequence but addressable via [InitializationRef].
type ThreadID uint32

// InitThreadID is the thread id reserved for the virtual
// [InitializationLabel] root event.
const InitThreadID ThreadID = 0

// EventID is a monotonically increasing identifier assigned by
// [ExecutionBuilder] in append order, independent of thread position. Each
// builder starts counting from 0.
type EventID uint64

// MemoryLocation identifies a shared-memory cell observed by read/write
// events. It is intentionally a small comparable value (an arena index or
// interned name), never a pointer, per the index-based-reference design:
// object identities differ across runs but locations must remain stable
// and hashable for the checker's visited-set key.
type MemoryLocation uint64

// MutexID identifies a lock/monitor object, following the same
// arena-index convention as [MemoryLocation].
type MutexID uint64

// EventRef is an index-based reference to an event: its thread and its
// 0-based position within that thread's sequence. Using (threadID,
// position) pairs instead of owning pointers avoids cyclic references
// between events, their sources, and the execution that contains them.
type EventRef struct {
	ThreadID       ThreadID
	ThreadPosition int
}

// InitializationRef is the [EventRef] naming the virtual Initialization
// event: the root that supplies default values for first reads and starts
// the main thread.
var InitializationRef = EventRef{ThreadID: InitThreadID, ThreadPosition: 0}

func (r EventRef) String() string {
	if r == InitializationRef {
		return "init"
	}
	return fmt.Sprintf("T%d@%d", r.ThreadID, r.ThreadPosition)
}

// KClass is a closed enumeration of the "kind" of value carried by a
// read/write access, mirroring the source's per-access-type dispatch
// (int, long, object reference, ...). It determines the default value
// handed out by Initialization synchronization and by a never-written
// memory location.
type KClass uint8

const (
	KClassUnknown KClass = iota
	KClassInt
	KClassLong
	KClassBoolean
	KClassObject
)

func (k KClass) String() string {
	switch k {
	case KClassInt:
		return "Int"
	case KClassLong:
		return "Long"
	case KClassBoolean:
		return "Boolean"
	case KClassObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// DefaultValue returns the zero value for k, used when Initialization
// synchronizes with a read request that has no preceding write.
func (k KClass) DefaultValue() Value {
	switch k {
	case KClassInt, KClassLong:
		return IntValue(0)
	case KClassBoolean:
		return BoolValue(false)
	default:
		return NilValue()
	}
}

// Value is the payload carried by read/write/CAS labels. It is a tagged
// union over the handful of shapes the checker must compare and hash:
// integers (covers KClassInt/KClassLong), booleans, and opaque objects
// compared by an application-supplied key.
type Value struct {
	kind    valueKind
	integer int64
	boolean bool
	object  any
}

type valueKind uint8

const (
	valueKindBottom valueKind = iota
	valueKindInt
	valueKindBool
	valueKindNil
	valueKindObject
)

// BottomValue is the "no value" payload carried by a Request-phase read,
// per spec: "Request has value = ⊥".
func BottomValue() Value { return Value{kind: valueKindBottom} }

// IntValue wraps an integer payload (used for both KClassInt and
// KClassLong accesses; the distinction is carried by KClass, not Value).
func IntValue(v int64) Value { return Value{kind: valueKindInt, integer: v} }

// BoolValue wraps a boolean payload.
func BoolValue(v bool) Value { return Value{kind: valueKindBool, boolean: v} }

// NilValue is the default payload for object-typed locations never
// written.
func NilValue() Value { return Value{kind: valueKindNil} }

// ObjectValue wraps an arbitrary comparable application value. Two
// ObjectValues are Equal iff their wrapped values compare == .
func ObjectValue(v any) Value { return Value{kind: valueKindObject, object: v} }

// IsBottom reports whether v is the placeholder payload of a read request.
func (v Value) IsBottom() bool { return v.kind == valueKindBottom }

// Equal reports whether v and other carry the same payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case valueKindInt:
		return v.integer == other.integer
	case valueKindBool:
		return v.boolean == other.boolean
	case valueKindNil, valueKindBottom:
		return true
	case valueKindObject:
		return v.object == other.object
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case valueKindBottom:
		return "⊥"
	case valueKindInt:
		return fmt.Sprintf("%d", v.integer)
	case valueKindBool:
		return fmt.Sprintf("%t", v.boolean)
	case valueKindNil:
		return "nil"
	case valueKindObject:
		return fmt.Sprintf("%v", v.object)
	default:
		return "?"
	}
}

// hashKey returns a value usable as a map key component for the checker's
// visited-set hashing of memory snapshots.
func (v Value) hashKey() any {
	switch v.kind {
	case valueKindInt:
		return v.integer
	case valueKindBool:
		return v.boolean
	case valueKindObject:
		return v.object
	default:
		return nil
	}
}
