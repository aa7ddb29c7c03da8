package voxel

// Kind identifies the element type of a grid.
//
// The numeric values are part of the container wire format; do not reorder.
type Kind int

const (
	KindUnknown Kind = iota
	KindFloat
	KindVectorFloat
	KindBoolean
	KindDouble
	KindInt
	KindInt64
	KindVectorInt
	KindVectorDouble
	KindString
	KindMask
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindFloat:        "float",
	KindVectorFloat:  "vector_float",
	KindBoolean:      "boolean",
	KindDouble:       "double",
	KindInt:          "int",
	KindInt64:        "int64",
	KindVectorInt:    "vector_int",
	KindVectorDouble: "vector_double",
	KindString:       "string",
	KindMask:         "mask",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a kind name from a container file back to a Kind.
// Unrecognized names parse to KindUnknown so files written by newer
// library versions still enumerate.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindUnknown
}

// Channels returns the number of dense export channels for the kind:
// 1 for scalar, boolean, integer and mask grids, 3 for vector grids,
// 0 for string and unknown grids.
func (k Kind) Channels() int {
	switch k {
	case KindBoolean, KindFloat, KindDouble, KindInt, KindInt64, KindMask:
		return 1
	case KindVectorFloat, KindVectorDouble, KindVectorInt:
		return 3
	case KindString, KindUnknown:
		return 0
	}
	return 0
}

// elemBytes is the in-memory size of one voxel value, used for resident
// memory accounting. String values count their slice header only.
func (k Kind) elemBytes() int64 {
	switch k {
	case KindBoolean, KindMask:
		return 1
	case KindFloat, KindInt:
		return 4
	case KindDouble, KindInt64:
		return 8
	case KindVectorFloat, KindVectorInt:
		return 12
	case KindVectorDouble:
		return 24
	case KindString:
		return 16
	}
	return 0
}

// Element constrains the Go value types a grid can store. Mask grids share
// bool storage with boolean grids; an active mask voxel reads as true.
type Element interface {
	float32 | float64 | bool | int32 | int64 | [3]float32 | [3]float64 | [3]int32 | string
}

// kindOf maps an element type to the Kind a generic constructor records.
func kindOf[T Element]() Kind {
	var z T
	switch any(z).(type) {
	case float32:
		return KindFloat
	case float64:
		return KindDouble
	case bool:
		return KindBoolean
	case int32:
		return KindInt
	case int64:
		return KindInt64
	case [3]float32:
		return KindVectorFloat
	case [3]float64:
		return KindVectorDouble
	case [3]int32:
		return KindVectorInt
	case string:
		return KindString
	}
	return KindUnknown
}
