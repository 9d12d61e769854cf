package ir

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/x448/float16"
)

// ndarrayMagic tags the binary tensor blob so a corrupted or foreign
// payload fails fast on decode.
const ndarrayMagic uint64 = 0xDD5E40F096B4A13F

// NDArray is an opaque tensor: a dtype, a shape and a contiguous
// little-endian CPU buffer. NDArray is a heap value; two occurrences
// of the same *NDArray share one serialized payload.
type NDArray struct {
	DType  DataType
	Shape  Shape
	Device Device
	Data   []byte
}

func (*NDArray) isValue() {}

// NewNDArray allocates a zero-filled tensor of the given dtype and
// shape on the CPU.
func NewNDArray(dtype DataType, shape Shape) *NDArray {
	a := &NDArray{DType: dtype, Shape: shape, Device: CPU()}
	a.Data = make([]byte, a.NumBytes())
	return a
}

// NumElements returns the element count implied by the shape.
func (a *NDArray) NumElements() int64 {
	n := int64(1)
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// NumBytes returns the contiguous buffer size implied by shape and
// dtype.
func (a *NDArray) NumBytes() int64 {
	return a.NumElements() * a.DType.ElemBytes()
}

// IsContiguous reports whether the buffer length matches the
// shape/dtype-implied size exactly.
func (a *NDArray) IsContiguous() bool {
	return int64(len(a.Data)) == a.NumBytes()
}

// Float64At decodes element i of a scalar float tensor as float64.
// Used by diagnostics; float16 lanes decode through
// github.com/x448/float16.
func (a *NDArray) Float64At(i int64) (float64, error) {
	if a.DType.Lanes != 1 || a.DType.Code != DTypeFloat {
		return 0, fmt.Errorf("cannot decode element of dtype %s as float", a.DType)
	}
	off := i * a.DType.ElemBytes()
	if off < 0 || off+a.DType.ElemBytes() > int64(len(a.Data)) {
		return 0, fmt.Errorf("element %d out of range", i)
	}
	switch a.DType.Bits {
	case 16:
		return float64(float16.Frombits(binary.LittleEndian.Uint16(a.Data[off:])).Float32()), nil
	case 32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(a.Data[off:]))), nil
	case 64:
		return math.Float64frombits(binary.LittleEndian.Uint64(a.Data[off:])), nil
	}
	return 0, fmt.Errorf("cannot decode element of dtype %s as float", a.DType)
}

// EncodeBinary serializes the tensor in the registered blob format:
// magic, reserved word, device, ndim, dtype triple, shape dims, byte
// size, then the raw buffer. All integers are little-endian.
func (a *NDArray) EncodeBinary() []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	var scratch [8]byte

	le.PutUint64(scratch[:], ndarrayMagic)
	buf.Write(scratch[:8])
	le.PutUint64(scratch[:], 0) // reserved
	buf.Write(scratch[:8])
	le.PutUint32(scratch[:4], uint32(a.Device.DeviceType))
	buf.Write(scratch[:4])
	le.PutUint32(scratch[:4], uint32(a.Device.DeviceID))
	buf.Write(scratch[:4])
	le.PutUint32(scratch[:4], uint32(len(a.Shape)))
	buf.Write(scratch[:4])
	buf.WriteByte(byte(a.DType.Code))
	buf.WriteByte(a.DType.Bits)
	le.PutUint16(scratch[:2], a.DType.Lanes)
	buf.Write(scratch[:2])
	for _, d := range a.Shape {
		le.PutUint64(scratch[:], uint64(d))
		buf.Write(scratch[:8])
	}
	le.PutUint64(scratch[:], uint64(len(a.Data)))
	buf.Write(scratch[:8])
	buf.Write(a.Data)
	return buf.Bytes()
}

// DecodeNDArray parses a blob produced by EncodeBinary.
func DecodeNDArray(blob []byte) (*NDArray, error) {
	le := binary.LittleEndian
	r := bytes.NewReader(blob)

	var magic, reserved uint64
	if err := binary.Read(r, le, &magic); err != nil {
		return nil, fmt.Errorf("ndarray blob truncated: %w", err)
	}
	if magic != ndarrayMagic {
		return nil, fmt.Errorf("ndarray blob has bad magic %#x", magic)
	}
	if err := binary.Read(r, le, &reserved); err != nil {
		return nil, fmt.Errorf("ndarray blob truncated: %w", err)
	}

	var devType, devID int32
	var ndim uint32
	if err := binary.Read(r, le, &devType); err != nil {
		return nil, fmt.Errorf("ndarray blob truncated: %w", err)
	}
	if err := binary.Read(r, le, &devID); err != nil {
		return nil, fmt.Errorf("ndarray blob truncated: %w", err)
	}
	if err := binary.Read(r, le, &ndim); err != nil {
		return nil, fmt.Errorf("ndarray blob truncated: %w", err)
	}

	var code, bits uint8
	var lanes uint16
	if err := binary.Read(r, le, &code); err != nil {
		return nil, fmt.Errorf("ndarray blob truncated: %w", err)
	}
	if err := binary.Read(r, le, &bits); err != nil {
		return nil, fmt.Errorf("ndarray blob truncated: %w", err)
	}
	if err := binary.Read(r, le, &lanes); err != nil {
		return nil, fmt.Errorf("ndarray blob truncated: %w", err)
	}

	a := &NDArray{
		DType:  DataType{Code: DTypeCode(code), Bits: bits, Lanes: lanes},
		Shape:  make(Shape, ndim),
		Device: Device{DeviceType: DeviceType(devType), DeviceID: devID},
	}
	for i := range a.Shape {
		if err := binary.Read(r, le, &a.Shape[i]); err != nil {
			return nil, fmt.Errorf("ndarray blob truncated: %w", err)
		}
	}
	var size uint64
	if err := binary.Read(r, le, &size); err != nil {
		return nil, fmt.Errorf("ndarray blob truncated: %w", err)
	}
	if size != uint64(a.NumBytes()) {
		return nil, fmt.Errorf("ndarray blob size %d does not match shape %v of %s", size, a.Shape, a.DType)
	}
	a.Data = make([]byte, size)
	if _, err := io.ReadFull(r, a.Data); err != nil {
		return nil, fmt.Errorf("ndarray blob truncated: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("ndarray blob has %d trailing bytes", r.Len())
	}
	return a, nil
}
