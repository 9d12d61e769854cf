// Package ir provides the tagged value space for skein graphs.
//
// This package contains value types only. All other internal packages
// import ir; ir imports nothing internal. This keeps the value model
// the foundational layer with no circular dependencies.
//
// The value space is a sealed union: None, Bool, Int, Float, DataType,
// Device, String, Bytes, Shape, NDArray, Array, Map and reflected
// Objects. Heap values (Array, Map, NDArray, Object) carry identity;
// everything else behaves as a plain value. ValueKey encodes that
// distinction and is the single hashing policy shared by the
// serializer's node index and Map's key lookup.
package ir
