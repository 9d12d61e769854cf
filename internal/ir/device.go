package ir

import "strconv"

// DeviceType enumerates the device families a value may live on.
type DeviceType int32

const (
	DeviceCPU      DeviceType = 1
	DeviceCUDA     DeviceType = 2
	DeviceCUDAHost DeviceType = 3
	DeviceOpenCL   DeviceType = 4
	DeviceVulkan   DeviceType = 7
	DeviceMetal    DeviceType = 8
	DeviceROCm     DeviceType = 10
)

var deviceNames = map[DeviceType]string{
	DeviceCPU:      "cpu",
	DeviceCUDA:     "cuda",
	DeviceCUDAHost: "cuda_host",
	DeviceOpenCL:   "opencl",
	DeviceVulkan:   "vulkan",
	DeviceMetal:    "metal",
	DeviceROCm:     "rocm",
}

func (t DeviceType) String() string {
	if s, ok := deviceNames[t]; ok {
		return s
	}
	return "device(" + strconv.Itoa(int(t)) + ")"
}

// Device identifies a concrete device: a family plus an ordinal.
type Device struct {
	DeviceType DeviceType
	DeviceID   int32
}

func (Device) isValue() {}

// CPU returns the default CPU device.
func CPU() Device {
	return Device{DeviceType: DeviceCPU, DeviceID: 0}
}

func (d Device) String() string {
	return d.DeviceType.String() + ":" + strconv.Itoa(int(d.DeviceID))
}
