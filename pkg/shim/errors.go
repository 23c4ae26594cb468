package shim

import "github.com/crossgpu/cudashim/pkg/transport"

// Status mirrors the runtime's numeric error enumeration. It is an alias
// for transport.Status since the value actually originates on the wire,
// from the remote's own EndRequest response; GetErrorString exists purely
// so a host that calls the runtime's own string-lookup entry point gets
// the same text back.
type Status = transport.Status

const (
	StatusSuccess                    = transport.StatusSuccess
	StatusInvalidValue               = transport.StatusInvalidValue
	StatusMemoryAllocation           = transport.StatusMemoryAllocation
	StatusInitializationError        = transport.StatusInitializationError
	StatusLaunchFailure              = transport.StatusLaunchFailure
	StatusPriorLaunchFailure         = transport.StatusPriorLaunchFailure
	StatusLaunchTimeout              = transport.StatusLaunchTimeout
	StatusLaunchOutOfResources       = transport.StatusLaunchOutOfResources
	StatusInvalidDeviceFunction      = transport.StatusInvalidDeviceFunction
	StatusInvalidConfiguration       = transport.StatusInvalidConfiguration
	StatusInvalidDevice              = transport.StatusInvalidDevice
	StatusInvalidMemcpyDirection     = transport.StatusInvalidMemcpyDirection
	StatusInsufficientDriver         = transport.StatusInsufficientDriver
	StatusMissingConfiguration       = transport.StatusMissingConfiguration
	StatusNoDevice                   = transport.StatusNoDevice
	StatusArrayIsMapped              = transport.StatusArrayIsMapped
	StatusAlreadyMapped              = transport.StatusAlreadyMapped
	StatusNoKernelImageForDevice     = transport.StatusNoKernelImageForDevice
	StatusECCUncorrectable           = transport.StatusECCUncorrectable
	StatusSharedObjectSymbolNotFound = transport.StatusSharedObjectSymbolNotFound
	StatusSharedObjectInitFailed     = transport.StatusSharedObjectInitFailed
	StatusUnsupportedLimit           = transport.StatusUnsupportedLimit
	StatusDuplicateVariableName      = transport.StatusDuplicateVariableName
	StatusDuplicateTextureName       = transport.StatusDuplicateTextureName
	StatusDuplicateSurfaceName       = transport.StatusDuplicateSurfaceName
	StatusDevicesUnavailable         = transport.StatusDevicesUnavailable
	StatusInvalidKernelImage         = transport.StatusInvalidKernelImage
	StatusInvalidSource              = transport.StatusInvalidSource
	StatusFileNotFound               = transport.StatusFileNotFound
	StatusInvalidPtx                 = transport.StatusInvalidPtx
	StatusInvalidGraphicsContext     = transport.StatusInvalidGraphicsContext
	StatusInvalidResourceHandle      = transport.StatusInvalidResourceHandle
	StatusNotReady                   = transport.StatusNotReady
	StatusIllegalAddress             = transport.StatusIllegalAddress
	StatusInvalidPitchValue          = transport.StatusInvalidPitchValue
	StatusInvalidSymbol              = transport.StatusInvalidSymbol
	StatusUnknown                    = transport.StatusUnknown
)

var errorStrings = map[Status]string{
	StatusSuccess:                    "cudaSuccess: No errors",
	StatusInvalidValue:               "cudaErrorInvalidValue: Invalid value",
	StatusMemoryAllocation:           "cudaErrorMemoryAllocation: Out of memory",
	StatusInitializationError:        "cudaErrorInitializationError: Initialization error",
	StatusLaunchFailure:              "cudaErrorLaunchFailure: Launch failure",
	StatusPriorLaunchFailure:         "cudaErrorPriorLaunchFailure: Launch failure of a previous kernel",
	StatusLaunchTimeout:              "cudaErrorLaunchTimeout: Launch timed out",
	StatusLaunchOutOfResources:       "cudaErrorLaunchOutOfResources: Launch exceeded resources",
	StatusInvalidDeviceFunction:      "cudaErrorInvalidDeviceFunction: Invalid device function",
	StatusInvalidConfiguration:       "cudaErrorInvalidConfiguration: Invalid configuration",
	StatusInvalidDevice:              "cudaErrorInvalidDevice: Invalid device",
	StatusInvalidMemcpyDirection:     "cudaErrorInvalidMemcpyDirection: Invalid memory copy direction",
	StatusInsufficientDriver:         "cudaErrorInsufficientDriver: CUDA driver is insufficient for the runtime version",
	StatusMissingConfiguration:       "cudaErrorMissingConfiguration: Missing configuration",
	StatusNoDevice:                   "cudaErrorNoDevice: No CUDA-capable device is detected",
	StatusArrayIsMapped:              "cudaErrorArrayIsMapped: Array is already mapped",
	StatusAlreadyMapped:              "cudaErrorAlreadyMapped: Resource is already mapped",
	StatusNoKernelImageForDevice:     "cudaErrorNoKernelImageForDevice: No kernel image is available for the device",
	StatusECCUncorrectable:           "cudaErrorECCUncorrectable: Uncorrectable ECC error detected",
	StatusSharedObjectSymbolNotFound: "cudaErrorSharedObjectSymbolNotFound: Shared object symbol not found",
	StatusSharedObjectInitFailed:     "cudaErrorSharedObjectInitFailed: Shared object initialization failed",
	StatusUnsupportedLimit:           "cudaErrorUnsupportedLimit: Unsupported limit",
	StatusDuplicateVariableName:      "cudaErrorDuplicateVariableName: Duplicate global variable name",
	StatusDuplicateTextureName:       "cudaErrorDuplicateTextureName: Duplicate texture name",
	StatusDuplicateSurfaceName:       "cudaErrorDuplicateSurfaceName: Duplicate surface name",
	StatusDevicesUnavailable:         "cudaErrorDevicesUnavailable: All devices are busy or unavailable",
	StatusInvalidKernelImage:         "cudaErrorInvalidKernelImage: The kernel image is invalid",
	StatusInvalidSource:              "cudaErrorInvalidSource: The device kernel source is invalid",
	StatusFileNotFound:               "cudaErrorFileNotFound: File not found",
	StatusInvalidPtx:                 "cudaErrorInvalidPtx: The PTX is invalid",
	StatusInvalidGraphicsContext:     "cudaErrorInvalidGraphicsContext: Invalid OpenGL or DirectX context",
	StatusInvalidResourceHandle:      "cudaErrorInvalidResourceHandle: Invalid resource handle",
	StatusNotReady:                   "cudaErrorNotReady: CUDA operations are not ready",
	StatusIllegalAddress:             "cudaErrorIllegalAddress: An illegal memory access occurred",
	StatusInvalidPitchValue:          "cudaErrorInvalidPitchValue: Invalid pitch value",
	StatusInvalidSymbol:              "cudaErrorInvalidSymbol: Invalid symbol",
	StatusUnknown:                    "cudaErrorUnknown: Unknown error",
}
