package transport

// RequestID identifies one StartRequest/EndRequest cycle on a channel, as
// returned by StartRequest. EndRequest does not take it: a channel has at
// most one open cycle, and EndRequest closes that one.
type RequestID uint64

// Status mirrors the runtime's numeric error enumeration, as carried back
// on the wire by EndRequest. A Client call returning a non-nil error means
// the request never completed at all (a transport-boundary failure); a
// nil error with a non-success Status means the round trip completed but
// the remote reported a logical failure, e.g. a failed kernel launch.
type Status uint32

const (
	StatusSuccess                    Status = 0
	StatusInvalidValue               Status = 1
	StatusMemoryAllocation           Status = 2
	StatusInitializationError        Status = 3
	StatusLaunchFailure              Status = 4
	StatusPriorLaunchFailure         Status = 5
	StatusLaunchTimeout              Status = 6
	StatusLaunchOutOfResources       Status = 7
	StatusInvalidDeviceFunction      Status = 8
	StatusInvalidConfiguration       Status = 9
	StatusInvalidDevice              Status = 10
	StatusInvalidMemcpyDirection     Status = 11
	StatusInsufficientDriver         Status = 12
	StatusMissingConfiguration       Status = 13
	StatusNoDevice                   Status = 14
	StatusArrayIsMapped              Status = 15
	StatusAlreadyMapped              Status = 16
	StatusNoKernelImageForDevice     Status = 17
	StatusECCUncorrectable           Status = 18
	StatusSharedObjectSymbolNotFound Status = 19
	StatusSharedObjectInitFailed     Status = 20
	StatusUnsupportedLimit           Status = 21
	StatusDuplicateVariableName      Status = 22
	StatusDuplicateTextureName       Status = 23
	StatusDuplicateSurfaceName       Status = 24
	StatusDevicesUnavailable         Status = 25
	StatusInvalidKernelImage         Status = 26
	StatusInvalidSource              Status = 27
	StatusFileNotFound               Status = 28
	StatusInvalidPtx                 Status = 29
	StatusInvalidGraphicsContext     Status = 30
	StatusInvalidResourceHandle      Status = 31
	StatusNotReady                   Status = 32
	StatusIllegalAddress             Status = 33
	StatusInvalidPitchValue          Status = 34
	StatusInvalidSymbol              Status = 35
	StatusUnknown                    Status = 36
)
