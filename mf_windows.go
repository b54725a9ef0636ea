//go:build windows

package mfcam

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/google/uuid"
	"golang.org/x/sys/windows"

	"github.com/kevmo314/go-mfcam/pkg/pixfmt"
)

func mustGUID(s string) windows.GUID {
	d1, d2, d3, d4 := pixfmt.Format(uuid.MustParse(s)).GUIDFields()
	return windows.GUID{Data1: d1, Data2: d2, Data3: d3, Data4: d4}
}

func formatGUID(f pixfmt.Format) windows.GUID {
	d1, d2, d3, d4 := f.GUIDFields()
	return windows.GUID{Data1: d1, Data2: d2, Data3: d3, Data4: d4}
}

func guidFormat(g windows.GUID) pixfmt.Format {
	return pixfmt.FromGUIDFields(g.Data1, g.Data2, g.Data3, g.Data4)
}

// Media Foundation GUIDs
var (
	MF_DEVSOURCE_ATTRIBUTE_SOURCE_TYPE                      = mustGUID("c60ac5fe-252a-478f-a0ef-bc8fa5f7cad3")
	MF_DEVSOURCE_ATTRIBUTE_SOURCE_TYPE_VIDCAP               = mustGUID("8ac3587a-4ae7-42d8-99e0-0a6013eef90f")
	MF_DEVSOURCE_ATTRIBUTE_FRIENDLY_NAME                    = mustGUID("60d0e559-52f8-4fa2-bbce-acdb34a8ec01")
	MF_DEVSOURCE_ATTRIBUTE_SOURCE_TYPE_VIDCAP_SYMBOLIC_LINK = mustGUID("58f0aad8-22bf-4f8a-bb3d-d2c4978c6e2f")
	MF_MT_MAJOR_TYPE                                        = mustGUID("48eba18e-f8c9-4687-bf11-0a74c9f96a8f")
	MF_MT_SUBTYPE                                           = mustGUID("f7e34c9a-42e8-4714-b74b-cb29d72c35e5")
	MF_MT_FRAME_SIZE                                        = mustGUID("1652c33d-d6b2-4012-b834-72030849a37d")
	MF_MT_FRAME_RATE                                        = mustGUID("c459a2e8-3d2c-4e44-b132-fee5156c7bb0")
	MF_MT_DEFAULT_STRIDE                                    = mustGUID("644b4e48-1e02-4516-b0eb-c01ca9d49ac6")
	MF_CAPTURE_ENGINE_USE_VIDEO_DEVICE_ONLY                 = mustGUID("7e025171-cf32-4f2e-8f19-410577b73a66")

	MF_CAPTURE_ENGINE_INITIALIZED             = mustGUID("219992bc-cf92-4531-a1ae-96e1e886c8f1")
	MF_CAPTURE_ENGINE_PREVIEW_STARTED         = mustGUID("a416df21-f9d3-4a74-991b-b817298952c4")
	MF_CAPTURE_ENGINE_PREVIEW_STOPPED         = mustGUID("13d5143c-1edd-4e50-a2ef-350a47678060")
	MF_CAPTURE_ENGINE_RECORD_STARTED          = mustGUID("ac2b027b-ddf9-48a0-89be-38ab35ef45c0")
	MF_CAPTURE_ENGINE_RECORD_STOPPED          = mustGUID("55e5200a-f98f-4c24-a8f0-8c0e7d6ac0e6")
	MF_CAPTURE_ENGINE_PHOTO_TAKEN             = mustGUID("3c50c445-7304-48eb-865d-bba19ba3af5c")
	MF_CAPTURE_ENGINE_ERROR                   = mustGUID("46b89fc6-33cc-4399-9dad-784de77d587c")
	MF_CAPTURE_ENGINE_CAMERA_STREAM_BLOCKED   = mustGUID("a4209417-8d39-46f3-b759-5912528f4207")
	MF_CAPTURE_ENGINE_CAMERA_STREAM_UNBLOCKED = mustGUID("9be9eef0-cdaf-4717-8564-834aae66415c")
	MF_CAPTURE_ENGINE_OUTPUT_MEDIA_TYPE_SET   = mustGUID("caaad994-83ec-45e9-a30a-1f20aadb9831")

	CLSID_MFCaptureEngine             = mustGUID("efce38d3-8914-4674-a7df-ae1b3d654b8a")
	CLSID_MFCaptureEngineClassFactory = mustGUID("efce38d3-8914-4674-a7df-ae1b3d654b8a")

	IID_IUnknown                         = mustGUID("00000000-0000-0000-c000-000000000046")
	IID_IMFMediaSource                   = mustGUID("279a808d-aec7-40c8-9c6b-a6b492c78a66")
	IID_IMF2DBuffer                      = mustGUID("7dc9d5f9-9ed9-44ec-9bbf-0600bb589fbb")
	IID_IMFCaptureEngine                 = mustGUID("a6bba433-176b-48b2-b375-53aa03473207")
	IID_IMFCaptureEngineClassFactory     = mustGUID("8f02d140-56fc-4302-a705-3a97c78be779")
	IID_IMFCaptureEngineOnEventCallback  = mustGUID("aeda51c0-9025-4983-9012-de597b88b089")
	IID_IMFCaptureEngineOnSampleCallback = mustGUID("52150b82-ab39-4467-980f-e48bf0822ecd")
	IID_IMFCapturePreviewSink            = mustGUID("77346cfd-5b49-4d73-ace0-5b52a859f2e0")
	IID_IAMCameraControl                 = mustGUID("c6e13370-30ac-11d0-a18c-00a0c9118956")
	IID_IAMVideoProcAmp                  = mustGUID("c6e13360-30ac-11d0-a18c-00a0c9118956")
	MFVideoFormat_RGB32                  = formatGUID(pixfmt.FormatRGB32)
	captureEventGUIDs                    = map[windows.GUID]EventKind{}
)

func init() {
	captureEventGUIDs[MF_CAPTURE_ENGINE_INITIALIZED] = EventInitialized
	captureEventGUIDs[MF_CAPTURE_ENGINE_PREVIEW_STARTED] = EventPreviewStarted
	captureEventGUIDs[MF_CAPTURE_ENGINE_PREVIEW_STOPPED] = EventPreviewStopped
	captureEventGUIDs[MF_CAPTURE_ENGINE_RECORD_STARTED] = EventRecordStarted
	captureEventGUIDs[MF_CAPTURE_ENGINE_RECORD_STOPPED] = EventRecordStopped
	captureEventGUIDs[MF_CAPTURE_ENGINE_PHOTO_TAKEN] = EventPhotoTaken
	captureEventGUIDs[MF_CAPTURE_ENGINE_ERROR] = EventError
	captureEventGUIDs[MF_CAPTURE_ENGINE_CAMERA_STREAM_BLOCKED] = EventCameraStreamBlocked
	captureEventGUIDs[MF_CAPTURE_ENGINE_CAMERA_STREAM_UNBLOCKED] = EventCameraStreamUnblocked
	captureEventGUIDs[MF_CAPTURE_ENGINE_OUTPUT_MEDIA_TYPE_SET] = EventOutputMediaTypeSet
}

// Media Foundation constants
const (
	MF_VERSION         = 0x00020070 // MF 2.0
	MFSTARTUP_FULL     = 0x0
	CLSCTX_INPROC      = 0x1
	S_OK               = 0x0
	S_FALSE            = 0x1
	E_NOINTERFACE      = 0x80004002
	E_POINTER          = 0x80004003
	E_FAIL             = 0x80004005
	RPC_E_CHANGED_MODE = 0x80010106

	MF_CAPTURE_ENGINE_SINK_TYPE_PREVIEW                         = 1
	MF_CAPTURE_ENGINE_PREFERRED_SOURCE_STREAM_FOR_VIDEO_PREVIEW = 0xFFFFFFFA
)

var (
	modmfplat = windows.NewLazySystemDLL("mfplat.dll")
	modmf     = windows.NewLazySystemDLL("mf.dll")
	modole32  = windows.NewLazySystemDLL("ole32.dll")

	procMFStartup           = modmfplat.NewProc("MFStartup")
	procMFShutdown          = modmfplat.NewProc("MFShutdown")
	procMFCreateAttributes  = modmfplat.NewProc("MFCreateAttributes")
	procMFCreateMediaType   = modmfplat.NewProc("MFCreateMediaType")
	procMFEnumDeviceSources = modmf.NewProc("MFEnumDeviceSources")
	procCoCreateInstance    = modole32.NewProc("CoCreateInstance")
	procCoTaskMemFree       = modole32.NewProc("CoTaskMemFree")
)

// hresultError converts a failed HRESULT into an error naming the call.
func hresultError(op string, hr uintptr) error {
	if int32(uint32(hr)) >= 0 {
		return nil
	}
	return fmt.Errorf("%s failed: %w", op, ole.NewError(uintptr(uint32(hr))))
}

type IUnknownVtbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

func comVtbl(obj unsafe.Pointer) *IUnknownVtbl {
	return *(**IUnknownVtbl)(obj)
}

func comAddRef(obj unsafe.Pointer) {
	if obj != nil {
		syscall.SyscallN(comVtbl(obj).AddRef, uintptr(obj))
	}
}

func comRelease(obj unsafe.Pointer) {
	if obj != nil {
		syscall.SyscallN(comVtbl(obj).Release, uintptr(obj))
	}
}

func comQueryInterface(obj unsafe.Pointer, iid *windows.GUID) (unsafe.Pointer, error) {
	var out unsafe.Pointer
	hr, _, _ := syscall.SyscallN(comVtbl(obj).QueryInterface,
		uintptr(obj),
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&out)))
	if err := hresultError("QueryInterface", hr); err != nil {
		return nil, err
	}
	return out, nil
}

// IMFAttributes vtable
type IMFAttributesVtbl struct {
	IUnknownVtbl
	GetItem            uintptr
	GetItemType        uintptr
	CompareItem        uintptr
	Compare            uintptr
	GetUINT32          uintptr
	GetUINT64          uintptr
	GetDouble          uintptr
	GetGUID            uintptr
	GetStringLength    uintptr
	GetString          uintptr
	GetAllocatedString uintptr
	GetBlobSize        uintptr
	GetBlob            uintptr
	GetAllocatedBlob   uintptr
	GetUnknown         uintptr
	SetItem            uintptr
	DeleteItem         uintptr
	DeleteAllItems     uintptr
	SetUINT32          uintptr
	SetUINT64          uintptr
	SetDouble          uintptr
	SetGUID            uintptr
	SetString          uintptr
	SetBlob            uintptr
	SetUnknown         uintptr
	LockStore          uintptr
	UnlockStore        uintptr
	GetCount           uintptr
	GetItemByIndex     uintptr
	CopyAllItems       uintptr
}

type IMFAttributes struct {
	vtbl *IMFAttributesVtbl
}

func (a *IMFAttributes) Release() {
	comRelease(unsafe.Pointer(a))
}

func (a *IMFAttributes) SetGUID(key *windows.GUID, value *windows.GUID) error {
	hr, _, _ := syscall.SyscallN(a.vtbl.SetGUID,
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(key)),
		uintptr(unsafe.Pointer(value)))
	return hresultError("SetGUID", hr)
}

func (a *IMFAttributes) SetUINT32(key *windows.GUID, value uint32) error {
	hr, _, _ := syscall.SyscallN(a.vtbl.SetUINT32,
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(key)),
		uintptr(value))
	return hresultError("SetUINT32", hr)
}

func (a *IMFAttributes) GetUINT32(key *windows.GUID) (uint32, error) {
	var val uint32
	hr, _, _ := syscall.SyscallN(a.vtbl.GetUINT32,
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(key)),
		uintptr(unsafe.Pointer(&val)))
	return val, hresultError("GetUINT32", hr)
}

func (a *IMFAttributes) GetUINT64(key *windows.GUID) (uint64, error) {
	var val uint64
	hr, _, _ := syscall.SyscallN(a.vtbl.GetUINT64,
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(key)),
		uintptr(unsafe.Pointer(&val)))
	return val, hresultError("GetUINT64", hr)
}

func (a *IMFAttributes) GetGUID(key *windows.GUID) (windows.GUID, error) {
	var guid windows.GUID
	hr, _, _ := syscall.SyscallN(a.vtbl.GetGUID,
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(key)),
		uintptr(unsafe.Pointer(&guid)))
	return guid, hresultError("GetGUID", hr)
}

func (a *IMFAttributes) GetString(key *windows.GUID) (string, error) {
	var length uint32
	hr, _, _ := syscall.SyscallN(a.vtbl.GetStringLength,
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(key)),
		uintptr(unsafe.Pointer(&length)))
	if err := hresultError("GetStringLength", hr); err != nil {
		return "", err
	}

	buf := make([]uint16, length+1)
	hr, _, _ = syscall.SyscallN(a.vtbl.GetString,
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(key)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(length+1),
		0)
	if err := hresultError("GetString", hr); err != nil {
		return "", err
	}

	return windows.UTF16ToString(buf), nil
}

// CopyAllItems copies every attribute into dst.
func (a *IMFAttributes) CopyAllItems(dst *IMFAttributes) error {
	hr, _, _ := syscall.SyscallN(a.vtbl.CopyAllItems,
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(dst)))
	return hresultError("CopyAllItems", hr)
}

// GetFrameSize unpacks MF_MT_FRAME_SIZE, width in the high word.
func (a *IMFAttributes) GetFrameSize() (width, height uint32, err error) {
	v, err := a.GetUINT64(&MF_MT_FRAME_SIZE)
	if err != nil {
		return 0, 0, err
	}
	return uint32(v >> 32), uint32(v & 0xFFFFFFFF), nil
}

// IMFActivate is an activation object that can create media sources
type IMFActivateVtbl struct {
	IMFAttributesVtbl
	ActivateObject uintptr
	ShutdownObject uintptr
	DetachObject   uintptr
}

type IMFActivate struct {
	vtbl *IMFActivateVtbl
}

func (a *IMFActivate) AsAttributes() *IMFAttributes {
	return (*IMFAttributes)(unsafe.Pointer(a))
}

func (a *IMFActivate) Release() {
	comRelease(unsafe.Pointer(a))
}

func (a *IMFActivate) ActivateMediaSource() (*IMFMediaSource, error) {
	var obj *IMFMediaSource
	hr, _, _ := syscall.SyscallN(a.vtbl.ActivateObject,
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(&IID_IMFMediaSource)),
		uintptr(unsafe.Pointer(&obj)))
	return obj, hresultError("ActivateObject", hr)
}

func (a *IMFActivate) ShutdownObject() {
	syscall.SyscallN(a.vtbl.ShutdownObject, uintptr(unsafe.Pointer(a)))
}

// IMFMediaSource vtable
type IMFMediaSourceVtbl struct {
	IUnknownVtbl
	GetEvent                     uintptr
	BeginGetEvent                uintptr
	EndGetEvent                  uintptr
	QueueEvent                   uintptr
	GetCharacteristics           uintptr
	CreatePresentationDescriptor uintptr
	Start                        uintptr
	Stop                         uintptr
	Pause                        uintptr
	Shutdown                     uintptr
}

type IMFMediaSource struct {
	vtbl *IMFMediaSourceVtbl
}

func (s *IMFMediaSource) Release() {
	comRelease(unsafe.Pointer(s))
}

func (s *IMFMediaSource) QueryInterface(iid *windows.GUID) (unsafe.Pointer, error) {
	return comQueryInterface(unsafe.Pointer(s), iid)
}

func (s *IMFMediaSource) Shutdown() {
	syscall.SyscallN(s.vtbl.Shutdown, uintptr(unsafe.Pointer(s)))
}

// IMFMediaType vtable (extends IMFAttributes)
type IMFMediaTypeVtbl struct {
	IMFAttributesVtbl
	GetMajorType       uintptr
	IsCompressedFormat uintptr
	IsEqual            uintptr
	GetRepresentation  uintptr
	FreeRepresentation uintptr
}

type IMFMediaType struct {
	vtbl *IMFMediaTypeVtbl
}

func (t *IMFMediaType) AsAttributes() *IMFAttributes {
	return (*IMFAttributes)(unsafe.Pointer(t))
}

func (t *IMFMediaType) Release() {
	comRelease(unsafe.Pointer(t))
}

// IMFSample vtable
type IMFSampleVtbl struct {
	IMFAttributesVtbl
	GetSampleFlags            uintptr
	SetSampleFlags            uintptr
	GetSampleTime             uintptr
	SetSampleTime             uintptr
	GetSampleDuration         uintptr
	SetSampleDuration         uintptr
	GetBufferCount            uintptr
	GetBufferByIndex          uintptr
	ConvertToContiguousBuffer uintptr
	AddBuffer                 uintptr
	RemoveBufferByIndex       uintptr
	RemoveAllBuffers          uintptr
	GetTotalLength            uintptr
	CopyToBuffer              uintptr
}

type IMFSample struct {
	vtbl *IMFSampleVtbl
}

func (s *IMFSample) AddRef() {
	comAddRef(unsafe.Pointer(s))
}

func (s *IMFSample) Release() {
	comRelease(unsafe.Pointer(s))
}

// GetSampleTime returns the presentation time in 100ns units.
func (s *IMFSample) GetSampleTime() (int64, error) {
	var t int64
	hr, _, _ := syscall.SyscallN(s.vtbl.GetSampleTime,
		uintptr(unsafe.Pointer(s)),
		uintptr(unsafe.Pointer(&t)))
	return t, hresultError("GetSampleTime", hr)
}

func (s *IMFSample) ConvertToContiguousBuffer() (*IMFMediaBuffer, error) {
	var buf *IMFMediaBuffer
	hr, _, _ := syscall.SyscallN(s.vtbl.ConvertToContiguousBuffer,
		uintptr(unsafe.Pointer(s)),
		uintptr(unsafe.Pointer(&buf)))
	return buf, hresultError("ConvertToContiguousBuffer", hr)
}

// IMFMediaBuffer vtable
type IMFMediaBufferVtbl struct {
	IUnknownVtbl
	Lock             uintptr
	Unlock           uintptr
	GetCurrentLength uintptr
	SetCurrentLength uintptr
	GetMaxLength     uintptr
}

type IMFMediaBuffer struct {
	vtbl *IMFMediaBufferVtbl
}

func (b *IMFMediaBuffer) Release() {
	comRelease(unsafe.Pointer(b))
}

// Lock returns the buffer memory. It stays valid until Unlock.
func (b *IMFMediaBuffer) Lock() ([]byte, error) {
	var ptr *byte
	var maxLen, curLen uint32

	hr, _, _ := syscall.SyscallN(b.vtbl.Lock,
		uintptr(unsafe.Pointer(b)),
		uintptr(unsafe.Pointer(&ptr)),
		uintptr(unsafe.Pointer(&maxLen)),
		uintptr(unsafe.Pointer(&curLen)))
	if err := hresultError("Lock", hr); err != nil {
		return nil, err
	}
	return unsafe.Slice(ptr, curLen), nil
}

func (b *IMFMediaBuffer) Unlock() {
	syscall.SyscallN(b.vtbl.Unlock, uintptr(unsafe.Pointer(b)))
}

func (b *IMFMediaBuffer) As2DBuffer() (*IMF2DBuffer, error) {
	p, err := comQueryInterface(unsafe.Pointer(b), &IID_IMF2DBuffer)
	if err != nil {
		return nil, err
	}
	return (*IMF2DBuffer)(p), nil
}

// IMF2DBuffer vtable
type IMF2DBufferVtbl struct {
	IUnknownVtbl
	Lock2D               uintptr
	Unlock2D             uintptr
	GetScanline0AndPitch uintptr
	IsContiguousFormat   uintptr
	GetContiguousLength  uintptr
	ContiguousCopyTo     uintptr
	ContiguousCopyFrom   uintptr
}

type IMF2DBuffer struct {
	vtbl *IMF2DBufferVtbl
}

func (b *IMF2DBuffer) Release() {
	comRelease(unsafe.Pointer(b))
}

// Lock2D returns the first scanline and the signed pitch between rows. A
// negative pitch means the image is stored bottom-up.
func (b *IMF2DBuffer) Lock2D() (unsafe.Pointer, int32, error) {
	var scan0 unsafe.Pointer
	var pitch int32
	hr, _, _ := syscall.SyscallN(b.vtbl.Lock2D,
		uintptr(unsafe.Pointer(b)),
		uintptr(unsafe.Pointer(&scan0)),
		uintptr(unsafe.Pointer(&pitch)))
	return scan0, pitch, hresultError("Lock2D", hr)
}

func (b *IMF2DBuffer) Unlock2D() {
	syscall.SyscallN(b.vtbl.Unlock2D, uintptr(unsafe.Pointer(b)))
}

// IMFMediaEvent vtable
type IMFMediaEventVtbl struct {
	IMFAttributesVtbl
	GetType         uintptr
	GetExtendedType uintptr
	GetStatus       uintptr
	GetValue        uintptr
}

type IMFMediaEvent struct {
	vtbl *IMFMediaEventVtbl
}

func (e *IMFMediaEvent) GetExtendedType() (windows.GUID, error) {
	var guid windows.GUID
	hr, _, _ := syscall.SyscallN(e.vtbl.GetExtendedType,
		uintptr(unsafe.Pointer(e)),
		uintptr(unsafe.Pointer(&guid)))
	return guid, hresultError("GetExtendedType", hr)
}

// GetStatus returns the HRESULT the event carries.
func (e *IMFMediaEvent) GetStatus() (uint32, error) {
	var status uint32
	hr, _, _ := syscall.SyscallN(e.vtbl.GetStatus,
		uintptr(unsafe.Pointer(e)),
		uintptr(unsafe.Pointer(&status)))
	return status, hresultError("GetStatus", hr)
}

// IMFCaptureEngineClassFactory vtable
type IMFCaptureEngineClassFactoryVtbl struct {
	IUnknownVtbl
	CreateInstance uintptr
}

type IMFCaptureEngineClassFactory struct {
	vtbl *IMFCaptureEngineClassFactoryVtbl
}

func (f *IMFCaptureEngineClassFactory) Release() {
	comRelease(unsafe.Pointer(f))
}

func (f *IMFCaptureEngineClassFactory) CreateEngine() (*IMFCaptureEngine, error) {
	var engine *IMFCaptureEngine
	hr, _, _ := syscall.SyscallN(f.vtbl.CreateInstance,
		uintptr(unsafe.Pointer(f)),
		uintptr(unsafe.Pointer(&CLSID_MFCaptureEngine)),
		uintptr(unsafe.Pointer(&IID_IMFCaptureEngine)),
		uintptr(unsafe.Pointer(&engine)))
	return engine, hresultError("IMFCaptureEngineClassFactory.CreateInstance", hr)
}

// IMFCaptureEngine vtable
type IMFCaptureEngineVtbl struct {
	IUnknownVtbl
	Initialize   uintptr
	StartPreview uintptr
	StopPreview  uintptr
	StartRecord  uintptr
	StopRecord   uintptr
	TakePhoto    uintptr
	GetSink      uintptr
	GetSource    uintptr
}

type IMFCaptureEngine struct {
	vtbl *IMFCaptureEngineVtbl
}

func (e *IMFCaptureEngine) Release() {
	comRelease(unsafe.Pointer(e))
}

// Initialize starts asynchronous initialization. Completion is reported to
// the event callback as MF_CAPTURE_ENGINE_INITIALIZED.
func (e *IMFCaptureEngine) Initialize(events unsafe.Pointer, attrs *IMFAttributes, videoSource *IMFMediaSource) error {
	hr, _, _ := syscall.SyscallN(e.vtbl.Initialize,
		uintptr(unsafe.Pointer(e)),
		uintptr(events),
		uintptr(unsafe.Pointer(attrs)),
		0,
		uintptr(unsafe.Pointer(videoSource)))
	return hresultError("IMFCaptureEngine.Initialize", hr)
}

func (e *IMFCaptureEngine) StartPreview() error {
	hr, _, _ := syscall.SyscallN(e.vtbl.StartPreview, uintptr(unsafe.Pointer(e)))
	return hresultError("StartPreview", hr)
}

func (e *IMFCaptureEngine) StopPreview() error {
	hr, _, _ := syscall.SyscallN(e.vtbl.StopPreview, uintptr(unsafe.Pointer(e)))
	return hresultError("StopPreview", hr)
}

func (e *IMFCaptureEngine) GetPreviewSink() (*IMFCapturePreviewSink, error) {
	var sink unsafe.Pointer
	hr, _, _ := syscall.SyscallN(e.vtbl.GetSink,
		uintptr(unsafe.Pointer(e)),
		MF_CAPTURE_ENGINE_SINK_TYPE_PREVIEW,
		uintptr(unsafe.Pointer(&sink)))
	if err := hresultError("GetSink", hr); err != nil {
		return nil, err
	}
	defer comRelease(sink)
	preview, err := comQueryInterface(sink, &IID_IMFCapturePreviewSink)
	if err != nil {
		return nil, err
	}
	return (*IMFCapturePreviewSink)(preview), nil
}

func (e *IMFCaptureEngine) GetSource() (*IMFCaptureSource, error) {
	var source *IMFCaptureSource
	hr, _, _ := syscall.SyscallN(e.vtbl.GetSource,
		uintptr(unsafe.Pointer(e)),
		uintptr(unsafe.Pointer(&source)))
	return source, hresultError("GetSource", hr)
}

// IMFCaptureSource vtable
type IMFCaptureSourceVtbl struct {
	IUnknownVtbl
	GetCaptureDeviceSource         uintptr
	GetCaptureDeviceActivate       uintptr
	GetService                     uintptr
	AddEffect                      uintptr
	RemoveEffect                   uintptr
	RemoveAllEffects               uintptr
	GetAvailableDeviceMediaType    uintptr
	SetCurrentDeviceMediaType      uintptr
	GetCurrentDeviceMediaType      uintptr
	GetDeviceStreamCount           uintptr
	GetDeviceStreamCategory        uintptr
	GetMirrorState                 uintptr
	SetMirrorState                 uintptr
	GetStreamIndexFromFriendlyName uintptr
}

type IMFCaptureSource struct {
	vtbl *IMFCaptureSourceVtbl
}

func (s *IMFCaptureSource) Release() {
	comRelease(unsafe.Pointer(s))
}

func (s *IMFCaptureSource) GetCurrentDeviceMediaType(stream uint32) (*IMFMediaType, error) {
	var mt *IMFMediaType
	hr, _, _ := syscall.SyscallN(s.vtbl.GetCurrentDeviceMediaType,
		uintptr(unsafe.Pointer(s)),
		uintptr(stream),
		uintptr(unsafe.Pointer(&mt)))
	return mt, hresultError("GetCurrentDeviceMediaType", hr)
}

// IMFCapturePreviewSink vtable (extends IMFCaptureSink)
type IMFCapturePreviewSinkVtbl struct {
	IUnknownVtbl
	GetOutputMediaType uintptr
	GetService         uintptr
	AddStream          uintptr
	Prepare            uintptr
	RemoveAllStreams   uintptr
	SetRenderHandle    uintptr
	SetRenderSurface   uintptr
	UpdateVideo        uintptr
	SetSampleCallback  uintptr
	GetMirrorState     uintptr
	SetMirrorState     uintptr
	GetRotation        uintptr
	SetRotation        uintptr
	SetCustomSink      uintptr
}

type IMFCapturePreviewSink struct {
	vtbl *IMFCapturePreviewSinkVtbl
}

func (s *IMFCapturePreviewSink) Release() {
	comRelease(unsafe.Pointer(s))
}

func (s *IMFCapturePreviewSink) GetOutputMediaType(stream uint32) (*IMFMediaType, error) {
	var mt *IMFMediaType
	hr, _, _ := syscall.SyscallN(s.vtbl.GetOutputMediaType,
		uintptr(unsafe.Pointer(s)),
		uintptr(stream),
		uintptr(unsafe.Pointer(&mt)))
	return mt, hresultError("GetOutputMediaType", hr)
}

func (s *IMFCapturePreviewSink) RemoveAllStreams() error {
	hr, _, _ := syscall.SyscallN(s.vtbl.RemoveAllStreams, uintptr(unsafe.Pointer(s)))
	return hresultError("RemoveAllStreams", hr)
}

// AddStream connects a source stream to the sink and returns the sink stream index.
func (s *IMFCapturePreviewSink) AddStream(sourceStream uint32, mt *IMFMediaType) (uint32, error) {
	var sinkStream uint32
	hr, _, _ := syscall.SyscallN(s.vtbl.AddStream,
		uintptr(unsafe.Pointer(s)),
		uintptr(sourceStream),
		uintptr(unsafe.Pointer(mt)),
		0,
		uintptr(unsafe.Pointer(&sinkStream)))
	return sinkStream, hresultError("AddStream", hr)
}

func (s *IMFCapturePreviewSink) SetSampleCallback(sinkStream uint32, cb unsafe.Pointer) error {
	hr, _, _ := syscall.SyscallN(s.vtbl.SetSampleCallback,
		uintptr(unsafe.Pointer(s)),
		uintptr(sinkStream),
		uintptr(cb))
	return hresultError("SetSampleCallback", hr)
}

// IAMCameraControl and IAMVideoProcAmp share a vtable layout
type IAMControlVtbl struct {
	IUnknownVtbl
	GetRange uintptr
	Set      uintptr
	Get      uintptr
}

type IAMControl struct {
	vtbl *IAMControlVtbl
}

func (c *IAMControl) Release() {
	comRelease(unsafe.Pointer(c))
}

func (c *IAMControl) GetRange(property int32) (min, max, step, def, flags int32, err error) {
	hr, _, _ := syscall.SyscallN(c.vtbl.GetRange,
		uintptr(unsafe.Pointer(c)),
		uintptr(property),
		uintptr(unsafe.Pointer(&min)),
		uintptr(unsafe.Pointer(&max)),
		uintptr(unsafe.Pointer(&step)),
		uintptr(unsafe.Pointer(&def)),
		uintptr(unsafe.Pointer(&flags)))
	err = hresultError("GetRange", hr)
	return
}

func (c *IAMControl) Get(property int32) (value, flags int32, err error) {
	hr, _, _ := syscall.SyscallN(c.vtbl.Get,
		uintptr(unsafe.Pointer(c)),
		uintptr(property),
		uintptr(unsafe.Pointer(&value)),
		uintptr(unsafe.Pointer(&flags)))
	err = hresultError("Get", hr)
	return
}

func (c *IAMControl) Set(property, value, flags int32) error {
	hr, _, _ := syscall.SyscallN(c.vtbl.Set,
		uintptr(unsafe.Pointer(c)),
		uintptr(property),
		uintptr(value),
		uintptr(flags))
	return hresultError("Set", hr)
}

// MF helper functions

var (
	mfMu   sync.Mutex
	mfRefs int
	comMTA bool
)

// mfStartup enters the multithreaded apartment and starts Media Foundation.
// Calls are reference counted and paired with mfShutdown.
func mfStartup() error {
	mfMu.Lock()
	defer mfMu.Unlock()

	if mfRefs > 0 {
		mfRefs++
		return nil
	}

	// The apartment lives as long as the thread that entered it, so it is
	// entered once and left to the process.
	if !comMTA {
		runtime.LockOSThread()
		err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED)
		runtime.UnlockOSThread()
		if oleErr, ok := err.(*ole.OleError); ok {
			switch uint32(oleErr.Code()) {
			case S_FALSE, RPC_E_CHANGED_MODE:
				err = nil
			}
		}
		if err != nil {
			return fmt.Errorf("CoInitializeEx failed: %w", err)
		}
		comMTA = true
	}

	hr, _, _ := syscall.SyscallN(procMFStartup.Addr(), MF_VERSION, MFSTARTUP_FULL)
	if err := hresultError("MFStartup", hr); err != nil {
		return err
	}
	mfRefs = 1
	return nil
}

func mfShutdown() {
	mfMu.Lock()
	defer mfMu.Unlock()

	if mfRefs == 0 {
		return
	}
	mfRefs--
	if mfRefs == 0 {
		syscall.SyscallN(procMFShutdown.Addr())
	}
}

func mfCreateAttributes(count uint32) (*IMFAttributes, error) {
	var attrs *IMFAttributes
	hr, _, _ := syscall.SyscallN(procMFCreateAttributes.Addr(),
		uintptr(unsafe.Pointer(&attrs)),
		uintptr(count))
	return attrs, hresultError("MFCreateAttributes", hr)
}

func mfCreateMediaType() (*IMFMediaType, error) {
	var mt *IMFMediaType
	hr, _, _ := syscall.SyscallN(procMFCreateMediaType.Addr(),
		uintptr(unsafe.Pointer(&mt)))
	return mt, hresultError("MFCreateMediaType", hr)
}

func newCaptureEngine() (*IMFCaptureEngine, error) {
	var factory *IMFCaptureEngineClassFactory
	hr, _, _ := syscall.SyscallN(procCoCreateInstance.Addr(),
		uintptr(unsafe.Pointer(&CLSID_MFCaptureEngineClassFactory)),
		0,
		CLSCTX_INPROC,
		uintptr(unsafe.Pointer(&IID_IMFCaptureEngineClassFactory)),
		uintptr(unsafe.Pointer(&factory)))
	if err := hresultError("CoCreateInstance", hr); err != nil {
		return nil, err
	}
	defer factory.Release()
	return factory.CreateEngine()
}

// enumDeviceSources lists video capture activation objects. The caller owns
// every returned reference.
func enumDeviceSources() ([]*IMFActivate, error) {
	attrs, err := mfCreateAttributes(1)
	if err != nil {
		return nil, err
	}
	defer attrs.Release()

	err = attrs.SetGUID(&MF_DEVSOURCE_ATTRIBUTE_SOURCE_TYPE, &MF_DEVSOURCE_ATTRIBUTE_SOURCE_TYPE_VIDCAP)
	if err != nil {
		return nil, err
	}

	var devices **IMFActivate
	var count uint32

	hr, _, _ := syscall.SyscallN(procMFEnumDeviceSources.Addr(),
		uintptr(unsafe.Pointer(attrs)),
		uintptr(unsafe.Pointer(&devices)),
		uintptr(unsafe.Pointer(&count)))
	if err := hresultError("MFEnumDeviceSources", hr); err != nil {
		return nil, err
	}
	if devices == nil {
		return nil, nil
	}
	defer syscall.SyscallN(procCoTaskMemFree.Addr(), uintptr(unsafe.Pointer(devices)))

	return append([]*IMFActivate(nil), unsafe.Slice(devices, count)...), nil
}

func describeActivate(index int, activate *IMFActivate) Device {
	dev := Device{Index: index}
	if name, err := activate.AsAttributes().GetString(&MF_DEVSOURCE_ATTRIBUTE_FRIENDLY_NAME); err == nil {
		dev.FriendlyName = name
	}
	if link, err := activate.AsAttributes().GetString(&MF_DEVSOURCE_ATTRIBUTE_SOURCE_TYPE_VIDCAP_SYMBOLIC_LINK); err == nil {
		dev.SymbolicLink = link
	}
	return dev
}
