package etw

// Payload is the kind-specific part of an Event.
type Payload interface {
	Kind() EventKind
	isPayload()
}

// CreateNewFileData is the payload of a CreateNewFile event.
type CreateNewFileData struct {
	ProcessID     uint32
	EventTime     int64
	FileName      string
	UserDataReady bool
}

// NameDeleteData is the payload of a NameDelete event.
type NameDeleteData struct {
	ProcessID     uint32
	EventTime     int64
	FileName      string
	UserDataReady bool
}

// CreateData is the payload of a Create event. It is never dispatched; it
// seeds the handle cache for a later rename.
type CreateData struct {
	ProcessID     uint32
	EventTime     int64
	FileName      string
	FileObject    uint64
	UserDataReady bool
}

// RenamePathData is the payload of a RenamePath event. OldFilePath is filled
// by correlation, not by the parser.
type RenamePathData struct {
	ProcessID       uint32
	EventTime       int64
	OldFilePath     string
	RenamedFilePath string
	FileObject      uint64
	UserDataReady   bool
}

// DeletePathData is the payload of a DeletePath event.
type DeletePathData struct {
	ProcessID     uint32
	EventTime     int64
	FilePath      string
	UserDataReady bool
}

// ProcessStartData is the payload of a ProcessStart event.
// Process events are produced by a separate pipeline; the variant exists so
// every non-invalid kind has a payload type.
type ProcessStartData struct {
	ProcessID       uint32
	ParentProcessID uint32
	ImageName       string
	Cmdline         string
}

// ProcessStopData is the payload of a ProcessStop event.
type ProcessStopData struct {
	ProcessID       uint32
	ParentProcessID uint32
	ExitCode        int32
	ImageName       string
}

// Kind reports the event kind each payload belongs to.
func (*CreateNewFileData) Kind() EventKind { return KindCreateNewFile }
func (*NameDeleteData) Kind() EventKind    { return KindNameDelete }
func (*CreateData) Kind() EventKind        { return KindCreate }
func (*RenamePathData) Kind() EventKind    { return KindRenamePath }
func (*DeletePathData) Kind() EventKind    { return KindDeletePath }
func (*ProcessStartData) Kind() EventKind  { return KindProcessStart }
func (*ProcessStopData) Kind() EventKind   { return KindProcessStop }

func (*CreateNewFileData) isPayload() {}
func (*NameDeleteData) isPayload()    {}
func (*CreateData) isPayload()        {}
func (*RenamePathData) isPayload()    {}
func (*DeletePathData) isPayload()    {}
func (*ProcessStartData) isPayload()  {}
func (*ProcessStopData) isPayload()   {}
