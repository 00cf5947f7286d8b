package etw

// EventKind tags an Event with the payload variant it carries.
type EventKind uint8

// Event kinds. KindInvalid is the zero value and is never dispatched.
const (
	KindInvalid EventKind = iota
	KindProcessStart
	KindProcessStop
	KindCreateNewFile
	KindNameDelete
	KindCreate
	KindRenamePath
	KindDeletePath
)

var kindLabels = [...]string{
	KindInvalid:       "Invalid",
	KindProcessStart:  "ProcessStart",
	KindProcessStop:   "ProcessStop",
	KindCreateNewFile: "CreateNewFile",
	KindNameDelete:    "NameDelete",
	KindCreate:        "Create",
	KindRenamePath:    "RenamePath",
	KindDeletePath:    "DeletePath",
}

// String returns the human-readable label of the kind.
// Out-of-range values render as "Invalid".
func (k EventKind) String() string {
	if int(k) < len(kindLabels) {
		return kindLabels[k]
	}
	return kindLabels[KindInvalid]
}

// IsFileKind reports whether k is one of the five file-system kinds.
func (k EventKind) IsFileKind() bool {
	return k >= KindCreateNewFile && k <= KindDeletePath
}

// Microsoft-Windows-Kernel-File event descriptor ids.
const (
	EventIDNameDelete    uint16 = 11
	EventIDCreate        uint16 = 12
	EventIDDeletePath    uint16 = 26
	EventIDRenamePath    uint16 = 27
	EventIDCreateNewFile uint16 = 30
)

// Kernel-File field names used by the file event kinds.
const (
	FieldFileName   = "FileName"
	FieldFilePath   = "FilePath"
	FieldFileObject = "FileObject"
)
