package etw

// Header carries the kind tag plus the values derived from the raw record
// header during post-processing.
type Header struct {
	Kind          EventKind
	TypeInfo      string // label of Kind
	WinTimestamp  int64  // FILETIME ticks, copied from Raw.Timestamp
	UnixTimestamp int64  // seconds since the Unix epoch
	DateTime      string // "2006-01-02 15:04:05 UTC"
	EventID       string
	Raw           RecordHeader
}

// Event is a classified trace record.
type Event struct {
	Header  Header
	Payload Payload
}

// Consistent reports whether the payload is present and tagged with the
// same kind as the header.
func (e *Event) Consistent() bool {
	if e == nil || e.Payload == nil || e.Payload.Kind() != e.Header.Kind {
		return false
	}
	switch p := e.Payload.(type) {
	case *CreateNewFileData:
		return p != nil
	case *NameDeleteData:
		return p != nil
	case *CreateData:
		return p != nil
	case *RenamePathData:
		return p != nil
	case *DeletePathData:
		return p != nil
	case *ProcessStartData:
		return p != nil
	case *ProcessStopData:
		return p != nil
	default:
		return false
	}
}

// ProcessID returns the id of the process that emitted the record.
func (e *Event) ProcessID() uint32 {
	return e.Header.Raw.ProcessID
}

// CreateNewFileData returns the payload when the event is a CreateNewFile.
func (e *Event) CreateNewFileData() *CreateNewFileData {
	if e.Header.Kind != KindCreateNewFile {
		return nil
	}
	p, _ := e.Payload.(*CreateNewFileData)
	return p
}

// NameDeleteData returns the payload when the event is a NameDelete.
func (e *Event) NameDeleteData() *NameDeleteData {
	if e.Header.Kind != KindNameDelete {
		return nil
	}
	p, _ := e.Payload.(*NameDeleteData)
	return p
}

// CreateData returns the payload when the event is a Create.
func (e *Event) CreateData() *CreateData {
	if e.Header.Kind != KindCreate {
		return nil
	}
	p, _ := e.Payload.(*CreateData)
	return p
}

// RenamePathData returns the payload when the event is a RenamePath.
func (e *Event) RenamePathData() *RenamePathData {
	if e.Header.Kind != KindRenamePath {
		return nil
	}
	p, _ := e.Payload.(*RenamePathData)
	return p
}

// DeletePathData returns the payload when the event is a DeletePath.
func (e *Event) DeletePathData() *DeletePathData {
	if e.Header.Kind != KindDeletePath {
		return nil
	}
	p, _ := e.Payload.(*DeletePathData)
	return p
}

// Paths returns the path an event refers to and, for renames, the new path.
// A rename reports its correlated old path as path.
func (e *Event) Paths() (path, newPath string) {
	switch p := e.Payload.(type) {
	case *CreateNewFileData:
		if p != nil {
			return p.FileName, ""
		}
	case *NameDeleteData:
		if p != nil {
			return p.FileName, ""
		}
	case *CreateData:
		if p != nil {
			return p.FileName, ""
		}
	case *RenamePathData:
		if p != nil {
			return p.OldFilePath, p.RenamedFilePath
		}
	case *DeletePathData:
		if p != nil {
			return p.FilePath, ""
		}
	}
	return "", ""
}

// FileObject returns the file-object handle carried by Create and RenamePath
// payloads.
func (e *Event) FileObject() (uint64, bool) {
	switch p := e.Payload.(type) {
	case *CreateData:
		if p != nil {
			return p.FileObject, true
		}
	case *RenamePathData:
		if p != nil {
			return p.FileObject, true
		}
	}
	return 0, false
}
