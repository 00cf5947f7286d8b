package classifier

import (
	"fmt"

	"github.com/mrzor/file-tracer/internal/etw"
)

// parsePayload extracts the fields required by kind. UserDataReady is only
// set once every field has been read.
func parsePayload(kind etw.EventKind, hdr etw.RecordHeader, fields etw.FieldParser) (etw.Payload, error) {
	if fields == nil {
		return nil, fmt.Errorf("record has no fields: %w", etw.ErrFieldNotFound)
	}

	switch kind {
	case etw.KindCreateNewFile:
		name, err := str(fields, etw.FieldFileName)
		if err != nil {
			return nil, err
		}
		return &etw.CreateNewFileData{
			ProcessID:     hdr.ProcessID,
			EventTime:     hdr.Timestamp,
			FileName:      name,
			UserDataReady: true,
		}, nil

	case etw.KindNameDelete:
		name, err := str(fields, etw.FieldFileName)
		if err != nil {
			return nil, err
		}
		return &etw.NameDeleteData{
			ProcessID:     hdr.ProcessID,
			EventTime:     hdr.Timestamp,
			FileName:      name,
			UserDataReady: true,
		}, nil

	case etw.KindCreate:
		name, err := str(fields, etw.FieldFileName)
		if err != nil {
			return nil, err
		}
		obj, err := ptr(fields, etw.FieldFileObject)
		if err != nil {
			return nil, err
		}
		return &etw.CreateData{
			ProcessID:     hdr.ProcessID,
			EventTime:     hdr.Timestamp,
			FileName:      name,
			FileObject:    obj,
			UserDataReady: true,
		}, nil

	case etw.KindRenamePath:
		path, err := str(fields, etw.FieldFilePath)
		if err != nil {
			return nil, err
		}
		obj, err := ptr(fields, etw.FieldFileObject)
		if err != nil {
			return nil, err
		}
		return &etw.RenamePathData{
			ProcessID:       hdr.ProcessID,
			EventTime:       hdr.Timestamp,
			RenamedFilePath: path,
			FileObject:      obj,
			UserDataReady:   true,
		}, nil

	case etw.KindDeletePath:
		path, err := str(fields, etw.FieldFilePath)
		if err != nil {
			return nil, err
		}
		return &etw.DeletePathData{
			ProcessID:     hdr.ProcessID,
			EventTime:     hdr.Timestamp,
			FilePath:      path,
			UserDataReady: true,
		}, nil
	}

	return nil, fmt.Errorf("no parser for kind %s", kind)
}

func str(fields etw.FieldParser, name string) (string, error) {
	v, err := fields.String(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return v, nil
}

func ptr(fields etw.FieldParser, name string) (uint64, error) {
	v, err := fields.Pointer(name)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	return v, nil
}
