// Package etw defines the typed file-system events produced from raw kernel
// trace records.
//
// A RawRecord is what the trace subsystem hands to the pipeline: a fixed
// header plus provider-specific fields that are only reachable through a
// FieldParser. The classifier turns a RawRecord into an Event whose Payload
// is one of the variants declared here:
//
//	CreateNewFile -> *CreateNewFileData
//	NameDelete    -> *NameDeleteData
//	Create        -> *CreateData
//	RenamePath    -> *RenamePathData
//	DeletePath    -> *DeletePathData
//
// Payload is sealed: only this package can add variants. The typed accessors
// on Event (CreateData, RenamePathData, ...) return nil whenever the header
// kind and the payload variant disagree, so callers never act on a payload
// that was tagged for another kind.
package etw
