package idcl

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/idcl/internal/fb"
)

// ManifestName is the file name the CLI writes the manifest under.
const ManifestName = "manifest.idclm"

const manifestVersion = 1

// MarshalManifest serializes the report to FlatBuffers. Errors are kept as
// text only.
func (r *Report) MarshalManifest() []byte {
	builder := flatbuffers.NewBuilder(1024)

	// Build entries in reverse order (FlatBuffers requirement)
	entryOffsets := make([]flatbuffers.UOffsetT, len(r.Entries))
	for i := len(r.Entries) - 1; i >= 0; i-- {
		e := &r.Entries[i]

		outputOffsets := make([]flatbuffers.UOffsetT, len(e.Outputs))
		for j := len(e.Outputs) - 1; j >= 0; j-- {
			o := e.Outputs[j]
			pathOffset := builder.CreateString(o.Path)
			digestOffset := builder.CreateString(o.Digest.String())
			fb.OutputStart(builder)
			fb.OutputAddPath(builder, pathOffset)
			fb.OutputAddSize(builder, o.Size)
			fb.OutputAddDigest(builder, digestOffset)
			outputOffsets[j] = fb.OutputEnd(builder)
		}
		fb.EntryResultStartOutputsVector(builder, len(outputOffsets))
		for j := len(outputOffsets) - 1; j >= 0; j-- {
			builder.PrependUOffsetT(outputOffsets[j])
		}
		outputsOffset := builder.EndVector(len(outputOffsets))

		nameOffset := builder.CreateString(e.Name)
		tagOffset := builder.CreateString(e.TypeTag)
		var containerOffset, errOffset flatbuffers.UOffsetT
		if e.Container != "" {
			containerOffset = builder.CreateString(e.Container)
		}
		if e.Err != nil {
			errOffset = builder.CreateString(e.Err.Error())
		}

		fb.EntryResultStart(builder)
		fb.EntryResultAddIndex(builder, uint32(e.Index)) //nolint:gosec // directory indexes are uint32 on disk
		fb.EntryResultAddName(builder, nameOffset)
		fb.EntryResultAddTypeTag(builder, tagOffset)
		if containerOffset != 0 {
			fb.EntryResultAddContainer(builder, containerOffset)
		}
		fb.EntryResultAddKind(builder, fb.Kind(e.Kind))
		fb.EntryResultAddStatus(builder, fb.Status(e.Status))
		fb.EntryResultAddSize(builder, e.Size)
		fb.EntryResultAddOutputs(builder, outputsOffset)
		if errOffset != 0 {
			fb.EntryResultAddError(builder, errOffset)
		}
		entryOffsets[i] = fb.EntryResultEnd(builder)
	}

	fb.ManifestStartEntriesVector(builder, len(entryOffsets))
	for i := len(entryOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(entryOffsets[i])
	}
	entriesOffset := builder.EndVector(len(entryOffsets))
	archiveOffset := builder.CreateString(r.Archive)

	fb.ManifestStart(builder)
	fb.ManifestAddVersion(builder, manifestVersion)
	fb.ManifestAddArchive(builder, archiveOffset)
	fb.ManifestAddEntries(builder, entriesOffset)
	builder.Finish(fb.ManifestEnd(builder))
	return builder.FinishedBytes()
}

// UnmarshalManifest parses a manifest written by MarshalManifest.
// Entry errors are restored as plain errors carrying the recorded text.
func UnmarshalManifest(data []byte) (r *Report, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("idcl: failed to parse manifest: %v", rec)
		}
	}()
	if len(data) < flatbuffers.SizeUOffsetT {
		return nil, errors.New("idcl: empty manifest data")
	}

	root := fb.GetRootAsManifest(data, 0)
	if v := root.Version(); v != manifestVersion {
		return nil, fmt.Errorf("idcl: unsupported manifest version %d", v)
	}

	r = &Report{
		Archive: string(root.Archive()),
		Entries: make([]EntryResult, 0, root.EntriesLength()),
	}
	var fe fb.EntryResult
	var fo fb.Output
	for i := range root.EntriesLength() {
		if !root.Entries(&fe, i) {
			return nil, fmt.Errorf("idcl: manifest entry %d missing", i)
		}
		e := EntryResult{
			Index:     int(fe.Index()),
			Name:      string(fe.Name()),
			TypeTag:   string(fe.TypeTag()),
			Container: string(fe.Container()),
			Kind:      Kind(fe.Kind()),
			Status:    Status(fe.Status()),
			Size:      fe.Size(),
		}
		if n := fe.OutputsLength(); n > 0 {
			e.Outputs = make([]Output, 0, n)
			for j := range n {
				if !fe.Outputs(&fo, j) {
					return nil, fmt.Errorf("idcl: manifest entry %d output %d missing", i, j)
				}
				e.Outputs = append(e.Outputs, Output{
					Path:   string(fo.Path()),
					Size:   fo.Size(),
					Digest: digest.Digest(fo.Digest()),
				})
			}
		}
		if text := fe.Error(); len(text) > 0 {
			e.Err = errors.New(string(text))
		}
		r.Entries = append(r.Entries, e)
	}
	return r, nil
}
