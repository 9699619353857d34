package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mihirdhamankar/searchlite/internal/codec"
	"github.com/mihirdhamankar/searchlite/internal/postings"
	"github.com/mihirdhamankar/searchlite/internal/store"
	apperrors "github.com/mihirdhamankar/searchlite/pkg/errors"
)

const (
	formatVersion = 1
	metaKey       = "meta"
	termKeyPrefix = "term:"
)

// metaRecord is the persisted index header. The identity tags must match
// the options an index is loaded with.
type metaRecord struct {
	Version      int      `json:"version"`
	Mode         string   `json:"mode"`
	Compression  string   `json:"compression"`
	Optimization string   `json:"optimization"`
	DocIDs       []string `json:"doc_ids"`
}

// Persist writes the index through the store: one meta record plus one
// record per term. Persisting over an existing index overwrites it;
// persisting the same index twice is a no-op at the logical level.
func (idx *Index) Persist(s store.Store) error {
	meta := metaRecord{
		Version:      formatVersion,
		Mode:         idx.opts.Mode.String(),
		Compression:  idx.opts.Compression.String(),
		Optimization: idx.opts.Optimization.String(),
		DocIDs:       idx.docIDs,
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling index meta: %w", err)
	}
	if err := s.Put(metaKey, metaBytes); err != nil {
		return fmt.Errorf("writing index meta: %w", err)
	}

	c := codec.New(idx.opts.Compression)
	for term, entry := range idx.terms {
		record, err := encodeRecord(c, entry.list)
		if err != nil {
			return fmt.Errorf("encoding postings for %q: %w", term, err)
		}
		if err := s.Put(termKeyPrefix+term, record); err != nil {
			return fmt.Errorf("writing postings for %q: %w", term, err)
		}
	}
	return s.Flush()
}

// Load reads a persisted index and validates its identity against opts.
// Skip pointers are not stored; they are rebuilt here when the identity
// calls for them.
func Load(s store.Store, opts Options) (*Index, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	metaBytes, err := s.Get(metaKey)
	if err != nil {
		return nil, fmt.Errorf("reading index meta: %w", err)
	}
	if metaBytes == nil {
		return nil, apperrors.ErrIndexNotFound
	}

	var meta metaRecord
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("%w: unreadable index meta: %v", apperrors.ErrCorruptEncoding, err)
	}
	if meta.Version != formatVersion {
		return nil, fmt.Errorf("%w: index format version %d, expected %d",
			apperrors.ErrIdentityMismatch, meta.Version, formatVersion)
	}
	if meta.Mode != opts.Mode.String() ||
		meta.Compression != opts.Compression.String() ||
		meta.Optimization != opts.Optimization.String() {
		return nil, fmt.Errorf("%w: index is (%s, %s, %s), requested (%s, %s, %s)",
			apperrors.ErrIdentityMismatch,
			meta.Mode, meta.Compression, meta.Optimization,
			opts.Mode, opts.Compression, opts.Optimization)
	}

	idx := &Index{
		opts:    opts,
		terms:   make(map[string]*termEntry),
		docIDs:  meta.DocIDs,
		idTable: make(map[string]uint32, len(meta.DocIDs)),
	}
	for i, external := range meta.DocIDs {
		idx.idTable[external] = uint32(i)
	}

	c := codec.New(opts.Compression)
	err = s.Iter(termKeyPrefix, func(key string, value []byte) error {
		term := strings.TrimPrefix(key, termKeyPrefix)
		list, err := decodeRecord(c, value)
		if err != nil {
			return fmt.Errorf("decoding postings for %q: %w", term, err)
		}
		entry := &termEntry{list: list}
		if opts.Optimization == OptSkipPointers {
			entry.skips = postings.BuildSkips(list)
		}
		idx.terms[term] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// encodeRecord lays a posting list out as length-prefixed codec blobs:
// the document-id sequence first, then one positions sequence per
// document in the same order. Frequencies are implied by position counts.
func encodeRecord(c codec.Codec, list postings.List) ([]byte, error) {
	docBlob, err := c.Encode(list.DocIDs())
	if err != nil {
		return nil, err
	}
	record := binary.AppendUvarint(nil, uint64(len(docBlob)))
	record = append(record, docBlob...)

	for _, p := range list {
		posBlob, err := c.Encode(p.Positions)
		if err != nil {
			return nil, err
		}
		record = binary.AppendUvarint(record, uint64(len(posBlob)))
		record = append(record, posBlob...)
	}
	return record, nil
}

func decodeRecord(c codec.Codec, record []byte) (postings.List, error) {
	docBlob, rest, err := nextFrame(record)
	if err != nil {
		return nil, err
	}
	docIDs, err := c.Decode(docBlob)
	if err != nil {
		return nil, err
	}

	list := make(postings.List, 0, len(docIDs))
	for _, docID := range docIDs {
		var posBlob []byte
		posBlob, rest, err = nextFrame(rest)
		if err != nil {
			return nil, err
		}
		positions, err := c.Decode(posBlob)
		if err != nil {
			return nil, err
		}
		list = append(list, postings.Posting{DocID: docID, Positions: positions})
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after last posting",
			apperrors.ErrCorruptEncoding, len(rest))
	}
	return list, nil
}

func nextFrame(data []byte) (frame, rest []byte, err error) {
	length, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, nil, fmt.Errorf("%w: bad frame length", apperrors.ErrCorruptEncoding)
	}
	data = data[n:]
	if uint64(len(data)) < length {
		return nil, nil, fmt.Errorf("%w: frame of %d bytes runs past record end",
			apperrors.ErrCorruptEncoding, length)
	}
	return data[:length], data[length:], nil
}
