package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
)

// Magic identifies a valid .slix index file.
const (
	fileMagic   uint32 = 0x534C4958 // "SLIX"
	fileVersion uint32 = 1
	headerSize         = 16
)

// FileStore keeps the whole index as one serialized blob on disk. Puts
// accumulate in memory; Flush writes the file atomically (tmp + rename) with
// a checksummed header.
type FileStore struct {
	path    string
	records map[string][]byte
	dirty   bool
}

// OpenFile opens (or creates) a single-blob store at path, loading any
// existing records.
func OpenFile(path string) (*FileStore, error) {
	fs := &FileStore{
		path:    path,
		records: make(map[string][]byte),
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading index file: %w", err)
	}
	if err := fs.parse(data); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) parse(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("index file %s too short", fs.path)
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != fileMagic {
		return fmt.Errorf("invalid index file %s: bad magic bytes %x", fs.path, magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != fileVersion {
		return fmt.Errorf("invalid index file %s: unsupported version %d", fs.path, version)
	}
	payloadLen := binary.LittleEndian.Uint32(data[8:12])
	checksum := binary.LittleEndian.Uint32(data[12:16])
	if int(payloadLen) != len(data)-headerSize {
		return fmt.Errorf("invalid index file %s: truncated payload", fs.path)
	}
	payload := data[headerSize:]
	if crc32.ChecksumIEEE(payload) != checksum {
		return fmt.Errorf("invalid index file %s: checksum mismatch", fs.path)
	}
	if err := json.Unmarshal(payload, &fs.records); err != nil {
		return fmt.Errorf("parsing index file %s: %w", fs.path, err)
	}
	return nil
}

func (fs *FileStore) Put(key string, value []byte) error {
	fs.records[key] = value
	fs.dirty = true
	return nil
}

func (fs *FileStore) Get(key string) ([]byte, error) {
	return fs.records[key], nil
}

func (fs *FileStore) Iter(prefix string, fn func(key string, value []byte) error) error {
	for k, v := range fs.records {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			if err := fn(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush writes the whole record map as one unit.
func (fs *FileStore) Flush() error {
	if !fs.dirty {
		return nil
	}
	payload, err := json.Marshal(fs.records)
	if err != nil {
		return fmt.Errorf("marshaling index records: %w", err)
	}
	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], fileMagic)
	binary.LittleEndian.PutUint32(header[4:8], fileVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[12:16], crc32.ChecksumIEEE(payload))

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating index directory: %w", err)
		}
	}
	tmpPath := fs.path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	if _, err := f.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("writing index header: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		return fmt.Errorf("writing index payload: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing index file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, fs.path); err != nil {
		return fmt.Errorf("renaming index file: %w", err)
	}
	fs.dirty = false
	return nil
}

func (fs *FileStore) Close() error {
	return fs.Flush()
}
