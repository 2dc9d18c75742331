package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
	collideerrors "github.com/tamirms/collide/errors"
)

// File is a read-only memory map of a newline-delimited identifier dump.
// Blank lines are ignored and a trailing '\r' is stripped. The mapping is
// shared read-only by every partition; Close it once all runs using it are
// done.
type File struct {
	mmap   mmap.MMap
	data   []byte
	closed atomic.Bool
}

// OpenFile maps path into memory.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identifier file: %w", err)
	}
	// Per POSIX mmap(2), f may be closed once the mapping exists.
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat identifier file: %w", err)
	}
	if stat.Size() == 0 {
		return &File{}, nil
	}

	fadviseSequential(int(f.Fd()), 0, stat.Size())
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap identifier file: %w", err)
	}
	madviseSequential(mm)

	return &File{mmap: mm, data: []byte(mm)}, nil
}

// Close unmaps the file. Partitions must not be used afterwards.
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	if f.mmap != nil {
		return f.mmap.Unmap()
	}
	return nil
}

// Partition returns a source yielding the lines whose index j (counting
// non-blank lines from zero) satisfies j % n == i. Partitions with the same
// n and distinct i never yield the same line.
func (f *File) Partition(i, n int) *FilePartition {
	if n <= 0 {
		n = 1
	}
	return &FilePartition{file: f, index: i, stride: n}
}

// FilePartition reads one worker's share of a File.
type FilePartition struct {
	file   *File
	index  int
	stride int
	offset int // next unread byte
	line   int // index of the next non-blank line
}

// Generate returns up to count identifiers from the partition. It returns
// fewer at the end of the data, and ErrSourceExhausted once nothing is left.
func (p *FilePartition) Generate(ctx context.Context, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.file.closed.Load() {
		return nil, fmt.Errorf("read identifier file: %w", os.ErrClosed)
	}

	data := p.file.data
	ids := make([]string, 0, count)
	for len(ids) < count && p.offset < len(data) {
		end := bytes.IndexByte(data[p.offset:], '\n')
		var raw []byte
		if end < 0 {
			raw = data[p.offset:]
			p.offset = len(data)
		} else {
			raw = data[p.offset : p.offset+end]
			p.offset += end + 1
		}
		raw = bytes.TrimSuffix(raw, []byte{'\r'})
		if len(raw) == 0 {
			continue
		}
		if p.line%p.stride == p.index {
			// string() copies out of the mapping, so ids outlive Close.
			ids = append(ids, string(raw))
		}
		p.line++
	}

	if len(ids) == 0 && count > 0 {
		return nil, fmt.Errorf("%w: partition %d/%d after %d lines",
			collideerrors.ErrSourceExhausted, p.index, p.stride, p.line)
	}
	return ids, nil
}
