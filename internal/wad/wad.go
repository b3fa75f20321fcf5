// Package wad reads Doom data archives (IWAD and PWAD files) into the
// renderer's asset and level types. The file format is documented in The
// Unofficial DOOM Specs: http://www.gamers.org/dhs/helpdocs/dmsp1666.html
package wad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

var (
	ErrBadMagic     = errors.New("wad: not an IWAD or PWAD")
	ErrLumpNotFound = errors.New("wad: lump not found")
	ErrNoLevel      = errors.New("wad: level not found")
)

// WAD is an open archive. Lumps are read on demand through an io.ReaderAt,
// so a WAD may be read from several goroutines at once.
type WAD struct {
	r      io.ReaderAt
	closer io.Closer

	lumpInfos []LumpInfo
	lumpNums  map[string]int
	levels    map[string]int

	patchNames  []string
	textureNums map[string]int
	flatNums    map[string]int
	spriteNums  map[string]int
}

type binHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOfs int32
}

type binLumpInfo struct {
	Filepos int32
	Size    int32
	Name    String8
}

// LumpInfo is one directory entry.
type LumpInfo struct {
	Name    string
	Filepos int
	Size    int
}

// String8 is the WAD eight-character name. Short names are NUL padded.
type String8 [8]byte

func (s String8) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return strings.ToUpper(string(s[:i]))
}

// Open reads the directory of the WAD file at path.
func Open(path string) (*WAD, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	w, err := New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	w.closer = f
	return w, nil
}

// New reads the directory of a WAD held by r.
func New(r io.ReaderAt) (*WAD, error) {
	logger.Println("Reading WAD directory")
	var h binHeader
	if err := binary.Read(io.NewSectionReader(r, 0, 12), binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if magic := string(h.Magic[:]); magic != "IWAD" && magic != "PWAD" {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}
	if h.NumLumps < 0 || h.InfoTableOfs < 0 {
		return nil, fmt.Errorf("wad: bad header %d lumps at %d", h.NumLumps, h.InfoTableOfs)
	}

	w := &WAD{r: r}
	bin := make([]binLumpInfo, h.NumLumps)
	sr := io.NewSectionReader(r, int64(h.InfoTableOfs), int64(h.NumLumps)*16)
	if err := binary.Read(sr, binary.LittleEndian, bin); err != nil {
		return nil, fmt.Errorf("wad: directory: %w", err)
	}

	w.lumpInfos = make([]LumpInfo, len(bin))
	w.lumpNums = make(map[string]int, len(bin))
	w.levels = make(map[string]int)
	for i, b := range bin {
		li := LumpInfo{Name: b.Name.String(), Filepos: int(b.Filepos), Size: int(b.Size)}
		// a map marker is the lump right before THINGS
		if li.Name == "THINGS" && i > 0 {
			w.levels[w.lumpInfos[i-1].Name] = i - 1
		}
		// later lumps override earlier ones, as with PWADs
		w.lumpNums[li.Name] = i
		w.lumpInfos[i] = li
	}
	logger.Printf("Read %d lumps, %d levels", len(w.lumpInfos), len(w.levels))
	return w, nil
}

// Close releases the underlying file, if Open created it.
func (w *WAD) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// LevelNames returns the names of the levels in the archive, sorted.
func (w *WAD) LevelNames() []string {
	names := make([]string, 0, len(w.levels))
	for name := range w.levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LumpNum returns the directory index of the last lump called name.
func (w *WAD) LumpNum(name string) (int, bool) {
	n, ok := w.lumpNums[strings.ToUpper(name)]
	return n, ok
}

// ReadLump returns the contents of lump name.
func (w *WAD) ReadLump(name string) ([]byte, error) {
	n, ok := w.LumpNum(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLumpNotFound, name)
	}
	return w.readLump(&w.lumpInfos[n])
}

func (w *WAD) readLump(li *LumpInfo) ([]byte, error) {
	lump := make([]byte, li.Size)
	n, err := w.r.ReadAt(lump, int64(li.Filepos))
	if n == li.Size {
		return lump, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("lump %s: %w", li.Name, err)
}

// readRecords decodes a lump of fixed-size little-endian records into a
// slice of T.
func readRecords[T any](w *WAD, li *LumpInfo) ([]T, error) {
	size := binary.Size(new(T))
	if li.Size%size != 0 {
		return nil, fmt.Errorf("lump %s: size %d is not a multiple of %d", li.Name, li.Size, size)
	}
	lump, err := w.readLump(li)
	if err != nil {
		return nil, err
	}
	out := make([]T, li.Size/size)
	if err := binary.Read(bytes.NewReader(lump), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("lump %s: %w", li.Name, err)
	}
	return out, nil
}

// between returns the directory entries strictly between the start and end
// markers, skipping zero-length sub-markers.
func (w *WAD) between(start, end string) ([]*LumpInfo, error) {
	first, ok := w.lumpNums[start]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLumpNotFound, start)
	}
	last, ok := w.lumpNums[end]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLumpNotFound, end)
	}
	var out []*LumpInfo
	for i := first + 1; i < last; i++ {
		if w.lumpInfos[i].Size == 0 {
			continue
		}
		out = append(out, &w.lumpInfos[i])
	}
	return out, nil
}
