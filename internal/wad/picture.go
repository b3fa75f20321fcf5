package wad

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"bsprender/internal/render"
)

type binPatchHeader struct {
	Width, Height, LeftOffset, TopOffset int16
}

// ReadPatch decodes picture lump name.
func (w *WAD) ReadPatch(name string) (*render.Patch, error) {
	lump, err := w.ReadLump(name)
	if err != nil {
		return nil, err
	}
	return decodePatch(name, lump)
}

// decodePatch parses the column-post picture format. Each column is a run
// of posts: top delta, length, a pad byte, the pixels and another pad, up
// to a 0xff terminator.
func decodePatch(name string, lump []byte) (*render.Patch, error) {
	r := bytes.NewReader(lump)
	var h binPatchHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("patch %s: %w", name, err)
	}
	if h.Width <= 0 || h.Height <= 0 {
		return nil, fmt.Errorf("patch %s: bad size %dx%d", name, h.Width, h.Height)
	}
	offsets := make([]int32, h.Width)
	if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
		return nil, fmt.Errorf("patch %s: column offsets: %w", name, err)
	}

	p := &render.Patch{
		Name:       name,
		Width:      int(h.Width),
		Height:     int(h.Height),
		LeftOffset: int(h.LeftOffset),
		TopOffset:  int(h.TopOffset),
		Columns:    make([]render.Column, h.Width),
	}
	for x, off := range offsets {
		pos := int(off)
		var col render.Column
		for {
			if pos < 0 || pos >= len(lump) {
				return nil, fmt.Errorf("patch %s: column %d runs past the lump", name, x)
			}
			topDelta := int(lump[pos])
			if topDelta == 0xff {
				break
			}
			if pos+3 > len(lump) {
				return nil, fmt.Errorf("patch %s: column %d truncated", name, x)
			}
			n := int(lump[pos+1])
			start := pos + 3
			if start+n > len(lump) {
				return nil, fmt.Errorf("patch %s: post in column %d truncated", name, x)
			}
			col = append(col, render.Post{TopDelta: topDelta, Pixels: lump[start : start+n]})
			pos = start + n + 1
		}
		p.Columns[x] = col
	}
	return p, nil
}
