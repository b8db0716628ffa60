// Package checkpoint implements the byte-level save/load format spec §6
// defines for resuming or recording a simulation run: a small header
// followed by one fixed-size record per body, all little-endian.
//
// Grounded on config/settings.go's os.IsNotExist-fallback style for
// treating I/O and format problems as ordinary returned errors rather
// than panics, matching the teacher's error-handling idiom throughout.
package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"nbodysim/engine/body"
	"nbodysim/engine/vecmath"
)

// magic identifies a file as an nbodysim checkpoint. version distinguishes
// incompatible layout revisions; this package writes and accepts only
// version 1.
var magic = [4]byte{'N', 'B', 'S', '1'}

const version uint32 = 1

// Sentinel errors for the checkpoint-error taxonomy spec §7 names:
// malformed file, version mismatch, truncated body record.
var (
	ErrBadMagic        = errors.New("checkpoint: not an nbodysim checkpoint file")
	ErrVersionMismatch = errors.New("checkpoint: unsupported checkpoint version")
	ErrTruncated       = errors.New("checkpoint: truncated body record")
)

// header is the fixed-size part of the file, before the body records.
type header struct {
	Magic   [4]byte
	Version uint32
	Dim     uint32
	N       uint64
}

// Write serializes store to w in the spec §6 layout: header, then one
// record per body of mass, position, velocity, all little-endian.
func Write(w io.Writer, store *body.Store) error {
	h := header{Magic: magic, Version: version, Dim: uint32(store.Dim), N: uint64(store.Len())}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("checkpoint: write header: %w", err)
	}

	dim := store.Dim
	for i := 0; i < store.Len(); i++ {
		if err := binary.Write(w, binary.LittleEndian, store.Mass[i]); err != nil {
			return fmt.Errorf("checkpoint: write body %d mass: %w", i, err)
		}
		if err := writeVector(w, store.Position[i], dim); err != nil {
			return fmt.Errorf("checkpoint: write body %d position: %w", i, err)
		}
		if err := writeVector(w, store.Velocity[i], dim); err != nil {
			return fmt.Errorf("checkpoint: write body %d velocity: %w", i, err)
		}
	}
	return nil
}

func writeVector(w io.Writer, v vecmath.Vector, dim int) error {
	for axis := 0; axis < dim; axis++ {
		if err := binary.Write(w, binary.LittleEndian, v[axis]); err != nil {
			return err
		}
	}
	return nil
}

// Read deserializes a checkpoint from r into a freshly allocated Store.
// A malformed magic, an unsupported version, or a body record cut short
// by EOF are reported as the corresponding sentinel error, wrapped with
// context; on any error the caller's existing simulation state is left
// untouched, per spec §7's "body store remains unchanged" policy — Read
// never mutates caller state, it only ever returns a new Store.
func Read(r io.Reader) (*body.Store, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("checkpoint: read header: %w", ErrTruncated)
		}
		return nil, fmt.Errorf("checkpoint: read header: %w", err)
	}
	if h.Magic != magic {
		return nil, ErrBadMagic
	}
	if h.Version != version {
		return nil, fmt.Errorf("%w: file is version %d, reader supports %d", ErrVersionMismatch, h.Version, version)
	}
	if h.Dim != 2 && h.Dim != 3 {
		return nil, fmt.Errorf("checkpoint: %w: dimension %d", ErrBadMagic, h.Dim)
	}

	dim := int(h.Dim)
	n := int(h.N)
	store := body.NewStore(n, dim)

	for i := 0; i < n; i++ {
		if err := binary.Read(r, binary.LittleEndian, &store.Mass[i]); err != nil {
			return nil, fmt.Errorf("checkpoint: body %d mass: %w", i, wrapTruncated(err))
		}
		if err := readVector(r, &store.Position[i], dim); err != nil {
			return nil, fmt.Errorf("checkpoint: body %d position: %w", i, wrapTruncated(err))
		}
		if err := readVector(r, &store.Velocity[i], dim); err != nil {
			return nil, fmt.Errorf("checkpoint: body %d velocity: %w", i, wrapTruncated(err))
		}
	}
	return store, nil
}

func readVector(r io.Reader, v *vecmath.Vector, dim int) error {
	for axis := 0; axis < dim; axis++ {
		if err := binary.Read(r, binary.LittleEndian, &v[axis]); err != nil {
			return err
		}
	}
	return nil
}

func wrapTruncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}
