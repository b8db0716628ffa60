package checkpoint

import (
	"bytes"
	"errors"
	"testing"

	"nbodysim/engine/body"
	"nbodysim/engine/vecmath"
)

func sampleStore(dim int) *body.Store {
	s := body.NewStore(3, dim)
	for i := range s.Mass {
		pz, vz := float64(i)*3, float64(i)*0.25
		if dim == 2 {
			pz, vz = 0, 0 // 2D stores keep Z at 0; only X and Y are serialized
		}
		s.Mass[i] = float64(i) + 1.5
		s.Position[i] = vecmath.New(float64(i), float64(i)*2, pz)
		s.Velocity[i] = vecmath.New(-float64(i), float64(i)*0.5, vz)
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	for _, dim := range []int{2, 3} {
		store := sampleStore(dim)

		var buf bytes.Buffer
		if err := Write(&buf, store); err != nil {
			t.Fatalf("dim %d: Write: %v", dim, err)
		}

		got, err := Read(&buf)
		if err != nil {
			t.Fatalf("dim %d: Read: %v", dim, err)
		}

		if got.Len() != store.Len() || got.Dim != store.Dim {
			t.Fatalf("dim %d: got Len=%d Dim=%d, want Len=%d Dim=%d", dim, got.Len(), got.Dim, store.Len(), store.Dim)
		}
		for i := 0; i < store.Len(); i++ {
			if got.Mass[i] != store.Mass[i] {
				t.Errorf("dim %d body %d: mass = %g, want %g", dim, i, got.Mass[i], store.Mass[i])
			}
			if got.Position[i] != store.Position[i] {
				t.Errorf("dim %d body %d: position = %v, want %v", dim, i, got.Position[i], store.Position[i])
			}
			if got.Velocity[i] != store.Velocity[i] {
				t.Errorf("dim %d body %d: velocity = %v, want %v", dim, i, got.Velocity[i], store.Velocity[i])
			}
		}
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("not a checkpoint file at all, just text")
	if _, err := Read(buf); !errors.Is(err, ErrBadMagic) {
		t.Errorf("got err %v, want ErrBadMagic", err)
	}
}

func TestReadRejectsVersionMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleStore(2)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b := buf.Bytes()
	b[4] = 0xFF // corrupt the version field, just past the 4-byte magic

	if _, err := Read(bytes.NewReader(b)); !errors.Is(err, ErrVersionMismatch) {
		t.Errorf("got err %v, want ErrVersionMismatch", err)
	}
}

func TestReadRejectsTruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleStore(2)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-4] // cut off mid-record

	if _, err := Read(bytes.NewReader(truncated)); !errors.Is(err, ErrTruncated) {
		t.Errorf("got err %v, want ErrTruncated", err)
	}
}
