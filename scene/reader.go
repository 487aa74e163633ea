package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/helios-rt/helios/log"
)

// Intermediate representation used while decoding. Index/coordinate lists
// are decoded as slices first so that malformed lengths can be rejected
// instead of silently truncated into the fixed-size fields.
type jsonScene struct {
	Vertices []struct {
		Pos    []float32 `json:"pos"`
		Normal []float32 `json:"normal"`
	} `json:"vertices"`
	Primitives []struct {
		Indices  []uint32 `json:"indices"`
		Material uint32   `json:"material"`
	} `json:"primitives"`
}

// Read a scene definition from a JSON stream.
func Read(r io.Reader) (*Scene, error) {
	var raw jsonScene
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("scene: parse error: %v", err)
	}

	sc := &Scene{
		Vertices:   make([]Vertex, len(raw.Vertices)),
		Primitives: make([]Primitive, len(raw.Primitives)),
	}

	for i, v := range raw.Vertices {
		if len(v.Pos) != 3 {
			return nil, fmt.Errorf("scene: vertex %d: expected pos array of len 3; got %d", i, len(v.Pos))
		}
		if len(v.Normal) != 3 {
			return nil, fmt.Errorf("scene: vertex %d: expected normal array of len 3; got %d", i, len(v.Normal))
		}
		copy(sc.Vertices[i].Pos[:], v.Pos)
		copy(sc.Vertices[i].Normal[:], v.Normal)
	}

	for i, p := range raw.Primitives {
		if len(p.Indices) != 3 {
			return nil, fmt.Errorf("scene: primitive %d: expected index array of len 3; got %d", i, len(p.Indices))
		}
		for _, idx := range p.Indices {
			if idx >= uint32(len(sc.Vertices)) {
				return nil, fmt.Errorf("scene: primitive %d references unknown vertex %d", i, idx)
			}
		}
		copy(sc.Primitives[i].Indices[:], p.Indices)
		sc.Primitives[i].Material = p.Material
	}

	return sc, nil
}

// Read a scene definition from a JSON file.
func ReadFile(path string) (*Scene, error) {
	logger := log.New("scene reader")
	logger.Noticef("parsing scene from %s", path)
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %v", err)
	}
	defer f.Close()

	sc, err := Read(f)
	if err != nil {
		return nil, err
	}

	logger.Noticef("parsed scene in %d ms (%d primitives, %d vertices)",
		time.Since(start).Nanoseconds()/1e6, len(sc.Primitives), len(sc.Vertices))
	return sc, nil
}
