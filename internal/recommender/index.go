package recommender

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// FlatIndex is an exact inner-product index over L2-normalized vectors.
// With normalized rows a dot product equals cosine similarity, so search
// results match what faiss.IndexFlatIP would return for the same data.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

var indexMagic = [4]byte{'F', 'I', 'D', 'X'}

// BuildIndex normalizes the given vectors and builds a searchable index.
func BuildIndex(vectors [][]float32, dim int) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid index dimension %d", dim)
	}
	ix := &FlatIndex{dim: dim, vectors: make([][]float32, 0, len(vectors))}
	if err := ix.Add(vectors); err != nil {
		return nil, err
	}
	return ix, nil
}

// Add appends vectors to the index, normalizing each one.
func (ix *FlatIndex) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(v), ix.dim)
		}
		row := make([]float32, ix.dim)
		copy(row, v)
		NormalizeL2(row)
		ix.vectors = append(ix.vectors, row)
	}
	return nil
}

// Dim returns the vector dimension the index was built with.
func (ix *FlatIndex) Dim() int {
	return ix.dim
}

// Ntotal returns the number of indexed vectors.
func (ix *FlatIndex) Ntotal() int {
	return len(ix.vectors)
}

// Search returns up to k positions with their similarity scores, ordered by
// descending score. The query is normalized on a copy; the index itself is
// never mutated. Ties are broken by position ascending so results are stable.
func (ix *FlatIndex) Search(query []float32, k int) ([]int, []float32, error) {
	if len(query) != ix.dim {
		return nil, nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), ix.dim)
	}
	if k <= 0 || len(ix.vectors) == 0 {
		return nil, nil, nil
	}

	q := make([]float32, ix.dim)
	copy(q, query)
	NormalizeL2(q)

	scores := make([]float32, len(ix.vectors))
	for i, row := range ix.vectors {
		var dot float32
		for j := range row {
			dot += row[j] * q[j]
		}
		scores[i] = dot
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return order[a] < order[b]
	})

	if k > len(order) {
		k = len(order)
	}
	positions := make([]int, k)
	topScores := make([]float32, k)
	for i := 0; i < k; i++ {
		positions[i] = order[i]
		topScores[i] = scores[order[i]]
	}
	return positions, topScores, nil
}

// Save writes the index to an opaque binary artifact.
func (ix *FlatIndex) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.Write(indexMagic[:]); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}
	header := []int32{1, int32(ix.dim), int32(len(ix.vectors))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}
	for _, row := range ix.vectors {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("write index row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush index file: %w", err)
	}
	return nil
}

// LoadIndex reads an index previously written by Save. A missing file
// surfaces as an error wrapping os.ErrNotExist.
func LoadIndex(path string) (*FlatIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}
	if magic != indexMagic {
		return nil, fmt.Errorf("%s is not an index artifact", path)
	}
	header := make([]int32, 3)
	if err := binary.Read(r, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}
	version, dim, count := header[0], int(header[1]), int(header[2])
	if version != 1 {
		return nil, fmt.Errorf("unsupported index version %d", version)
	}
	if dim <= 0 || count < 0 {
		return nil, fmt.Errorf("corrupt index header: dim=%d count=%d", dim, count)
	}

	ix := &FlatIndex{dim: dim, vectors: make([][]float32, count)}
	for i := 0; i < count; i++ {
		row := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("read index row %d: %w", i, err)
		}
		ix.vectors[i] = row
	}
	return ix, nil
}

// NormalizeL2 scales v to unit length in place. Zero vectors are left as-is
// so a degenerate embedding scores 0 against everything instead of NaN.
func NormalizeL2(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm < 1e-9 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
