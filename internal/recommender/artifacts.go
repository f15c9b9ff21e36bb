package recommender

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Artifact file names mirror the offline pipeline's layout: five files that
// must all be present and index-aligned before a snapshot is loadable.
const (
	contentEmbsFile = "jobs_embeddings.bin"
	jobIDsFile      = "job_ids.bin"
	metadataFile    = "job_metadatas.json"
	titleEmbsFile   = "job_title_embs.bin"
	indexFile       = "faiss_index.bin"
)

// JobMetadata is the per-job sidecar record written next to the embeddings.
// Location, salary and timestamps live here instead of in the embedding text.
type JobMetadata struct {
	JobID         int64     `json:"job_id"`
	CompanyID     int64     `json:"company_id"`
	City          string    `json:"job_city"`
	State         string    `json:"job_state"`
	MinimumSalary float64   `json:"job_minimum_salary"`
	MaximumSalary float64   `json:"job_maximum_salary"`
	AverageSalary float64   `json:"average_salary"`
	CreatedAt     time.Time `json:"job_created_at"`
}

// Artifacts bundles everything the indexer persists for one corpus version.
type Artifacts struct {
	JobIDs      []int64
	ContentEmbs [][]float32
	Metadatas   []JobMetadata
	TitleEmbs   [][]float32 // nil slot = title missing or embedding failed
	Index       *FlatIndex
}

// ArtifactStore reads and writes the artifact set under one directory.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

func (s *ArtifactStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Complete reports whether every required artifact exists on disk.
func (s *ArtifactStore) Complete() bool {
	for _, name := range []string{contentEmbsFile, jobIDsFile, metadataFile, titleEmbsFile, indexFile} {
		if _, err := os.Stat(s.path(name)); err != nil {
			return false
		}
	}
	return true
}

// Save writes all five artifacts. The caller is expected to have built them
// from the same corpus scan, so lengths must already agree.
func (s *ArtifactStore) Save(arts *Artifacts) error {
	n := len(arts.JobIDs)
	if len(arts.ContentEmbs) != n || len(arts.Metadatas) != n || len(arts.TitleEmbs) != n || arts.Index.Ntotal() != n {
		return fmt.Errorf("misaligned artifacts: ids=%d embs=%d metas=%d title_embs=%d index=%d",
			n, len(arts.ContentEmbs), len(arts.Metadatas), len(arts.TitleEmbs), arts.Index.Ntotal())
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := writeMatrix(s.path(contentEmbsFile), arts.ContentEmbs, arts.Index.Dim()); err != nil {
		return err
	}
	if err := writeIDs(s.path(jobIDsFile), arts.JobIDs); err != nil {
		return err
	}
	if err := writeMetadata(s.path(metadataFile), arts.Metadatas); err != nil {
		return err
	}
	if err := writeMatrix(s.path(titleEmbsFile), arts.TitleEmbs, arts.Index.Dim()); err != nil {
		return err
	}
	if err := arts.Index.Save(s.path(indexFile)); err != nil {
		return err
	}
	return nil
}

// Load reads all five artifacts. Any missing or misaligned file fails the
// whole load with ErrSnapshotUnavailable; there is no partial fallback.
func (s *ArtifactStore) Load() (*Artifacts, error) {
	if !s.Complete() {
		return nil, fmt.Errorf("%w: missing artifacts in %s, run the indexer first", ErrSnapshotUnavailable, s.dir)
	}

	ids, err := readIDs(s.path(jobIDsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}
	contentEmbs, err := readMatrix(s.path(contentEmbsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}
	metas, err := readMetadata(s.path(metadataFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}
	titleEmbs, err := readMatrix(s.path(titleEmbsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}
	index, err := LoadIndex(s.path(indexFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}

	n := len(ids)
	if len(contentEmbs) != n || len(metas) != n || len(titleEmbs) != n || index.Ntotal() != n {
		return nil, fmt.Errorf("%w: misaligned artifacts: ids=%d embs=%d metas=%d title_embs=%d index=%d",
			ErrSnapshotUnavailable, n, len(contentEmbs), len(metas), len(titleEmbs), index.Ntotal())
	}

	return &Artifacts{
		JobIDs:      ids,
		ContentEmbs: contentEmbs,
		Metadatas:   metas,
		TitleEmbs:   titleEmbs,
		Index:       index,
	}, nil
}

// writeMatrix persists rows of float32 with a per-row presence flag so
// nullable title-embedding slots survive the round trip.
func writeMatrix(path string, rows [][]float32, dim int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, []int32{int32(len(rows)), int32(dim)}); err != nil {
		return fmt.Errorf("write %s header: %w", path, err)
	}
	for i, row := range rows {
		if row == nil {
			if err := w.WriteByte(0); err != nil {
				return fmt.Errorf("write %s row %d: %w", path, i, err)
			}
			continue
		}
		if len(row) != dim {
			return fmt.Errorf("row %d has dimension %d, expected %d", i, len(row), dim)
		}
		if err := w.WriteByte(1); err != nil {
			return fmt.Errorf("write %s row %d: %w", path, i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("write %s row %d: %w", path, i, err)
		}
	}
	return w.Flush()
}

func readMatrix(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header := make([]int32, 2)
	if err := binary.Read(r, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}
	count, dim := int(header[0]), int(header[1])
	if count < 0 || dim < 0 {
		return nil, fmt.Errorf("corrupt header in %s: count=%d dim=%d", path, count, dim)
	}

	rows := make([][]float32, count)
	for i := 0; i < count; i++ {
		flag, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", path, i, err)
		}
		if flag == 0 {
			continue
		}
		row := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", path, i, err)
		}
		rows[i] = row
	}
	return rows, nil
}

func writeIDs(path string, ids []int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, int32(len(ids))); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := binary.Write(w, binary.LittleEndian, ids); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Flush()
}

func readIDs(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if count < 0 {
		return nil, fmt.Errorf("corrupt header in %s: count=%d", path, count)
	}
	ids := make([]int64, count)
	if err := binary.Read(r, binary.LittleEndian, ids); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ids, nil
}

func writeMetadata(path string, metas []JobMetadata) error {
	data, err := json.Marshal(metas)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readMetadata(path string) ([]JobMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var metas []JobMetadata
	if err := json.Unmarshal(data, &metas); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return metas, nil
}
