package modelfile

import (
	"archive/zip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

// Format identifies how a weights artifact stores its tensors.
type Format int

const (
	FormatSafetensors Format = iota
	FormatNPZ
)

func (f Format) String() string {
	if f == FormatNPZ {
		return "npz"
	}
	return "safetensors"
}

// WeightsFile is a located weights artifact inside a snapshot directory.
type WeightsFile struct {
	Path   string
	Format Format
}

// weightCandidates are probed in order; first match wins. The snapshot
// converters have shipped all three layouts over time.
var weightCandidates = []struct {
	name   string
	format Format
}{
	{"model.safetensors", FormatSafetensors},
	{"weights.safetensors", FormatSafetensors},
	{"weights.npz", FormatNPZ},
}

// FindWeights locates the weights artifact in a snapshot directory.
func FindWeights(dir string) (WeightsFile, error) {
	for _, candidate := range weightCandidates {
		path := filepath.Join(dir, candidate.name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return WeightsFile{Path: path, Format: candidate.format}, nil
		}
	}

	names := make([]string, len(weightCandidates))
	for i, candidate := range weightCandidates {
		names[i] = candidate.name
	}
	return WeightsFile{}, fmt.Errorf("%w in %s (tried %s)", whisper.ErrWeightsNotFound, dir, strings.Join(names, ", "))
}

// WeightNames lists the candidate artifact file names in probe order.
func WeightNames() []string {
	names := make([]string, len(weightCandidates))
	for i, candidate := range weightCandidates {
		names[i] = candidate.name
	}
	return names
}

// TensorIndex is the set of tensor names inside a weights artifact, built
// without loading any tensor data. The quantization predicate queries it for
// per-layer scale entries.
type TensorIndex struct {
	file  WeightsFile
	names map[string]struct{}
}

// ReadIndex parses the artifact's metadata into a tensor name index: the
// safetensors JSON header, or the zip directory of an npz archive.
func ReadIndex(file WeightsFile) (*TensorIndex, error) {
	var names []string
	var err error
	switch file.Format {
	case FormatNPZ:
		names, err = npzTensorNames(file.Path)
	default:
		names, err = safetensorsTensorNames(file.Path)
	}
	if err != nil {
		return nil, err
	}

	index := &TensorIndex{file: file, names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		index.names[name] = struct{}{}
	}
	return index, nil
}

// Has reports whether the artifact contains a tensor with the given name.
func (ti *TensorIndex) Has(name string) bool {
	_, ok := ti.names[name]
	return ok
}

// Len returns the number of tensors in the artifact.
func (ti *TensorIndex) Len() int {
	return len(ti.names)
}

// Names returns all tensor names sorted.
func (ti *TensorIndex) Names() []string {
	out := make([]string, 0, len(ti.names))
	for name := range ti.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// File returns the artifact the index was built from.
func (ti *TensorIndex) File() WeightsFile {
	return ti.file
}

// Tree restructures the flat dotted tensor names into the nested shape the
// runtime applies to a model. Leaves are TensorRef values pointing back into
// the artifact, so the runtime streams tensor data itself.
func (ti *TensorIndex) Tree() whisper.WeightTree {
	tree := whisper.WeightTree{}
	for _, name := range ti.Names() {
		insertTensorRef(tree, strings.Split(name, "."), TensorRef{File: ti.file, Name: name})
	}
	return tree
}

// TensorRef points at a single tensor inside a weights artifact.
type TensorRef struct {
	File WeightsFile
	Name string
}

func insertTensorRef(tree whisper.WeightTree, segments []string, ref TensorRef) {
	node := tree
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(whisper.WeightTree)
		if !ok {
			child = whisper.WeightTree{}
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = ref
}

// safetensors layout: 8-byte little-endian header length, then a JSON object
// mapping tensor names to dtype/shape/offset records, then raw data.
func safetensorsTensorNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weights: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat weights: %w", err)
	}

	var headerLen uint64
	if err := binary.Read(f, binary.LittleEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("read safetensors header length: %w", err)
	}
	if headerLen == 0 || headerLen > uint64(info.Size())-8 {
		return nil, fmt.Errorf("corrupt safetensors header in %s: header length %d exceeds file size %d", path, headerLen, info.Size())
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("read safetensors header: %w", err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(header, &entries); err != nil {
		return nil, fmt.Errorf("decode safetensors header in %s: %w", path, err)
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		if name == "__metadata__" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// npz is a zip archive of .npy members, one per tensor.
func npzTensorNames(path string) ([]string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open npz archive %s: %w", path, err)
	}
	defer archive.Close()

	names := make([]string, 0, len(archive.File))
	for _, member := range archive.File {
		names = append(names, strings.TrimSuffix(member.Name, ".npy"))
	}
	return names, nil
}
