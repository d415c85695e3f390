package surrogate

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
)

// ArtifactFormatVersion is written into every artifact header. Readers reject
// any other version.
const ArtifactFormatVersion = 1

var artifactMagic = [4]byte{'S', 'R', 'G', 'T'}

// Encode writes m as: 4-byte magic, big-endian uint16 format version, then a
// zstd-compressed gob payload.
func Encode(w io.Writer, m *TrainedModel) error {
	var header [6]byte
	copy(header[:4], artifactMagic[:])
	binary.BigEndian.PutUint16(header[4:], ArtifactFormatVersion)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write artifact header: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(m); err != nil {
		zw.Close() //nolint:errcheck // already failing
		return fmt.Errorf("encode model %s: %w", m.Domain, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush artifact: %w", err)
	}
	return nil
}

// Decode reads an artifact written by Encode and checks its integrity.
func Decode(r io.Reader) (*TrainedModel, error) {
	var header [6]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read artifact header: %w: %w", ErrIncompatibleArtifact, err)
	}
	if !bytes.Equal(header[:4], artifactMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrIncompatibleArtifact, header[:4])
	}
	if v := binary.BigEndian.Uint16(header[4:]); v != ArtifactFormatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrIncompatibleArtifact, v, ArtifactFormatVersion)
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
	}
	defer zr.Close()

	var m TrainedModel
	if err := gob.NewDecoder(zr).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %w", ErrCorruptArtifact, err)
	}
	if m.FormatVersion != ArtifactFormatVersion {
		return nil, fmt.Errorf("%w: payload version %d", ErrIncompatibleArtifact, m.FormatVersion)
	}
	if len(m.FeatureNames) == 0 || m.Forest.NumFeatures != len(m.FeatureNames) || !m.Forest.valid() {
		return nil, fmt.Errorf("%w: malformed forest for %s", ErrCorruptArtifact, m.Domain)
	}

	id, err := contentID(&m)
	if err != nil {
		return nil, err
	}
	if id != m.ID {
		return nil, fmt.Errorf("%w: content id %s does not match recorded %s", ErrCorruptArtifact, id, m.ID)
	}
	return &m, nil
}

// contentID hashes a canonical binary walk of m, excluding ID itself. Gob
// output is not used here because its type ids depend on registration order
// within a process.
func contentID(m *TrainedModel) (string, error) {
	h := sha256.New()
	w := func(v any) {
		binary.Write(h, binary.LittleEndian, v) //nolint:errcheck // hash writes never fail
	}
	str := func(s string) {
		w(uint32(len(s)))
		h.Write([]byte(s))
	}

	w(int64(m.FormatVersion))
	str(string(m.Domain))
	w(uint32(len(m.FeatureNames)))
	for _, n := range m.FeatureNames {
		str(n)
	}
	str(m.TargetName)
	str(m.DatasetDigest)
	w(int64(m.SamplingPolicyVersion))
	w(int64(m.TrainingSamples))
	w(int64(m.ValidationSamples))
	w([]float64{m.Metrics.MAE, m.Metrics.RMSE, m.Metrics.R2, m.Metrics.TargetRange})
	w(m.Metrics.FeatureImportance)
	p := m.Params
	w([]int64{int64(p.Trees), int64(p.MaxDepth), int64(p.MinSamplesSplit), int64(p.MinSamplesLeaf), int64(p.MaxFeatures)})
	w(p.ValidationFraction)
	w(p.Seed)
	w(m.TrainedAt.UnixNano())

	w(int64(m.Forest.NumFeatures))
	w(uint32(len(m.Forest.Trees)))
	for _, t := range m.Forest.Trees {
		w(uint32(len(t.Nodes)))
		var buf [32]byte
		for _, n := range t.Nodes {
			binary.LittleEndian.PutUint64(buf[0:], uint64(int64(n.Feature)))
			binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(n.Threshold))
			binary.LittleEndian.PutUint32(buf[16:], uint32(n.Left))
			binary.LittleEndian.PutUint32(buf[20:], uint32(n.Right))
			binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(n.Value))
			h.Write(buf[:])
		}
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8]), nil
}
