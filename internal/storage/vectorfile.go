package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// maxVectorLineBytes bounds a single line of a word-vector text file.
const maxVectorLineBytes = 1 << 20

// ReadVectors parses a GloVe or word2vec text file from r, calling fn for each
// word vector in file order. A word2vec "<count> <dimensions>" header is skipped.
// All vectors must share the dimension of the first one, which is returned.
func ReadVectors(r io.Reader, fn func(word string, vec []float32) error) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxVectorLineBytes)

	dims := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && isWord2VecHeader(fields) {
			continue
		}
		if dims == 0 {
			dims = len(fields) - 1
			if dims <= 0 {
				return 0, fmt.Errorf("line %d: no vector components", lineNo)
			}
		}
		if len(fields) <= dims {
			return 0, fmt.Errorf("line %d: expected %d components, got %d", lineNo, dims, len(fields)-1)
		}
		// Some vocabularies contain tokens with spaces; the vector is always the trailing fields.
		split := len(fields) - dims
		word := strings.Join(fields[:split], " ")
		vec := make([]float32, dims)
		for i, f := range fields[split:] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return 0, fmt.Errorf("line %d: parse component %d: %w", lineNo, i, err)
			}
			vec[i] = float32(v)
		}
		if err := fn(word, vec); err != nil {
			return 0, err
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read vectors: %w", err)
	}
	if dims == 0 {
		return 0, fmt.Errorf("read vectors: no vectors found")
	}
	return dims, nil
}

func isWord2VecHeader(fields []string) bool {
	if len(fields) != 2 {
		return false
	}
	_, err1 := strconv.Atoi(fields[0])
	_, err2 := strconv.Atoi(fields[1])
	return err1 == nil && err2 == nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
