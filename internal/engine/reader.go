package engine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ammScope/internal/model"
)

// ReadOperations loads a JSONL operation file. Sequence numbers must be
// strictly increasing.
func ReadOperations(path string) ([]model.Operation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return readOperations(file)
}

func readOperations(r io.Reader) ([]model.Operation, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var ops []model.Operation
	var lineNo int
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var op model.Operation
		if err := json.Unmarshal(line, &op); err != nil {
			return nil, fmt.Errorf("line %d: decode operation: %w", lineNo, err)
		}
		if n := len(ops); n > 0 && op.Seq <= ops[n-1].Seq {
			return nil, fmt.Errorf("line %d: seq %d does not follow %d", lineNo, op.Seq, ops[n-1].Seq)
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return ops, nil
}
