package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"ftserve/internal/engine"
)

// parseArgsDump parses `fasttext dump <model> args`: one "name value" pair
// per line. Fields fastText does not persist keep their defaults.
func parseArgsDump(out []byte) (engine.Args, error) {
	a := engine.DefaultArgs()
	seen := 0
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		name, val, ok := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		var err error
		switch name {
		case "dim":
			a.Dim, err = strconv.Atoi(val)
		case "ws":
			a.WS, err = strconv.Atoi(val)
		case "epoch":
			a.Epoch, err = strconv.Atoi(val)
		case "minCount":
			a.MinCount, err = strconv.Atoi(val)
		case "neg":
			a.Neg, err = strconv.Atoi(val)
		case "wordNgrams":
			a.WordNgrams, err = strconv.Atoi(val)
		case "loss":
			a.Loss = val
		case "model":
			a.Model = val
		case "bucket":
			a.Bucket, err = strconv.Atoi(val)
		case "minn":
			a.Minn, err = strconv.Atoi(val)
		case "maxn":
			a.Maxn, err = strconv.Atoi(val)
		case "lrUpdateRate":
			a.LRUpdateRate, err = strconv.Atoi(val)
		case "t":
			a.T, err = strconv.ParseFloat(val, 64)
		default:
			continue
		}
		if err != nil {
			return engine.Args{}, fmt.Errorf("%s: %w", name, err)
		}
		seen++
	}
	if err := sc.Err(); err != nil {
		return engine.Args{}, err
	}
	if seen == 0 || a.Dim <= 0 {
		return engine.Args{}, fmt.Errorf("no dimension in args dump")
	}
	return a, nil
}

// parseDictDump parses `fasttext dump <model> dict`: an entry count followed
// by "<entry> <count> <word|label>" lines.
func parseDictDump(out []byte) (words, labels []string, err error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !sc.Scan() {
		return nil, nil, fmt.Errorf("empty dict dump")
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return nil, nil, fmt.Errorf("entry count: %w", err)
	}
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		switch fields[len(fields)-1] {
		case "word":
			words = append(words, fields[0])
		case "label":
			labels = append(labels, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if len(words)+len(labels) != n {
		return nil, nil, fmt.Errorf("dict dump lists %d entries, header says %d", len(words)+len(labels), n)
	}
	return words, labels, nil
}

// parseVector converts whitespace-separated floats into a vector of length dim.
// Empty input yields the zero vector.
func parseVector(fields []string, dim int) ([]float32, error) {
	vec := make([]float32, dim)
	if len(fields) == 0 {
		return vec, nil
	}
	if len(fields) != dim {
		return nil, fmt.Errorf("vector has %d components, model dim is %d", len(fields), dim)
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("vector component %d: %w", i, err)
		}
		vec[i] = float32(v)
	}
	return vec, nil
}
