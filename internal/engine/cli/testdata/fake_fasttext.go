// fake_fasttext mimics the subset of the fastText CLI used by the cli engine.
// Models are a valid fastText header followed by a JSON payload holding
// per-word label counts.
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

const (
	magic   = 793712314
	version = 12
	dim     = 8
	minn    = 3
	maxn    = 6
)

type model struct {
	Mode   string                    `json:"mode"`
	Counts map[string]map[string]int `json:"counts"`
	Labels []string                  `json:"labels"`
	Words  []string                  `json:"words"`
}

func main() {
	if len(os.Args) < 2 {
		fail("usage: fasttext <command> <args>")
	}
	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "supervised", "skipgram", "cbow":
		train(cmd, args)
	case "dump":
		need(args, 2)
		dump(load(args[0]), args[1])
	case "predict-prob", "predict":
		need(args, 2)
		k, th := 1, 0.0
		if len(args) > 2 {
			k, _ = strconv.Atoi(args[2])
		}
		if len(args) > 3 {
			th, _ = strconv.ParseFloat(args[3], 64)
		}
		predict(load(args[0]), k, th, cmd == "predict-prob")
	case "print-word-vectors":
		need(args, 1)
		load(args[0])
		sc := bufio.NewScanner(os.Stdin)
		sc.Split(bufio.ScanWords)
		for sc.Scan() {
			fmt.Printf("%s %s\n", sc.Text(), fmtVec(vec(sc.Text())))
		}
	case "print-sentence-vectors":
		need(args, 1)
		load(args[0])
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			sum := make([]float64, dim)
			words := strings.Fields(sc.Text())
			for _, w := range words {
				for i, v := range vec(w) {
					sum[i] += v / float64(len(words))
				}
			}
			fmt.Println(fmtVec(sum))
		}
	case "print-ngrams":
		need(args, 2)
		load(args[0])
		w := "<" + args[1] + ">"
		for n := minn; n <= maxn; n++ {
			for i := 0; i+n <= len(w); i++ {
				g := w[i : i+n]
				fmt.Printf("%s %s\n", g, fmtVec(vec("#"+g)))
			}
		}
	case "test":
		need(args, 3)
		m := load(args[0])
		k, _ := strconv.Atoi(args[2])
		evaluate(m, args[1], k)
	default:
		fail("unknown command: " + cmd)
	}
}

func need(args []string, n int) {
	if len(args) < n {
		fail("missing arguments")
	}
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func flagValue(args []string, name string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == name {
			return args[i+1]
		}
	}
	return ""
}

func train(mode string, args []string) {
	in, out := flagValue(args, "-input"), flagValue(args, "-output")
	if in == "" || out == "" {
		fail("-input and -output are required")
	}
	f, err := os.Open(in)
	if err != nil {
		fail(err.Error())
	}
	defer f.Close()
	m := model{Mode: mode, Counts: map[string]map[string]int{}}
	seenLabel := map[string]bool{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var labels, words []string
		for _, tok := range strings.Fields(sc.Text()) {
			if strings.HasPrefix(tok, "__label__") {
				labels = append(labels, tok)
			} else {
				words = append(words, tok)
			}
		}
		for _, l := range labels {
			if !seenLabel[l] {
				seenLabel[l] = true
				m.Labels = append(m.Labels, l)
			}
		}
		for _, w := range words {
			if m.Counts[w] == nil {
				m.Counts[w] = map[string]int{}
				m.Words = append(m.Words, w)
			}
			for _, l := range labels {
				m.Counts[w][l]++
			}
		}
	}
	payload, _ := json.Marshal(m)
	hdr := make([]byte, 8)
	binary.LittleEndian.PutUint32(hdr[0:4], magic)
	binary.LittleEndian.PutUint32(hdr[4:8], version)
	if err := os.WriteFile(out+".bin", append(hdr, payload...), 0o644); err != nil {
		fail(err.Error())
	}
	fmt.Printf("Read %d words\nNumber of labels: %d\n", len(m.Words), len(m.Labels))
}

func load(path string) model {
	b, err := os.ReadFile(path)
	if err != nil {
		fail(err.Error())
	}
	var m model
	if len(b) < 8 || json.Unmarshal(b[8:], &m) != nil {
		fail("invalid model payload: " + path)
	}
	return m
}

func dump(m model, what string) {
	switch what {
	case "args":
		mdl := "sup"
		if m.Mode == "skipgram" {
			mdl = "sg"
		} else if m.Mode == "cbow" {
			mdl = "cbow"
		}
		fmt.Printf("dim %d\nws 5\nepoch 5\nminCount 1\nneg 5\nwordNgrams 1\nloss softmax\nmodel %s\nbucket 2000000\nminn %d\nmaxn %d\nlrUpdateRate 100\nt 0.0001\n", dim, mdl, minn, maxn)
	case "dict":
		fmt.Println(len(m.Words) + len(m.Labels))
		for _, w := range m.Words {
			fmt.Printf("%s 1 word\n", w)
		}
		for _, l := range m.Labels {
			fmt.Printf("%s 1 label\n", l)
		}
	default:
		fail("unknown dump option: " + what)
	}
}

type scored struct {
	label string
	prob  float64
}

func score(m model, line string) []scored {
	totals := map[string]float64{}
	hits := 0
	for _, w := range strings.Fields(line) {
		for l, c := range m.Counts[w] {
			totals[l] += float64(c)
			hits++
		}
	}
	if hits == 0 || len(m.Labels) == 0 {
		return nil
	}
	var sum float64
	for _, l := range m.Labels {
		sum += totals[l] + 1
	}
	out := make([]scored, 0, len(m.Labels))
	for _, l := range m.Labels {
		out = append(out, scored{label: l, prob: (totals[l] + 1) / sum})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].prob > out[j].prob })
	return out
}

func predict(m model, k int, th float64, withProb bool) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		var parts []string
		for i, s := range score(m, sc.Text()) {
			if i >= k || s.prob < th {
				break
			}
			parts = append(parts, s.label)
			if withProb {
				parts = append(parts, strconv.FormatFloat(s.prob, 'f', 5, 64))
			}
		}
		fmt.Println(strings.Join(parts, " "))
	}
}

func evaluate(m model, path string, k int) {
	f, err := os.Open(path)
	if err != nil {
		fail(err.Error())
	}
	defer f.Close()
	n, correct, gold := 0, 0, 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		want := map[string]bool{}
		for _, tok := range strings.Fields(sc.Text()) {
			if strings.HasPrefix(tok, "__label__") {
				want[tok] = true
			}
		}
		n++
		gold += len(want)
		for i, s := range score(m, sc.Text()) {
			if i >= k {
				break
			}
			if want[s.label] {
				correct++
			}
		}
	}
	p, r := 0.0, 0.0
	if n > 0 {
		p = float64(correct) / float64(n*k)
	}
	if gold > 0 {
		r = float64(correct) / float64(gold)
	}
	fmt.Printf("N\t%d\nP@%d\t%.3f\nR@%d\t%.3f\n", n, k, p, k, r)
}

func vec(s string) []float64 {
	v := make([]float64, dim)
	for i := range v {
		h := fnv.New32a()
		fmt.Fprintf(h, "%d:%s", i, s)
		v[i] = math.Round((float64(h.Sum32()%2000)/1000-1)*1e4) / 1e4
	}
	return v
}

func fmtVec(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 4, 64)
	}
	return strings.Join(parts, " ") + " "
}
