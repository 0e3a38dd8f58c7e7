package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ftserve/internal/common/fsutil"
	"ftserve/internal/manager"
	"ftserve/pkg/types"
)

var errNoModel = errors.New("no model loaded: pass --model, or set FTSERVE_DEFAULT_MODEL or FTSERVE_LOAD_BUNDLED")

// modelFlags selects the model a one-shot command loads.
type modelFlags struct {
	model   string
	bundled bool
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model path or registry id")
	cmd.Flags().BoolVar(&f.bundled, "bundled", false, "Use the bundled language-id model")
}

// open resolves configuration, builds a manager and loads the selected
// model. The caller must Close the manager.
func (f *modelFlags) open(cmd *cobra.Command, root *rootOptions) (*manager.Manager, error) {
	cfg, err := root.resolve(cmd)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg)
	isFile := false
	if f.model != "" {
		if p, err := fsutil.ExpandHome(f.model); err == nil {
			isFile = fsutil.PathExists(p)
		}
	}
	mgr, err := newManager(cfg, log, !isFile)
	if err != nil {
		return nil, err
	}
	switch {
	case f.bundled:
		err = mgr.LoadDefault(false)
	case isFile:
		err = mgr.LoadPath(f.model, false)
	case f.model != "":
		err = mgr.LoadID(f.model, false)
	default:
		err = mgr.Bootstrap()
	}
	if err == nil && !mgr.Ready() {
		err = errNoModel
	}
	if err != nil {
		_ = mgr.Close()
		return nil, err
	}
	return mgr, nil
}

// eachInput calls fn for the text given on the command line, or for every
// line of in when no text (or "-") is given.
func eachInput(args []string, in io.Reader, fn func(string) error) error {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return fn(strings.Join(args, " "))
	}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		if err := fn(sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}

func newPredictCmd(root *rootOptions) *cobra.Command {
	var (
		mf        modelFlags
		k         int
		threshold float32
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "predict [text...|-]",
		Short: "Predict labels for text (stdin lines when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := mf.open(cmd, root)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			return eachInput(args, cmd.InOrStdin(), func(text string) error {
				resp, err := mgr.Predict(text, k, threshold)
				if err != nil {
					return err
				}
				if asJSON {
					return enc.Encode(resp)
				}
				_, err = fmt.Fprintln(out, formatPredictions(resp.Predictions))
				return err
			})
		},
	}
	mf.register(cmd)
	cmd.Flags().IntVarP(&k, "k", "k", 1, "Number of labels to return")
	cmd.Flags().Float32VarP(&threshold, "threshold", "t", 0, "Minimum probability")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per input")
	return cmd
}

// formatPredictions renders predictions the way fastText predict-prob does.
func formatPredictions(preds []types.Prediction) string {
	parts := make([]string, 0, 2*len(preds))
	for _, p := range preds {
		parts = append(parts, p.Label, strconv.FormatFloat(p.Probability, 'g', 5, 64))
	}
	return strings.Join(parts, " ")
}

func newVectorCmd(root *rootOptions) *cobra.Command {
	var mf modelFlags
	cmd := &cobra.Command{
		Use:       "vector word|sentence|subword [text...|-]",
		Short:     "Print embeddings (stdin lines when no text is given)",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{string(manager.VectorWord), string(manager.VectorSentence), string(manager.VectorSubword)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := manager.VectorKind(args[0])
			switch kind {
			case manager.VectorWord, manager.VectorSentence, manager.VectorSubword:
			default:
				return fmt.Errorf("unknown vector kind %q (want word, sentence or subword)", args[0])
			}
			mgr, err := mf.open(cmd, root)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			out := cmd.OutOrStdout()
			return eachInput(args[1:], cmd.InOrStdin(), func(text string) error {
				resp, err := mgr.Vector(kind, text)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, formatVector(resp.Text, resp.Vector))
				return err
			})
		},
	}
	mf.register(cmd)
	return cmd
}

func formatVector(text string, v []float32) string {
	var b strings.Builder
	b.WriteString(text)
	for _, x := range v {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(float64(x), 'g', 5, 32))
	}
	return b.String()
}

func newTestCmd(root *rootOptions) *cobra.Command {
	var mf modelFlags
	cmd := &cobra.Command{
		Use:   "test <test-data> [k]",
		Short: "Evaluate the model on labelled data and print precision and recall at k",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("k: %w", err)
				}
				k = n
			}
			mgr, err := mf.open(cmd, root)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			resp, err := mgr.Test(args[0], k)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), resp.Report)
			return err
		},
	}
	mf.register(cmd)
	return cmd
}

func newTrainCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "train <mode> [fastText flags...]",
		Short: "Run a fastText training command (supervised, skipgram, cbow, quantize)",
		Example: "  ftserve train supervised -input cooking.train -output model_cooking -epoch 25\n" +
			"  ftserve train quantize -input cooking.train -output model_cooking -qnorm",
		// Arguments belong to fastText, so cobra must not interpret them.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, err := consumeRootFlags(cmd, args)
			if err != nil {
				return err
			}
			if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
				return cmd.Help()
			}
			cfg, err := root.resolve(cmd)
			if err != nil {
				return err
			}
			mgr, err := newManager(cfg, newLogger(cfg), false)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			resp, err := mgr.Train(types.TrainRequest{Args: args})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "done: %s\n", strings.Join(resp.Argv, " "))
			return err
		},
	}
}

// consumeRootFlags applies the leading --name[=value] arguments that name a
// persistent root flag and returns the rest. It stops at the first argument
// that is not one, so fastText's own flags pass through untouched.
func consumeRootFlags(cmd *cobra.Command, args []string) ([]string, error) {
	pf := cmd.Root().PersistentFlags()
	for len(args) > 0 {
		arg := args[0]
		if arg == "--" {
			return args[1:], nil
		}
		if !strings.HasPrefix(arg, "--") {
			break
		}
		name, value, hasValue := strings.Cut(arg[2:], "=")
		if pf.Lookup(name) == nil {
			break
		}
		args = args[1:]
		if !hasValue {
			if len(args) == 0 {
				return nil, fmt.Errorf("flag needs an argument: --%s", name)
			}
			value, args = args[0], args[1:]
		}
		if err := pf.Set(name, value); err != nil {
			return nil, fmt.Errorf("invalid argument %q for --%s: %w", value, name, err)
		}
	}
	return args, nil
}

func newInfoCmd(root *rootOptions) *cobra.Command {
	var (
		mf     modelFlags
		words  bool
		labels bool
	)
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the model's hyperparameters, or its words or labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := mf.open(cmd, root)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			out := cmd.OutOrStdout()
			var items []string
			switch {
			case words:
				items, err = mgr.Words()
			case labels:
				items, err = mgr.Labels()
			default:
				info, err := mgr.Info()
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			if err != nil {
				return err
			}
			for _, s := range items {
				if _, err := fmt.Fprintln(out, s); err != nil {
					return err
				}
			}
			return nil
		},
	}
	mf.register(cmd)
	cmd.Flags().BoolVar(&words, "words", false, "List the vocabulary")
	cmd.Flags().BoolVar(&labels, "labels", false, "List the labels")
	cmd.MarkFlagsMutuallyExclusive("words", "labels")
	return cmd
}

func newModelsCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models found in the models directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.resolve(cmd)
			if err != nil {
				return err
			}
			mgr, err := newManager(cfg, newLogger(cfg), true)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			models := mgr.ListModels()
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(types.ModelsResponse{Models: models})
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSIZE\tQUANTIZED\tPATH")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%d\t%t\t%s\n", m.ID, m.SizeBytes, m.Quantized, m.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newSanityCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sanity",
		Short: "Check that the configured engine is usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.resolve(cmd)
			if err != nil {
				return err
			}
			mgr, err := newManager(cfg, newLogger(cfg), false)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			rep := mgr.SanityCheck()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
			if !rep.Available {
				return errors.New("engine unavailable: " + rep.Error)
			}
			return nil
		},
	}
}
