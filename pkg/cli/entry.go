package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/config"
	"github.com/funvibe/jessie/internal/evaluator"
	"github.com/funvibe/jessie/internal/modules"
	"github.com/funvibe/jessie/internal/object"
	jessie "github.com/funvibe/jessie/pkg/embed"
	"github.com/mattn/go-isatty"
)

const usage = `Usage: jessie [options] MODULE [ARGS...] [-- ALLOWED...]
       jessie [options] -e EXPRESSION

MODULE is a JSON or YAML encoded AST file, "-" for standard input, or the
path of a module in the store. Files after -- may be read with readInput.

Options:
  -config FILE     read settings from a YAML file
  -store DB        resolve imports from a SQLite module store as well
  -put PATH=FILE   store the AST in FILE under PATH (repeatable)
  -e EXPRESSION    evaluate a JSON encoded expression AST and print it
  -debug           log evaluation details to standard error
  -version         print the version and exit
`

// invocation is a parsed command line.
type invocation struct {
	configPath string
	storePath  string
	puts       []string
	expr       string
	hasExpr    bool
	debug      bool
	help       bool
	version    bool
	module     string
	// argv is MODULE followed by everything after it.
	argv    []string
	allowed []string
}

func parseArgs(args []string) (*invocation, error) {
	inv := &invocation{}
	i := 0
	value := func(flag string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("flag %s needs a value", flag)
		}
		i++
		return args[i], nil
	}
	for ; i < len(args); i++ {
		arg := args[i]
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}
		var err error
		switch strings.TrimPrefix(arg, "-") {
		case "-config", "config":
			inv.configPath, err = value(arg)
		case "-store", "store":
			inv.storePath, err = value(arg)
		case "-put", "put":
			var put string
			put, err = value(arg)
			inv.puts = append(inv.puts, put)
		case "e":
			inv.expr, err = value(arg)
			inv.hasExpr = true
		case "-debug", "debug":
			inv.debug = true
		case "h", "-help", "help":
			inv.help = true
		case "v", "-version", "version":
			inv.version = true
		case "-":
			i++
			inv.allowed = append(inv.allowed, args[i:]...)
			return inv, nil
		default:
			return nil, fmt.Errorf("unknown flag %s", arg)
		}
		if err != nil {
			return nil, err
		}
	}
	if i < len(args) {
		inv.module = args[i]
		rest := args[i:]
		inv.argv = rest
		for j, arg := range rest {
			if arg == "--" {
				inv.argv = rest[:j]
				inv.allowed = append(inv.allowed, rest[j+1:]...)
				break
			}
		}
	}
	return inv, nil
}

// Run is the command line entry point.
func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Main(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Main runs the command line with explicit streams and returns the exit code.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	inv, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n\n%s", err, usage)
		return 2
	}
	if inv.help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if inv.version {
		fmt.Fprintln(stdout, "jessie "+config.Version)
		return 0
	}

	r, err := newRunner(ctx, inv, stdin, stdout, stderr)
	if err != nil {
		reportError(stderr, err)
		return 1
	}
	defer r.close()

	if err := r.run(ctx); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

type runner struct {
	inv    *invocation
	cfg    *config.Config
	logger *slog.Logger
	store  *modules.Store
	files  *modules.FileLoader
	stdin  io.Reader
	stdout io.Writer
}

func newRunner(ctx context.Context, inv *invocation, stdin io.Reader, stdout, stderr io.Writer) (*runner, error) {
	cfg := config.Default()
	if inv.configPath != "" {
		var err error
		if cfg, err = config.Load(inv.configPath); err != nil {
			return nil, err
		}
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if inv.debug {
		level = slog.LevelDebug
	}

	r := &runner{
		inv:    inv,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
		stdin:  stdin,
		stdout: stdout,
	}

	storePath := inv.storePath
	if storePath == "" {
		storePath = cfg.Store
	}
	if storePath != "" {
		if r.store, err = modules.OpenStore(ctx, storePath); err != nil {
			return nil, err
		}
		r.logger.Debug("opened module store", "path", storePath)
	}

	r.files = modules.NewFileLoader(cfg.Allow...)
	r.files.Allow(inv.allowed...)
	if inv.module != "" && inv.module != "-" {
		r.files.Allow(inv.module)
	}
	return r, nil
}

func (r *runner) close() {
	if r.store != nil {
		r.store.Close()
	}
}

func (r *runner) run(ctx context.Context) error {
	if err := r.handlePut(ctx); err != nil {
		return err
	}
	vm, err := r.newVM()
	if err != nil {
		return err
	}
	if r.inv.hasExpr {
		return r.handleEval(ctx, vm)
	}
	if r.inv.module == "" {
		if len(r.inv.puts) > 0 {
			return nil
		}
		return errors.New("you must specify a MODULE")
	}
	return r.runModule(ctx, vm)
}

// handlePut stores each -put PATH=FILE in the module store.
func (r *runner) handlePut(ctx context.Context) error {
	if len(r.inv.puts) == 0 {
		return nil
	}
	if r.store == nil {
		return errors.New("-put needs a module store (-store or store: in the config)")
	}
	for _, put := range r.inv.puts {
		path, file, ok := strings.Cut(put, "=")
		if !ok || path == "" || file == "" {
			return fmt.Errorf("-put %q: want PATH=FILE", put)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		if err := r.store.PutSource(ctx, path, file, data); err != nil {
			return err
		}
		r.logger.Info("stored module", "path", path, "file", file)
	}
	return nil
}

func (r *runner) loader() evaluator.Loader {
	if r.store == nil {
		return r.files
	}
	return modules.Chain{r.files, r.store}
}

func (r *runner) scriptName() string {
	if r.cfg.ScriptName != "" {
		return r.cfg.ScriptName
	}
	if r.inv.module == "" || r.inv.module == "-" {
		return ""
	}
	if abs, err := filepath.Abs(r.inv.module); err == nil {
		return abs
	}
	return r.inv.module
}

// newVM builds the evaluator host with the runner endowments.
func (r *runner) newVM() (*jessie.VM, error) {
	vm := jessie.New(
		jessie.WithLoader(r.loader()),
		jessie.WithLogger(r.logger),
		jessie.WithMaxDepth(r.cfg.MaxDepth),
		jessie.WithScriptName(r.scriptName()),
	)

	for name, val := range r.cfg.Endowments {
		if err := vm.Bind(name, val); err != nil {
			return nil, err
		}
	}
	endowments := map[string]interface{}{
		config.ReadInputFuncName:   r.readInput,
		config.WriteOutputFuncName: r.writeOutput,
		config.ArgvName:            append([]string{}, r.inv.argv...),
	}
	for name, val := range endowments {
		if err := vm.Bind(name, val); err != nil {
			return nil, err
		}
	}
	return vm, nil
}

// readInput returns the contents of a whitelisted file.
func (r *runner) readInput(path string) (string, error) {
	if path == "-" && r.inv.module != "-" {
		data, err := io.ReadAll(r.stdin)
		return string(data), err
	}
	data, err := r.files.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%s not in the input whitelist", path)
	}
	return string(data), nil
}

// writeOutput writes text to standard output, the only permitted target.
func (r *runner) writeOutput(target, text string) error {
	if target != config.OutputStdout {
		return fmt.Errorf("cannot write to %s: must be %s", target, config.OutputStdout)
	}
	_, err := io.WriteString(r.stdout, text)
	return err
}

func (r *runner) handleEval(ctx context.Context, vm *jessie.VM) error {
	node, err := ast.ParseJSON([]byte(r.inv.expr))
	if err != nil {
		return err
	}
	res, err := vm.RunExpression(ctx, node)
	if err != nil {
		return err
	}
	printValue(r.stdout, res)
	return nil
}

func (r *runner) readModule() (*ast.Node, error) {
	if r.inv.module != "-" {
		return r.loader().Load(r.inv.module)
	}
	data, err := io.ReadAll(r.stdin)
	if err != nil {
		return nil, err
	}
	return ast.ParseJSON(data)
}

// runModule evaluates MODULE. A function exported by default is called
// with ARGV; the result is printed unless it is undefined.
func (r *runner) runModule(ctx context.Context, vm *jessie.VM) error {
	node, err := r.readModule()
	if err != nil {
		return err
	}
	r.logger.Debug("run module", "module", r.inv.module, "args", len(r.inv.argv))

	res, err := vm.Run(ctx, node)
	if err != nil {
		return err
	}
	if main, ok := res.(*object.Function); ok {
		argv, err := vm.Insulate(r.inv.argv)
		if err != nil {
			return err
		}
		if res, err = main.Call(object.UNDEFINED, argv); err != nil {
			return err
		}
	}
	printValue(r.stdout, res)
	return nil
}

func printValue(w io.Writer, v object.Object) {
	switch v := v.(type) {
	case nil, object.Undefined:
		return
	case object.String:
		fmt.Fprintln(w, string(v))
	default:
		fmt.Fprintln(w, v.Inspect())
	}
}

func reportError(w io.Writer, err error) {
	msg := err.Error()
	var oe *object.Error
	if errors.As(err, &oe) {
		msg = oe.Inspect()
	}
	prefix := "Error:"
	if isTerminal(w) {
		prefix = "\x1b[31mError:\x1b[0m"
	}
	fmt.Fprintf(w, "%s %s\n", prefix, msg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
