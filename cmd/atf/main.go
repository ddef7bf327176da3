// Command atf parses ATF cuneiform transliterations, manages the lookup
// database and serves the REST API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/TabletATF/core/atf"
	apperrors "github.com/FocuswithJustin/TabletATF/core/errors"
	"github.com/FocuswithJustin/TabletATF/core/xml"
	"github.com/FocuswithJustin/TabletATF/internal/api"
	"github.com/FocuswithJustin/TabletATF/internal/config"
	"github.com/FocuswithJustin/TabletATF/internal/lookup"
	"github.com/FocuswithJustin/TabletATF/internal/logging"
	"github.com/FocuswithJustin/TabletATF/internal/render"
	"github.com/FocuswithJustin/TabletATF/internal/source"
	"github.com/FocuswithJustin/TabletATF/internal/store"
	"github.com/FocuswithJustin/TabletATF/internal/validation"
)

const version = "0.1.0"

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

// CLI defines the command-line interface for atf.
var CLI struct {
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" env:"ATF_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" default:"text" env:"ATF_LOG_FORMAT"`

	Parse     ParseCmd     `cmd:"" help:"Parse a transliteration into a document"`
	Tokenize  TokenizeCmd  `cmd:"" help:"Split one line of transliteration into words"`
	Normalize NormalizeCmd `cmd:"" help:"Print lookup keys for display forms"`
	Legend    LegendCmd    `cmd:"" help:"Summarize the word classes used in a transliteration"`
	Split     SplitCmd     `cmd:"" help:"List the texts in a corpus file"`
	XPath     XPathCmd     `cmd:"" name:"xpath" help:"Evaluate an XPath expression against the XML rendering"`
	Compress  CompressCmd  `cmd:"" help:"Compress a transliteration with xz"`
	Store     StoreGroup   `cmd:"" help:"Lookup database operations"`
	Serve     ServeCmd     `cmd:"" help:"Start the REST API server"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// StoreGroup contains lookup database operations.
type StoreGroup struct {
	Import StoreImportCmd `cmd:"" help:"Import a CSV file (glossary, translations or composites)"`
	Gloss  StoreGlossCmd  `cmd:"" help:"Look up the gloss of a word"`
	Stats  StoreStatsCmd  `cmd:"" help:"Show row counts"`
}

// readFile reads the whole of a single transliteration file, decompressing
// it when needed.
func readFile(path string) (string, error) {
	if err := validation.ValidatePath(path); err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	files, err := source.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(files) != 1 {
		return "", fmt.Errorf("%s holds %d files, expected one", path, len(files))
	}
	return files[0].Text, nil
}

// readText reads exactly one transliteration from path. For corpus files,
// index selects the Nth text (1-based); 0 requires the file to hold at most
// one "&" header.
func readText(path string, index int) (string, error) {
	text, err := readFile(path)
	if err != nil {
		return "", err
	}
	texts := source.SplitTexts(text)
	if index == 0 {
		headers := 0
		for _, t := range texts {
			if t.CatalogID != "" {
				headers++
			}
		}
		if headers > 1 {
			return "", fmt.Errorf("%s holds %d texts, select one with --text", path, headers)
		}
		return text, nil
	}
	if index < 0 || index > len(texts) {
		return "", fmt.Errorf("text %d out of range (file has %d)", index, len(texts))
	}
	return texts[index-1].Body, nil
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ParseOutput is the JSON form of a parse.
type ParseOutput struct {
	Document     *atf.Document     `json:"document"`
	Stats        atf.Stats         `json:"stats"`
	Legend       []atf.LegendEntry `json:"legend,omitempty"`
	Glosses      map[string]string `json:"glosses,omitempty"`
	Translations map[string]string `json:"translations,omitempty"`
}

// ParseCmd parses a transliteration file.
type ParseCmd struct {
	Path   string `arg:"" help:"Transliteration (.atf, .xz, .gz)" type:"existingfile"`
	Format string `short:"f" help:"Output format" enum:"json,xml,html" default:"json"`
	Legend bool   `help:"Include the legend summary"`
	Text   int    `help:"Select the Nth text of a corpus file (1-based)" default:"0"`
	DB     string `name:"db" help:"Lookup database for glosses and translations" type:"existingfile"`
	Strict bool   `help:"Fail when the text has no surfaces"`
}

func (c *ParseCmd) Run() error {
	text, err := readText(c.Path, c.Text)
	if err != nil {
		return err
	}

	var out ParseOutput
	out.Document, out.Stats = atf.ParseStats(text)
	if c.Strict && out.Document.Empty() {
		return fmt.Errorf("%s: %w", c.Path, apperrors.ErrNoTransliteration)
	}
	if c.Legend || c.Format == "html" {
		out.Legend = atf.Summarize(out.Document)
	}

	if c.DB != "" {
		st, err := store.OpenReadOnly(c.DB)
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := context.Background()
		if out.Glosses, err = lookup.Glosses(ctx, st, out.Document); err != nil {
			return err
		}
		if out.Translations, err = lookup.LineTranslations(ctx, st, out.Document); err != nil {
			return err
		}
	}

	logging.ParseCompleted(context.Background(), out.Document.Header.CatalogID,
		len(out.Document.Surfaces), out.Stats.Content, out.Stats.Unknown, "path", c.Path)

	switch c.Format {
	case "xml":
		return render.XML(stdout, out.Document)
	case "html":
		opts := render.HTMLOptions{Glosses: out.Glosses}
		if c.Legend {
			opts.Legend = out.Legend
		}
		return render.HTML(stdout, out.Document, opts)
	default:
		return writeJSON(out)
	}
}

// TokenizeCmd tokenizes one content line body.
type TokenizeCmd struct {
	Line string `arg:"" help:"Line body without its label"`
	JSON bool   `help:"Print words as JSON"`
}

func (c *TokenizeCmd) Run() error {
	if err := validation.ValidateLine(c.Line); err != nil {
		return err
	}
	words := atf.Tokenize(c.Line)
	if c.JSON {
		return writeJSON(words)
	}
	for _, w := range words {
		key := w.Key()
		if key == "" {
			key = "-"
		}
		fmt.Fprintf(stdout, "%-14s %-20s %s\n", w.Kind(), wordText(w), key)
	}
	return nil
}

func wordText(w atf.Word) string {
	switch w := w.(type) {
	case *atf.Punctuation:
		return w.Char
	case *atf.Broken:
		return w.Text
	case *atf.Logogram:
		return "_" + w.Text + "_"
	case *atf.Determinative:
		if w.Position == atf.Prefix {
			return "{" + w.Code + "}" + w.Text
		}
		return w.Text + "{" + w.Code + "}"
	case *atf.PlainWord:
		return w.Text
	}
	return ""
}

// NormalizeCmd prints the lookup key of each display form.
type NormalizeCmd struct {
	Words []string `arg:"" help:"Display forms"`
}

func (c *NormalizeCmd) Run() error {
	for _, word := range c.Words {
		key, ok := atf.Normalize(word)
		if !ok {
			fmt.Fprintf(stdout, "%s\t(no key)\n", word)
			continue
		}
		fmt.Fprintf(stdout, "%s\t%s\n", word, key)
	}
	return nil
}

// LegendCmd prints the legend of a transliteration.
type LegendCmd struct {
	Path string `arg:"" help:"Transliteration file" type:"existingfile"`
	Text int    `help:"Select the Nth text of a corpus file (1-based)" default:"0"`
}

func (c *LegendCmd) Run() error {
	text, err := readText(c.Path, c.Text)
	if err != nil {
		return err
	}
	_, legend := atf.ParseWithLegend(text)
	for _, e := range legend {
		fmt.Fprintf(stdout, "%-4s %-20s %s\n", e.Symbol, e.Class, e.Label)
	}
	return nil
}

// SplitCmd lists the texts of a corpus.
type SplitCmd struct {
	Path string `arg:"" help:"Corpus file or archive" type:"existingfile"`
}

func (c *SplitCmd) Run() error {
	if err := validation.ValidatePath(c.Path); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	files, err := source.ReadFile(c.Path)
	if err != nil {
		return err
	}
	total := 0
	for _, f := range files {
		for i, t := range source.SplitTexts(f.Text) {
			id := t.CatalogID
			if id == "" {
				id = "(no header)"
			}
			fmt.Fprintf(stdout, "%s:%d\t%d\t%s\n", f.Name, t.Line, i+1, id)
			total++
		}
	}
	fmt.Fprintf(stdout, "%d texts in %d files\n", total, len(files))
	return nil
}

// XPathCmd evaluates an expression against the XML rendering of a text.
type XPathCmd struct {
	Path string `arg:"" help:"Transliteration file" type:"existingfile"`
	Expr string `arg:"" help:"XPath expression, e.g. //w[@kind='logogram']"`
	Text int    `help:"Select the Nth text of a corpus file (1-based)" default:"0"`
}

func (c *XPathCmd) Run() error {
	expr, err := xml.Compile(c.Expr)
	if err != nil {
		return fmt.Errorf("invalid expression: %w", err)
	}
	text, err := readText(c.Path, c.Text)
	if err != nil {
		return err
	}

	var buf strings.Builder
	if err := render.XML(&buf, atf.Parse(text)); err != nil {
		return err
	}
	doc, err := xml.Parse([]byte(buf.String()))
	if err != nil {
		return err
	}

	nodes := doc.Select(expr)
	if len(nodes) == 0 {
		fmt.Fprintln(stdout, doc.EvalExpr(expr))
		return nil
	}
	for _, n := range nodes {
		fmt.Fprintln(stdout, n.Text())
	}
	return nil
}

// CompressCmd writes an xz-compressed copy of a transliteration.
type CompressCmd struct {
	Path string `arg:"" help:"Transliteration file" type:"existingfile"`
	Out  string `short:"o" help:"Output path (default: PATH.xz)" type:"path"`
}

func (c *CompressCmd) Run() error {
	text, err := readFile(c.Path)
	if err != nil {
		return err
	}
	out := c.Out
	if out == "" {
		out = c.Path + ".xz"
	}
	if err := validation.ValidatePath(out); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := source.Compress(f, text); err != nil {
		f.Close()
		return fmt.Errorf("failed to compress: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Created: %s\n", out)
	fmt.Fprintf(stdout, "  BLAKE3: %s\n", atf.Digest(text))
	return nil
}

// StoreImportCmd imports a CSV file into the lookup database.
type StoreImportCmd struct {
	Kind string `arg:"" help:"What the file holds" enum:"glossary,translations,composites"`
	CSV  string `arg:"" help:"CSV file" type:"existingfile"`
	DB   string `name:"db" required:"" help:"Lookup database (created if missing)" type:"path"`
}

func (c *StoreImportCmd) Run() error {
	ctx := context.Background()
	st, err := store.Open(ctx, c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	f, err := os.Open(c.CSV)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.CSV, err)
	}
	defer f.Close()

	var res store.ImportResult
	switch c.Kind {
	case store.KindGlossary:
		res, err = st.ImportGlossary(ctx, f)
	case store.KindTranslations:
		res, err = st.ImportTranslations(ctx, f)
	case store.KindComposites:
		res, err = st.ImportComposites(ctx, f)
	}
	if err != nil {
		return err
	}

	if res.Repeated {
		fmt.Fprintf(stdout, "Already imported: %s (%s)\n", c.CSV, res.Digest)
		return nil
	}
	fmt.Fprintf(stdout, "Imported %s: %s\n", res.Kind, c.CSV)
	fmt.Fprintf(stdout, "  Rows: %d\n", res.Rows)
	fmt.Fprintf(stdout, "  Skipped: %d\n", res.Skipped)
	fmt.Fprintf(stdout, "  BLAKE3: %s\n", res.Digest)
	return nil
}

// StoreGlossCmd looks up words in the glossary.
type StoreGlossCmd struct {
	Words []string `arg:"" help:"Display forms or lookup keys"`
	DB    string   `name:"db" required:"" help:"Lookup database" type:"existingfile"`
}

func (c *StoreGlossCmd) Run() error {
	st, err := store.OpenReadOnly(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	missing := 0
	for _, word := range c.Words {
		key := atf.NormalizeKey(word)
		gloss, ok, err := st.Gloss(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(stdout, "%s\t%s\t(not found)\n", word, key)
			missing++
			continue
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", word, key, gloss)
	}
	if missing == len(c.Words) {
		return fmt.Errorf("no glosses found")
	}
	return nil
}

// StoreStatsCmd prints row counts.
type StoreStatsCmd struct {
	DB string `name:"db" required:"" help:"Lookup database" type:"existingfile"`
}

func (c *StoreStatsCmd) Run() error {
	st, err := store.OpenReadOnly(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	counts, err := st.Counts(context.Background())
	if err != nil {
		return err
	}
	rows := map[string]int{
		store.KindGlossary:     counts.Glosses,
		store.KindTranslations: counts.Translations,
		store.KindComposites:   counts.Composites,
	}
	kinds := make([]string, 0, len(rows))
	for k := range rows {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(stdout, "%-14s %d\n", k, rows[k])
	}
	return nil
}

// ServeCmd starts the REST API server.
type ServeCmd struct {
	Config string `short:"c" help:"YAML configuration file (default: $ATF_CONFIG or ./atf.yaml)" type:"path"`
	Port   int    `help:"Override server.port"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logging.InitLogger(logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.Store.Path != "" {
		if cfg.Store.ReadOnly {
			st, err = store.OpenReadOnly(cfg.Store.Path)
		} else {
			st, err = store.Open(ctx, cfg.Store.Path)
		}
		if err != nil {
			return err
		}
		defer st.Close()
	}

	return api.New(cfg, st).ListenAndServe(ctx)
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "atf version %s (api %s)\n", version, api.Version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("atf"),
		kong.Description("TabletATF - ATF cuneiform transliteration parser"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
