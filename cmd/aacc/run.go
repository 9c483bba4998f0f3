package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"aacc/board"
	"aacc/config"
	"aacc/convert"
	"aacc/convert/gridset"
	"aacc/state"
)

func runConvert(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	src := cmd.Args().Get(0)
	if src == "" {
		return fmt.Errorf("no source file specified")
	}
	dstDir := cmd.Args().Get(1)
	if dstDir == "" {
		dstDir = "."
	}

	source, err := env.Codecs.Detect(src)
	if err != nil {
		return err
	}
	target, err := env.Codecs.Lookup(cmd.String("to"))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read source file: %w", err)
	}

	opts := env.ConvertOptions()
	doc, err := source.Decode(data, opts)
	if err != nil {
		return fmt.Errorf("unable to decode %s: %w", src, err)
	}
	env.Log.Info("Decoded board",
		zap.String("file", src),
		zap.String("format", source.Format().Name()),
		zap.Int("pages", doc.Len()))

	out, err := target.Encode(doc, opts)
	if err != nil {
		return fmt.Errorf("unable to encode to %s: %w", target.Format().Name(), err)
	}

	values := convert.ValuesFromDocument(doc, src, target.Format().Name())
	dst := convert.BuildOutputPath(src, dstDir, target.Format(),
		env.Cfg.Conversion.OutputNameTemplate, values,
		env.Cfg.Conversion.FileNameTransliterate)

	overwrite := cmd.Bool("overwrite") || env.Cfg.Conversion.Overwrite
	if err := writeOutput(dst, out, overwrite); err != nil {
		return err
	}
	env.Log.Info("Conversion done", zap.String("destination", dst))
	return nil
}

func runTexts(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	src := cmd.Args().Get(0)
	if src == "" {
		return fmt.Errorf("no source file specified")
	}
	codec, err := env.Codecs.Detect(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read source file: %w", err)
	}
	texts, err := codec.ExtractText(data, env.ConvertOptions())
	if err != nil {
		return fmt.Errorf("unable to extract texts: %w", err)
	}
	env.Log.Info("Extracted texts", zap.String("file", src), zap.Int("count", len(texts)))
	return writeJSON(cmd.Args().Get(1), texts)
}

func runTranslate(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	src, mapFile := cmd.Args().Get(0), cmd.Args().Get(1)
	if src == "" || mapFile == "" {
		return fmt.Errorf("source and translation map files are required")
	}

	codec, err := env.Codecs.Detect(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read source file: %w", err)
	}
	raw, err := os.ReadFile(mapFile)
	if err != nil {
		return fmt.Errorf("unable to read translation map: %w", err)
	}
	translations := make(map[string]string)
	if err := json.Unmarshal(raw, &translations); err != nil {
		return fmt.Errorf("unable to parse translation map: %w", err)
	}

	opts := env.ConvertOptions()
	if lang := cmd.String("lang"); lang != "" {
		opts.TargetLanguage = lang
	}
	out, err := codec.ApplyTranslations(data, translations, opts)
	if err != nil {
		return fmt.Errorf("unable to apply translations: %w", err)
	}

	dst := cmd.Args().Get(2)
	if dst == "" {
		dst = translatedName(src, opts.TargetLanguage)
	}
	if err := writeOutput(dst, out, env.Cfg.Conversion.Overwrite); err != nil {
		return err
	}
	env.Log.Info("Translation done",
		zap.String("destination", dst),
		zap.Int("entries", len(translations)))
	return nil
}

// translatedName derives the output name the way the translation workflow
// names its results: source name with a language suffix.
func translatedName(src, lang string) string {
	ext := filepath.Ext(src)
	base := strings.TrimSuffix(src, ext)
	if lang == "" {
		return base + "_translated" + ext
	}
	return base + "_" + lang + ext
}

func runWordlistExtract(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	src := cmd.Args().Get(0)
	if src == "" {
		return fmt.Errorf("no source file specified")
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read source file: %w", err)
	}
	lists, err := gridset.ExtractWordlists(data, env.ConvertOptions())
	if err != nil {
		return fmt.Errorf("unable to extract word lists: %w", err)
	}

	out := make(map[string][]board.WordListItem, len(lists))
	for name, wl := range lists {
		out[name] = wl.Items
	}
	env.Log.Info("Extracted word lists", zap.String("file", src), zap.Int("pages", len(out)))
	return writeJSON(cmd.Args().Get(1), out)
}

func runWordlistUpdate(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	src, grid, wordsFile := cmd.Args().Get(0), cmd.Args().Get(1), cmd.Args().Get(2)
	if src == "" || grid == "" || wordsFile == "" {
		return fmt.Errorf("source, grid name and word file are required")
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read source file: %w", err)
	}
	wl, err := readWordFile(wordsFile)
	if err != nil {
		return err
	}

	out, err := gridset.UpdateWordlist(data, grid, wl, env.ConvertOptions())
	if err != nil {
		return fmt.Errorf("unable to update word list: %w", err)
	}

	dst := cmd.Args().Get(3)
	if dst == "" {
		ext := filepath.Ext(src)
		dst = strings.TrimSuffix(src, ext) + "-updated" + ext
	}
	if err := writeOutput(dst, out, env.Cfg.Conversion.Overwrite); err != nil {
		return err
	}
	env.Log.Info("Word list updated",
		zap.String("grid", grid),
		zap.Int("words", len(wl.Items)),
		zap.String("destination", dst))
	return nil
}

// readWordFile accepts either a JSON list of strings or a list of word list
// item records.
func readWordFile(path string) (*board.WordList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read word file: %w", err)
	}
	var words []string
	if err := json.Unmarshal(raw, &words); err == nil {
		return gridset.CreateWordlist(words)
	}
	var items []board.WordListItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return gridset.CreateWordlist(items)
	}
	return nil, fmt.Errorf("unable to parse word file %q: expected a list of strings or items", path)
}

func writeOutput(dst string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("destination %q already exists", dst)
		}
	}
	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("unable to create destination directory: %w", err)
		}
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("unable to write destination file: %w", err)
	}
	return nil
}

func writeJSON(dst string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal result: %w", err)
	}
	if dst == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return writeOutput(dst, data, true)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		which string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		which = "default"
		data, err = config.Prepare()
	} else {
		which = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing configuration", zap.String("state", which), zap.String("file", fname))

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
