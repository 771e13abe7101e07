package engine

import (
	"bufio"
	"io"
	"os"

	"github.com/lintang-b-s/tm-search/pkg/datastructure"
	"github.com/lintang-b-s/tm-search/pkg/langutil"
	"github.com/lintang-b-s/tm-search/pkg/tmx"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ImportTMX stores every unit of the TMX file at path and returns how many were stored.
// the memory is committed every commitInterval units and once more at the end.
func (e *LocalEngine) ImportTMX(path string, opts ImportOptions) (int, error) {
	if err := e.acquire(); err != nil {
		return 0, err
	}
	defer e.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return 0, util.WrapErrorf(err, util.ErrBadParamInput, "cannot open TMX file %s", path)
	}
	defer f.Close()

	e.setImportContext(opts.properties())
	defer e.setImportContext(map[string]string{})

	reader := tmx.NewReader(bufio.NewReader(f))
	count := 0
	for {
		tu, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, errors.Wrapf(err, "error when importing %s after %d units", path, count)
		}
		if _, err := e.storeUnit(tu); err != nil {
			return count, errors.Wrapf(err, "error when importing %s after %d units", path, count)
		}
		count++

		if count%e.commitInterval == 0 {
			if err := e.commit(); err != nil {
				return count, err
			}
			if opts.Progress != nil {
				opts.Progress(count)
			}
			e.log.Debug("import progress", zap.String("memory", e.name), zap.Int("imported", count))
		}
	}

	if err := e.commit(); err != nil {
		return count, err
	}
	if opts.Progress != nil {
		opts.Progress(count)
	}
	e.log.Info("tmx imported", zap.String("memory", e.name), zap.String("path", path), zap.Int("units", count))
	return count, nil
}

// ExportTMX writes every unit that keeps at least two variants after filtering to langs plus srcLang,
// one of them in srcLang when srcLang is set. an empty langs keeps every language.
func (e *LocalEngine) ExportTMX(path string, langs []string, srcLang string) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.RUnlock()

	srcLang = langutil.Normalize(srcLang)
	keep := make(map[string]bool)
	for _, lang := range langutil.NormalizeAll(langs) {
		keep[lang] = true
	}
	if len(keep) > 0 && srcLang != "" {
		keep[srcLang] = true
	}

	f, err := os.Create(path)
	if err != nil {
		return util.WrapErrorf(err, util.ErrBadParamInput, "cannot create TMX file %s", path)
	}
	defer f.Close()

	w, err := tmx.NewWriter(f, srcLang, e.now())
	if err != nil {
		return err
	}

	count := 0
	err = e.units.ForEach(func(tu *datastructure.TranslationUnit) error {
		variants, err := e.variants.GetVariants(tu.ID)
		if err != nil {
			return err
		}
		for _, v := range variants {
			if len(keep) == 0 || keep[v.Lang] {
				tu.AddVariant(v)
			}
		}
		if len(tu.Variants) < 2 {
			return nil
		}
		if _, ok := tu.Variants[srcLang]; srcLang != "" && !ok {
			return nil
		}
		count++
		return w.WriteUnit(tu)
	})
	if err != nil {
		return errors.Wrapf(err, "error when exporting memory %s", e.name)
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return errors.Wrapf(err, "error when writing %s", path)
	}
	e.log.Info("tmx exported", zap.String("memory", e.name), zap.String("path", path), zap.Int("units", count))
	return nil
}
