package usecases

import (
	"os"
	"path/filepath"

	"github.com/lintang-b-s/tm-search/pkg/datastructure"
	"github.com/lintang-b-s/tm-search/pkg/engine"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type TMService struct {
	log    *zap.Logger
	memory Memory
}

func New(log *zap.Logger, memory Memory) *TMService {
	return &TMService{
		log:    log,
		memory: memory,
	}
}

func (s *TMService) Close() error {
	return s.memory.Close()
}

func (s *TMService) Commit() error {
	return s.memory.Commit()
}

// StoreUnit stores tu and returns it as it now reads back from the memory.
func (s *TMService) StoreUnit(tu *datastructure.TranslationUnit) (*datastructure.TranslationUnit, error) {
	id, err := s.memory.StoreUnit(tu)
	if err != nil {
		return nil, err
	}
	return s.memory.GetUnit(id)
}

func (s *TMService) RemoveUnit(id string) error {
	return s.memory.RemoveUnit(id)
}

func (s *TMService) GetUnit(id string) (*datastructure.TranslationUnit, error) {
	return s.memory.GetUnit(id)
}

func (s *TMService) Languages() ([]string, error) {
	return s.memory.GetAllLanguages()
}

func (s *TMService) Projects() ([]string, error) {
	return s.memory.GetAllProjects()
}

func (s *TMService) Subjects() ([]string, error) {
	return s.memory.GetAllSubjects()
}

func (s *TMService) Clients() ([]string, error) {
	return s.memory.GetAllClients()
}

// ImportTMX spools content to a temporary file for the engine to stream.
func (s *TMService) ImportTMX(content []byte, opts engine.ImportOptions) (int, error) {
	dir, err := os.MkdirTemp("", "tm-import-")
	if err != nil {
		return 0, errors.Wrap(err, "error when creating import spool")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "upload.tmx")
	if err := os.WriteFile(path, content, 0600); err != nil {
		return 0, errors.Wrap(err, "error when writing import spool")
	}
	count, err := s.memory.ImportTMX(path, opts)
	s.log.Info("remote import", zap.Int("units", count), zap.Int("bytes", len(content)), zap.Error(err))
	return count, err
}

func (s *TMService) ExportTMX(langs []string, srcLang string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "tm-export-")
	if err != nil {
		return nil, errors.Wrap(err, "error when creating export spool")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "export.tmx")
	if err := s.memory.ExportTMX(path, langs, srcLang); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error when reading export spool")
	}
	return content, nil
}

func (s *TMService) SearchTranslation(query, srcLang, tgtLang string, minSimilarity int, caseSensitive bool) ([]datastructure.Match, error) {
	return s.memory.SearchTranslation(query, srcLang, tgtLang, minSimilarity, caseSensitive)
}

func (s *TMService) SearchAll(query, srcLang string, minSimilarity int, caseSensitive bool) ([]*datastructure.TranslationUnit, error) {
	return s.memory.SearchAll(query, srcLang, minSimilarity, caseSensitive)
}

func (s *TMService) ConcordanceSearch(query, srcLang string, limit int, isRegexp, caseSensitive bool) ([]*datastructure.TranslationUnit, error) {
	return s.memory.ConcordanceSearch(query, srcLang, limit, isRegexp, caseSensitive)
}

func (s *TMService) BatchTranslate(segments []datastructure.Segment) ([]datastructure.Segment, error) {
	return s.memory.BatchTranslate(segments)
}
