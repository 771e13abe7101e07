package remote

import (
	"github.com/lintang-b-s/tm-search/pkg/datastructure"
)

const (
	PATH_LOGIN     = "/api/login"
	PATH_TM        = "/api/tm"
	HEADER_SESSION = "Session"

	STATUS_OK     = "OK"
	STATUS_FAILED = "failed"

	CODE_NOT_FOUND    = "not_found"
	CODE_BAD_REQUEST  = "bad_request"
	CODE_UNAUTHORIZED = "unauthorized"
	CODE_CLOSED       = "closed"
	CODE_INTERNAL     = "internal"
)

// commands of POST /api/tm
const (
	CMD_CLOSE              = "close"
	CMD_COMMIT             = "commit"
	CMD_STORE_TU           = "storeTu"
	CMD_REMOVE_TU          = "removeTu"
	CMD_GET_TU             = "getTu"
	CMD_GET_LANGUAGES      = "getLanguages"
	CMD_GET_PROJECTS       = "getProjects"
	CMD_GET_SUBJECTS       = "getSubjects"
	CMD_GET_CLIENTS        = "getClients"
	CMD_IMPORT_TMX         = "importTmx"
	CMD_EXPORT_TMX         = "exportTmx"
	CMD_SEARCH_TRANSLATION = "searchTranslation"
	CMD_SEARCH_ALL         = "searchAll"
	CMD_CONCORDANCE_SEARCH = "concordanceSearch"
	CMD_BATCH_TRANSLATE    = "batchTranslate"
)

type LoginRequest struct {
	User     string `json:"user" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Status string `json:"status"`
	Ticket string `json:"ticket,omitempty"`
	Reason string `json:"reason,omitempty"`
	Code   string `json:"code,omitempty"`
}

// Request is the body of every POST /api/tm call. only the fields of Command are read.
type Request struct {
	Command string `json:"command" validate:"required,oneof=close commit storeTu removeTu getTu getLanguages getProjects getSubjects getClients importTmx exportTmx searchTranslation searchAll concordanceSearch batchTranslate"`

	ID string                         `json:"id,omitempty"`
	TU *datastructure.TranslationUnit `json:"tu,omitempty" validate:"required_if=Command storeTu"`

	// search parameters are passed through unchecked; the engine clamps minSimilarity and
	// answers empty languages or a non-positive limit with an empty result.
	Query         string `json:"query,omitempty"`
	SrcLang       string `json:"srcLang,omitempty"`
	TgtLang       string `json:"tgtLang,omitempty"`
	MinSimilarity int    `json:"minSimilarity,omitempty"`
	CaseSensitive bool   `json:"caseSensitive,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	IsRegexp      bool   `json:"isRegexp,omitempty"`

	Segments []datastructure.Segment `json:"segments,omitempty"`

	// File is base64 TMX content for importTmx.
	File     string   `json:"file,omitempty" validate:"omitempty,base64"`
	Langs    []string `json:"langs,omitempty"`
	Project  string   `json:"project,omitempty"`
	Customer string   `json:"customer,omitempty"`
	Subject  string   `json:"subject,omitempty"`
}

// Response carries exactly one payload field on success, named after the resource.
type Response struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Code   string `json:"code,omitempty"`

	Matches   []datastructure.Match            `json:"matches,omitempty"`
	TUs       []*datastructure.TranslationUnit `json:"tus,omitempty"`
	TU        *datastructure.TranslationUnit   `json:"tu,omitempty"`
	Languages []string                         `json:"languages,omitempty"`
	Projects  []string                         `json:"projects,omitempty"`
	Subjects  []string                         `json:"subjects,omitempty"`
	Clients   []string                         `json:"clients,omitempty"`
	Segments  []datastructure.Segment          `json:"segments,omitempty"`
	Imported  *int                             `json:"imported,omitempty"`
	// File is base64 TMX content returned by exportTmx.
	File string `json:"file,omitempty"`
}
