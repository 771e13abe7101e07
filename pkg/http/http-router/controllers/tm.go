package controllers

import (
	"encoding/base64"
	"net/http"

	"github.com/lintang-b-s/tm-search/pkg/engine"
	helper "github.com/lintang-b-s/tm-search/pkg/http/http-router/router-helper"
	"github.com/lintang-b-s/tm-search/pkg/remote"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type tmAPI struct {
	tmService TMService
	sessions  *SessionStore
	validate  *validator.Validate
	trans     ut.Translator
	log       *zap.Logger
}

func New(tmService TMService, sessions *SessionStore, log *zap.Logger) *tmAPI {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &tmAPI{
		tmService: tmService,
		sessions:  sessions,
		validate:  validate,
		trans:     trans,
		log:       log,
	}
}

func (api *tmAPI) Routes(group *helper.RouteGroup) {
	group.POST("/login", api.login)
	group.POST("/tm", api.tm)
}

// login godoc
// @Summary		opens a session and returns its ticket.
// @Router			/api/login [post]
func (api *tmAPI) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request remote.LoginRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	ticket, ok := api.sessions.Login(request.User, request.Password)
	if !ok {
		api.log.Warn("login rejected", zap.String("user", request.User), zap.String("remote", r.RemoteAddr))
		api.UnauthorizedResponse(w, r, "invalid user or password")
		return
	}
	api.log.Info("session opened", zap.String("user", request.User))

	if err := api.writeJSON(w, http.StatusOK, remote.LoginResponse{Status: remote.STATUS_OK, Ticket: ticket}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// tm godoc
// @Summary		runs one memory command; the session ticket goes in the Session header.
// @Router			/api/tm [post]
func (api *tmAPI) tm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := api.sessions.User(r.Header.Get(remote.HEADER_SESSION))
	if !ok {
		api.UnauthorizedResponse(w, r, "missing or expired session")
		return
	}

	var request remote.Request
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	resp, err := api.dispatch(request)
	if err != nil {
		api.log.Debug("command failed", zap.String("user", user), zap.String("command", request.Command), zap.Error(err))
		api.ErrorResponse(w, r, err)
		return
	}
	resp.Status = remote.STATUS_OK

	if err := api.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *tmAPI) dispatch(req remote.Request) (*remote.Response, error) {
	resp := &remote.Response{}
	var err error

	switch req.Command {
	case remote.CMD_CLOSE:
		err = api.tmService.Close()
	case remote.CMD_COMMIT:
		err = api.tmService.Commit()
	case remote.CMD_STORE_TU:
		resp.TU, err = api.tmService.StoreUnit(req.TU)
	case remote.CMD_REMOVE_TU:
		err = api.tmService.RemoveUnit(req.ID)
	case remote.CMD_GET_TU:
		resp.TU, err = api.tmService.GetUnit(req.ID)
	case remote.CMD_GET_LANGUAGES:
		resp.Languages, err = api.tmService.Languages()
	case remote.CMD_GET_PROJECTS:
		resp.Projects, err = api.tmService.Projects()
	case remote.CMD_GET_SUBJECTS:
		resp.Subjects, err = api.tmService.Subjects()
	case remote.CMD_GET_CLIENTS:
		resp.Clients, err = api.tmService.Clients()
	case remote.CMD_IMPORT_TMX:
		content, decodeErr := base64.StdEncoding.DecodeString(req.File)
		if decodeErr != nil {
			return nil, util.WrapErrorf(decodeErr, util.ErrBadParamInput, "file is not valid base64")
		}
		var imported int
		imported, err = api.tmService.ImportTMX(content, engine.ImportOptions{
			Project:  req.Project,
			Customer: req.Customer,
			Subject:  req.Subject,
		})
		resp.Imported = &imported
	case remote.CMD_EXPORT_TMX:
		var content []byte
		content, err = api.tmService.ExportTMX(req.Langs, req.SrcLang)
		resp.File = base64.StdEncoding.EncodeToString(content)
	case remote.CMD_SEARCH_TRANSLATION:
		resp.Matches, err = api.tmService.SearchTranslation(req.Query, req.SrcLang, req.TgtLang, req.MinSimilarity, req.CaseSensitive)
	case remote.CMD_SEARCH_ALL:
		resp.TUs, err = api.tmService.SearchAll(req.Query, req.SrcLang, req.MinSimilarity, req.CaseSensitive)
	case remote.CMD_CONCORDANCE_SEARCH:
		resp.TUs, err = api.tmService.ConcordanceSearch(req.Query, req.SrcLang, req.Limit, req.IsRegexp, req.CaseSensitive)
	case remote.CMD_BATCH_TRANSLATE:
		resp.Segments, err = api.tmService.BatchTranslate(req.Segments)
	default:
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown command %s", req.Command)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
