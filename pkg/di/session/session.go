package session_di

import (
	"strings"

	"github.com/lintang-b-s/tm-search/pkg/di/config"
	"github.com/lintang-b-s/tm-search/pkg/http/http-router/controllers"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/spf13/viper"
)

// New builds the session store from API_USERS, a list of user:password pairs.
func New(_ *config.Config) (*controllers.SessionStore, error) {
	users, err := ParseUsers(viper.GetStringSlice("API_USERS"))
	if err != nil {
		return nil, err
	}
	return controllers.NewSessionStore(users, viper.GetDuration("SESSION_TTL")), nil
}

// ParseUsers accepts list items and comma separated items alike.
func ParseUsers(entries []string) (map[string]string, error) {
	users := make(map[string]string)
	for _, entry := range entries {
		for _, pair := range strings.Split(entry, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			user, password, ok := strings.Cut(pair, ":")
			if !ok || user == "" || password == "" {
				return nil, util.WrapErrorf(nil, util.ErrConfiguration, "API_USERS entry %q is not user:password", pair)
			}
			users[user] = password
		}
	}
	if len(users) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrConfiguration, "API_USERS is empty")
	}
	return users, nil
}
