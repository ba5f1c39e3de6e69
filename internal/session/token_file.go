package session

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const tokenFileMode = 0o600

type tokenFile struct {
	AccessToken string `json:"accessToken"`
}

func (m *Manager) loadToken() (string, error) {
	if m.file == "" {
		return "", nil
	}

	data, err := os.ReadFile(m.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}

		return "", err
	}

	tf := tokenFile{}
	if err = json.Unmarshal(data, &tf); err != nil {
		return "", err
	}

	return tf.AccessToken, nil
}

// persist writes the token to disk; an empty token removes the file.
func (m *Manager) persist(token string) {
	if m.file == "" {
		return
	}

	if token == "" {
		if err := os.Remove(m.file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.log.WithError(err).Warn("removing token file")
		}

		return
	}

	data, err := json.Marshal(tokenFile{AccessToken: token})
	if err != nil {
		m.log.WithError(err).Warn("encoding token file")
		return
	}

	if err = os.WriteFile(m.file, data, tokenFileMode); err != nil {
		m.log.WithError(err).Warn("writing token file")
	}
}

// tokenExpired peeks at the unverified exp claim. Tokens without a readable
// claim are treated as live and left to server-side validation.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Before(time.Now())
}
