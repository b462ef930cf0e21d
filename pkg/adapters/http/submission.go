package http

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/aretw0/autograde/pkg/domain"
)

// decodeSubmission reads a UserState from a JSON body or from form fields.
func decodeSubmission(r *http.Request) (domain.UserState, error) {
	var state domain.UserState

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
			return state, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return state, err
		}
		state = domain.UserState{
			ExerciseName: r.PostFormValue("exercise_name"),
			Command:      r.PostFormValue("command"),
			Cwd:          r.PostFormValue("cwd"),
			Output:       r.PostFormValue("output"),
		}
		env, err := parseEnviron(r.PostFormValue("env"))
		if err != nil {
			return state, err
		}
		state.Environ = env
	}

	if state.ExerciseName == "" {
		return state, fmt.Errorf("exercise_name is required")
	}
	return state, nil
}

// parseEnviron accepts a JSON object or newline separated KEY=VALUE lines.
func parseEnviron(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]string{}, nil
	}
	if strings.HasPrefix(raw, "{") {
		env := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			return nil, fmt.Errorf("env: %w", err)
		}
		return env, nil
	}
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	return domain.EnvironFromPairs(lines), nil
}
