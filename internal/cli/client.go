package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─── Daemon HTTP client ─────────────────────────────────────────────────────
// Client commands talk to a running daemon. Failures surface the daemon's
// own error message when the response carries one.

var httpClient = &http.Client{Timeout: 15 * time.Second}

func apiGet(path string) (map[string]interface{}, error) {
	return apiDo(http.MethodGet, path, nil)
}

func apiPost(path string, body interface{}) (map[string]interface{}, error) {
	return apiDo(http.MethodPost, path, body)
}

func apiDo(method, path string, body interface{}) (map[string]interface{}, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, strings.TrimRight(apiAddr, "/")+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot reach daemon at %s (is 'curia serve' running?): %w", apiAddr, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("%s %s: %s", method, path, http.StatusText(resp.StatusCode))
		}
		return nil, fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s: %s", method, path, apiErrorMessage(payload, resp.StatusCode))
	}
	return payload, nil
}

func bearerToken() string {
	if apiToken != "" {
		return apiToken
	}
	return os.Getenv("CURIA_TOKEN")
}

// apiErrorMessage digs the message out of the {"error":{"message":...}}
// envelope every API error uses.
func apiErrorMessage(payload map[string]interface{}, status int) string {
	if e, ok := payload["error"].(map[string]interface{}); ok {
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return http.StatusText(status)
}

// ─── Rendering helpers ──────────────────────────────────────────────────────

// num renders a decoded JSON number without exponent notation.
func num(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// renderJSON pretty-prints a decoded payload to stdout.
func renderJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

// requireID rejects non-numeric id arguments before they hit the API.
func requireID(arg, what string) error {
	if _, err := strconv.ParseUint(arg, 10, 64); err != nil {
		return fmt.Errorf("%s id must be numeric, got %q", what, arg)
	}
	return nil
}
