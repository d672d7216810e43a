package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrUnauthenticated maps HTTP 401: no valid credential accompanied
	// the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden maps HTTP 403: the credential is valid but the server
	// refused the operation.
	ErrForbidden = errors.New("access denied")
	// ErrMalformedResponse covers undecodable bodies and envelopes whose
	// shape does not match the contract.
	ErrMalformedResponse = errors.New("malformed server response")
)

// RemoteError carries the server's own failure message from a
// success=false envelope, e.g. "Invalid credentials" on a bad login.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("server rejected request (status %d)", e.Status)
}

// envelope is the uniform wire shape of every Shelf endpoint. Data is left
// raw until success has been checked; the contract forbids trusting any
// field before that.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeEnvelope validates status and envelope, returning the raw data
// payload only for a 2xx response with success=true. Error precedence:
// status-mapped sentinels first, then the server's own message, then
// malformed-response.
func decodeEnvelope(resp *http.Response) (json.RawMessage, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	case http.StatusForbidden:
		return nil, ErrForbidden
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		remote := &RemoteError{Status: resp.StatusCode}
		if env.Error != nil {
			remote.Code = env.Error.Code
			remote.Message = env.Error.Message
		}
		return nil, remote
	}

	return env.Data, nil
}

const maxResponseBytes = 1 << 20
