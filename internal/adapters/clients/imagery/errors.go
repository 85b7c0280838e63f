package imagery

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jsamuelsen/resonance-bot/internal/adapters/clients"
	"github.com/jsamuelsen/resonance-bot/internal/domain"
)

// mapClientError translates client-level failures for path into a domain.FetchError.
// The original error stays reachable through errors.Is.
func mapClientError(path string, err error) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewFetchError(path, "image source circuit open", err)

	case errors.Is(err, clients.ErrRequestFailed):
		return domain.NewFetchError(path, "request failed", err)

	default:
		return domain.NewFetchError(path, "unexpected client error", err)
	}
}

// mapStatusCode translates a non-2xx response into a domain.FetchError.
func mapStatusCode(path string, status int) error {
	switch status {
	case http.StatusNotFound:
		return domain.NewFetchError(path, "image not found", nil)

	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return domain.NewFetchError(path, fmt.Sprintf("image source unavailable (HTTP %d)", status), nil)

	default:
		return domain.NewFetchError(path, fmt.Sprintf("unexpected HTTP %d", status), nil)
	}
}
