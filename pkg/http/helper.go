package http

import (
	"net/http"
	"strconv"

	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
)

// CallerIDHeader carries the authenticated caller identity supplied by
// the gateway in front of the services.
const CallerIDHeader = "X-User-ID"

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractCallerID returns the gateway-authenticated caller id or an
// Unauthorized failure when the header is missing.
func ExtractCallerID(r *http.Request) (string, error) {
	callerID := r.Header.Get(CallerIDHeader)
	if callerID == "" {
		return "", apperrors.Unauthorized("missing " + CallerIDHeader + " header")
	}
	return callerID, nil
}
