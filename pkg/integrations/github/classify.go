package github

import (
	"net/http"
	"strings"

	"github.com/matzehuels/octowire/pkg/errors"
)

// GraphQLEndpoint is the only endpoint whose body-level errors are inspected.
const GraphQLEndpoint = "/graphql"

const secondaryRateLimitMessage = "You have exceeded a secondary rate limit and have been temporarily blocked from content creation. Please retry your request again later."

var statusCodes = map[int]errors.Code{
	http.StatusUnauthorized:        errors.ErrCodeAuthentication,
	http.StatusForbidden:           errors.ErrCodeAuthentication,
	http.StatusNotModified:         errors.ErrCodeNotModified,
	http.StatusNotFound:            errors.ErrCodeNotFound,
	http.StatusBadRequest:          errors.ErrCodePayload,
	http.StatusUnprocessableEntity: errors.ErrCodeGeneric,
	http.StatusTooManyRequests:     errors.ErrCodeRateLimited,
}

var knownMessages = map[string]errors.Code{
	"Bad credentials":                     errors.ErrCodeAuthentication,
	secondaryRateLimitMessage:             errors.ErrCodeRateLimited,
	"Must have push access to repository": errors.ErrCodePermission,
}

// Classify maps a status code and parsed payload to an error, or nil on
// success. Rules, first match wins:
//
//  1. a "message" containing "rate limit" (any case) is RATE_LIMITED
//  2. the status table (401/403, 304, 404, 400, 422, 429)
//  3. a message from the known set ("Bad credentials", ...)
//  4. any other message is GENERIC_ERROR
//  5. a /graphql body with a non-empty "errors" array is GRAPHQL_ERROR
//  6. any remaining status >= 400 is GENERIC_ERROR
func Classify(status int, endpoint string, data any) error {
	message, hasMessage := payloadMessage(data)

	if hasMessage && strings.Contains(strings.ToLower(message), "rate limit") {
		return apiError(errors.ErrCodeRateLimited, status, message)
	}
	if code, ok := statusCodes[status]; ok {
		if !hasMessage {
			message = http.StatusText(status)
		}
		return apiError(code, status, message)
	}
	if hasMessage {
		if code, ok := knownMessages[message]; ok {
			return apiError(code, status, message)
		}
		return apiError(errors.ErrCodeGeneric, status, message)
	}
	if endpoint == GraphQLEndpoint {
		if msgs := graphQLMessages(data); len(msgs) > 0 {
			return apiError(errors.ErrCodeGraphQL, status, strings.Join(msgs, "; "))
		}
	}
	if status >= http.StatusBadRequest {
		return apiError(errors.ErrCodeGeneric, status, http.StatusText(status))
	}
	return nil
}

func apiError(code errors.Code, status int, message string) *errors.Error {
	return errors.New(code, "%s", message).WithStatus(status)
}

func payloadMessage(data any) (string, bool) {
	obj, ok := data.(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := obj["message"].(string)
	return msg, ok
}

func graphQLMessages(data any) []string {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := obj["errors"].([]any)
	if !ok {
		return nil
	}
	msgs := make([]string, 0, len(list))
	for _, item := range list {
		if e, ok := item.(map[string]any); ok {
			if m, ok := e["message"].(string); ok {
				msgs = append(msgs, m)
				continue
			}
		}
		msgs = append(msgs, "unknown GraphQL error")
	}
	return msgs
}

// IsNotModified reports whether err is a 304 from a conditional request.
func IsNotModified(err error) bool { return errors.Is(err, errors.ErrCodeNotModified) }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return errors.Is(err, errors.ErrCodeNotFound) }

// IsRateLimited reports whether err is a RATE_LIMITED error.
func IsRateLimited(err error) bool { return errors.Is(err, errors.ErrCodeRateLimited) }

// isTerminal reports whether retrying can never help.
func isTerminal(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeAuthentication, errors.ErrCodeNotFound, errors.ErrCodePermission:
		return true
	}
	return false
}
