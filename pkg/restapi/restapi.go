package restapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gohornet/escrow/pkg/model/escrow"
	iotago "github.com/iotaledger/iota.go/v3"
)

const (
	// ParameterEscrowID is used to identify an escrow by its ID.
	ParameterEscrowID = "escrowID"

	// ParameterAddress is used to identify an address.
	ParameterAddress = "address"

	// ParameterMilestoneIndex is used to identify a milestone of an escrow.
	ParameterMilestoneIndex = "index"

	// QueryParameterCreator is used to filter for the creator of a campaign.
	QueryParameterCreator = "creator"

	// QueryParameterRecipient is used to filter for the recipient of a campaign.
	QueryParameterRecipient = "recipient"

	// QueryParameterPageSize is used to limit the amount of returned results.
	QueryParameterPageSize = "pageSize"

	// QueryParameterCursor is used to continue a listing after the given sequence number.
	QueryParameterCursor = "cursor"
)

var (
	// ErrInvalidParameter defines the invalid parameter error.
	ErrInvalidParameter = echo.NewHTTPError(http.StatusBadRequest, "invalid parameter")

	// ErrForbidden defines the forbidden error.
	ErrForbidden = echo.NewHTTPError(http.StatusForbidden, "forbidden")

	// ErrNotFound defines the not found error.
	ErrNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

	// ErrConflict defines the conflict error.
	ErrConflict = echo.NewHTTPError(http.StatusConflict, "conflict")

	// ErrBadGateway defines the error of a failed outbound transfer.
	ErrBadGateway = echo.NewHTTPError(http.StatusBadGateway, "transfer failed")

	// ErrInternalServerError defines the internal server error.
	ErrInternalServerError = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
)

// JSONResponse sends the JSON response with status code.
func JSONResponse(c echo.Context, statusCode int, result interface{}) error {
	return c.JSON(statusCode, result)
}

// HTTPErrorResponse defines the error struct for the HTTPErrorResponseEnvelope.
type HTTPErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPErrorResponseEnvelope defines the error response schema for node API responses.
type HTTPErrorResponseEnvelope struct {
	Error HTTPErrorResponse `json:"error"`
}

type (
	// AllowedRoute defines a function to allow or disallow routes.
	AllowedRoute func(echo.Context) bool
)

func ErrorHandler() func(error, echo.Context) {
	return func(err error, c echo.Context) {

		var statusCode int
		var message string

		var e *echo.HTTPError
		if errors.As(err, &e) {
			statusCode = e.Code
			message = fmt.Sprintf("%s, error: %s", e.Message, err)
		} else {
			statusCode = http.StatusInternalServerError
			message = fmt.Sprintf("internal server error. error: %s", err)
		}

		_ = c.JSON(statusCode, HTTPErrorResponseEnvelope{Error: HTTPErrorResponse{Code: strconv.Itoa(statusCode), Message: message}})
	}
}

// AuthMessage returns the message that must be signed to request a token for an address.
func AuthMessage(hrp iotago.NetworkPrefix, timestamp int64) []byte {
	return []byte(fmt.Sprintf("%s escrow auth %d", hrp, timestamp))
}

// EscrowError wraps an error of the escrow domain into the HTTP error of its kind.
func EscrowError(err error) error {
	if err == nil {
		return nil
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch escrow.KindOf(err) {
	case escrow.KindValidation:
		return errors.WithMessage(ErrInvalidParameter, err.Error())
	case escrow.KindAuthorization:
		return errors.WithMessage(ErrForbidden, err.Error())
	case escrow.KindState, escrow.KindDuplicate:
		return errors.WithMessage(ErrConflict, err.Error())
	case escrow.KindTransfer:
		return errors.WithMessage(ErrBadGateway, err.Error())
	case escrow.KindNotFound:
		return errors.WithMessage(ErrNotFound, err.Error())
	default:
		return errors.WithMessage(ErrInternalServerError, err.Error())
	}
}

func GetRequestContentType(c echo.Context, supportedContentTypes ...string) (string, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	for _, supportedContentType := range supportedContentTypes {
		if strings.HasPrefix(ctype, supportedContentType) {
			return supportedContentType, nil
		}
	}
	return "", echo.ErrUnsupportedMediaType
}

func ParseEscrowIDParam(c echo.Context) (escrow.EscrowID, error) {
	escrowIDHex := strings.ToLower(c.Param(ParameterEscrowID))

	escrowID, err := escrow.EscrowIDFromHex(escrowIDHex)
	if err != nil {
		return escrow.NullEscrowID, errors.WithMessagef(ErrInvalidParameter, "invalid escrow ID: %s, error: %s", escrowIDHex, err)
	}
	return escrowID, nil
}

// ParseBech32Address parses a bech32 encoded Ed25519 address with the given prefix.
func ParseBech32Address(addressParam string, prefix iotago.NetworkPrefix) (iotago.Ed25519Address, error) {
	address, err := escrow.ParseBech32Address(prefix, strings.ToLower(addressParam))
	if err != nil {
		return iotago.Ed25519Address{}, errors.WithMessagef(ErrInvalidParameter, "invalid address: %s, error: %s", addressParam, err)
	}
	return address, nil
}

func ParseBech32AddressParam(c echo.Context, prefix iotago.NetworkPrefix) (iotago.Ed25519Address, error) {
	return ParseBech32Address(c.Param(ParameterAddress), prefix)
}

// ParseBech32AddressQueryParam returns nil if the query parameter is not set.
func ParseBech32AddressQueryParam(c echo.Context, paramName string, prefix iotago.NetworkPrefix) (*iotago.Ed25519Address, error) {
	addressParam := c.QueryParam(paramName)
	if len(addressParam) == 0 {
		return nil, nil
	}

	address, err := ParseBech32Address(addressParam, prefix)
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func ParseMilestoneIndexParam(c echo.Context) (uint16, error) {
	milestoneIndex := strings.ToLower(c.Param(ParameterMilestoneIndex))
	if milestoneIndex == "" {
		return 0, errors.WithMessagef(ErrInvalidParameter, "parameter \"%s\" not specified", ParameterMilestoneIndex)
	}

	index, err := strconv.ParseUint(milestoneIndex, 10, 16)
	if err != nil {
		return 0, errors.WithMessagef(ErrInvalidParameter, "invalid milestone index: %s, error: %s", milestoneIndex, err)
	}

	return uint16(index), nil
}

// ParseUint64QueryParam returns 0 if the query parameter is not set.
func ParseUint64QueryParam(c echo.Context, paramName string, maxValue uint64) (uint64, error) {
	param := c.QueryParam(paramName)
	if len(param) == 0 {
		return 0, nil
	}

	value, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return 0, errors.WithMessagef(ErrInvalidParameter, "invalid %s: %s, error: %s", paramName, param, err)
	}

	if maxValue > 0 && value > maxValue {
		return maxValue, nil
	}

	return value, nil
}

// ParseAmount parses a base-10 amount that is transported as string to avoid precision loss in JSON clients.
func ParseAmount(amount string) (uint64, error) {
	value, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return 0, errors.WithMessagef(ErrInvalidParameter, "invalid amount: %s, error: %s", amount, err)
	}
	return value, nil
}
