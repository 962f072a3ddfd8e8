package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/gohornet/escrow/pkg/model/storage"
)

func httpCode(t *testing.T, err error) int {
	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr))
	return httpErr.Code
}

func TestEscrowError(t *testing.T) {
	require.NoError(t, EscrowError(nil))

	require.Equal(t, http.StatusBadRequest, httpCode(t, EscrowError(escrow.ErrInvalidAmount)))
	require.Equal(t, http.StatusForbidden, httpCode(t, EscrowError(escrow.ErrNotRecipient)))
	require.Equal(t, http.StatusConflict, httpCode(t, EscrowError(escrow.ErrVotingClosed)))
	require.Equal(t, http.StatusConflict, httpCode(t, EscrowError(errors.Wrap(escrow.ErrAlreadyVoted, "milestone 0"))))
	require.Equal(t, http.StatusBadGateway, httpCode(t, EscrowError(escrow.ErrTransferFailed)))
	require.Equal(t, http.StatusNotFound, httpCode(t, EscrowError(escrow.ErrEscrowNotFound)))
	require.Equal(t, http.StatusInternalServerError, httpCode(t, EscrowError(storage.NewDatabaseError(errors.New("disk full")))))
	require.Equal(t, http.StatusInternalServerError, httpCode(t, EscrowError(errors.New("unknown"))))

	// HTTP errors are passed through
	require.Equal(t, http.StatusBadRequest, httpCode(t, EscrowError(errors.WithMessage(ErrInvalidParameter, "x"))))
}

func TestParseParams(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?pageSize=500&cursor=abc", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames(ParameterMilestoneIndex, ParameterEscrowID)
	c.SetParamValues("3", "zz")

	index, err := ParseMilestoneIndexParam(c)
	require.NoError(t, err)
	require.Equal(t, uint16(3), index)

	_, err = ParseEscrowIDParam(c)
	require.ErrorIs(t, err, ErrInvalidParameter)

	pageSize, err := ParseUint64QueryParam(c, QueryParameterPageSize, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), pageSize)

	_, err = ParseUint64QueryParam(c, QueryParameterCursor, 0)
	require.ErrorIs(t, err, ErrInvalidParameter)

	creator, err := ParseBech32AddressQueryParam(c, QueryParameterCreator, "atoi")
	require.NoError(t, err)
	require.Nil(t, creator)

	amount, err := ParseAmount("1000")
	require.NoError(t, err)
	require.Equal(t, uint64(1000), amount)

	_, err = ParseAmount("-1")
	require.ErrorIs(t, err, ErrInvalidParameter)
}
