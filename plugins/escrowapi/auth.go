package escrowapi

import (
	"crypto/ed25519"
	"encoding/hex"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gohornet/escrow/pkg/jwt"
	"github.com/gohornet/escrow/pkg/restapi"
	iotago "github.com/iotaledger/iota.go/v3"
)

const (
	// the maximum difference between the signed timestamp and the node time.
	authMessageMaxAge = 5 * time.Minute
)

func issueToken(c echo.Context) (*tokenResponse, error) {

	request := &tokenRequest{}
	if err := c.Bind(request); err != nil {
		return nil, errors.WithMessagef(restapi.ErrInvalidParameter, "invalid request, error: %s", err)
	}

	hrp := deps.EscrowManager.Bech32HRP()

	var address iotago.Ed25519Address
	switch {
	case len(request.PublicKey) > 0:
		var err error
		if address, err = verifyAuthSignature(request, hrp); err != nil {
			return nil, err
		}

	case len(request.Address) > 0:
		if !deps.InsecureAddressTokens {
			return nil, errors.WithMessage(restapi.ErrForbidden, "tokens without signature are disabled")
		}

		var err error
		if address, err = restapi.ParseBech32Address(request.Address, hrp); err != nil {
			return nil, err
		}

	default:
		return nil, errors.WithMessage(restapi.ErrInvalidParameter, "publicKey or address must be given")
	}

	token, err := deps.JWTAuth.IssueJWT(address.Bech32(hrp))
	if err != nil {
		return nil, errors.WithMessagef(restapi.ErrInternalServerError, "issuing token failed, error: %s", err)
	}

	return &tokenResponse{
		Token:   token,
		Address: address.Bech32(hrp),
	}, nil
}

func verifyAuthSignature(request *tokenRequest, hrp iotago.NetworkPrefix) (iotago.Ed25519Address, error) {

	publicKey, err := hex.DecodeString(request.PublicKey)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return iotago.Ed25519Address{}, errors.WithMessage(restapi.ErrInvalidParameter, "invalid public key")
	}

	signature, err := hex.DecodeString(request.Signature)
	if err != nil || len(signature) != ed25519.SignatureSize {
		return iotago.Ed25519Address{}, errors.WithMessage(restapi.ErrInvalidParameter, "invalid signature")
	}

	age := deps.EscrowManager.Now().Sub(time.Unix(request.Timestamp, 0))
	if age > authMessageMaxAge || age < -authMessageMaxAge {
		return iotago.Ed25519Address{}, errors.WithMessage(restapi.ErrForbidden, "timestamp out of range")
	}

	if !ed25519.Verify(publicKey, restapi.AuthMessage(hrp, request.Timestamp), signature) {
		return iotago.Ed25519Address{}, errors.WithMessage(restapi.ErrForbidden, "invalid signature")
	}

	return iotago.Ed25519AddressFromPubKey(publicKey), nil
}

// callerFromContext returns the address of the JWT subject.
func callerFromContext(c echo.Context) (iotago.Ed25519Address, error) {
	subject, err := jwt.SubjectFromContext(c)
	if err != nil {
		return iotago.Ed25519Address{}, err
	}

	address, err := restapi.ParseBech32Address(subject, deps.EscrowManager.Bech32HRP())
	if err != nil {
		return iotago.Ed25519Address{}, jwt.ErrJWTInvalidClaims
	}
	return address, nil
}
