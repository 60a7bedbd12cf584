package afip

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afipar/go-afip-client/afip/model"
)

func TestServiceError(t *testing.T) {
	err := &ServiceError{Op: "FECAESolicitar", Errors: []ErrorDetail{
		{Code: 600, Msg: "token invalido"},
		{Code: 602, Msg: "Sin Resultados"},
	}}

	assert.True(t, err.HasCode(600))
	assert.True(t, err.HasCode(602))
	assert.False(t, err.HasCode(601))
	assert.Contains(t, err.Error(), "FECAESolicitar")
	assert.Contains(t, err.Error(), "[602: Sin Resultados]")
}

func TestCredentialErrorUnwrap(t *testing.T) {
	err := &CredentialError{Reason: "read certificate", Err: os.ErrNotExist}

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "read certificate")

	bare := &CredentialError{Reason: "key mismatch"}
	assert.NoError(t, errors.Unwrap(bare))
	assert.Equal(t, "credential error: key mismatch", bare.Error())
}

func TestRejectedErrorMessage(t *testing.T) {
	err := &RejectedError{Observations: []model.Observation{
		{Code: 10016, Message: "Campo CbteFch no valido"},
	}}
	assert.Contains(t, err.Error(), "rejected")
	assert.Contains(t, err.Error(), "10016")
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: 1-6-999", ErrNotFound)
	require.ErrorIs(t, wrapped, ErrNotFound)

	var serr *ServiceError
	assert.False(t, errors.As(wrapped, &serr))
}

func TestEnvironmentURLs(t *testing.T) {
	assert.Equal(t, "https://wsaahomo.afip.gov.ar/ws/services/LoginCms", Testing.WSAAURL())
	assert.Equal(t, "https://wsaa.afip.gov.ar/ws/services/LoginCms", Production.WSAAURL())
	assert.Equal(t, "https://wswhomo.afip.gov.ar/wsfev1/service.asmx", Testing.WSFEURL())
	assert.Equal(t, "https://servicios1.afip.gov.ar/wsfev1/service.asmx", Production.WSFEURL())
	assert.Equal(t, "testing", Testing.String())
	assert.Equal(t, "production", Production.String())
}
