package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRegisterRequestValidation(t *testing.T) {
	ok := RegisterRequest{Username: "anna", Email: "anna@example.com", Password: "secret123"}
	require.NoError(t, Validate.Struct(ok))

	short := ok
	short.Password = "short"
	require.Error(t, Validate.Struct(short))

	long := ok
	long.Password = strings.Repeat("x", 73)
	require.Error(t, Validate.Struct(long))

	badEmail := ok
	badEmail.Email = "not-an-email"
	require.Error(t, Validate.Struct(badEmail))
}

func TestVacancyValidation(t *testing.T) {
	require.NoError(t, Validate.Struct(CreateVacancyRequest{Title: "Go dev", Company: "Acme"}))
	require.Error(t, Validate.Struct(CreateVacancyRequest{Company: "Acme"}))
	require.Error(t, Validate.Struct(CreateVacancyRequest{Title: "Go dev", Company: "Acme", URL: strPtr("nope")}))

	require.NoError(t, Validate.Struct(UpdateVacancyRequest{}))
	require.NoError(t, Validate.Struct(UpdateVacancyRequest{URL: strPtr("https://hh.ru/vacancy/1")}))
	require.Error(t, Validate.Struct(UpdateVacancyRequest{Title: strPtr("")}))
}

func TestTelegramRegisterValidation(t *testing.T) {
	require.NoError(t, Validate.Struct(TelegramRegisterRequest{TelegramID: 42}))
	require.NoError(t, Validate.Struct(TelegramRegisterRequest{TelegramID: 42, Username: "anna"}))
	require.Error(t, Validate.Struct(TelegramRegisterRequest{}))
	require.Error(t, Validate.Struct(TelegramRegisterRequest{TelegramID: -1}))
	require.Error(t, Validate.Struct(TelegramRegisterRequest{TelegramID: 42, Username: "ab"}))
}
