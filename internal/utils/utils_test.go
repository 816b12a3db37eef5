package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artflora/internal/constants"
)

func TestIsRoleOrHigher(t *testing.T) {
	assert.True(t, IsRoleOrHigher(constants.ROLE_OWNER, constants.ROLE_ADMIN))
	assert.True(t, IsRoleOrHigher(constants.ROLE_ADMIN, constants.ROLE_ADMIN))
	assert.False(t, IsRoleOrHigher(constants.ROLE_MANAGER, constants.ROLE_ADMIN))
	assert.False(t, IsRoleOrHigher("superuser", constants.ROLE_MANAGER))
}

func TestPhoneHelpers(t *testing.T) {
	assert.Equal(t, "+79991234567", CleanPhone(" +7 (999) 123-45-67 "))

	cases := map[string]string{
		"8 999 123 45 67":   "+79991234567",
		"+7 (999) 123-4567": "+79991234567",
		"9991234567":        "+79991234567",
	}
	for in, want := range cases {
		got, err := ValidatePhoneNumber(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ValidatePhoneNumber("+1 555 0100")
	assert.Error(t, err)

	assert.Equal(t, "+7 (999) 123-45-67", FormatPhoneNumber("89991234567"))
	assert.Equal(t, "12345", FormatPhoneNumber("12345"))
}

func TestFormatRubles(t *testing.T) {
	assert.Equal(t, "0 ₽", FormatRubles(0))
	assert.Equal(t, "950 ₽", FormatRubles(950))
	assert.Equal(t, "2 700 ₽", FormatRubles(2700))
	assert.Equal(t, "1 250 000 ₽", FormatRubles(1250000))
	assert.Equal(t, "-300 ₽", FormatRubles(-300))
}

func TestGenerateConfirmationCode(t *testing.T) {
	a, b := GenerateConfirmationCode(), GenerateConfirmationCode()
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
}

func TestGenerateShopQRCode(t *testing.T) {
	_, err := GenerateShopQRCode("", 0)
	assert.Error(t, err)

	png, err := GenerateShopQRCode("artflora_bot", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestCustomerDisplayName(t *testing.T) {
	assert.Equal(t, "Анна (@anna)", CustomerDisplayName("Анна", "anna"))
	assert.Equal(t, "@anna", CustomerDisplayName(" ", "anna"))
	assert.Equal(t, "Покупатель", CustomerDisplayName("", ""))
}
