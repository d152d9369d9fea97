package validate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_KeepsFirstMessagePerField(t *testing.T) {
	errs := Errors{}
	errs.Add("email", "is required")
	errs.Add("email", "is not a valid email")
	errs.Check(false, "name", "must be 2-100 characters")
	errs.Check(true, "phone", "unused")

	assert.Equal(t, Errors{"email": "is required", "name": "must be 2-100 characters"}, errs)
	assert.Equal(t, "invalid input: email: is required; name: must be 2-100 characters", errs.Error())
}

func TestErrors_Err(t *testing.T) {
	assert.NoError(t, Errors{}.Err())

	err := Field("start_time", "must be before end_time").Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	wrapped := fmt.Errorf("create availability: %w", err)
	var fields Errors
	require.True(t, errors.As(wrapped, &fields))
	assert.Equal(t, "must be before end_time", fields["start_time"])
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("Secret123"))
	assert.False(t, Password("Sh0rt"))
	assert.False(t, Password("nouppercase1"))
	assert.False(t, Password("NoDigitsHere"))
}

func TestPhone(t *testing.T) {
	assert.True(t, PhonePrefix("+370"))
	assert.False(t, PhonePrefix("370"))
	assert.False(t, PhonePrefix("+"))

	assert.True(t, PhoneNumber("61234567"))
	assert.False(t, PhoneNumber("1234"))
	assert.False(t, PhoneNumber("1234567890123456"))
	assert.False(t, PhoneNumber("612-34567"))
}

func TestEmailAndLength(t *testing.T) {
	assert.True(t, Email("jane@clinic.example"))
	assert.False(t, Email("Jane <jane@clinic.example>"))
	assert.False(t, Email("not-an-email"))

	assert.True(t, Length("Jo", 2, 100))
	assert.False(t, Length("J", 2, 100))
	assert.True(t, Length("", 0, 500))
	assert.True(t, OneOf("other", "male", "female", "other"))
	assert.False(t, OneOf("x", "male", "female", "other"))
}
