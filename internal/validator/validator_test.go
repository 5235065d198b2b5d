package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/cart-coupon-service/internal/model"
)

func TestNew(t *testing.T) {
	v := New()
	require.NotNil(t, v, "New() should return a non-nil validator")
}

func TestNotblankValidator(t *testing.T) {
	v := New()

	type TestStruct struct {
		Code string `validate:"notblank"`
	}

	testCases := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"valid_string", "SAVE20", false},
		{"valid_with_spaces", "  SAVE20  ", false},
		{"whitespace_only_spaces", "   ", true},
		{"whitespace_only_tabs", "\t\t", true},
		{"whitespace_mixed", " \t\n ", true},
		{"empty_string", "", true},
		{"unicode_content", "割引", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(TestStruct{Code: tc.input})

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotblankOnNonStringField(t *testing.T) {
	v := New()

	type TestStructInt struct {
		Value int `validate:"notblank"`
	}

	assert.NoError(t, v.Struct(TestStructInt{Value: 0}), "notblank should pass for non-string types")
}

func TestDecimalNumericTags(t *testing.T) {
	v := New()

	type TestStruct struct {
		Value *decimal.Decimal `validate:"required,gt=0"`
	}

	positive := decimal.RequireFromString("0.01")
	zero := decimal.Zero
	negative := decimal.RequireFromString("-3")

	assert.NoError(t, v.Struct(TestStruct{Value: &positive}))
	assert.Error(t, v.Struct(TestStruct{Value: &zero}))
	assert.Error(t, v.Struct(TestStruct{Value: &negative}))
	assert.Error(t, v.Struct(TestStruct{}), "nil decimal is missing")
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	v := New()

	err := v.Struct(model.CreateCouponRequest{})

	var ve validator.ValidationErrors
	require.True(t, errors.As(err, &ve))
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fe.Field())
	}
	assert.Contains(t, fields, "code")
	assert.Contains(t, fields, "discountType")
	assert.Contains(t, fields, "usageLimit")
}

func TestEditCouponRequest_PresentFieldsAreChecked(t *testing.T) {
	v := New()
	blank := "  "
	zero := decimal.Zero
	limit := 0

	assert.NoError(t, v.Struct(model.EditCouponRequest{}), "absent fields are not validated")
	assert.Error(t, v.Struct(model.EditCouponRequest{Code: &blank}))
	assert.Error(t, v.Struct(model.EditCouponRequest{DiscountValue: &zero}))
	assert.Error(t, v.Struct(model.EditCouponRequest{UsageLimit: &limit}))
}

func TestCentsValidator(t *testing.T) {
	v := New()

	type TestStruct struct {
		Value *decimal.Decimal `validate:"omitnil,cents"`
	}

	testCases := []struct {
		input       string
		expectError bool
	}{
		{"25", false},
		{"19.99", false},
		{"0.01", false},
		{"12.345", true},
		{"0.001", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			d := decimal.RequireFromString(tc.input)
			err := v.Struct(TestStruct{Value: &d})

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.NoError(t, v.Struct(TestStruct{}), "absent value is not checked")
}

func TestUsageLimitFitsColumn(t *testing.T) {
	v := New()
	over := 1 << 31
	limit := 1<<31 - 1

	assert.Error(t, v.Struct(model.EditCouponRequest{UsageLimit: &over}))
	assert.NoError(t, v.Struct(model.EditCouponRequest{UsageLimit: &limit}))
}
