package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "integer", in: "100", want: "100"},
		{name: "fraction", in: "10.15", want: "10.15"},
		{name: "trims_spaces", in: "  7.5 ", want: "7.5"},
		{name: "negative_allowed", in: "-3", want: "-3"},
		{name: "empty", in: "", wantErr: ErrInvalidAmount},
		{name: "garbage", in: "ten", wantErr: ErrInvalidAmount},
		{name: "forty_digits", in: "1234567890123456789012345678901234567890", want: "1234567890123456789012345678901234567890"},
		{name: "forty_one_digits", in: "12345678901234567890123456789012345678901", wantErr: ErrTooManyDigits},
		{name: "max_scale", in: "0.00000000000000000001", want: "0.00000000000000000001"},
		{name: "scale_over_max", in: "0.000000000000000000001", wantErr: ErrTooManyDigits},
		{name: "tiny_exponent", in: "1e-20000", wantErr: ErrTooManyDigits},
		{name: "huge_negative_exponent", in: "1e-2000000000", wantErr: ErrTooManyDigits},
		{name: "huge_positive_exponent", in: "1e2000000000", wantErr: ErrTooManyDigits},
		{name: "exponent_within_scale", in: "15e-1", want: "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, Format(got))
		})
	}
}

func TestParsePositive(t *testing.T) {
	t.Parallel()

	_, err := ParsePositive("0")
	require.ErrorIs(t, err, ErrNonPositive)

	_, err = ParsePositive("-1")
	require.ErrorIs(t, err, ErrNonPositive)

	_, err = ParsePositive("1e-2000000000")
	require.ErrorIs(t, err, ErrTooManyDigits)

	got, err := ParsePositive("0.01")
	require.NoError(t, err)
	assert.Equal(t, "0.01", Format(got))
}

func TestRepeatedSumsDoNotDrift(t *testing.T) {
	t.Parallel()

	step := decimal.RequireFromString("0.1")

	total := decimal.Zero
	for range 1000 {
		total = total.Add(step)
	}

	assert.True(t, total.Equal(decimal.NewFromInt(100)), "got %s", total)
}

func TestMinMaxSum(t *testing.T) {
	t.Parallel()

	a := decimal.RequireFromString("5")
	b := decimal.RequireFromString("7.25")

	assert.Equal(t, "5", Format(Min(a, b)))
	assert.Equal(t, "7.25", Format(Max(a, b)))
	assert.Equal(t, "12.25", Format(Sum(a, b)))
	assert.Equal(t, "0", Format(Sum()))
}
