package dal

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atlas() Vehicle {
	return Vehicle{
		ID:    "v1",
		Name:  "Atlas",
		Price: decimal.NewFromInt(42_000),
		Stock: 2,
		Options: []Option{
			{ID: "tow", Name: "Tow hitch", Price: decimal.NewFromInt(900)},
			{ID: "roof", Name: "Panoramic roof", Price: decimal.Zero},
		},
	}
}

func failedFields(t *testing.T, err error) []string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

func TestValidateVehicle(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Validate(atlas()))

	free := atlas()
	free.Price = decimal.Zero
	assert.Equal(t, []string{"price"}, failedFields(t, Validate(free)))

	badOption := atlas()
	badOption.Options[0].Price = decimal.NewFromInt(-1)
	assert.Equal(t, []string{"price"}, failedFields(t, Validate(badOption)))

	anonymous := atlas()
	anonymous.ID = ""
	anonymous.Stock = -1
	assert.ElementsMatch(t, []string{"id", "stock"}, failedFields(t, Validate(anonymous)))
}

func TestValidateOrderInput(t *testing.T) {
	t.Parallel()

	input := OrderInput{CustomerID: "c1", Kind: OrderKindCash}
	assert.ElementsMatch(t, []string{"lines"}, failedFields(t, Validate(input)))

	input.Lines = []OrderLine{{VehicleID: "v1", Quantity: 0}}
	assert.ElementsMatch(t, []string{"quantity"}, failedFields(t, Validate(input)))

	input.Lines[0].Quantity = 1
	input.Kind = "barter"
	assert.ElementsMatch(t, []string{"kind"}, failedFields(t, Validate(input)))
}

func TestVehicleOptions(t *testing.T) {
	t.Parallel()

	v := atlas()
	opt, ok := v.Option("roof")
	require.True(t, ok)
	assert.Equal(t, "Panoramic roof", opt.Name)

	assert.True(t, v.HasOptions([]string{"tow", "roof"}))
	assert.True(t, v.HasOptions(nil))
	assert.False(t, v.HasOptions([]string{"tow", "jetpack"}))
	assert.True(t, v.InStock())
	v.Stock = 0
	assert.False(t, v.InStock())
}

func TestOrderKindAndAddress(t *testing.T) {
	t.Parallel()

	assert.True(t, OrderKindCash.Valid())
	assert.True(t, OrderKindCredit.Valid())
	assert.False(t, OrderKind("lease").Valid())
	assert.True(t, Address{}.Empty())
	assert.False(t, Address{City: "Lyon"}.Empty())
}
