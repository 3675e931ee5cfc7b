package handlers

import (
	"reflect"
	"sync"

	"github.com/SscSPs/mymoney_app/internal/utils"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxAmount bounds amounts to what NUMERIC(12, 2) can store.
var maxAmount = decimal.New(1, 10)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags:
//
//	decimal2  at most two decimal places and within the storable range
//	iso4217   a known currency code
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("decimal2", validateDecimal2)
		_ = v.RegisterValidation("iso4217", validateISO4217)
	})
}

// decimalValue lets the validator see decimals as their string form.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateDecimal2(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return d.Equal(d.Round(2)) && d.Abs().LessThan(maxAmount)
}

func validateISO4217(fl validator.FieldLevel) bool {
	code, ok := fl.Field().Interface().(string)
	return ok && utils.IsISO4217(code)
}
