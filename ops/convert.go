package ops

import (
	"fmt"
	"math/big"

	"github.com/decisionml/decisionml/model"
)

// ConvertTo implements the `e in target` UnitConversion node (section
// 4.2.3): Unit->Unit of matching category via the catalogue; Number->Unit
// constructs a unit-tagged value; Number->Percentage multiplies by 100;
// calendar units (month, year) never convert.
func ConvertTo(a model.Literal, target model.ConversionTarget) (model.Literal, error) {
	if target.ToPercentage {
		if a.Kind != model.KindNumber {
			return model.Literal{}, fmt.Errorf("cannot convert %s to a percentage", a.Kind)
		}
		return model.Percentage(new(big.Rat).Mul(a.Number, hundredRat())), nil
	}

	to := target.Unit
	switch a.Kind {
	case model.KindNumber:
		return model.UnitValue(new(big.Rat).Set(a.Number), to), nil
	case model.KindUnit:
		converted, err := model.Convert(a.Number, a.Unit, to)
		if err != nil {
			return model.Literal{}, err
		}
		return model.UnitValue(converted, to), nil
	default:
		return model.Literal{}, fmt.Errorf("cannot convert %s to unit %s", a.Kind, to.Symbol)
	}
}
