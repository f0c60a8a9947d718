package checksum

import "github.com/khairate89/luhn-isbn-validator/internal/domain"

// Explain returns a left-to-right breakdown of the Luhn computation for
// number. Input that is empty or not all digits yields an empty trace.
func Explain(number string) domain.CalculationTrace {
	sum, ok := luhnSum(number)
	if !ok {
		return domain.CalculationTrace{Steps: []domain.TraceStep{}}
	}

	n := len(number)
	steps := make([]domain.TraceStep, 0, n)
	for i := 0; i < n; i++ {
		digit := int(number[i] - '0')
		step := domain.TraceStep{
			Position:     i + 1,
			Digit:        digit,
			Contribution: digit,
		}
		if (n-1-i)%2 == 1 {
			doubled := digit * 2
			step.Doubled = &doubled
			step.Contribution = doubled
			if doubled > 9 {
				step.Contribution = doubled - 9
			}
		}
		steps = append(steps, step)
	}

	return domain.CalculationTrace{
		Steps: steps,
		Total: sum,
		Mod10: sum % 10,
	}
}
