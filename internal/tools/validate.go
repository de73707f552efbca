package tools

import "strings"

// ValidationResult carries rule-check outcomes. IsValid reflects errors only;
// warnings never fail a strategy.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	IsValid  bool     `json:"isValid"`
}

// ValidateCode runs the per-language rule table over the supplied source.
// Unsupported languages report a single error rather than failing the call.
func (r *Registry) ValidateCode(p ValidateCodeParams) ValidationResult {
	switch strings.ToLower(p.Language) {
	case "pinescript", "pine-script", "pine":
		return validatePine(p.Code)
	case "mql4", "mql5":
		return validateMQL(p.Code)
	case "python", "py":
		return ValidationResult{IsValid: true}
	}
	return ValidationResult{Errors: []string{"unsupported language: " + p.Language}}
}

func validatePine(code string) ValidationResult {
	var v ValidationResult

	if !strings.Contains(code, "@version=5") {
		v.Errors = append(v.Errors, "Missing @version=5 declaration")
	}
	if !strings.Contains(code, "strategy(") && !strings.Contains(code, "indicator(") {
		v.Errors = append(v.Errors, "Missing strategy() or indicator() declaration")
	}

	if strings.Contains(code, "hline(") {
		v.Warnings = append(v.Warnings, "Avoid hline() with dynamic values, use plot() instead")
	}
	if strings.Contains(code, "line.new(") {
		v.Warnings = append(v.Warnings, "Avoid line.new(), use plot() for continuous lines")
	}
	if !strings.Contains(code, "input(") && !strings.Contains(code, "input.") {
		v.Warnings = append(v.Warnings, "Consider adding input() parameters for user customization")
	}
	if !strings.Contains(code, "//") {
		v.Warnings = append(v.Warnings, "Add comments to explain complex logic")
	}

	v.IsValid = len(v.Errors) == 0
	return v
}

func validateMQL(code string) ValidationResult {
	var v ValidationResult

	if !strings.Contains(code, "OnTick()") {
		v.Errors = append(v.Errors, "Missing OnTick() function")
	}
	if !strings.Contains(code, "OnInit()") {
		v.Warnings = append(v.Warnings, "Consider adding OnInit() for initialization")
	}

	if strings.Contains(code, "Sleep(") {
		v.Errors = append(v.Errors, "Avoid Sleep(), use proper event handling")
	}
	if strings.Contains(code, "while(true)") {
		v.Errors = append(v.Errors, "Avoid infinite loops, use an event-driven approach")
	}

	if !strings.Contains(code, "OrderSend(") && !strings.Contains(code, "OrderOpen(") {
		v.Warnings = append(v.Warnings, "No order management functions found")
	}
	if !strings.Contains(code, "StopLoss") && !strings.Contains(code, "TakeProfit") {
		v.Warnings = append(v.Warnings, "Consider adding stop-loss and take-profit logic")
	}

	v.IsValid = len(v.Errors) == 0
	return v
}
